package metadata

import (
	"testing"
	"time"
)

func TestLocation(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"TS.songdo_fog_20230105-063000.jpg", "songdo"},
		{"GANGHWA_clear_0200.jpg", "ganghwado"},
		{"cctv_yeongjong_night.jpg", "yeongjongdo"},
		{"cctv_yeongheung_day.jpg", "yeongheungdo"},
		{"incheon_harbor_cam3.jpg", "incheonhang"},
		{"IMG_0042.jpg", UnknownLocation},
		{"", UnknownLocation},
	}
	for _, tt := range tests {
		if got := Location(tt.filename); got != tt.want {
			t.Errorf("Location(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestWeather(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"songdo_fog_0100.jpg", "fog"},
		{"songdo_MIST_0100.jpg", "mist"},
		{"daebu_clear_0200.jpg", "clear"},
		{"cam_rain_01.jpg", "rain"},
		{"cam_snow_01.jpg", "snow"},
		{"cam_night_01.jpg", "night"},
		{"cam_01.jpg", ""},
	}
	for _, tt := range tests {
		if got := Weather(tt.filename); got != tt.want {
			t.Errorf("Weather(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     *time.Time
	}{
		{
			"compact with separator",
			"songdo_fog_20230105-063000.jpg",
			timePtr(2023, 1, 5, 6, 30, 0),
		},
		{
			"compact without separator",
			"songdo_20230105063000.jpg",
			timePtr(2023, 1, 5, 6, 30, 0),
		},
		{
			"hyphenated ISO-like",
			"cam_2023-01-05_06-30-00.jpg",
			timePtr(2023, 1, 5, 6, 30, 0),
		},
		{
			"two-digit year normalized to 2000s",
			"cam_230105-063000.jpg",
			timePtr(2023, 1, 5, 6, 30, 0),
		},
		{
			"date without time does not match",
			"cam_20230105.jpg",
			nil,
		},
		{
			"no timestamp",
			"songdo_fog.jpg",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Timestamp(tt.filename)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Timestamp(%q) = %v, want %v", tt.filename, got, tt.want)
			}
			if got != nil && !got.Equal(*tt.want) {
				t.Errorf("Timestamp(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestTimestamp_InvalidCalendarValues(t *testing.T) {
	// Digits are present but no pattern parses to a valid calendar date.
	for _, filename := range []string{
		"cam_20231332-250000.jpg", // month 13, day 32, hour 25
		"cam_20230230-120000.jpg", // February 30
	} {
		if got := Timestamp(filename); got != nil {
			t.Errorf("Timestamp(%q) = %v, want nil", filename, got)
		}
	}
}

func TestExtract(t *testing.T) {
	f := Extract("TS.songdo_fog_20230105-063000.jpg")
	if f.Location != "songdo" || f.Weather != "fog" || f.Timestamp == nil {
		t.Errorf("Extract() = %+v", f)
	}
}

func timePtr(y int, mo time.Month, d, h, mi, s int) *time.Time {
	ts := time.Date(y, mo, d, h, mi, s, 0, time.UTC)
	return &ts
}
