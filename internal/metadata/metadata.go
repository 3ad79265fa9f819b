// Package metadata derives location, weather, and timestamp from corpus filenames.
// All extraction is best effort: the only failure mode is an absent field.
package metadata

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// UnknownLocation is the sentinel returned when no known location matches.
const UnknownLocation = "unknown"

// locationTable maps filename substrings to canonical location keys.
// Order matters: the first matching substring wins.
var locationTable = []struct {
	substr   string
	location string
}{
	{"ganghwa", "ganghwado"},
	{"daebu", "daebudo"},
	{"daesan", "daesanhang"},
	{"deokjeok", "deokjeokdo"},
	{"baengnyeong", "baengnyeongdo"},
	{"songdo", "songdo"},
	{"yeonan", "yeonanbudu"},
	{"yeonpyeong", "yeonpyeongdo"},
	{"yeongjong", "yeongjongdo"},
	{"yeongheung", "yeongheungdo"},
	{"incheon", "incheonhang"},
	{"pyeongtaek", "pyeongtaekdangjinhang"},
}

// weatherTable maps filename keywords to weather tags. First match wins.
var weatherTable = []struct {
	keyword string
	tag     string
}{
	{"fog", "fog"},
	{"mist", "mist"},
	{"clear", "clear"},
	{"rain", "rain"},
	{"snow", "snow"},
	{"night", "night"},
	{"day", "day"},
}

// timestampPatterns are tried in order; each captures year, month, day,
// hour, minute, second. The last pattern uses a 2-digit year.
var timestampPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{4})(\d{2})(\d{2})[-_]?(\d{2})(\d{2})(\d{2})`),
	regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})[-_]?(\d{2})-(\d{2})-(\d{2})`),
	regexp.MustCompile(`(\d{2})(\d{2})(\d{2})[-_]?(\d{2})(\d{2})(\d{2})`),
}

// Fields holds the metadata derived from a filename.
type Fields struct {
	Location  string
	Weather   string // empty when absent
	Timestamp *time.Time
}

// Extract derives all metadata fields from filename.
func Extract(filename string) Fields {
	return Fields{
		Location:  Location(filename),
		Weather:   Weather(filename),
		Timestamp: Timestamp(filename),
	}
}

// Location returns the canonical location key for filename, or
// UnknownLocation when no known location substring matches.
func Location(filename string) string {
	lower := strings.ToLower(filename)
	for _, e := range locationTable {
		if strings.Contains(lower, e.substr) {
			return e.location
		}
	}
	return UnknownLocation
}

// Weather returns the weather tag for filename, or empty when no keyword matches.
func Weather(filename string) string {
	lower := strings.ToLower(filename)
	for _, e := range weatherTable {
		if strings.Contains(lower, e.keyword) {
			return e.tag
		}
	}
	return ""
}

// Timestamp extracts a timestamp from filename. Patterns are tried in order;
// the first match that parses to a valid calendar date wins. 2-digit years
// are normalized to the 2000s. Matches with invalid calendar values (e.g.
// month 13) are skipped, not raised. Returns nil when nothing matches.
func Timestamp(filename string) *time.Time {
	for _, pattern := range timestampPatterns {
		m := pattern.FindStringSubmatch(filename)
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		hour, _ := strconv.Atoi(m[4])
		minute, _ := strconv.Atoi(m[5])
		second, _ := strconv.Atoi(m[6])
		if year < 100 {
			year += 2000
		}
		ts, ok := buildTime(year, month, day, hour, minute, second)
		if !ok {
			continue
		}
		return &ts
	}
	return nil
}

// buildTime constructs a time and rejects values that time.Date would
// silently normalize (month 13 becoming January of the next year, etc.).
func buildTime(year, month, day, hour, minute, second int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 ||
		hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}
	ts := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	if ts.Year() != year || ts.Month() != time.Month(month) || ts.Day() != day {
		return time.Time{}, false
	}
	return ts, true
}
