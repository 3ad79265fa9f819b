// Package e2e provides end-to-end tests with a generated multi-location corpus.
package e2e

import (
	"fmt"

	"github.com/hyperjump/miru/internal/itemid"
)

// E2EImage is one image entry in the generated corpus.
type E2EImage struct {
	Location string
	Filename string
	Weather  string
}

// QueryTestCase defines a query and the item ID(s) that must appear in
// search results. At least one of ExpectedItemIDs must be present.
type QueryTestCase struct {
	Query           string
	ExpectedItemIDs []string
	Description     string
}

// Corpus holds generated images and query test cases for E2E tests.
type Corpus struct {
	Images       []E2EImage
	TestCases    []QueryTestCase
	TotalImages  int
	TotalQueries int
}

// corpusLocations are full location names recognized by the metadata
// extractor, so queries by location resolve without fuzziness.
var corpusLocations = []string{
	"daebudo", "songdo", "yeongjongdo", "baengnyeongdo",
	"deokjeokdo", "incheonhang", "yeonpyeongdo", "ganghwado",
}

var corpusWeather = []string{"fog", "clear", "rain", "snow", "night"}

// BuildCorpus returns a corpus with one image per (location, weather) pair
// plus a few untagged filenames, and query test cases covering weather,
// location, and combined queries.
func BuildCorpus() *Corpus {
	var images []E2EImage
	for _, loc := range corpusLocations {
		for _, wx := range corpusWeather {
			images = append(images, E2EImage{
				Location: loc,
				Weather:  wx,
				Filename: fmt.Sprintf("TS.%s_%s_20240403_1520.jpg", loc, wx),
			})
		}
		// One filename with no weather tag per location.
		images = append(images, E2EImage{
			Location: loc,
			Filename: fmt.Sprintf("TS.%s_cam01.jpg", loc),
		})
	}
	cases := buildQueryTestCases()
	return &Corpus{
		Images:       images,
		TestCases:    cases,
		TotalImages:  len(images),
		TotalQueries: len(cases),
	}
}

func buildQueryTestCases() []QueryTestCase {
	cases := []QueryTestCase{
		{
			Query:       "fog",
			Description: "weather-only query finds a fog image",
			ExpectedItemIDs: []string{
				itemid.Make("daebudo", "TS.daebudo_fog_20240403_1520.jpg"),
				itemid.Make("songdo", "TS.songdo_fog_20240403_1520.jpg"),
			},
		},
		{
			Query:       "snow at night",
			Description: "multi-word weather query",
			ExpectedItemIDs: []string{
				itemid.Make("ganghwado", "TS.ganghwado_snow_20240403_1520.jpg"),
				itemid.Make("incheonhang", "TS.incheonhang_snow_20240403_1520.jpg"),
			},
		},
	}
	// Location queries: the image for that location must surface even
	// against same-weather images from every other location.
	for _, loc := range corpusLocations {
		cases = append(cases, QueryTestCase{
			Query:       loc,
			Description: "location query " + loc,
			ExpectedItemIDs: []string{
				itemid.Make(loc, fmt.Sprintf("TS.%s_cam01.jpg", loc)),
				itemid.Make(loc, fmt.Sprintf("TS.%s_clear_20240403_1520.jpg", loc)),
			},
		})
	}
	// Combined queries pin down a single image.
	for _, wx := range corpusWeather {
		loc := corpusLocations[0]
		cases = append(cases, QueryTestCase{
			Query:       loc + " " + wx,
			Description: "combined query " + loc + " " + wx,
			ExpectedItemIDs: []string{
				itemid.Make(loc, fmt.Sprintf("TS.%s_%s_20240403_1520.jpg", loc, wx)),
			},
		})
	}
	return cases
}

// ItemIDs returns the full set of item IDs the corpus should index to.
func (c *Corpus) ItemIDs() []string {
	ids := make([]string, 0, len(c.Images))
	for _, img := range c.Images {
		ids = append(ids, itemid.Make(img.Location, img.Filename))
	}
	return ids
}
