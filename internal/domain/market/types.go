// Package market defines the immutable business facts the engine operates on
// and the pure aggregation that turns raw records into per-zip market
// statistics.
package market

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/marketgap-io/marketgap/pkg/errors"
)

// Cuisine is one of the fixed set of cuisine categories the engine
// understands.  The set is closed: records carrying categories outside it
// simply contribute no cuisine counts.
type Cuisine string

// The supported cuisine categories.
const (
	CuisineAmerican      Cuisine = "American"
	CuisineItalian       Cuisine = "Italian"
	CuisineChinese       Cuisine = "Chinese"
	CuisineJapanese      Cuisine = "Japanese"
	CuisineMexican       Cuisine = "Mexican"
	CuisineThai          Cuisine = "Thai"
	CuisineIndian        Cuisine = "Indian"
	CuisineKorean        Cuisine = "Korean"
	CuisineMediterranean Cuisine = "Mediterranean"
	CuisineGreek         Cuisine = "Greek"
	CuisineVietnamese    Cuisine = "Vietnamese"
	CuisineFrench        Cuisine = "French"
	CuisineSpanish       Cuisine = "Spanish"
	CuisineMiddleEastern Cuisine = "Middle Eastern"
	CuisinePizza         Cuisine = "Pizza"
	CuisineBurgers       Cuisine = "Burgers"
	CuisineSeafood       Cuisine = "Seafood"
	CuisineSushi         Cuisine = "Sushi"
	CuisineBarbecue      Cuisine = "Barbecue"
	CuisineSandwiches    Cuisine = "Sandwiches"
	CuisineBreakfast     Cuisine = "Breakfast"
	CuisineDesserts      Cuisine = "Desserts"
	CuisineVegan         Cuisine = "Vegan"
)

// AllCuisines lists every supported cuisine in a fixed, deterministic order.
var AllCuisines = []Cuisine{
	CuisineAmerican, CuisineItalian, CuisineChinese, CuisineJapanese,
	CuisineMexican, CuisineThai, CuisineIndian, CuisineKorean,
	CuisineMediterranean, CuisineGreek, CuisineVietnamese, CuisineFrench,
	CuisineSpanish, CuisineMiddleEastern, CuisinePizza, CuisineBurgers,
	CuisineSeafood, CuisineSushi, CuisineBarbecue, CuisineSandwiches,
	CuisineBreakfast, CuisineDesserts, CuisineVegan,
}

var cuisineByLower = func() map[string]Cuisine {
	m := make(map[string]Cuisine, len(AllCuisines))
	for _, c := range AllCuisines {
		m[strings.ToLower(string(c))] = c
	}
	return m
}()

// ParseCuisine resolves a user-supplied cuisine name (case-insensitive) to
// the canonical Cuisine value.  Unknown names fail with a validation error
// that suggests the closest known cuisine when one is a plausible match.
func ParseCuisine(s string) (Cuisine, error) {
	name := strings.TrimSpace(s)
	if name == "" {
		return "", errors.New(errors.ErrCodeUnknownCuisine, "cuisine must not be empty")
	}
	if c, ok := cuisineByLower[strings.ToLower(name)]; ok {
		return c, nil
	}

	names := make([]string, len(AllCuisines))
	for i, c := range AllCuisines {
		names[i] = string(c)
	}
	err := errors.Newf(errors.ErrCodeUnknownCuisine, "unknown cuisine %q", name)
	if matches := fuzzy.Find(name, names); len(matches) > 0 {
		err = err.WithDetail("did you mean " + matches[0].Str + "?")
	}
	return "", err
}

// CuisinesFromCategories extracts every supported cuisine mentioned in a raw
// category string (e.g. "Restaurants, Japanese, Sushi Bars").  Matching is a
// case-insensitive substring check, which mirrors how the snapshot dataset
// tags categories.
func CuisinesFromCategories(categories string) []Cuisine {
	if categories == "" {
		return nil
	}
	lower := strings.ToLower(categories)
	var out []Cuisine
	for _, c := range AllCuisines {
		if strings.Contains(lower, strings.ToLower(string(c))) {
			out = append(out, c)
		}
	}
	return out
}

// Attribute is one of the boolean service attributes tracked per restaurant.
type Attribute string

// The tracked service attributes.
const (
	AttrDelivery       Attribute = "delivery"
	AttrOutdoorSeating Attribute = "outdoor_seating"
	AttrBYOB           Attribute = "byob"
	AttrKidFriendly    Attribute = "kid_friendly"
	AttrLateNight      Attribute = "late_night"
	AttrWifi           Attribute = "wifi"
	AttrReservations   Attribute = "reservations"
	AttrAlcohol        Attribute = "alcohol"
	AttrTV             Attribute = "tv"
	AttrGoodForGroups  Attribute = "good_for_groups"
)

// AllAttributes lists every tracked attribute in a fixed order.
var AllAttributes = []Attribute{
	AttrDelivery, AttrOutdoorSeating, AttrBYOB, AttrKidFriendly,
	AttrLateNight, AttrWifi, AttrReservations, AttrAlcohol, AttrTV,
	AttrGoodForGroups,
}

// ParseAttribute resolves a user-supplied attribute name to its canonical
// value.  Accepts the snake_case identifier case-insensitively.
func ParseAttribute(s string) (Attribute, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, a := range AllAttributes {
		if name == string(a) {
			return a, nil
		}
	}
	return "", errors.Newf(errors.ErrCodeValidation, "unknown attribute %q", s)
}

// NoiseLevel is the recorded ambient-noise bucket of a restaurant.
type NoiseLevel int

const (
	NoiseQuiet    NoiseLevel = 0
	NoiseAverage  NoiseLevel = 1
	NoiseLoud     NoiseLevel = 2
	NoiseVeryLoud NoiseLevel = 3
)

// ParseNoiseLevel maps the dataset's noise strings to a NoiseLevel.
// Unrecognised values default to NoiseAverage.
func ParseNoiseLevel(s string) NoiseLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quiet":
		return NoiseQuiet
	case "loud":
		return NoiseLoud
	case "very_loud":
		return NoiseVeryLoud
	default:
		return NoiseAverage
	}
}

func (n NoiseLevel) String() string {
	switch n {
	case NoiseQuiet:
		return "quiet"
	case NoiseLoud:
		return "loud"
	case NoiseVeryLoud:
		return "very_loud"
	default:
		return "average"
	}
}

// IsValidZip reports whether s looks like a five-digit US zip code.
func IsValidZip(s string) bool {
	if len(s) != 5 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SortedCuisines returns the keys of a cuisine-count map in descending count
// order, ties broken by name, so JSON output and tests are reproducible.
func SortedCuisines(counts map[Cuisine]int) []Cuisine {
	out := make([]Cuisine, 0, len(counts))
	for c := range counts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}
