package market

import (
	"sort"

	"github.com/marketgap-io/marketgap/internal/domain/geo"
)

// defaultPriceTier is assumed when no record in a zip carries a price tier.
const defaultPriceTier = 2.0

// ZipMarket is the derived, read-only market profile of one zip code.  It is
// recomputed whenever the snapshot is rebuilt and never mutated afterwards.
type ZipMarket struct {
	Zip  string
	City string

	// Centroid is the median latitude/longitude of the zip's records; nil
	// when no record carries coordinates ("no geo data", distinct from any
	// legitimate location).
	Centroid *geo.Point

	TotalRestaurants  int
	OpenRestaurants   int
	ClosedRestaurants int

	// ClosureRate is ClosedRestaurants/TotalRestaurants, 0 for an empty zip.
	// Always within [0,1].
	ClosureRate float64

	AvgStars     float64
	TotalReviews int
	AvgReviews   float64
	AvgPriceTier float64

	// CuisineCounts is the number of open local restaurants serving each
	// cuisine; closed incumbents don't count toward supply or demand.
	CuisineCounts map[Cuisine]int

	// CuisineAvgStars is the mean star rating of the open local restaurants
	// serving each cuisine, over rated records only.
	CuisineAvgStars map[Cuisine]float64

	// AttributeRates is the fraction of local restaurants offering each
	// tracked attribute.  Every tracked attribute has an entry (possibly 0).
	AttributeRates map[Attribute]float64
}

// Aggregate folds a zip's business records into its ZipMarket.  It is a pure,
// deterministic function: no I/O, no clock, no randomness.  A zip with zero
// records yields a ZipMarket with every rate 0 — it is retained rather than
// dropped so it can surface as a pure-opportunity (zero-competition) market.
func Aggregate(zip string, records []BusinessRecord) *ZipMarket {
	m := &ZipMarket{
		Zip:              zip,
		TotalRestaurants: len(records),
		CuisineCounts:    make(map[Cuisine]int),
		CuisineAvgStars:  make(map[Cuisine]float64),
		AttributeRates:   make(map[Attribute]float64),
	}
	for _, a := range AllAttributes {
		m.AttributeRates[a] = 0
	}
	if len(records) == 0 {
		m.AvgPriceTier = defaultPriceTier
		return m
	}

	var (
		lats, lons  []float64
		starSum     float64
		starCount   int
		priceSum    float64
		priceCount  int
		cityCounts  = make(map[string]int)
		attrCounts  = make(map[Attribute]int)
		cuisineStar = make(map[Cuisine]float64)
		cuisineRate = make(map[Cuisine]int) // rated records per cuisine
	)

	for i := range records {
		r := &records[i]
		if r.Open {
			m.OpenRestaurants++
		} else {
			m.ClosedRestaurants++
		}
		m.TotalReviews += r.ReviewCount

		if r.City != "" {
			cityCounts[r.City]++
		}
		if r.Location != nil {
			lats = append(lats, r.Location.Lat)
			lons = append(lons, r.Location.Lon)
		}
		if r.Stars > 0 {
			starSum += r.Stars
			starCount++
		}
		if r.PriceTier >= 1 && r.PriceTier <= 4 {
			priceSum += float64(r.PriceTier)
			priceCount++
		}
		for _, a := range AllAttributes {
			if r.Attributes[a] {
				attrCounts[a]++
			}
		}
		// Closed restaurants don't serve anyone: cuisine supply counts only
		// open records, so a zip of shuttered Thai spots still has a Thai gap.
		if r.Open {
			for _, c := range r.Cuisines {
				m.CuisineCounts[c]++
				if r.Stars > 0 {
					cuisineStar[c] += r.Stars
					cuisineRate[c]++
				}
			}
		}
	}

	m.City = mostCommonCity(cityCounts)
	if len(lats) > 0 {
		m.Centroid = &geo.Point{Lat: geo.Median(lats), Lon: geo.Median(lons)}
	}

	total := float64(m.TotalRestaurants)
	m.ClosureRate = float64(m.ClosedRestaurants) / total
	m.AvgReviews = float64(m.TotalReviews) / total
	if starCount > 0 {
		m.AvgStars = starSum / float64(starCount)
	}
	if priceCount > 0 {
		m.AvgPriceTier = priceSum / float64(priceCount)
	} else {
		m.AvgPriceTier = defaultPriceTier
	}
	for _, a := range AllAttributes {
		m.AttributeRates[a] = float64(attrCounts[a]) / total
	}
	for c, sum := range cuisineStar {
		m.CuisineAvgStars[c] = sum / float64(cuisineRate[c])
	}

	return m
}

// mostCommonCity picks the modal city name, breaking ties lexicographically
// so aggregation is deterministic.
func mostCommonCity(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	best, bestCount := "", 0
	for _, name := range names {
		if counts[name] > bestCount {
			best, bestCount = name, counts[name]
		}
	}
	return best
}

// AttributeRate returns the penetration rate of a, defaulting to 0 for an
// untracked attribute.
func (m *ZipMarket) AttributeRate(a Attribute) float64 {
	return m.AttributeRates[a]
}

// CuisineCount returns the number of open local restaurants tagged with c.
func (m *ZipMarket) CuisineCount(c Cuisine) int {
	return m.CuisineCounts[c]
}
