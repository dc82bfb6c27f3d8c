package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketgap-io/marketgap/internal/domain/geo"
)

func rec(name, city string, open bool, stars float64, reviews int, mut ...func(*BusinessRecord)) BusinessRecord {
	r := BusinessRecord{
		ID:          name,
		Name:        name,
		Zip:         "07030",
		City:        city,
		Stars:       stars,
		ReviewCount: reviews,
		Open:        open,
		Attributes:  map[Attribute]bool{},
	}
	for _, m := range mut {
		m(&r)
	}
	return r
}

func TestAggregateCountsAndRates(t *testing.T) {
	records := []BusinessRecord{
		rec("a", "Hoboken", true, 4.0, 100, func(r *BusinessRecord) {
			r.Cuisines = []Cuisine{CuisineItalian}
			r.Attributes[AttrDelivery] = true
			r.PriceTier = 2
		}),
		rec("b", "Hoboken", true, 3.0, 50, func(r *BusinessRecord) {
			r.Cuisines = []Cuisine{CuisineItalian, CuisinePizza}
			r.PriceTier = 1
		}),
		rec("c", "Hoboken", false, 5.0, 10, func(r *BusinessRecord) {
			r.Attributes[AttrDelivery] = true
			r.PriceTier = 3
		}),
		rec("d", "Jersey City", false, 0, 0),
	}

	m := Aggregate("07030", records)

	assert.Equal(t, "07030", m.Zip)
	assert.Equal(t, "Hoboken", m.City, "modal city wins")
	assert.Equal(t, 4, m.TotalRestaurants)
	assert.Equal(t, 2, m.OpenRestaurants)
	assert.Equal(t, 2, m.ClosedRestaurants)
	assert.Equal(t, 0.5, m.ClosureRate)
	assert.GreaterOrEqual(t, m.ClosureRate, 0.0)
	assert.LessOrEqual(t, m.ClosureRate, 1.0)

	assert.Equal(t, 160, m.TotalReviews)
	assert.Equal(t, 40.0, m.AvgReviews)
	assert.InDelta(t, 4.0, m.AvgStars, 1e-9, "unrated records excluded from the star mean")
	assert.InDelta(t, 2.0, m.AvgPriceTier, 1e-9)

	assert.Equal(t, 2, m.CuisineCount(CuisineItalian))
	assert.Equal(t, 1, m.CuisineCount(CuisinePizza))
	assert.InDelta(t, 3.5, m.CuisineAvgStars[CuisineItalian], 1e-9)

	assert.Equal(t, 0.5, m.AttributeRate(AttrDelivery))
	assert.Equal(t, 0.0, m.AttributeRate(AttrBYOB), "tracked attributes always have an entry")
}

func TestAggregateCuisineSupplyCountsOpenOnly(t *testing.T) {
	records := []BusinessRecord{
		rec("a", "Hoboken", true, 4.0, 50, func(r *BusinessRecord) {
			r.Cuisines = []Cuisine{CuisineThai}
		}),
		rec("b", "Hoboken", false, 2.5, 30, func(r *BusinessRecord) {
			r.Cuisines = []Cuisine{CuisineThai}
		}),
		rec("c", "Hoboken", false, 1.5, 10, func(r *BusinessRecord) {
			r.Cuisines = []Cuisine{CuisineThai}
		}),
	}

	m := Aggregate("07030", records)

	assert.Equal(t, 1, m.CuisineCount(CuisineThai),
		"shuttered incumbents don't count as supply")
	assert.InDelta(t, 4.0, m.CuisineAvgStars[CuisineThai], 1e-9,
		"closed restaurants' ratings don't dilute the incumbent quality signal")
	assert.Equal(t, 3, m.TotalRestaurants, "closures still count toward the market's size and churn")
}

func TestAggregateEmptyZipRetained(t *testing.T) {
	m := Aggregate("07999", nil)

	require.NotNil(t, m)
	assert.Equal(t, 0, m.TotalRestaurants)
	assert.Equal(t, 0.0, m.ClosureRate, "no division by zero")
	assert.Equal(t, 0.0, m.AvgStars)
	assert.Equal(t, 2.0, m.AvgPriceTier, "unknown price defaults to mid-tier")
	assert.Nil(t, m.Centroid)
	for _, a := range AllAttributes {
		assert.Equal(t, 0.0, m.AttributeRate(a))
	}
}

func TestAggregateCentroidIsMedian(t *testing.T) {
	records := []BusinessRecord{
		rec("a", "X", true, 4, 1, func(r *BusinessRecord) {
			r.Location = &geo.Point{Lat: 40.0, Lon: -74.0}
		}),
		rec("b", "X", true, 4, 1, func(r *BusinessRecord) {
			r.Location = &geo.Point{Lat: 41.0, Lon: -74.5}
		}),
		rec("c", "X", true, 4, 1, func(r *BusinessRecord) {
			r.Location = &geo.Point{Lat: 49.0, Lon: -73.0}
		}),
		rec("outlier-no-geo", "X", true, 4, 1),
	}

	m := Aggregate("07030", records)
	require.NotNil(t, m.Centroid)
	assert.Equal(t, 41.0, m.Centroid.Lat, "median shrugs off outliers")
	assert.Equal(t, -74.0, m.Centroid.Lon)
}

func TestAggregateNoGeoDataDistinctFromOrigin(t *testing.T) {
	m := Aggregate("07030", []BusinessRecord{rec("a", "X", true, 4, 1)})
	assert.Nil(t, m.Centroid, "missing coordinates must not become lat/lon 0,0")
}

func TestAggregateModalCityTieBreaksLexicographically(t *testing.T) {
	records := []BusinessRecord{
		rec("a", "Bayonne", true, 4, 1),
		rec("b", "Avalon", true, 4, 1),
	}
	m := Aggregate("07030", records)
	assert.Equal(t, "Avalon", m.City)
}

func TestAggregateIgnoresOutOfRangePriceTiers(t *testing.T) {
	records := []BusinessRecord{
		rec("a", "X", true, 4, 1, func(r *BusinessRecord) { r.PriceTier = 9 }),
		rec("b", "X", true, 4, 1),
	}
	m := Aggregate("07030", records)
	assert.Equal(t, 2.0, m.AvgPriceTier)
}
