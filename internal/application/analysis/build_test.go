package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketgap-io/marketgap/internal/domain/gap"
	"github.com/marketgap-io/marketgap/internal/domain/geo"
	"github.com/marketgap-io/marketgap/internal/domain/market"
	"github.com/marketgap-io/marketgap/internal/testutil"
)

func record(zip, city string, loc *geo.Point, cuisines []market.Cuisine, mut ...func(*market.BusinessRecord)) market.BusinessRecord {
	r := market.BusinessRecord{
		ID:          zip + "-" + city,
		Name:        "place in " + zip,
		Zip:         zip,
		City:        city,
		Location:    loc,
		Cuisines:    cuisines,
		Stars:       3.5,
		ReviewCount: 20,
		Open:        true,
		Attributes:  map[market.Attribute]bool{},
	}
	for _, m := range mut {
		m(&r)
	}
	return r
}

func pt(lat, lon float64) *geo.Point {
	return &geo.Point{Lat: lat, Lon: lon}
}

// fixtureRecords builds two neighboring zips (07030, 07302), one sparse zip
// (07099, below the minimum), and one zip without coordinates (07999).
func fixtureRecords() []market.BusinessRecord {
	var out []market.BusinessRecord
	for i := 0; i < 4; i++ {
		out = append(out, record("07030", "Hoboken", pt(40.744, -74.032), []market.Cuisine{market.CuisinePizza}))
	}
	for i := 0; i < 5; i++ {
		out = append(out, record("07302", "Jersey City", pt(40.718, -74.043), []market.Cuisine{market.CuisineThai}))
	}
	out = append(out, record("07099", "Kearny", pt(40.768, -74.145), []market.Cuisine{market.CuisineVegan}))
	for i := 0; i < 3; i++ {
		out = append(out, record("07999", "Nowhere", nil, []market.Cuisine{market.CuisineGreek}))
	}
	return out
}

func newTestBuilder() *Builder {
	return NewBuilder(DefaultConfig(), testutil.NewMockLogger())
}

func TestBuildPartitionsZips(t *testing.T) {
	snap, err := newTestBuilder().Build(fixtureRecords())
	require.NoError(t, err)

	assert.Len(t, snap.Markets, 4, "every zip seen stays visible")
	assert.Equal(t, []string{"07030", "07302"}, snap.Zips(), "only analyzable zips are scored")
	assert.Equal(t, 2, snap.TotalAnalyzed())

	_, ok := snap.Analysis("07099")
	assert.False(t, ok, "sparse zip excluded, not scored at zero")
	_, ok = snap.Analysis("07999")
	assert.False(t, ok, "zip without geo data excluded, not scored at zero")
	_, seen := snap.Markets["07999"]
	assert.True(t, seen)
}

func TestBuildComputesNeighborGaps(t *testing.T) {
	snap, err := newTestBuilder().Build(fixtureRecords())
	require.NoError(t, err)

	a, ok := snap.Analysis("07030")
	require.True(t, ok)
	assert.Equal(t, 1, a.NeighborCount)

	// 07302 has 5 Thai places; 07030 has none.
	g, ok := gap.GapFor(a.CuisineGaps, market.CuisineThai)
	require.True(t, ok)
	assert.Equal(t, 5, g.NeighborDemand)
	assert.Equal(t, 5.0, g.GapScore)
	assert.Equal(t, a.CuisineGaps[0].GapScore, a.Opportunity.TopGapScore)
}

func TestBuildSkipsInvalidZips(t *testing.T) {
	records := fixtureRecords()
	records = append(records, record("bad-zip", "X", nil, nil))

	snap, err := newTestBuilder().Build(records)
	require.NoError(t, err)
	_, seen := snap.Markets["bad-zip"]
	assert.False(t, seen)
	assert.Equal(t, len(records)-1, snap.RecordCount)
}

func TestBuildEmptyDataset(t *testing.T) {
	_, err := newTestBuilder().Build(nil)
	assert.Error(t, err)

	_, err = newTestBuilder().Build([]market.BusinessRecord{record("nope", "X", nil, nil)})
	assert.Error(t, err, "records without valid zips leave nothing to build")
}

func TestBuildDeterministicAcrossRuns(t *testing.T) {
	b := newTestBuilder()
	first, err := b.Build(fixtureRecords())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := b.Build(fixtureRecords())
		require.NoError(t, err)
		assert.Equal(t, first.Zips(), again.Zips())
		for _, zip := range first.Zips() {
			a1, _ := first.Analysis(zip)
			a2, _ := again.Analysis(zip)
			assert.Equal(t, a1.CuisineGaps, a2.CuisineGaps)
			assert.Equal(t, a1.AttributeGaps, a2.AttributeGaps)
			assert.Equal(t, a1.Opportunity, a2.Opportunity)
		}
		assert.NotEqual(t, first.BuildID, again.BuildID, "only identity differs")
	}
}

func TestAttributeGapFrequency(t *testing.T) {
	records := fixtureRecords()
	// Every Jersey City place delivers; Hoboken has no delivery at all, so
	// 07030 gets an actionable delivery gap.
	for i := range records {
		if records[i].Zip == "07302" {
			records[i].Attributes[market.AttrDelivery] = true
		}
	}
	snap, err := newTestBuilder().Build(records)
	require.NoError(t, err)

	assert.Equal(t, 1, snap.AttributeGapFrequency()[market.AttrDelivery])
}

func TestLocalRestaurantsSortedByReviews(t *testing.T) {
	records := fixtureRecords()
	records = append(records,
		record("07030", "Hoboken", pt(40.744, -74.032), nil, func(r *market.BusinessRecord) {
			r.Name = "busy"
			r.ReviewCount = 900
		}),
	)
	snap, err := newTestBuilder().Build(records)
	require.NoError(t, err)

	rs := snap.LocalRestaurants("07030")
	require.NotEmpty(t, rs)
	assert.Equal(t, "busy", rs[0].Name)
	for i := 1; i < len(rs); i++ {
		assert.GreaterOrEqual(t, rs[i-1].ReviewCount, rs[i].ReviewCount)
	}
}
