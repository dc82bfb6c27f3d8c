package recommendation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketgap-io/marketgap/internal/application/analysis"
	"github.com/marketgap-io/marketgap/internal/domain/gap"
	"github.com/marketgap-io/marketgap/internal/domain/geo"
	"github.com/marketgap-io/marketgap/internal/domain/market"
	"github.com/marketgap-io/marketgap/internal/testutil"
	apperrors "github.com/marketgap-io/marketgap/pkg/errors"
)

type stubProvider struct {
	snap *analysis.Snapshot
}

func (s stubProvider) Current() *analysis.Snapshot { return s.snap }

// fixtureMatcher builds two neighboring zips:
//
//	07030 Hoboken: 5 budget pizza places, one closed (medium risk), no
//	  service attributes, so it carries a thai gap plus byob/delivery/
//	  outdoor_seating attribute gaps.
//	07302 Jersey City: 5 thai places, all open (low risk), every service
//	  attribute offered, so it has no thai gap.
func fixtureMatcher(t *testing.T) *Matcher {
	t.Helper()
	var records []market.BusinessRecord
	add := func(zip, city string, loc geo.Point, mut func(*market.BusinessRecord)) {
		r := market.BusinessRecord{
			ID:          zip,
			Name:        "spot",
			Zip:         zip,
			City:        city,
			Location:    &loc,
			Stars:       3.5,
			ReviewCount: 40,
			Open:        true,
			Attributes:  map[market.Attribute]bool{},
		}
		mut(&r)
		records = append(records, r)
	}
	for i := 0; i < 5; i++ {
		add("07030", "Hoboken", geo.Point{Lat: 40.744, Lon: -74.032}, func(r *market.BusinessRecord) {
			r.Cuisines = []market.Cuisine{market.CuisinePizza}
			r.PriceTier = 1
		})
	}
	records[0].Open = false
	for i := 0; i < 5; i++ {
		add("07302", "Jersey City", geo.Point{Lat: 40.718, Lon: -74.043}, func(r *market.BusinessRecord) {
			r.Cuisines = []market.Cuisine{market.CuisineThai}
			r.Stars = 4.0
			r.ReviewCount = 100
			r.Attributes[market.AttrBYOB] = true
			r.Attributes[market.AttrDelivery] = true
			r.Attributes[market.AttrOutdoorSeating] = true
		})
	}

	builder := analysis.NewBuilder(analysis.DefaultConfig(), testutil.NewMockLogger())
	snap, err := builder.Build(records)
	require.NoError(t, err)
	return NewMatcher(stubProvider{snap}, builder.Scorer(), testutil.NewMockLogger())
}

func TestRecommendExactMatch(t *testing.T) {
	m := fixtureMatcher(t)

	res, err := m.Recommend(Concept{Cuisine: market.CuisineThai}, 0)
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "07030", res.Matches[0].Zip)
	assert.Equal(t, MatchExact, res.Matches[0].MatchType)
	assert.Empty(t, res.Matches[0].MatchIssues)
	assert.Empty(t, res.RelaxationApplied)
	assert.Equal(t, 2, res.TotalAnalyzed)
}

func TestRecommendExactExcludesRelaxed(t *testing.T) {
	m := fixtureMatcher(t)

	// Medium tolerance admits 07030 exactly; nothing relaxed may appear.
	res, err := m.Recommend(Concept{
		Cuisine:       market.CuisineThai,
		RiskTolerance: []gap.RiskTier{gap.RiskMedium},
	}, 0)
	require.NoError(t, err)
	require.NotEmpty(t, res.Matches)
	for _, match := range res.Matches {
		assert.Equal(t, MatchExact, match.MatchType)
	}
}

func TestRecommendRelaxesRiskBeforeReportingOtherIssues(t *testing.T) {
	m := fixtureMatcher(t)

	// Demanding concept in a market with no low-risk thai-gap zip: the
	// matcher walks the plan (attributes, then price, then risk) until the
	// medium-risk expansion admits 07030.  The zip satisfied every original
	// constraint except risk, so risk is its only issue.
	res, err := m.Recommend(Concept{
		Cuisine: market.CuisineThai,
		RequiredAttributes: []market.Attribute{
			market.AttrBYOB, market.AttrDelivery, market.AttrOutdoorSeating,
		},
		MaxPriceTier:  1,
		RiskTolerance: []gap.RiskTier{gap.RiskLow},
	}, 0)
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)

	match := res.Matches[0]
	assert.Equal(t, "07030", match.Zip)
	assert.Equal(t, MatchRelaxed, match.MatchType)
	assert.Equal(t, []string{"risk tolerance expanded to medium"}, match.MatchIssues)
	assert.Contains(t, res.RelaxationApplied, "risk tolerance expanded to medium")
}

func TestRecommendDeterministic(t *testing.T) {
	m := fixtureMatcher(t)
	concept := Concept{
		Cuisine:       market.CuisineThai,
		RiskTolerance: []gap.RiskTier{gap.RiskLow},
	}

	first, err := m.Recommend(concept, 0)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := m.Recommend(concept, 0)
		require.NoError(t, err)
		assert.Equal(t, first.Matches, again.Matches)
		assert.Equal(t, first.RelaxationApplied, again.RelaxationApplied)
	}
}

func TestRecommendTerminalEmpty(t *testing.T) {
	m := fixtureMatcher(t)

	// No zip has a vegan gap; no relaxation can invent one.
	res, err := m.Recommend(Concept{Cuisine: market.CuisineVegan}, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Matches, "never fabricate results")
	assert.Empty(t, res.Groups)
	assert.Equal(t, 2, res.TotalAnalyzed, "total_analyzed present even when empty")
}

func TestRecommendValidation(t *testing.T) {
	m := fixtureMatcher(t)

	_, err := m.Recommend(Concept{Cuisine: "Klingon"}, 0)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnknownCuisine))

	_, err = m.Recommend(Concept{}, 0)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidConcept))

	_, err = m.Recommend(Concept{Cuisine: market.CuisineThai, MaxPriceTier: 7}, 0)
	assert.True(t, apperrors.IsValidation(err))
}

func TestGroupingPreservesPerZipFields(t *testing.T) {
	matches := []Match{
		{Zip: "07030", City: "Hoboken", Score: 30, MatchType: MatchExact},
		{Zip: "07087", City: "Union City", Score: 20, MatchType: MatchRelaxed,
			MatchIssues: []string{"risk tolerance expanded to medium"}},
		{Zip: "07031", City: "Hoboken", Score: 10, MatchType: MatchExact},
	}

	groups := groupByCity(matches, 0)
	require.Len(t, groups, 2)

	hoboken := groups[0]
	assert.Equal(t, "Hoboken", hoboken.City)
	assert.Equal(t, "07030", hoboken.TopZip, "representative is the best-ranked zip")
	assert.Equal(t, 30.0, hoboken.TopScore)
	require.Len(t, hoboken.Zips, 2)
	assert.Equal(t, matches[0], hoboken.Zips[0], "per-zip fields survive grouping untouched")
	assert.Equal(t, matches[2], hoboken.Zips[1])

	union := groups[1]
	assert.Equal(t, MatchRelaxed, union.Zips[0].MatchType)
	assert.Equal(t, matches[1].MatchIssues, union.Zips[0].MatchIssues)
}

func TestGroupingLimitAppliesToGroups(t *testing.T) {
	matches := []Match{
		{Zip: "1", City: "A", Score: 3},
		{Zip: "2", City: "B", Score: 2},
		{Zip: "3", City: "A", Score: 1},
	}
	groups := groupByCity(matches, 1)
	require.Len(t, groups, 1)
	assert.Equal(t, "A", groups[0].City)
	assert.Len(t, groups[0].Zips, 2, "kept cities keep all their zips")
}

func TestBuildPlanOrder(t *testing.T) {
	orig := constraints{
		required:  []market.Attribute{market.AttrBYOB, market.AttrDelivery},
		maxPrice:  2,
		risk:      map[gap.RiskTier]bool{gap.RiskLow: true},
		minMarket: 100,
	}
	freq := map[market.Attribute]int{
		market.AttrDelivery: 9, // common gap, dropped first
		market.AttrBYOB:     1,
	}

	plan := buildPlan(orig, freq)
	var descs []string
	for _, s := range plan {
		descs = append(descs, s.description)
	}
	assert.Equal(t, []string{
		"required attribute delivery waived",
		"required attribute byob waived",
		"price ceiling raised to 3",
		"price ceiling raised to 4",
		"risk tolerance expanded to medium",
		"risk tolerance expanded to high",
		"market size floor lowered to 50",
		"market size floor waived",
	}, descs)
}

func TestBuildPlanOmitsNoOps(t *testing.T) {
	plan := buildPlan(constraints{}, nil)
	assert.Empty(t, plan, "an unconstrained concept has nothing to relax")
}
