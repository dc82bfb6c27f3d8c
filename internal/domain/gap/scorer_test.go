package gap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketgap-io/marketgap/internal/domain/market"
)

func zipMarket(mut ...func(*market.ZipMarket)) *market.ZipMarket {
	m := &market.ZipMarket{
		Zip:             "07030",
		CuisineCounts:   map[market.Cuisine]int{},
		CuisineAvgStars: map[market.Cuisine]float64{},
		AttributeRates:  map[market.Attribute]float64{},
	}
	for _, f := range mut {
		f(m)
	}
	return m
}

func neighborWithThai(count int) *market.ZipMarket {
	return zipMarket(func(m *market.ZipMarket) {
		m.CuisineCounts[market.CuisineThai] = count
	})
}

func TestCuisineGapZeroLocalCompetition(t *testing.T) {
	// 3 neighbor zips with 10, 8, 2 Thai restaurants and no local Thai:
	// gap = 20 / (0*stars + 1) = 20.
	s := NewScorer(Default())
	local := zipMarket()
	neighbors := []*market.ZipMarket{
		neighborWithThai(10), neighborWithThai(8), neighborWithThai(2),
	}

	gaps := s.CuisineGaps(local, neighbors)
	g, ok := GapFor(gaps, market.CuisineThai)
	require.True(t, ok)
	assert.Equal(t, 20.0, g.GapScore)
	assert.Equal(t, 20, g.NeighborDemand)
	assert.Equal(t, 0, g.LocalCount)
}

func TestCuisineGapMonotonicity(t *testing.T) {
	s := NewScorer(Default())

	// Non-decreasing in neighbor demand.
	prev := -1.0
	for demand := 2; demand <= 40; demand += 2 {
		local := zipMarket(func(m *market.ZipMarket) {
			m.CuisineCounts[market.CuisineThai] = 2
			m.CuisineAvgStars[market.CuisineThai] = 3.5
		})
		gaps := s.CuisineGaps(local, []*market.ZipMarket{neighborWithThai(demand)})
		g, ok := GapFor(gaps, market.CuisineThai)
		if !ok {
			continue // below the gap floor
		}
		assert.GreaterOrEqual(t, g.GapScore, prev)
		prev = g.GapScore
	}

	// Non-increasing in local count.
	prev = 1e9
	for localCount := 0; localCount <= 10; localCount++ {
		local := zipMarket(func(m *market.ZipMarket) {
			m.CuisineCounts[market.CuisineThai] = localCount
			m.CuisineAvgStars[market.CuisineThai] = 3.5
		})
		gaps := s.CuisineGaps(local, []*market.ZipMarket{neighborWithThai(30)})
		g, ok := GapFor(gaps, market.CuisineThai)
		if !ok {
			break
		}
		assert.LessOrEqual(t, g.GapScore, prev)
		prev = g.GapScore
	}
}

func TestCuisineGapPoorIncumbentBarelySuppresses(t *testing.T) {
	s := NewScorer(Default())
	weak := zipMarket(func(m *market.ZipMarket) {
		m.CuisineCounts[market.CuisineThai] = 1
		m.CuisineAvgStars[market.CuisineThai] = 1.5
	})
	strong := zipMarket(func(m *market.ZipMarket) {
		m.CuisineCounts[market.CuisineThai] = 1
		m.CuisineAvgStars[market.CuisineThai] = 5.0
	})
	neighbors := []*market.ZipMarket{neighborWithThai(20)}

	gw, _ := GapFor(s.CuisineGaps(weak, neighbors), market.CuisineThai)
	gs, _ := GapFor(s.CuisineGaps(strong, neighbors), market.CuisineThai)
	assert.Greater(t, gw.GapScore, gs.GapScore,
		"a poorly rated incumbent suppresses the gap less than a strong one")
}

func TestCuisineGapFilters(t *testing.T) {
	s := NewScorer(Default())
	local := zipMarket()

	// Demand below the minimum is absent, not zero.
	gaps := s.CuisineGaps(local, []*market.ZipMarket{neighborWithThai(1)})
	_, ok := GapFor(gaps, market.CuisineThai)
	assert.False(t, ok)

	// No neighbors at all yields no gaps.
	assert.Empty(t, s.CuisineGaps(local, nil))
}

func TestCuisineGapOrderingAndCap(t *testing.T) {
	s := NewScorer(Default())
	local := zipMarket()
	n := zipMarket(func(m *market.ZipMarket) {
		for i, c := range market.AllCuisines {
			m.CuisineCounts[c] = 2 + i
		}
	})

	gaps := s.CuisineGaps(local, []*market.ZipMarket{n})
	assert.Len(t, gaps, Default().TopCuisineGaps)
	for i := 1; i < len(gaps); i++ {
		assert.GreaterOrEqual(t, gaps[i-1].GapScore, gaps[i].GapScore)
	}
}

func TestCuisineGapDeterministicTieBreak(t *testing.T) {
	s := NewScorer(Default())
	local := zipMarket()
	n := zipMarket(func(m *market.ZipMarket) {
		m.CuisineCounts[market.CuisineVegan] = 4
		m.CuisineCounts[market.CuisineGreek] = 4
	})

	for i := 0; i < 5; i++ {
		gaps := s.CuisineGaps(local, []*market.ZipMarket{n})
		require.Len(t, gaps, 2)
		assert.Equal(t, market.CuisineGreek, gaps[0].Cuisine, "equal score and demand break by name")
		assert.Equal(t, market.CuisineVegan, gaps[1].Cuisine)
	}
}

func TestAttributeGaps(t *testing.T) {
	s := NewScorer(Default())
	local := zipMarket(func(m *market.ZipMarket) {
		m.AttributeRates[market.AttrDelivery] = 0.10
		m.AttributeRates[market.AttrBYOB] = 0.50
	})
	n1 := zipMarket(func(m *market.ZipMarket) {
		m.AttributeRates[market.AttrDelivery] = 0.60
		m.AttributeRates[market.AttrBYOB] = 0.40
	})
	n2 := zipMarket(func(m *market.ZipMarket) {
		m.AttributeRates[market.AttrDelivery] = 0.40
	})

	gaps := s.AttributeGaps(local, []*market.ZipMarket{n1, n2})
	require.Len(t, gaps, 1, "only actionable gaps surface")
	g := gaps[0]
	assert.Equal(t, market.AttrDelivery, g.Attribute)
	assert.InDelta(t, 0.50, g.NeighborAvgRate, 1e-9, "neighbor side is the mean of rates")
	assert.InDelta(t, 0.40, g.Gap, 1e-9)
}

func TestAttributeGapsNoNeighbors(t *testing.T) {
	s := NewScorer(Default())
	assert.Nil(t, s.AttributeGaps(zipMarket(), nil),
		"no neighbor data is nil, not a zero-gap list")
}

func TestAttributeGapClampsAtZero(t *testing.T) {
	s := NewScorer(Default())
	local := zipMarket(func(m *market.ZipMarket) {
		m.AttributeRates[market.AttrWifi] = 0.90
	})
	n := zipMarket(func(m *market.ZipMarket) {
		m.AttributeRates[market.AttrWifi] = 0.10
	})
	assert.Empty(t, s.AttributeGaps(local, []*market.ZipMarket{n}),
		"local surplus is not a gap")
}
