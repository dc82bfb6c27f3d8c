package gap

import (
	"sort"

	"github.com/marketgap-io/marketgap/internal/domain/market"
)

// CuisineGap measures unmet demand for one cuisine in one zip: how much of
// the cuisine exists in the surrounding zips versus locally, dampened by the
// quality of the local incumbents.
type CuisineGap struct {
	Cuisine        market.Cuisine `json:"cuisine"`
	GapScore       float64        `json:"gap_score"`
	LocalCount     int            `json:"local_count"`
	NeighborDemand int            `json:"neighbor_demand"`
	LocalAvgStars  float64        `json:"local_avg_stars"`
}

// AttributeGap measures how far local penetration of a service attribute
// trails the average penetration across the zip's neighbors.
type AttributeGap struct {
	Attribute       market.Attribute `json:"attribute"`
	LocalRate       float64          `json:"local_rate"`
	NeighborAvgRate float64          `json:"neighbor_avg"`
	Gap             float64          `json:"gap"`
}

// Scorer computes gap measures under a fixed Policy.
type Scorer struct {
	policy Policy
}

// NewScorer returns a Scorer using the given policy.
func NewScorer(p Policy) *Scorer {
	return &Scorer{policy: p}
}

// Policy returns the scorer's policy constants.
func (s *Scorer) Policy() Policy {
	return s.policy
}

// score applies the gap formula:
//
//	gap = neighbor_demand / (local_count × local_avg_stars + 1)
//
// The denominator is dampened by local quality on purpose: a poorly rated
// incumbent barely suppresses the score, because poor local execution is not
// satisfied demand.
func score(neighborDemand, localCount int, localAvgStars float64) float64 {
	return float64(neighborDemand) / (float64(localCount)*localAvgStars + 1)
}

// CuisineGaps returns the zip's cuisine gaps, sorted by gap score descending
// with deterministic tie-breaks (neighbor demand descending, then cuisine
// name ascending).  Gaps with neighbor demand below the policy minimum, or a
// score below the policy floor, are not emitted; the list is capped at the
// policy's TopCuisineGaps.
func (s *Scorer) CuisineGaps(local *market.ZipMarket, neighbors []*market.ZipMarket) []CuisineGap {
	demand := make(map[market.Cuisine]int)
	for _, n := range neighbors {
		for c, cnt := range n.CuisineCounts {
			demand[c] += cnt
		}
	}

	var gaps []CuisineGap
	for _, c := range market.AllCuisines {
		nd := demand[c]
		if nd < s.policy.MinNeighborDemand {
			// A zero-demand gap is undefined, not zero; it is simply absent.
			continue
		}
		lc := local.CuisineCount(c)
		stars := local.CuisineAvgStars[c]
		g := score(nd, lc, stars)
		if g < s.policy.MinGapScore {
			continue
		}
		gaps = append(gaps, CuisineGap{
			Cuisine:        c,
			GapScore:       g,
			LocalCount:     lc,
			NeighborDemand: nd,
			LocalAvgStars:  stars,
		})
	}

	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].GapScore != gaps[j].GapScore {
			return gaps[i].GapScore > gaps[j].GapScore
		}
		if gaps[i].NeighborDemand != gaps[j].NeighborDemand {
			return gaps[i].NeighborDemand > gaps[j].NeighborDemand
		}
		return gaps[i].Cuisine < gaps[j].Cuisine
	})

	if len(gaps) > s.policy.TopCuisineGaps {
		gaps = gaps[:s.policy.TopCuisineGaps]
	}
	return gaps
}

// AttributeGaps returns the zip's actionable attribute gaps, sorted by gap
// descending then attribute name ascending.  The neighbor side is the
// unweighted mean of the neighbor zips' penetration rates — attributes are
// rates, not counts, so summing them would overweight large neighbors.
func (s *Scorer) AttributeGaps(local *market.ZipMarket, neighbors []*market.ZipMarket) []AttributeGap {
	if len(neighbors) == 0 {
		return nil
	}

	var gaps []AttributeGap
	for _, a := range market.AllAttributes {
		var sum float64
		for _, n := range neighbors {
			sum += n.AttributeRate(a)
		}
		neighborAvg := sum / float64(len(neighbors))
		localRate := local.AttributeRate(a)

		g := neighborAvg - localRate
		if g < 0 {
			g = 0
		}
		if g <= s.policy.AttributeGapThreshold {
			continue
		}
		gaps = append(gaps, AttributeGap{
			Attribute:       a,
			LocalRate:       localRate,
			NeighborAvgRate: neighborAvg,
			Gap:             g,
		})
	}

	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].Gap != gaps[j].Gap {
			return gaps[i].Gap > gaps[j].Gap
		}
		return gaps[i].Attribute < gaps[j].Attribute
	})
	return gaps
}

// GapFor returns the gap for a specific cuisine from a sorted gap list.
func GapFor(gaps []CuisineGap, c market.Cuisine) (CuisineGap, bool) {
	for _, g := range gaps {
		if g.Cuisine == c {
			return g, true
		}
	}
	return CuisineGap{}, false
}
