package opportunity

import (
	"sort"

	"github.com/marketgap-io/marketgap/internal/domain/gap"
	"github.com/marketgap-io/marketgap/internal/domain/market"
)

// DefaultMinClosureRate is the HTTP-level default closure floor; the service
// itself treats zero as "no floor" so callers can ask for an unfiltered scan.
const DefaultMinClosureRate = 0.25

// WeakspotParams filter the frustrated-demand scan.  MinClosureRate zero
// means no floor; zero values of the star bound and existing-count mean the
// documented defaults, not "no restaurants".
type WeakspotParams struct {
	// Cuisine narrows the scan to zips where this cuisine's incumbents look
	// beatable.
	Cuisine *market.Cuisine

	MinClosureRate float64 // 0 = no floor (HTTP default is DefaultMinClosureRate)
	MinAvgStars    float64 // default 0
	MaxAvgStars    float64 // default 5
	MinExisting    int     // default 1
	Limit          int     // default DefaultListLimit
}

func (p *WeakspotParams) applyDefaults() {
	if p.MaxAvgStars == 0 {
		p.MaxAvgStars = 5
	}
	if p.MinExisting == 0 {
		p.MinExisting = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultListLimit
	}
}

// Weakspot is a zip where existing demand is being served badly: real
// competitors, high churn, and (when a cuisine is given) a gap big enough
// that the incumbents count as weak.
type Weakspot struct {
	ZipSummary
	WeakCompetitorSignal bool `json:"weak_competitor_signal"`

	// CuisineGap is the gap for the requested cuisine, present only on
	// cuisine-scoped scans.
	CuisineGap *gap.CuisineGap `json:"cuisine_gap,omitempty"`
}

// Weakspots scans for markets with frustrated demand.  Ordering is
// closure_rate × opportunity_score descending (churn-weighted opportunity),
// zip ascending on ties.
func (s *Service) Weakspots(p WeakspotParams) ([]Weakspot, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	p.applyDefaults()
	minGap := s.scorer.Policy().WeakCompetitorMinGap

	var out []Weakspot
	for _, zip := range snap.Zips() {
		a, _ := snap.Analysis(zip)
		m := a.Market

		if m.ClosureRate < p.MinClosureRate {
			continue
		}
		if m.AvgStars < p.MinAvgStars || m.AvgStars > p.MaxAvgStars {
			continue
		}

		w := Weakspot{ZipSummary: summarize(a, a.Opportunity, a.CuisineGaps)}
		if p.Cuisine != nil {
			if m.CuisineCount(*p.Cuisine) < p.MinExisting {
				continue
			}
			g, ok := gap.GapFor(a.CuisineGaps, *p.Cuisine)
			if !ok {
				continue
			}
			w.CuisineGap = &g
			w.WeakCompetitorSignal = g.LocalCount > 0 && g.GapScore > minGap
		} else {
			if m.TotalRestaurants < p.MinExisting {
				continue
			}
			w.WeakCompetitorSignal = hasWeakCompetitor(a.CuisineGaps, minGap)
		}
		out = append(out, w)
	}

	sort.Slice(out, func(i, j int) bool {
		wi := out[i].ClosureRate * out[i].OpportunityScore
		wj := out[j].ClosureRate * out[j].OpportunityScore
		if wi != wj {
			return wi > wj
		}
		return out[i].Zip < out[j].Zip
	})
	if len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out, nil
}

// hasWeakCompetitor reports whether any cuisine gap shows contested-but-weak
// local competition.
func hasWeakCompetitor(gaps []gap.CuisineGap, minGap float64) bool {
	for _, g := range gaps {
		if g.LocalCount > 0 && g.GapScore > minGap {
			return true
		}
	}
	return false
}
