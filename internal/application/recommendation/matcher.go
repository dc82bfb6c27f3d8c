package recommendation

import (
	"sort"

	"github.com/google/uuid"

	"github.com/marketgap-io/marketgap/internal/application/analysis"
	"github.com/marketgap-io/marketgap/internal/application/opportunity"
	"github.com/marketgap-io/marketgap/internal/domain/gap"
	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
	apperrors "github.com/marketgap-io/marketgap/pkg/errors"
)

// MatchType says whether a zip satisfied the concept as given or only after
// relaxation.
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchRelaxed MatchType = "relaxed"
)

// Match is one recommended zip.
type Match struct {
	Zip          string         `json:"zip"`
	City         string         `json:"city"`
	Score        float64        `json:"score"`
	Risk         gap.RiskTier   `json:"risk"`
	ClosureRate  float64        `json:"closure_rate"`
	AvgPriceTier float64        `json:"avg_price_tier"`
	TotalReviews int            `json:"total_reviews"`
	CuisineGap   gap.CuisineGap `json:"cuisine_gap"`
	MatchType    MatchType      `json:"match_type"`
	MatchIssues  []string       `json:"match_issues,omitempty"`
}

// Result is a full recommendation response.  TotalAnalyzed is always the
// number of zips considered, even when nothing matched.
type Result struct {
	TraceID           uuid.UUID   `json:"trace_id"`
	Matches           []Match     `json:"matches"`
	Groups            []CityGroup `json:"recommendations"`
	TotalAnalyzed     int         `json:"total_analyzed"`
	RelaxationApplied []string    `json:"relaxation_applied,omitempty"`
}

// Matcher runs the constraint search.
type Matcher struct {
	snapshots opportunity.SnapshotProvider
	scorer    *gap.Scorer
	log       logging.Logger
}

// NewMatcher returns a Matcher reading from snapshots.
func NewMatcher(snapshots opportunity.SnapshotProvider, scorer *gap.Scorer, log logging.Logger) *Matcher {
	return &Matcher{
		snapshots: snapshots,
		scorer:    scorer,
		log:       log.Named("recommendation"),
	}
}

// Recommend matches the concept against every analyzable zip.  Exact matching
// runs first; relaxation only triggers on an empty exact set, applies steps
// cumulatively in plan order, and stops at the first step that admits any
// zip.  A limit > 0 caps the number of city groups (per-zip matches within a
// kept city are all kept).
func (m *Matcher) Recommend(c Concept, limit int) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	snap := m.snapshots.Current()
	if snap == nil {
		return nil, apperrors.New(apperrors.ErrCodeServiceUnavailable, "market snapshot not loaded yet")
	}

	res := &Result{
		TraceID:       uuid.New(),
		TotalAnalyzed: snap.TotalAnalyzed(),
	}
	orig := c.constraints()

	matches := m.filter(snap, c, orig)
	if len(matches) > 0 {
		for i := range matches {
			matches[i].MatchType = MatchExact
		}
		m.finish(res, matches, limit)
		return res, nil
	}

	plan := buildPlan(orig, snap.AttributeGapFrequency())
	cur := orig
	for i, st := range plan {
		cur = st.apply(cur)
		matches = m.filter(snap, c, cur)
		if len(matches) == 0 {
			continue
		}
		applied := plan[:i+1]
		for j := range matches {
			matches[j].MatchType = MatchRelaxed
			matches[j].MatchIssues = issuesFor(applied, orig, snap, matches[j].Zip)
		}
		for _, a := range applied {
			res.RelaxationApplied = append(res.RelaxationApplied, a.description)
		}
		m.log.Info("concept matched after relaxation",
			logging.String("trace_id", res.TraceID.String()),
			logging.String("cuisine", string(c.Cuisine)),
			logging.Int("steps", i+1),
			logging.Int("matches", len(matches)),
		)
		m.finish(res, matches, limit)
		return res, nil
	}

	// Terminal empty: never fabricate results.
	m.finish(res, nil, limit)
	return res, nil
}

// filter evaluates the constraint set against every analyzable zip and ranks
// survivors by concept score descending, closure rate ascending, zip
// ascending.
func (m *Matcher) filter(snap *analysis.Snapshot, c Concept, cs constraints) []Match {
	var out []Match
	for _, zip := range snap.Zips() {
		a, _ := snap.Analysis(zip)

		g, ok := gap.GapFor(a.CuisineGaps, c.Cuisine)
		if !ok {
			continue
		}
		if !constraintsAdmit(cs, a) {
			continue
		}

		score := m.scorer.ScoreForCuisine(a.Market, a.CuisineGaps, a.AttributeGaps, c.Cuisine)
		out = append(out, Match{
			Zip:          zip,
			City:         a.Market.City,
			Score:        score.Score,
			Risk:         score.Risk,
			ClosureRate:  a.Market.ClosureRate,
			AvgPriceTier: a.Market.AvgPriceTier,
			TotalReviews: a.Market.TotalReviews,
			CuisineGap:   g,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].ClosureRate != out[j].ClosureRate {
			return out[i].ClosureRate < out[j].ClosureRate
		}
		return out[i].Zip < out[j].Zip
	})
	return out
}

func constraintsAdmit(cs constraints, a *analysis.ZipAnalysis) bool {
	for _, attr := range cs.required {
		if !hasAttributeGap(a, attr) {
			return false
		}
	}
	if cs.maxPrice > 0 && a.Market.AvgPriceTier > float64(cs.maxPrice) {
		return false
	}
	if !cs.allowsRisk(a.Opportunity.Risk) {
		return false
	}
	if a.Market.TotalReviews < cs.minMarket {
		return false
	}
	return true
}

// issuesFor names, in plan order, the applied relaxations this particular
// zip needed against the original constraints.
func issuesFor(applied []step, orig constraints, snap *analysis.Snapshot, zip string) []string {
	a, _ := snap.Analysis(zip)
	var issues []string
	for _, st := range applied {
		if msg, needed := st.issue(orig, a); needed {
			issues = append(issues, msg)
		}
	}
	return issues
}

func (m *Matcher) finish(res *Result, matches []Match, limit int) {
	res.Matches = matches
	res.Groups = groupByCity(matches, limit)
}
