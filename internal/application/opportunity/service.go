// Package opportunity answers the market-facing read queries: ranked
// opportunity listings, per-zip breakdowns, and weakspot scans.  Everything
// here reads a single immutable snapshot; the service holds no state of its
// own.
package opportunity

import (
	"github.com/marketgap-io/marketgap/internal/application/analysis"
	"github.com/marketgap-io/marketgap/internal/domain/gap"
	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
	apperrors "github.com/marketgap-io/marketgap/pkg/errors"
)

// SnapshotProvider hands out the current snapshot.  Returns nil before the
// first successful build.
type SnapshotProvider interface {
	Current() *analysis.Snapshot
}

// Service serves opportunity queries over the current snapshot.
type Service struct {
	snapshots SnapshotProvider
	scorer    *gap.Scorer
	log       logging.Logger
}

// NewService returns a Service reading from snapshots and re-scoring
// cuisine-filtered queries with scorer.
func NewService(snapshots SnapshotProvider, scorer *gap.Scorer, log logging.Logger) *Service {
	return &Service{
		snapshots: snapshots,
		scorer:    scorer,
		log:       log.Named("opportunity"),
	}
}

func (s *Service) snapshot() (*analysis.Snapshot, error) {
	snap := s.snapshots.Current()
	if snap == nil {
		return nil, apperrors.New(apperrors.ErrCodeServiceUnavailable, "market snapshot not loaded yet")
	}
	return snap, nil
}

// ZipSummary is the listing-level view of one zip's opportunity.
type ZipSummary struct {
	Zip                  string           `json:"zip"`
	City                 string           `json:"city"`
	OpportunityScore     float64          `json:"opportunity_score"`
	Risk                 gap.RiskTier     `json:"risk"`
	ClosureRate          float64          `json:"closure_rate"`
	AvgStars             float64          `json:"avg_stars"`
	AvgPriceTier         float64          `json:"avg_price_tier"`
	TotalRestaurants     int              `json:"total_restaurants"`
	TotalReviews         int              `json:"total_reviews"`
	ActionableAttributes int              `json:"actionable_attributes"`
	TopCuisineGaps       []gap.CuisineGap `json:"top_cuisine_gaps"`

	// DistanceKM is set only when the listing was sorted by distance to a
	// target zip.
	DistanceKM *float64 `json:"distance_km,omitempty"`
}

// summaryGapCount is how many cuisine gaps a listing row carries.
const summaryGapCount = 3

func summarize(a *analysis.ZipAnalysis, score gap.OpportunityScore, gaps []gap.CuisineGap) ZipSummary {
	top := gaps
	if len(top) > summaryGapCount {
		top = top[:summaryGapCount]
	}
	return ZipSummary{
		Zip:                  a.Market.Zip,
		City:                 a.Market.City,
		OpportunityScore:     score.Score,
		Risk:                 score.Risk,
		ClosureRate:          a.Market.ClosureRate,
		AvgStars:             a.Market.AvgStars,
		AvgPriceTier:         a.Market.AvgPriceTier,
		TotalRestaurants:     a.Market.TotalRestaurants,
		TotalReviews:         a.Market.TotalReviews,
		ActionableAttributes: score.ActionableAttributes,
		TopCuisineGaps:       top,
	}
}
