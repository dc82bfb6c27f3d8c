package survival

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/marketgap-io/marketgap/internal/application/opportunity"
	"github.com/marketgap-io/marketgap/internal/domain/gap"
	"github.com/marketgap-io/marketgap/internal/domain/market"
	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
	apperrors "github.com/marketgap-io/marketgap/pkg/errors"
)

// Factor is one (feature, contribution) pair from the model, most influential
// first.
type Factor struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
}

// Estimate is the raw model output.
type Estimate struct {
	Probability float64  `json:"probability"`
	Factors     []Factor `json:"factors"`
}

// Estimator is the external survival model.  Calls are context-bounded and
// never retried; a failure degrades the response instead of failing it.
type Estimator interface {
	Predict(ctx context.Context, features map[string]float64) (Estimate, error)
}

// Cache is the prediction cache seam.  Values are opaque bytes; the loader
// runs at most once per key across concurrent callers.
type Cache interface {
	GetOrCompute(ctx context.Context, key string, loader func() ([]byte, error)) ([]byte, error)
}

// Signal labels for an interpreted probability.
const (
	SignalHigh    = "high"
	SignalMedium  = "medium"
	SignalLow     = "low"
	SignalVeryLow = "very_low"
)

// MarketContext is the zip-side summary returned with every prediction, even
// degraded ones.
type MarketContext struct {
	Zip              string       `json:"zip"`
	City             string       `json:"city"`
	Risk             gap.RiskTier `json:"risk"`
	ClosureRate      float64      `json:"closure_rate"`
	AvgStars         float64      `json:"avg_stars"`
	TotalRestaurants int          `json:"total_restaurants"`
	TotalReviews     int          `json:"total_reviews"`
	OpportunityScore float64      `json:"opportunity_score"`
}

// Prediction is the full response for one concept-in-zip question.
// Probability is nil exactly when Degraded is true.
type Prediction struct {
	Probability    *float64        `json:"survival_probability"`
	Signal         string          `json:"signal,omitempty"`
	Degraded       bool            `json:"degraded"`
	Factors        []Factor        `json:"factors,omitempty"`
	MarketContext  MarketContext   `json:"market_context"`
	CuisineGap     *gap.CuisineGap `json:"cuisine_gap,omitempty"`
	ConceptApplied ConceptProfile  `json:"concept_applied"`
}

// Config holds the interpretation thresholds.
type Config struct {
	// Threshold is the model's decision boundary; at or above it the signal
	// is at least medium.
	Threshold float64
}

// DefaultConfig returns the reference interpretation thresholds.
func DefaultConfig() Config {
	return Config{Threshold: 0.5}
}

// Service answers survival predictions over the current snapshot.
type Service struct {
	snapshots opportunity.SnapshotProvider
	estimator Estimator
	cache     Cache
	cfg       Config
	log       logging.Logger
}

// NewService wires the prediction path.  cache may be nil to disable caching.
func NewService(snapshots opportunity.SnapshotProvider, estimator Estimator, cache Cache, cfg Config, log logging.Logger) *Service {
	return &Service{
		snapshots: snapshots,
		estimator: estimator,
		cache:     cache,
		cfg:       cfg,
		log:       log.Named("survival"),
	}
}

// Predict scores a concept placed in a zip.  Market context and the cuisine
// gap are always present; when the estimator fails or returns garbage the
// response is degraded (nil probability, no factors) rather than an error.
func (s *Service) Predict(ctx context.Context, zip string, profile ConceptProfile) (*Prediction, error) {
	if !market.IsValidZip(zip) {
		return nil, apperrors.NewValidation(fmt.Sprintf("malformed zip code %q", zip))
	}
	if _, err := market.ParseCuisine(string(profile.Cuisine)); err != nil {
		return nil, err
	}
	profile.applyDefaults()
	if profile.PriceTier < 1 || profile.PriceTier > 4 {
		return nil, apperrors.NewValidation(fmt.Sprintf("price tier %d out of range 1-4", profile.PriceTier))
	}

	snap := s.snapshots.Current()
	if snap == nil {
		return nil, apperrors.New(apperrors.ErrCodeServiceUnavailable, "market snapshot not loaded yet")
	}
	a, ok := snap.Analysis(zip)
	if !ok {
		return nil, apperrors.NewZipNotFound(zip)
	}

	out := &Prediction{
		MarketContext: MarketContext{
			Zip:              a.Market.Zip,
			City:             a.Market.City,
			Risk:             a.Opportunity.Risk,
			ClosureRate:      a.Market.ClosureRate,
			AvgStars:         a.Market.AvgStars,
			TotalRestaurants: a.Market.TotalRestaurants,
			TotalReviews:     a.Market.TotalReviews,
			OpportunityScore: a.Opportunity.Score,
		},
		ConceptApplied: profile,
	}
	if g, found := gap.GapFor(a.CuisineGaps, profile.Cuisine); found {
		out.CuisineGap = &g
	}

	est, err := s.estimate(ctx, snap.BuildID.String(), zip, profile, a.Market)
	if err != nil {
		s.log.Warn("survival estimator unavailable, degrading response",
			logging.String("zip", zip),
			logging.String("cuisine", string(profile.Cuisine)),
			logging.Err(err),
		)
		out.Degraded = true
		return out, nil
	}

	sort.Slice(est.Factors, func(i, j int) bool {
		ai, aj := abs(est.Factors[i].Contribution), abs(est.Factors[j].Contribution)
		if ai != aj {
			return ai > aj
		}
		return est.Factors[i].Feature < est.Factors[j].Feature
	})

	p := est.Probability
	out.Probability = &p
	out.Signal = s.signal(p)
	out.Factors = est.Factors
	return out, nil
}

// estimate runs the model through the cache when one is configured.
func (s *Service) estimate(ctx context.Context, buildID, zip string, profile ConceptProfile, m *market.ZipMarket) (Estimate, error) {
	features := BuildFeatures(m, profile)
	if s.cache == nil {
		return s.estimator.Predict(ctx, features)
	}

	raw, err := s.cache.GetOrCompute(ctx, cacheKey(buildID, zip, profile), func() ([]byte, error) {
		est, err := s.estimator.Predict(ctx, features)
		if err != nil {
			return nil, err
		}
		return json.Marshal(est)
	})
	if err != nil {
		return Estimate{}, err
	}
	var est Estimate
	if err := json.Unmarshal(raw, &est); err != nil {
		return Estimate{}, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "decode cached estimate")
	}
	return est, nil
}

// cacheKey is stable across identical requests: build ID plus every profile
// field that feeds the feature vector, attributes in fixed order.
func cacheKey(buildID, zip string, p ConceptProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "predict:%s:%s:%s:%d:%d:", buildID, zip, p.Cuisine, p.PriceTier, p.Noise)
	for _, a := range market.AllAttributes {
		if p.Attributes[a] {
			b.WriteString(string(a))
			b.WriteByte(',')
		}
	}
	return b.String()
}

// signal interprets a probability with the model's published cutpoints.
func (s *Service) signal(p float64) string {
	switch {
	case p >= 0.75:
		return SignalHigh
	case p >= s.cfg.Threshold:
		return SignalMedium
	case p >= 0.40:
		return SignalLow
	default:
		return SignalVeryLow
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
