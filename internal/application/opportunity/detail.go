package opportunity

import (
	"fmt"
	"strings"

	"github.com/marketgap-io/marketgap/internal/application/analysis"
	"github.com/marketgap-io/marketgap/internal/domain/gap"
	"github.com/marketgap-io/marketgap/internal/domain/geo"
	"github.com/marketgap-io/marketgap/internal/domain/market"
	apperrors "github.com/marketgap-io/marketgap/pkg/errors"
)

// detailRestaurantCount caps the local-restaurant list on the detail view.
const detailRestaurantCount = 15

// LocalRestaurant is the detail view's row for one local business.
type LocalRestaurant struct {
	Name        string           `json:"name"`
	Cuisines    []market.Cuisine `json:"cuisines,omitempty"`
	Stars       float64          `json:"stars"`
	ReviewCount int              `json:"review_count"`
	PriceTier   int              `json:"price_tier,omitempty"`
	Open        bool             `json:"open"`
}

// Detail is the full per-zip breakdown.
type Detail struct {
	Zip              string             `json:"zip"`
	City             string             `json:"city"`
	Centroid         *geo.Point         `json:"centroid,omitempty"`
	OpportunityScore float64            `json:"opportunity_score"`
	Risk             gap.RiskTier       `json:"risk"`
	ClosureRate      float64            `json:"closure_rate"`
	AvgStars         float64            `json:"avg_stars"`
	AvgPriceTier     float64            `json:"avg_price_tier"`
	TotalRestaurants int                `json:"total_restaurants"`
	OpenRestaurants  int                `json:"open_restaurants"`
	TotalReviews     int                `json:"total_reviews"`
	NeighborCount    int                `json:"neighbor_count"`
	CuisineGaps      []gap.CuisineGap   `json:"cuisine_gaps"`
	AttributeGaps    []gap.AttributeGap `json:"attribute_gaps"`
	ExistingCuisines []market.Cuisine   `json:"existing_cuisines"`
	Signal           string             `json:"signal"`
	TopRestaurants   []LocalRestaurant  `json:"top_restaurants"`
}

// Detail returns the full breakdown for one zip.  A zip that was never seen
// is a plain not-found; a zip that exists but could not be analyzed (too
// sparse, or no geo data) is reported as such rather than returned half
// empty.
func (s *Service) Detail(zip string) (*Detail, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if !market.IsValidZip(zip) {
		return nil, apperrors.NewValidation(fmt.Sprintf("malformed zip code %q", zip))
	}

	a, ok := snap.Analysis(zip)
	if !ok {
		if m, seen := snap.Markets[zip]; seen {
			if m.Centroid == nil {
				return nil, apperrors.New(apperrors.ErrCodeNoGeoData,
					fmt.Sprintf("zip %s has no geo data", zip))
			}
			return nil, apperrors.NewZipNotFound(zip).
				WithDetail("zip has too few restaurants to analyze")
		}
		return nil, apperrors.NewZipNotFound(zip)
	}

	var top []LocalRestaurant
	for _, r := range snap.LocalRestaurants(zip) {
		top = append(top, LocalRestaurant{
			Name:        r.Name,
			Cuisines:    r.Cuisines,
			Stars:       r.Stars,
			ReviewCount: r.ReviewCount,
			PriceTier:   r.PriceTier,
			Open:        r.Open,
		})
		if len(top) == detailRestaurantCount {
			break
		}
	}

	return &Detail{
		Zip:              a.Market.Zip,
		City:             a.Market.City,
		Centroid:         a.Market.Centroid,
		OpportunityScore: a.Opportunity.Score,
		Risk:             a.Opportunity.Risk,
		ClosureRate:      a.Market.ClosureRate,
		AvgStars:         a.Market.AvgStars,
		AvgPriceTier:     a.Market.AvgPriceTier,
		TotalRestaurants: a.Market.TotalRestaurants,
		OpenRestaurants:  a.Market.OpenRestaurants,
		TotalReviews:     a.Market.TotalReviews,
		NeighborCount:    a.NeighborCount,
		CuisineGaps:      a.CuisineGaps,
		AttributeGaps:    a.AttributeGaps,
		ExistingCuisines: market.SortedCuisines(a.Market.CuisineCounts),
		Signal:           signalSummary(a),
		TopRestaurants:   top,
	}, nil
}

// signalSummary renders the analyst-facing one-liner shown on the detail
// view.
func signalSummary(a *analysis.ZipAnalysis) string {
	var parts []string
	if len(a.CuisineGaps) > 0 {
		g := a.CuisineGaps[0]
		parts = append(parts, fmt.Sprintf("strongest gap: %s (%.1f, neighbor demand %d)",
			g.Cuisine, g.GapScore, g.NeighborDemand))
	} else {
		parts = append(parts, "no significant cuisine gaps")
	}
	if n := len(a.AttributeGaps); n > 0 {
		parts = append(parts, fmt.Sprintf("%d underserved service attributes", n))
	}
	parts = append(parts, fmt.Sprintf("%s closure risk (%.0f%%)",
		a.Opportunity.Risk, a.Market.ClosureRate*100))
	return strings.Join(parts, "; ")
}
