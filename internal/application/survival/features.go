// Package survival assembles the feature vector for the external survival
// model and interprets its output.  The model is opaque: this package's only
// hard contract is that feature names, order, and defaults exactly match what
// the model was fit on — drift here is silently wrong, so the ordering is
// pinned by a contract test rather than checked at runtime.
package survival

import (
	"strings"

	"github.com/marketgap-io/marketgap/internal/domain/market"
)

// baseFeatureColumns is the fixed non-cuisine part of the model's input, in
// training order.
var baseFeatureColumns = []string{
	"stars_yelp",
	"review_count_yelp",
	"price_tier",
	"review_count_computed",
	"lifespan_days",
	"review_velocity_30d",
	"review_velocity_90d",
	"reviews_per_month",
	"pct_1star",
	"pct_5star",
	"pct_negative",
	"pct_positive",
	"star_std",
	"star_slope",
	"stars_first_quartile",
	"stars_last_quartile",
	"star_delta",
	"sentiment_mean",
	"sentiment_std",
	"sentiment_slope",
	"sentiment_last_quartile",
	"pct_very_positive",
	"pct_very_negative",
	"useful_per_review",
	"funny_per_review",
	"cool_per_review",
	"total_engagement",
	"pct_engaged_reviews",
	"avg_review_length",
	"median_review_length",
	"has_delivery",
	"has_takeout",
	"has_outdoor_seating",
	"good_for_kids",
	"has_reservations",
	"has_wifi",
	"has_alcohol",
	"has_tv",
	"good_for_groups",
	"noise_level",
}

// FeatureColumns returns the model's full input column list in training
// order: the base columns followed by one one-hot flag per known cuisine.
func FeatureColumns() []string {
	cols := append([]string{}, baseFeatureColumns...)
	for _, c := range market.AllCuisines {
		cols = append(cols, cuisineColumn(c))
	}
	return cols
}

func cuisineColumn(c market.Cuisine) string {
	return "cuisine_" + strings.ReplaceAll(strings.ToLower(string(c)), " ", "_")
}

// ConceptProfile is the hypothetical restaurant being scored: the concept's
// cuisine plus the override-able operating characteristics.
type ConceptProfile struct {
	Cuisine    market.Cuisine            `json:"cuisine"`
	PriceTier  int                       `json:"price_tier"`
	Attributes map[market.Attribute]bool `json:"attributes,omitempty"`
	Noise      market.NoiseLevel         `json:"noise_level"`
}

// applyDefaults fills unset profile fields with the training-time defaults.
func (p *ConceptProfile) applyDefaults() {
	if p.PriceTier == 0 {
		p.PriceTier = 2
	}
}

// BuildFeatures produces the model's input for a concept placed in a zip.
// Review-history features (velocities, sentiment, engagement) describe an
// operating restaurant the hypothetical one does not have yet, so they take
// the population defaults the model was fit with; market-derived features
// come from the zip.
func BuildFeatures(m *market.ZipMarket, p ConceptProfile) map[string]float64 {
	p.applyDefaults()

	f := map[string]float64{
		"stars_yelp":        m.AvgStars,
		"review_count_yelp": 50,
		"price_tier":        float64(p.PriceTier),
		// Temporal features are zero: the hypothetical restaurant has no
		// history yet, and the model was fit with that prior.
		"review_count_computed":   0,
		"lifespan_days":           0,
		"review_velocity_30d":     0,
		"review_velocity_90d":     0,
		"reviews_per_month":       0,
		"pct_1star":               0.08,
		"pct_5star":               0.35,
		"pct_negative":            0.12,
		"pct_positive":            0.65,
		"star_std":                0.9,
		"star_slope":              0,
		"stars_first_quartile":    m.AvgStars,
		"stars_last_quartile":     m.AvgStars,
		"star_delta":              0,
		"sentiment_mean":          0.3,
		"sentiment_std":           0.4,
		"sentiment_slope":         0,
		"sentiment_last_quartile": 0.3,
		"pct_very_positive":       0.4,
		"pct_very_negative":       0.08,
		"useful_per_review":       0.5,
		"funny_per_review":        0.1,
		"cool_per_review":         0.2,
		"total_engagement":        40,
		"pct_engaged_reviews":     0.3,
		"avg_review_length":       350,
		"median_review_length":    300,
		"has_delivery":            boolFeature(p.Attributes[market.AttrDelivery]),
		"has_takeout":             1,
		"has_outdoor_seating":     boolFeature(p.Attributes[market.AttrOutdoorSeating]),
		"good_for_kids":           boolFeature(p.Attributes[market.AttrKidFriendly]),
		"has_reservations":        boolFeature(p.Attributes[market.AttrReservations]),
		"has_wifi":                boolFeature(p.Attributes[market.AttrWifi]),
		"has_alcohol":             boolFeature(p.Attributes[market.AttrAlcohol]),
		"has_tv":                  boolFeature(p.Attributes[market.AttrTV]),
		"good_for_groups":         boolFeature(p.Attributes[market.AttrGoodForGroups]),
		"noise_level":             float64(p.Noise),
	}
	for _, c := range market.AllCuisines {
		f[cuisineColumn(c)] = 0
	}
	f[cuisineColumn(p.Cuisine)] = 1
	return f
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
