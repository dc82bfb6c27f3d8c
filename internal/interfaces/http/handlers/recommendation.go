package handlers

import (
	"net/http"

	"github.com/marketgap-io/marketgap/internal/application/recommendation"
	"github.com/marketgap-io/marketgap/internal/domain/market"
	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
)

// RecommendationHandler serves the concept matcher.
type RecommendationHandler struct {
	matcher *recommendation.Matcher
	log     logging.Logger
}

// NewRecommendationHandler returns a RecommendationHandler over matcher.
func NewRecommendationHandler(matcher *recommendation.Matcher, log logging.Logger) *RecommendationHandler {
	return &RecommendationHandler{matcher: matcher, log: log.Named("http.recommendation")}
}

// Recommend handles GET /api/v1/recommendations.  Concept constraints arrive
// as query parameters; attrs is repeatable.
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	cuisine, err := market.ParseCuisine(r.URL.Query().Get("cuisine"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	concept := recommendation.Concept{Cuisine: cuisine}
	for _, raw := range r.URL.Query()["attrs"] {
		a, err := market.ParseAttribute(raw)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		concept.RequiredAttributes = append(concept.RequiredAttributes, a)
	}
	if concept.MaxPriceTier, err = queryInt(r, "max_price_tier", 0); err != nil {
		writeError(w, h.log, err)
		return
	}
	if concept.RiskTolerance, err = queryRisk(r); err != nil {
		writeError(w, h.log, err)
		return
	}
	if concept.MinMarketSize, err = queryInt(r, "min_market_size", 0); err != nil {
		writeError(w, h.log, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	res, err := h.matcher.Recommend(concept, limit)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
