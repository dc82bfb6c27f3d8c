package handlers

import (
	"net/http"

	"github.com/marketgap-io/marketgap/internal/domain/market"
)

// MetaHandler serves the static vocabulary the UI builds its forms from.
type MetaHandler struct{}

// NewMetaHandler returns a MetaHandler.
func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

// Cuisines lists every supported cuisine, attribute, and risk tier.
func (h *MetaHandler) Cuisines(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cuisines":   market.AllCuisines,
		"attributes": market.AllAttributes,
		"risk_tiers": []string{"low", "medium", "high"},
	})
}
