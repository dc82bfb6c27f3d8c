package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marketgap-io/marketgap/internal/application/opportunity"
	"github.com/marketgap-io/marketgap/internal/domain/market"
	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
)

// OpportunityHandler serves the listing, detail, and weakspot endpoints.
type OpportunityHandler struct {
	svc *opportunity.Service
	log logging.Logger
}

// NewOpportunityHandler returns an OpportunityHandler over svc.
func NewOpportunityHandler(svc *opportunity.Service, log logging.Logger) *OpportunityHandler {
	return &OpportunityHandler{svc: svc, log: log.Named("http.opportunity")}
}

// List handles GET /api/v1/opportunities.
func (h *OpportunityHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := h.parseListParams(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	rows, err := h.svc.List(params)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"opportunities": rows,
		"count":         len(rows),
	})
}

func (h *OpportunityHandler) parseListParams(r *http.Request) (opportunity.ListParams, error) {
	var p opportunity.ListParams
	if raw := r.URL.Query().Get("cuisine"); raw != "" {
		c, err := market.ParseCuisine(raw)
		if err != nil {
			return p, err
		}
		p.Cuisine = &c
	}
	var err error
	if p.MinGapScore, err = queryFloat(r, "min_gap_score", 0); err != nil {
		return p, err
	}
	if p.MinMarketSize, err = queryInt(r, "min_market_size", 0); err != nil {
		return p, err
	}
	if p.Risk, err = queryRisk(r); err != nil {
		return p, err
	}
	if p.Sort, err = opportunity.ParseSortKey(r.URL.Query().Get("sort")); err != nil {
		return p, err
	}
	p.TargetZip = r.URL.Query().Get("target_zip")
	if p.Limit, err = queryInt(r, "limit", 0); err != nil {
		return p, err
	}
	return p, nil
}

// Detail handles GET /api/v1/opportunities/{zip}.
func (h *OpportunityHandler) Detail(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Detail(chi.URLParam(r, "zip"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Weakspots handles GET /api/v1/weakspots.
func (h *OpportunityHandler) Weakspots(w http.ResponseWriter, r *http.Request) {
	var p opportunity.WeakspotParams
	if raw := r.URL.Query().Get("cuisine"); raw != "" {
		c, err := market.ParseCuisine(raw)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		p.Cuisine = &c
	}
	var err error
	if p.MinClosureRate, err = queryFloat(r, "min_closure_rate", opportunity.DefaultMinClosureRate); err != nil {
		writeError(w, h.log, err)
		return
	}
	if p.MinAvgStars, err = queryFloat(r, "min_avg_stars", 0); err != nil {
		writeError(w, h.log, err)
		return
	}
	if p.MaxAvgStars, err = queryFloat(r, "max_avg_stars", 0); err != nil {
		writeError(w, h.log, err)
		return
	}
	if p.MinExisting, err = queryInt(r, "min_existing", 0); err != nil {
		writeError(w, h.log, err)
		return
	}
	if p.Limit, err = queryInt(r, "limit", 0); err != nil {
		writeError(w, h.log, err)
		return
	}
	rows, err := h.svc.Weakspots(p)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"weakspots": rows,
		"count":     len(rows),
	})
}
