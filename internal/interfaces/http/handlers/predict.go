package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/marketgap-io/marketgap/internal/application/survival"
	"github.com/marketgap-io/marketgap/internal/domain/market"
	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
	apperrors "github.com/marketgap-io/marketgap/pkg/errors"
)

// PredictionObserver counts prediction outcomes for metrics.
type PredictionObserver interface {
	ObservePrediction(result string)
}

// PredictHandler serves survival predictions.
type PredictHandler struct {
	svc      *survival.Service
	observer PredictionObserver
	log      logging.Logger
}

// NewPredictHandler returns a PredictHandler over svc; observer may be nil.
func NewPredictHandler(svc *survival.Service, observer PredictionObserver, log logging.Logger) *PredictHandler {
	return &PredictHandler{svc: svc, observer: observer, log: log.Named("http.predict")}
}

type predictRequest struct {
	ZipCode    string   `json:"zip_code"`
	Cuisine    string   `json:"cuisine"`
	PriceTier  int      `json:"price_tier"`
	Attributes []string `json:"attributes"`
	NoiseLevel string   `json:"noise_level"`
}

// Predict handles POST /api/v1/predict.
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, apperrors.NewValidation("request body must be valid json"))
		return
	}

	cuisine, err := market.ParseCuisine(req.Cuisine)
	if err != nil {
		h.fail(w, err)
		return
	}
	profile := survival.ConceptProfile{
		Cuisine:    cuisine,
		PriceTier:  req.PriceTier,
		Attributes: make(map[market.Attribute]bool, len(req.Attributes)),
		Noise:      market.ParseNoiseLevel(req.NoiseLevel),
	}
	for _, raw := range req.Attributes {
		a, err := market.ParseAttribute(raw)
		if err != nil {
			h.fail(w, err)
			return
		}
		profile.Attributes[a] = true
	}

	pred, err := h.svc.Predict(r.Context(), req.ZipCode, profile)
	if err != nil {
		h.fail(w, err)
		return
	}
	if h.observer != nil {
		if pred.Degraded {
			h.observer.ObservePrediction("degraded")
		} else {
			h.observer.ObservePrediction("ok")
		}
	}
	writeJSON(w, http.StatusOK, pred)
}

func (h *PredictHandler) fail(w http.ResponseWriter, err error) {
	if h.observer != nil {
		h.observer.ObservePrediction("error")
	}
	writeError(w, h.log, err)
}
