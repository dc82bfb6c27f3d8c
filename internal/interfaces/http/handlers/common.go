// Package handlers implements the HTTP endpoints.  Handlers only parse,
// delegate to application services, and render; no scoring logic lives here.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/marketgap-io/marketgap/internal/domain/gap"
	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
	apperrors "github.com/marketgap-io/marketgap/pkg/errors"
)

// errorBody is the wire shape of every error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError renders any error as an AppError body with its mapped HTTP
// status; unknown errors become an opaque 500.
func writeError(w http.ResponseWriter, log logging.Logger, err error) {
	app := apperrors.AsAppError(err)
	status := apperrors.HTTPStatusForCode(app.Code)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", logging.String("code", string(app.Code)), logging.Err(err))
		// Do not leak internals on 5xx.
		writeJSON(w, status, errorBody{Code: string(app.Code), Message: "internal error"})
		return
	}
	writeJSON(w, status, errorBody{Code: string(app.Code), Message: app.Message, Detail: app.Detail})
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidation("parameter " + key + " must be an integer")
	}
	return n, nil
}

func queryFloat(r *http.Request, key string, def float64) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.NewValidation("parameter " + key + " must be a number")
	}
	return f, nil
}

// queryRisk parses repeatable risk parameters ("?risk=low&risk=medium").
func queryRisk(r *http.Request) ([]gap.RiskTier, error) {
	var out []gap.RiskTier
	for _, raw := range r.URL.Query()["risk"] {
		t, ok := gap.ParseRiskTier(raw)
		if !ok {
			return nil, apperrors.NewValidation("unknown risk tier " + strconv.Quote(raw))
		}
		out = append(out, t)
	}
	return out, nil
}
