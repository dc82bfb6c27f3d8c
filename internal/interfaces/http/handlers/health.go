package handlers

import (
	"net/http"

	"github.com/marketgap-io/marketgap/internal/application/opportunity"
)

// HealthHandler answers liveness and readiness probes.
type HealthHandler struct {
	snapshots opportunity.SnapshotProvider
}

// NewHealthHandler returns a HealthHandler gated on snapshot availability.
func NewHealthHandler(snapshots opportunity.SnapshotProvider) *HealthHandler {
	return &HealthHandler{snapshots: snapshots}
}

// Live always reports ok while the process runs.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports ok only once a snapshot is loaded; before that the engine
// cannot answer any market query.
func (h *HealthHandler) Ready(w http.ResponseWriter, _ *http.Request) {
	snap := h.snapshots.Current()
	if snap == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"build_id":      snap.BuildID.String(),
		"built_at":      snap.BuiltAt,
		"zips_analyzed": snap.TotalAnalyzed(),
	})
}
