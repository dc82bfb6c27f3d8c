package handlers

import (
	"context"
	"net/http"

	"github.com/marketgap-io/marketgap/internal/application/analysis"
	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
)

// Rebuilder forces a snapshot rebuild.
type Rebuilder interface {
	Rebuild(ctx context.Context) (*analysis.Snapshot, error)
}

// AdminHandler serves operational endpoints.
type AdminHandler struct {
	rebuilder Rebuilder
	log       logging.Logger
}

// NewAdminHandler returns an AdminHandler over rebuilder.
func NewAdminHandler(rebuilder Rebuilder, log logging.Logger) *AdminHandler {
	return &AdminHandler{rebuilder: rebuilder, log: log.Named("http.admin")}
}

// ReloadSnapshot handles POST /api/v1/admin/snapshot/reload.
func (h *AdminHandler) ReloadSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.rebuilder.Rebuild(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"build_id":      snap.BuildID.String(),
		"built_at":      snap.BuiltAt,
		"records":       snap.RecordCount,
		"zips_analyzed": snap.TotalAnalyzed(),
	})
}
