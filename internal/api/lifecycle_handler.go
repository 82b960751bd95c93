package api

import (
	"context"
	"net/http"

	"github.com/phrazzld/sprout/internal/api/shared"
	"github.com/phrazzld/sprout/internal/domain"
)

// AutoUpdater runs auto-update passes. Satisfied by *autoupdate.Orchestrator.
type AutoUpdater interface {
	PerformAutoUpdate(ctx context.Context, profile *domain.Profile) domain.AutoUpdateResult
	NeedsAutoUpdate(ctx context.Context, profile *domain.Profile) bool
}

// LifecycleHandler handles auto-update HTTP requests
type LifecycleHandler struct {
	updater AutoUpdater
}

// NewLifecycleHandler creates a new LifecycleHandler
func NewLifecycleHandler(updater AutoUpdater) *LifecycleHandler {
	return &LifecycleHandler{updater: updater}
}

// PerformAutoUpdate handles POST /v1/auto-update
func (h *LifecycleHandler) PerformAutoUpdate(w http.ResponseWriter, r *http.Request) {
	result := h.updater.PerformAutoUpdate(r.Context(), nil)
	if !result.IsSuccess() {
		HandleAPIError(w, r, result.Err, "Auto-update failed, retry later")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resultToResponse(result))
}

// NeedsAutoUpdate handles GET /v1/auto-update/needed
func (h *LifecycleHandler) NeedsAutoUpdate(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, NeedsUpdateResponse{
		NeedsUpdate: h.updater.NeedsAutoUpdate(r.Context(), nil),
	})
}
