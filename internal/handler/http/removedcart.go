package http

import (
	"log/slog"
	"net/http"

	"github.com/modacart/backend/internal/service"
)

// RemovedCartHandler handles HTTP requests for the removal ledger endpoints.
type RemovedCartHandler struct {
	admin  *service.AdminService
	logger *slog.Logger
}

// NewRemovedCartHandler creates a new removal ledger HTTP handler.
func NewRemovedCartHandler(admin *service.AdminService, logger *slog.Logger) *RemovedCartHandler {
	return &RemovedCartHandler{
		admin:  admin,
		logger: logger,
	}
}

// ListRemovedItems handles GET /removed-cart/admin/removed
func (h *RemovedCartHandler) ListRemovedItems(w http.ResponseWriter, r *http.Request) {
	groups, err := h.admin.ListRemovedItems(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, "removed items retrieved", groups)
}
