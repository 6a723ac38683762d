package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/brickline/lead-api/internal/service"
)

// InventoryHandler serves the read-only unit inventory from the ERP.
type InventoryHandler struct {
	inventoryService *service.InventoryService
	logger           *zap.Logger
}

func NewInventoryHandler(inventoryService *service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// @Summary List inventory units
// @Description Units from the ERP, optionally scoped to one project
// @Tags Inventory
// @Produce json
// @Param project query string false "Filter by project name"
// @Param available query bool false "Only available units"
// @Success 200 {array} domain.UnitDTO
// @Failure 503 {object} domain.APIError
// @Security BearerAuth
// @Router /inventory/units [get]
func (h *InventoryHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	availableOnly := r.URL.Query().Get("available") == "true"

	units, err := h.inventoryService.ListUnits(r.Context(), project, availableOnly)
	if err != nil {
		if errors.Is(err, service.ErrERPUnavailable) {
			respondWithError(w, http.StatusServiceUnavailable, "inventory feed unavailable")
			return
		}
		h.logger.Error("failed to list units", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to list units")
		return
	}

	respondJSON(w, http.StatusOK, units)
}

// @Summary Get inventory unit
// @Tags Inventory
// @Produce json
// @Param unitCode path string true "Unit code"
// @Success 200 {object} domain.UnitDTO
// @Failure 404 {object} domain.APIError
// @Failure 503 {object} domain.APIError
// @Security BearerAuth
// @Router /inventory/units/{unitCode} [get]
func (h *InventoryHandler) GetUnit(w http.ResponseWriter, r *http.Request) {
	unitCode := chi.URLParam(r, "unitCode")

	unit, err := h.inventoryService.GetUnit(r.Context(), unitCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrERPUnavailable):
			respondWithError(w, http.StatusServiceUnavailable, "inventory feed unavailable")
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "unit not found")
		default:
			h.logger.Error("failed to get unit", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "failed to get unit")
		}
		return
	}

	respondJSON(w, http.StatusOK, unit)
}
