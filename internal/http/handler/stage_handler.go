package handler

import (
	"net/http"

	"github.com/brickline/lead-api/internal/domain"
	"github.com/brickline/lead-api/internal/workflow"
)

// StageHandler serves the stage catalog.
type StageHandler struct{}

func NewStageHandler() *StageHandler {
	return &StageHandler{}
}

// @Summary Stage catalog
// @Description The fixed, ordered list of pipeline stages with display metadata
// @Tags Stages
// @Produce json
// @Success 200 {array} domain.StageInfoDTO
// @Security BearerAuth
// @Router /stages [get]
func (h *StageHandler) List(w http.ResponseWriter, r *http.Request) {
	stages := workflow.Stages()
	dtos := make([]domain.StageInfoDTO, 0, len(stages))
	for _, s := range stages {
		dtos = append(dtos, domain.StageInfoDTO{
			Value: s.Value,
			Label: s.Label,
			Color: s.Color,
		})
	}
	respondJSON(w, http.StatusOK, dtos)
}
