package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brickline/lead-api/internal/domain"
	"github.com/brickline/lead-api/internal/repository"
	"github.com/brickline/lead-api/internal/service"
)

type LeadHandler struct {
	leadService *service.LeadService
	logger      *zap.Logger
}

func NewLeadHandler(leadService *service.LeadService, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		logger:      logger,
	}
}

// @Summary List leads
// @Description List leads with optional filters
// @Tags Leads
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param stage query string false "Filter by stage"
// @Param source query string false "Filter by source"
// @Param ownerId query string false "Filter by owner ID"
// @Param project query string false "Filter by project interest"
// @Param onHold query bool false "Filter by on-hold flag"
// @Param minBudget query number false "Minimum budget"
// @Param maxBudget query number false "Maximum budget"
// @Param createdAfter query string false "Created after date (YYYY-MM-DD)"
// @Param createdBefore query string false "Created before date (YYYY-MM-DD)"
// @Param followUpBefore query string false "Follow-up due before date (YYYY-MM-DD)"
// @Param q query string false "Search name, phone or email"
// @Param sort query string false "Sort by (created_desc, created_asc, budget_desc, budget_asc, follow_up_asc, follow_up_desc)"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /leads [get]
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}

	filters := &repository.LeadFilters{}

	if s := r.URL.Query().Get("stage"); s != "" {
		stage := domain.LeadStage(s)
		if !stage.IsValid() {
			respondWithError(w, http.StatusBadRequest, "unknown stage: "+s)
			return
		}
		filters.Stage = &stage
	}
	if src := r.URL.Query().Get("source"); src != "" {
		source := domain.LeadSource(src)
		filters.Source = &source
	}
	if o := r.URL.Query().Get("ownerId"); o != "" {
		filters.OwnerID = &o
	}
	if p := r.URL.Query().Get("project"); p != "" {
		filters.ProjectInterest = &p
	}
	if oh := r.URL.Query().Get("onHold"); oh != "" {
		onHold := oh == "true"
		filters.OnHold = &onHold
	}
	if mb := r.URL.Query().Get("minBudget"); mb != "" {
		if v, err := strconv.ParseFloat(mb, 64); err == nil {
			filters.MinBudget = &v
		}
	}
	if mb := r.URL.Query().Get("maxBudget"); mb != "" {
		if v, err := strconv.ParseFloat(mb, 64); err == nil {
			filters.MaxBudget = &v
		}
	}
	if ca := r.URL.Query().Get("createdAfter"); ca != "" {
		if t, err := time.Parse("2006-01-02", ca); err == nil {
			filters.CreatedAfter = &t
		}
	}
	if cb := r.URL.Query().Get("createdBefore"); cb != "" {
		if t, err := time.Parse("2006-01-02", cb); err == nil {
			filters.CreatedBefore = &t
		}
	}
	if fb := r.URL.Query().Get("followUpBefore"); fb != "" {
		if t, err := time.Parse("2006-01-02", fb); err == nil {
			filters.FollowUpBefore = &t
		}
	}
	if q := r.URL.Query().Get("q"); q != "" {
		filters.SearchQuery = &q
	}

	sortBy := repository.LeadSortOption(r.URL.Query().Get("sort"))

	result, err := h.leadService.ListLeads(r.Context(), page, pageSize, filters, sortBy)
	if err != nil {
		h.logger.Error("failed to list leads", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to list leads")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary Create lead
// @Description Create a new lead in the New Lead stage
// @Tags Leads
// @Accept json
// @Produce json
// @Param lead body domain.CreateLeadRequest true "Lead to create"
// @Success 201 {object} domain.LeadDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /leads [post]
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.CreateLead(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create lead", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to create lead")
		return
	}

	respondJSON(w, http.StatusCreated, lead)
}

// @Summary Get lead
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.LeadDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id} [get]
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseLeadID(w, r)
	if !ok {
		return
	}

	lead, err := h.leadService.GetLead(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrLeadNotFound) {
			respondWithError(w, http.StatusNotFound, "lead not found")
			return
		}
		h.logger.Error("failed to get lead", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to get lead")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// @Summary Update lead
// @Description Update lead contact details and flags. Stage changes go through the transition endpoint.
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param lead body domain.UpdateLeadRequest true "Fields to update"
// @Success 200 {object} domain.LeadDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id} [put]
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseLeadID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.UpdateLead(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrLeadNotFound) {
			respondWithError(w, http.StatusNotFound, "lead not found")
			return
		}
		h.logger.Error("failed to update lead", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to update lead")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// @Summary Delete lead
// @Tags Leads
// @Param id path string true "Lead ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id} [delete]
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseLeadID(w, r)
	if !ok {
		return
	}

	if err := h.leadService.DeleteLead(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrLeadNotFound) {
			respondWithError(w, http.StatusNotFound, "lead not found")
			return
		}
		h.logger.Error("failed to delete lead", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to delete lead")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// @Summary Lead timeline
// @Description Stage history of a lead, newest first
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {array} domain.TimelineEntryDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/timeline [get]
func (h *LeadHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	id, ok := parseLeadID(w, r)
	if !ok {
		return
	}

	entries, err := h.leadService.GetTimeline(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrLeadNotFound) {
			respondWithError(w, http.StatusNotFound, "lead not found")
			return
		}
		h.logger.Error("failed to get timeline", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to get timeline")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// @Summary Pipeline view
// @Description All leads grouped per stage in pipeline order
// @Tags Leads
// @Produce json
// @Success 200 {array} domain.PipelineStageSummary
// @Security BearerAuth
// @Router /leads/pipeline [get]
func (h *LeadHandler) Pipeline(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.leadService.GetPipeline(r.Context())
	if err != nil {
		h.logger.Error("failed to load pipeline", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to load pipeline")
		return
	}

	respondJSON(w, http.StatusOK, summaries)
}

func parseLeadID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid lead id")
		return uuid.Nil, false
	}
	return id, true
}
