package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/brickline/lead-api/internal/domain"
	"github.com/brickline/lead-api/internal/service"
	"github.com/brickline/lead-api/internal/workflow"
)

// TransitionHandler drives the two-phase stage change workflow over
// HTTP. A transition to Booked answers 202 with status
// "booking_required" and waits for the booking payload on the booking
// endpoint; every other transition commits immediately.
type TransitionHandler struct {
	leadService *service.LeadService
	logger      *zap.Logger
}

func NewTransitionHandler(leadService *service.LeadService, logger *zap.Logger) *TransitionHandler {
	return &TransitionHandler{
		leadService: leadService,
		logger:      logger,
	}
}

// @Summary Start stage transition
// @Description Move a lead to a new stage. A target of Booked pauses and asks for a booking payload.
// @Tags Transitions
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param transition body domain.TransitionRequest true "Requested stage change"
// @Success 200 {object} domain.TransitionResponse "Transition committed"
// @Success 202 {object} domain.TransitionResponse "Booking payload required"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/transition [post]
func (h *TransitionHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, ok := parseLeadID(w, r)
	if !ok {
		return
	}

	var req domain.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.leadService.StartTransition(r.Context(), id, &req)
	if err != nil {
		h.respondTransitionError(w, err)
		return
	}

	if resp.Status == "booking_required" {
		respondJSON(w, http.StatusAccepted, resp)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// @Summary Complete booking
// @Description Supply the payment schedule for a transition that paused on Booked.
// @Tags Transitions
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param booking body domain.BookingRequest true "Sale value and payment schedule"
// @Success 200 {object} domain.TransitionResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/booking [post]
func (h *TransitionHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := parseLeadID(w, r)
	if !ok {
		return
	}

	var req domain.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.leadService.CompleteBooking(r.Context(), id, &req)
	if err != nil {
		h.respondTransitionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// @Summary Get booking
// @Description Fetch the booking and payment schedule created when the lead converted to Booked.
// @Tags Transitions
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.BookingDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/booking [get]
func (h *TransitionHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := parseLeadID(w, r)
	if !ok {
		return
	}

	booking, err := h.leadService.GetBooking(r.Context(), id)
	if err != nil {
		h.respondTransitionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, booking)
}

// @Summary Cancel booking capture
// @Description Discard the captured payment schedule while keeping the pending Booked selection.
// @Tags Transitions
// @Param id path string true "Lead ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/booking [delete]
func (h *TransitionHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := parseLeadID(w, r)
	if !ok {
		return
	}

	if err := h.leadService.CancelBooking(r.Context(), id); err != nil {
		h.respondTransitionError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// @Summary Cancel pending transition
// @Description Discard an in-progress transition. Nothing has been persisted yet.
// @Tags Transitions
// @Param id path string true "Lead ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/transition [delete]
func (h *TransitionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseLeadID(w, r)
	if !ok {
		return
	}

	if err := h.leadService.CancelTransition(r.Context(), id); err != nil {
		h.respondTransitionError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// respondTransitionError maps workflow and service errors onto HTTP
// status codes.
func (h *TransitionHandler) respondTransitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrLeadNotFound):
		respondWithError(w, http.StatusNotFound, "lead not found")
		return
	case errors.Is(err, service.ErrBookingNotFound):
		respondWithError(w, http.StatusNotFound, "no booking exists for this lead")
		return
	case errors.Is(err, service.ErrNoPendingTransition):
		respondWithError(w, http.StatusNotFound, "no pending transition for this lead")
		return
	case errors.Is(err, service.ErrTransitionInProgress):
		respondWithError(w, http.StatusConflict, "a transition is already in progress for this lead")
		return
	}

	if ve, ok := workflow.AsValidationError(err); ok {
		switch ve.Kind {
		case workflow.KindInvalidState:
			respondWithError(w, http.StatusConflict, ve.Error())
		case workflow.KindIncompleteStage:
			respondFieldError(w, "paymentStages", ve.Error())
		case workflow.KindMissingLostReason:
			respondFieldError(w, "lostReason", ve.Error())
		case workflow.KindMissingSiteVisitDate:
			respondFieldError(w, "siteVisitDate", ve.Error())
		case workflow.KindMissingSaleValue:
			respondFieldError(w, "totalSaleValue", ve.Error())
		case workflow.KindEmptySchedule:
			respondFieldError(w, "paymentStages", ve.Error())
		case workflow.KindUnknownStage:
			respondFieldError(w, "targetStage", ve.Error())
		default:
			respondWithError(w, http.StatusBadRequest, ve.Error())
		}
		return
	}

	var collab *workflow.CollaboratorError
	if errors.As(err, &collab) {
		h.logger.Error("stage update commit failed", zap.Error(collab.Err))
		respondWithError(w, http.StatusBadGateway, collab.Error())
		return
	}

	h.logger.Error("transition failed", zap.Error(err))
	respondWithError(w, http.StatusInternalServerError, "transition failed")
}
