package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brickline/lead-api/internal/auth"
	"github.com/brickline/lead-api/internal/domain"
	"github.com/brickline/lead-api/internal/mapper"
	"github.com/brickline/lead-api/internal/repository"
	"github.com/brickline/lead-api/internal/workflow"
)

// LeadService owns lead CRUD and the stage transition workflow. It
// keeps at most one transition session per lead; a transition that
// pauses for a booking payload stays resident until it is completed,
// cancelled or replaced.
type LeadService struct {
	db           *gorm.DB
	leadRepo     *repository.LeadRepository
	timelineRepo *repository.LeadTimelineRepository
	bookingRepo  *repository.BookingRepository
	logger       *zap.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*workflow.Orchestrator
}

func NewLeadService(
	db *gorm.DB,
	leadRepo *repository.LeadRepository,
	timelineRepo *repository.LeadTimelineRepository,
	bookingRepo *repository.BookingRepository,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		db:           db,
		leadRepo:     leadRepo,
		timelineRepo: timelineRepo,
		bookingRepo:  bookingRepo,
		logger:       logger,
		sessions:     make(map[uuid.UUID]*workflow.Orchestrator),
	}
}

// CreateLead creates a new lead in the New Lead stage and records the
// opening timeline entry.
func (s *LeadService) CreateLead(ctx context.Context, req *domain.CreateLeadRequest) (*domain.LeadDTO, error) {
	lead := &domain.Lead{
		Name:            req.Name,
		Phone:           req.Phone,
		Email:           req.Email,
		Source:          req.Source,
		ProjectInterest: req.ProjectInterest,
		UnitInterest:    req.UnitInterest,
		Budget:          req.Budget,
		Stage:           domain.StageNewLead,
		OwnerID:         req.OwnerID,
		OwnerName:       req.OwnerName,
		Notes:           req.Notes,
	}

	changedByID, changedByName := actingUser(ctx)
	if lead.OwnerID == "" {
		lead.OwnerID = changedByID
		lead.OwnerName = changedByName
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(lead).Error; err != nil {
			return fmt.Errorf("failed to create lead: %w", err)
		}
		entry := &domain.LeadTimelineEntry{
			LeadID:        lead.ID,
			ToStage:       domain.StageNewLead,
			ChangedByID:   changedByID,
			ChangedByName: changedByName,
			ChangedAt:     time.Now().UTC(),
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to record timeline entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lead created",
		zap.String("lead_id", lead.ID.String()),
		zap.String("name", lead.Name),
		zap.String("source", string(lead.Source)))

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

func (s *LeadService) GetLead(ctx context.Context, id uuid.UUID) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

func (s *LeadService) ListLeads(ctx context.Context, page, pageSize int, filters *repository.LeadFilters, sortBy repository.LeadSortOption) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	leads, total, err := s.leadRepo.List(ctx, page, pageSize, filters, sortBy)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       mapper.ToLeadDTOs(leads),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *LeadService) UpdateLead(ctx context.Context, id uuid.UUID, req *domain.UpdateLeadRequest) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	if req.Name != nil {
		lead.Name = *req.Name
	}
	if req.Phone != nil {
		lead.Phone = *req.Phone
	}
	if req.Email != nil {
		lead.Email = *req.Email
	}
	if req.Source != nil {
		lead.Source = *req.Source
	}
	if req.ProjectInterest != nil {
		lead.ProjectInterest = *req.ProjectInterest
	}
	if req.UnitInterest != nil {
		lead.UnitInterest = *req.UnitInterest
	}
	if req.Budget != nil {
		lead.Budget = *req.Budget
	}
	if req.FollowUpDate != nil {
		lead.FollowUpDate = req.FollowUpDate
	}
	if req.OnHold != nil {
		lead.OnHold = *req.OnHold
	}
	if req.OwnerID != nil {
		lead.OwnerID = *req.OwnerID
	}
	if req.OwnerName != nil {
		lead.OwnerName = *req.OwnerName
	}
	if req.Notes != nil {
		lead.Notes = *req.Notes
	}

	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

func (s *LeadService) DeleteLead(ctx context.Context, id uuid.UUID) error {
	if _, err := s.leadRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeadNotFound
		}
		return fmt.Errorf("failed to get lead: %w", err)
	}

	s.dropSession(id)

	if err := s.leadRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	return nil
}

// GetTimeline returns a lead's stage history, newest first.
func (s *LeadService) GetTimeline(ctx context.Context, leadID uuid.UUID) ([]domain.TimelineEntryDTO, error) {
	if _, err := s.leadRepo.GetByID(ctx, leadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	entries, err := s.timelineRepo.GetByLeadID(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to get timeline: %w", err)
	}
	return mapper.ToTimelineEntryDTOs(entries), nil
}

// GetPipeline returns all leads grouped per stage in catalog order.
func (s *LeadService) GetPipeline(ctx context.Context) ([]domain.PipelineStageSummary, error) {
	summaries := make([]domain.PipelineStageSummary, 0, len(workflow.Stages()))
	for _, info := range workflow.Stages() {
		leads, err := s.leadRepo.GetByStage(ctx, info.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to load pipeline stage %s: %w", info.Value, err)
		}
		summaries = append(summaries, domain.PipelineStageSummary{
			Stage: info.Value,
			Label: info.Label,
			Count: int64(len(leads)),
			Leads: mapper.ToLeadDTOs(leads),
		})
	}
	return summaries, nil
}

// StartTransition begins a stage change for a lead. When the target
// stage is Booked the transition pauses and the response asks for a
// booking payload; otherwise the change is committed immediately.
func (s *LeadService) StartTransition(ctx context.Context, leadID uuid.UUID, req *domain.TransitionRequest) (*domain.TransitionResponse, error) {
	lead, err := s.leadRepo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	orch, err := s.openSession(leadID, lead.Stage)
	if err != nil {
		return nil, err
	}

	cmd := workflow.TransitionCommand{
		TargetStage:   req.TargetStage,
		Remark:        req.Remark,
		LostReason:    req.LostReason,
		SiteVisitDate: req.SiteVisitDate,
	}
	if err := orch.SelectStage(cmd); err != nil {
		s.dropSession(leadID)
		return nil, err
	}

	if orch.State() == workflow.StateBookingPending {
		// Session stays open until CompleteBooking or CancelTransition.
		return &domain.TransitionResponse{Status: "booking_required"}, nil
	}

	return s.confirmSession(ctx, leadID, orch)
}

// CompleteBooking supplies the booking payload for a transition that
// paused in StartTransition and commits the merged update.
func (s *LeadService) CompleteBooking(ctx context.Context, leadID uuid.UUID, req *domain.BookingRequest) (*domain.TransitionResponse, error) {
	orch, ok := s.getSession(leadID)
	if !ok || orch.State() != workflow.StateBookingPending {
		return nil, ErrNoPendingTransition
	}

	in := workflow.ScheduleInput{
		TotalSaleValue: req.TotalSaleValue,
		PaymentStages:  req.PaymentStages,
	}
	if err := orch.SubmitBooking(in); err != nil {
		// Session stays open so the caller can correct and resubmit.
		return nil, err
	}

	return s.confirmSession(ctx, leadID, orch)
}

// GetBooking returns the booking and payment schedule created when the
// lead converted to Booked.
func (s *LeadService) GetBooking(ctx context.Context, leadID uuid.UUID) (*domain.BookingDTO, error) {
	if _, err := s.leadRepo.GetByID(ctx, leadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	booking, err := s.bookingRepo.GetByLeadID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	dto := mapper.ToBookingDTO(booking)
	return &dto, nil
}

// CancelBooking discards a captured booking payload but keeps the
// pending Booked selection. The caller re-enters the schedule, or
// starts a different transition, afterwards.
func (s *LeadService) CancelBooking(ctx context.Context, leadID uuid.UUID) error {
	orch, ok := s.getSession(leadID)
	if !ok {
		return ErrNoPendingTransition
	}
	if err := orch.CancelBooking(); err != nil {
		return err
	}
	s.logger.Info("booking capture cancelled", zap.String("lead_id", leadID.String()))
	return nil
}

// CancelTransition discards a pending transition. Nothing has been
// persisted before the commit, so cancelling has no side effects.
func (s *LeadService) CancelTransition(ctx context.Context, leadID uuid.UUID) error {
	orch, ok := s.getSession(leadID)
	if !ok {
		return ErrNoPendingTransition
	}
	if err := orch.Abandon(); err != nil {
		return err
	}
	s.dropSession(leadID)
	s.logger.Info("transition cancelled", zap.String("lead_id", leadID.String()))
	return nil
}

func (s *LeadService) confirmSession(ctx context.Context, leadID uuid.UUID, orch *workflow.Orchestrator) (*domain.TransitionResponse, error) {
	result, err := orch.Confirm(ctx)
	if err != nil {
		var collab *workflow.CollaboratorError
		if errors.As(err, &collab) {
			// The orchestrator kept its state; the caller may retry.
			return nil, err
		}
		s.dropSession(leadID)
		return nil, err
	}
	s.dropSession(leadID)

	leadDTO := mapper.ToLeadDTO(result.Lead)
	entryDTO := mapper.ToTimelineEntryDTO(result.TimelineEntry)
	return &domain.TransitionResponse{
		Status:   "completed",
		Lead:     &leadDTO,
		Timeline: &entryDTO,
	}, nil
}

// UpdateStage commits a finalized stage update in one transaction: the
// lead row, the timeline entry and, for Booked, the booking with its
// payment schedule.
func (s *LeadService) UpdateStage(ctx context.Context, update workflow.StageUpdate) (*workflow.StageUpdateResult, error) {
	changedByID, changedByName := actingUser(ctx)

	var result workflow.StageUpdateResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var lead domain.Lead
		if err := tx.Where("id = ?", update.LeadID).First(&lead).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLeadNotFound
			}
			return fmt.Errorf("failed to get lead: %w", err)
		}

		fromStage := lead.Stage
		lead.Stage = update.NewStage
		lead.LostReason = update.LostReason
		if update.SiteVisitDate != "" {
			visit, err := time.Parse("2006-01-02", update.SiteVisitDate)
			if err != nil {
				return fmt.Errorf("invalid site visit date: %w", err)
			}
			lead.SiteVisitDate = &visit
		}

		if err := tx.Omit(clause.Associations).Save(&lead).Error; err != nil {
			return fmt.Errorf("failed to update lead: %w", err)
		}

		entry := &domain.LeadTimelineEntry{
			LeadID:        lead.ID,
			FromStage:     &fromStage,
			ToStage:       update.NewStage,
			Remark:        update.Remark,
			ChangedByID:   changedByID,
			ChangedByName: changedByName,
			ChangedAt:     time.Now().UTC(),
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to record timeline entry: %w", err)
		}

		if update.Booking != nil {
			booking := &domain.Booking{
				LeadID:               lead.ID,
				TotalSaleValue:       update.Booking.TotalSaleValue,
				CommissionPercentage: update.Booking.CommissionPercentage,
				CommissionAmount:     update.Booking.CommissionAmount,
			}
			for i, stage := range update.Booking.PaymentStages {
				due, err := time.Parse("2006-01-02", stage.DueDate)
				if err != nil {
					return fmt.Errorf("invalid due date on payment stage %d: %w", i+1, err)
				}
				ps := domain.PaymentStage{
					StageName:    stage.StageName,
					Amount:       stage.Amount,
					DueDate:      due,
					Status:       stage.Status,
					Remark:       stage.Remark,
					DisplayOrder: i,
				}
				if stage.PaidDate != "" {
					paid, err := time.Parse("2006-01-02", stage.PaidDate)
					if err != nil {
						return fmt.Errorf("invalid paid date on payment stage %d: %w", i+1, err)
					}
					ps.PaidDate = &paid
				}
				booking.PaymentStages = append(booking.PaymentStages, ps)
			}
			if err := tx.Create(booking).Error; err != nil {
				return fmt.Errorf("failed to create booking: %w", err)
			}
			lead.Booking = booking
			result.BookingID = &booking.ID
		}

		result.Lead = &lead
		result.TimelineEntry = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lead stage updated",
		zap.String("lead_id", update.LeadID.String()),
		zap.String("to_stage", string(update.NewStage)),
		zap.Bool("with_booking", update.Booking != nil))

	return &result, nil
}

func (s *LeadService) openSession(leadID uuid.UUID, current domain.LeadStage) (*workflow.Orchestrator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[leadID]; ok {
		switch existing.State() {
		case workflow.StateIdle, workflow.StateStageSelected:
			// A session parked in StageSelected held a commit the
			// collaborator rejected; starting over revalidates the
			// selection and retries.
		default:
			return nil, ErrTransitionInProgress
		}
	}

	orch := workflow.NewOrchestrator(leadID, current, s, s.logger)
	s.sessions[leadID] = orch
	return orch, nil
}

func (s *LeadService) getSession(leadID uuid.UUID) (*workflow.Orchestrator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orch, ok := s.sessions[leadID]
	return orch, ok
}

func (s *LeadService) dropSession(leadID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, leadID)
}

func actingUser(ctx context.Context) (string, string) {
	if userCtx, ok := auth.FromContext(ctx); ok {
		return userCtx.UserID.String(), userCtx.DisplayName
	}
	return "", ""
}
