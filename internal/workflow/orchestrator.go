package workflow

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brickline/lead-api/internal/domain"
)

// State identifies where an orchestrator is in the transition
// workflow.
type State string

const (
	// StateIdle means no transition is in progress.
	StateIdle State = "idle"
	// StateStageSelected means a stage change was validated and can be
	// confirmed immediately.
	StateStageSelected State = "stage_selected"
	// StateBookingPending means the selected stage is Booked and the
	// workflow is suspended until a booking schedule arrives.
	StateBookingPending State = "booking_pending"
	// StateReady means the booking schedule was validated and merged
	// with the stored stage change.
	StateReady State = "ready"
	// StateSubmitting means the update is in flight to the updater.
	StateSubmitting State = "submitting"
)

// StageUpdate is the single finalized command handed to the
// LeadUpdater. Booking is set only for transitions to Booked.
type StageUpdate struct {
	LeadID        uuid.UUID
	NewStage      domain.LeadStage
	Remark        string
	LostReason    string
	SiteVisitDate string
	Booking       *ValidatedSchedule
}

// StageUpdateResult is what the updater reports back after a
// successful commit. BookingID is set when a booking was created.
type StageUpdateResult struct {
	Lead          *domain.Lead
	TimelineEntry *domain.LeadTimelineEntry
	BookingID     *uuid.UUID
}

// LeadUpdater commits a finalized stage update. Implementations are
// expected to persist the stage change, append the timeline entry and
// create the booking record in one transaction.
type LeadUpdater interface {
	UpdateStage(ctx context.Context, update StageUpdate) (*StageUpdateResult, error)
}

// Orchestrator drives a single lead's transition from stage selection
// through validation, optional booking capture and the final commit.
//
// An orchestrator serves one session and is not safe for concurrent
// use; callers hold at most one per lead and serialize access to it.
// The busy flag guards against re-entrant confirmation while a commit
// is in flight.
type Orchestrator struct {
	leadID  uuid.UUID
	current domain.LeadStage
	updater LeadUpdater
	logger  *zap.Logger

	state   State
	pending *ValidatedCommand
	booking *ValidatedSchedule
	busy    bool
}

// NewOrchestrator creates an orchestrator for one lead at its current
// stage.
func NewOrchestrator(leadID uuid.UUID, current domain.LeadStage, updater LeadUpdater, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		leadID:  leadID,
		current: current,
		updater: updater,
		logger:  logger,
		state:   StateIdle,
	}
}

// State returns the orchestrator's current workflow state.
func (o *Orchestrator) State() State {
	return o.state
}

// PendingCommand returns the validated stage change held by the
// orchestrator, or nil when none is in progress.
func (o *Orchestrator) PendingCommand() *ValidatedCommand {
	if o.pending == nil {
		return nil
	}
	cmd := *o.pending
	return &cmd
}

// PendingSchedule returns the validated booking schedule held by the
// orchestrator, or nil when none was captured.
func (o *Orchestrator) PendingSchedule() *ValidatedSchedule {
	if o.booking == nil {
		return nil
	}
	schedule := *o.booking
	return &schedule
}

// SelectStage validates a stage change and stores it. For a target of
// Booked the orchestrator suspends in StateBookingPending and waits
// for SubmitBooking; every other target moves to StateStageSelected
// and can be confirmed directly.
func (o *Orchestrator) SelectStage(cmd TransitionCommand) error {
	if o.state != StateIdle {
		return errInvalidState("a transition is already in progress for this lead")
	}

	validated, err := Validate(o.current, cmd)
	if err != nil {
		return err
	}

	o.pending = validated
	if validated.RequiresBooking {
		o.state = StateBookingPending
	} else {
		o.state = StateStageSelected
	}

	o.logger.Debug("stage selected",
		zap.String("leadId", o.leadID.String()),
		zap.String("targetStage", string(validated.TargetStage)),
		zap.String("state", string(o.state)))
	return nil
}

// SubmitBooking validates the booking schedule for a pending Booked
// transition and merges it with the stored stage change, moving the
// orchestrator to StateReady. A failed validation leaves the
// orchestrator in StateBookingPending so the caller can resubmit.
func (o *Orchestrator) SubmitBooking(in ScheduleInput) error {
	if o.state != StateBookingPending {
		return errInvalidState("no booking is pending for this lead")
	}

	schedule, err := ValidateSchedule(in)
	if err != nil {
		return err
	}

	o.booking = schedule
	o.state = StateReady

	o.logger.Debug("booking schedule accepted",
		zap.String("leadId", o.leadID.String()),
		zap.Float64("totalSaleValue", schedule.TotalSaleValue),
		zap.Float64("commissionAmount", schedule.CommissionAmount),
		zap.Int("paymentStages", len(schedule.PaymentStages)))
	return nil
}

// Confirm commits the stored transition through the updater. It is
// valid in StateStageSelected and StateReady. On success the
// orchestrator returns to StateIdle; if the updater fails, the
// orchestrator returns to StateStageSelected for a plain change or to
// StateBookingPending for a merged booking change, keeping the
// captured input intact so the caller may resubmit. The failure is
// reported as a CollaboratorError.
func (o *Orchestrator) Confirm(ctx context.Context) (*StageUpdateResult, error) {
	if o.busy {
		return nil, errInvalidState("an update is already in flight for this lead")
	}
	if o.state != StateStageSelected && o.state != StateReady {
		return nil, errInvalidState("no confirmed transition is ready to submit")
	}
	if o.pending.RequiresBooking && o.booking == nil {
		return nil, errInvalidState("the booking schedule has not been captured")
	}

	resume := o.state
	if resume == StateReady {
		resume = StateBookingPending
	}
	o.state = StateSubmitting
	o.busy = true
	defer func() { o.busy = false }()

	update := StageUpdate{
		LeadID:        o.leadID,
		NewStage:      o.pending.TargetStage,
		Remark:        o.pending.Remark,
		LostReason:    o.pending.LostReason,
		SiteVisitDate: o.pending.SiteVisitDate,
		Booking:       o.booking,
	}

	result, err := o.updater.UpdateStage(ctx, update)
	if err != nil {
		o.state = resume
		o.logger.Warn("stage update rejected",
			zap.String("leadId", o.leadID.String()),
			zap.String("targetStage", string(update.NewStage)),
			zap.Error(err))
		return nil, &CollaboratorError{Err: err}
	}

	o.logger.Info("stage update committed",
		zap.String("leadId", o.leadID.String()),
		zap.String("fromStage", string(o.current)),
		zap.String("toStage", string(update.NewStage)))

	o.current = update.NewStage
	o.pending = nil
	o.booking = nil
	o.state = StateIdle
	return result, nil
}

// CancelBooking discards the captured booking schedule but keeps the
// validated stage selection, returning to StateStageSelected with the
// prior remark intact. The schedule must be submitted again before the
// transition can complete.
func (o *Orchestrator) CancelBooking() error {
	if o.state != StateBookingPending && o.state != StateReady {
		return errInvalidState("no booking capture is in progress for this lead")
	}
	o.booking = nil
	o.state = StateStageSelected
	o.logger.Debug("booking capture cancelled",
		zap.String("leadId", o.leadID.String()))
	return nil
}

// Abandon discards the in-progress transition and returns to
// StateIdle. Nothing has been persisted before Confirm succeeds, so no
// compensating action is needed. Abandoning during an in-flight commit
// is rejected.
func (o *Orchestrator) Abandon() error {
	if o.state == StateSubmitting {
		return errInvalidState("cannot abandon while an update is in flight")
	}
	o.pending = nil
	o.booking = nil
	o.state = StateIdle
	return nil
}
