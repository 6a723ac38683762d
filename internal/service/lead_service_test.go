package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/brickline/lead-api/internal/domain"
	"github.com/brickline/lead-api/internal/repository"
	"github.com/brickline/lead-api/internal/service"
	"github.com/brickline/lead-api/internal/testutil"
	"github.com/brickline/lead-api/internal/workflow"
)

func newLeadService(t *testing.T) (*service.LeadService, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	svc := service.NewLeadService(
		db,
		repository.NewLeadRepository(db),
		repository.NewLeadTimelineRepository(db),
		repository.NewBookingRepository(db),
		zap.NewNop(),
	)
	return svc, db
}

func TestLeadService_CreateLead(t *testing.T) {
	svc, db := newLeadService(t)
	ctx := testutil.TestContext()

	dto, err := svc.CreateLead(ctx, &domain.CreateLeadRequest{
		Name:            "Rohan Mehta",
		Phone:           "+91 98765 43210",
		Email:           "rohan@example.com",
		Source:          domain.LeadSourceReferral,
		ProjectInterest: "Sunrise Towers",
		Budget:          9000000,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StageNewLead, dto.Stage)
	assert.Equal(t, "Rohan Mehta", dto.Name)

	// The opening timeline entry is written in the same transaction.
	var entries []domain.LeadTimelineEntry
	require.NoError(t, db.Where("lead_id = ?", dto.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].FromStage)
	assert.Equal(t, domain.StageNewLead, entries[0].ToStage)
}

func TestLeadService_StartTransition_Completed(t *testing.T) {
	svc, db := newLeadService(t)
	ctx := testutil.TestContext()
	lead := testutil.CreateTestLead(t, db, domain.StageNewLead)

	resp, err := svc.StartTransition(ctx, lead.ID, &domain.TransitionRequest{
		TargetStage: domain.StageContacted,
		Remark:      "phone call, interested",
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.Lead)
	assert.Equal(t, domain.StageContacted, resp.Lead.Stage)
	require.NotNil(t, resp.Timeline)
	require.NotNil(t, resp.Timeline.FromStage)
	assert.Equal(t, domain.StageNewLead, *resp.Timeline.FromStage)
	assert.Equal(t, domain.StageContacted, resp.Timeline.ToStage)
	assert.Equal(t, "phone call, interested", resp.Timeline.Remark)

	var stored domain.Lead
	require.NoError(t, db.First(&stored, "id = ?", lead.ID).Error)
	assert.Equal(t, domain.StageContacted, stored.Stage)
}

func TestLeadService_StartTransition_SiteVisit(t *testing.T) {
	svc, db := newLeadService(t)
	ctx := testutil.TestContext()
	lead := testutil.CreateTestLead(t, db, domain.StageContacted)

	// Stage and visit date travel in the same request.
	resp, err := svc.StartTransition(ctx, lead.ID, &domain.TransitionRequest{
		TargetStage:   domain.StageSiteVisitScheduled,
		SiteVisitDate: "2024-03-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)

	var stored domain.Lead
	require.NoError(t, db.First(&stored, "id = ?", lead.ID).Error)
	assert.Equal(t, domain.StageSiteVisitScheduled, stored.Stage)
	require.NotNil(t, stored.SiteVisitDate)
	assert.Equal(t, "2024-03-15", stored.SiteVisitDate.Format("2006-01-02"))
}

func TestLeadService_StartTransition_ValidationError(t *testing.T) {
	svc, db := newLeadService(t)
	ctx := testutil.TestContext()
	lead := testutil.CreateTestLead(t, db, domain.StageNegotiation)

	_, err := svc.StartTransition(ctx, lead.ID, &domain.TransitionRequest{
		TargetStage: domain.StageLostDead,
	})
	verr, ok := workflow.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, workflow.KindMissingLostReason, verr.Kind)

	// The failed attempt holds no session, a corrected call goes through.
	resp, err := svc.StartTransition(ctx, lead.ID, &domain.TransitionRequest{
		TargetStage: domain.StageLostDead,
		LostReason:  "budget mismatch",
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "budget mismatch", resp.Lead.LostReason)
}

func TestLeadService_LostReasonClearedOnReactivation(t *testing.T) {
	svc, db := newLeadService(t)
	ctx := testutil.TestContext()
	lead := testutil.CreateTestLead(t, db, domain.StageNegotiation)

	_, err := svc.StartTransition(ctx, lead.ID, &domain.TransitionRequest{
		TargetStage: domain.StageLostDead,
		LostReason:  "went quiet",
	})
	require.NoError(t, err)

	resp, err := svc.StartTransition(ctx, lead.ID, &domain.TransitionRequest{
		TargetStage: domain.StageContacted,
		Remark:      "reached out again",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Lead.LostReason)

	var stored domain.Lead
	require.NoError(t, db.First(&stored, "id = ?", lead.ID).Error)
	assert.Empty(t, stored.LostReason)
}

func TestLeadService_BookingFlow(t *testing.T) {
	svc, db := newLeadService(t)
	ctx := testutil.TestContext()
	lead := testutil.CreateTestLead(t, db, domain.StageNegotiation)

	resp, err := svc.StartTransition(ctx, lead.ID, &domain.TransitionRequest{
		TargetStage: domain.StageBooked,
	})
	require.NoError(t, err)
	assert.Equal(t, "booking_required", resp.Status)
	assert.Nil(t, resp.Lead)

	// Nothing is persisted while the transition waits for the payload.
	var stored domain.Lead
	require.NoError(t, db.First(&stored, "id = ?", lead.ID).Error)
	assert.Equal(t, domain.StageNegotiation, stored.Stage)

	resp, err = svc.CompleteBooking(ctx, lead.ID, &domain.BookingRequest{
		TotalSaleValue: "1,000,000",
		PaymentStages: []domain.PaymentStageInput{
			{StageName: "Token", Amount: "100000", DueDate: "2024-06-01", Status: "unpaid"},
			{StageName: "On Registration", Amount: "400000", DueDate: "15/07/2024", Status: "unpaid"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, domain.StageBooked, resp.Lead.Stage)
	require.NotNil(t, resp.Lead.Booking)
	assert.Equal(t, 1000000.0, resp.Lead.Booking.TotalSaleValue)
	assert.Equal(t, 2.5, resp.Lead.Booking.CommissionPercentage)
	assert.Equal(t, 25000.0, resp.Lead.Booking.CommissionAmount)

	var booking domain.Booking
	require.NoError(t, db.Preload("PaymentStages", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("display_order ASC")
	}).First(&booking, "lead_id = ?", lead.ID).Error)
	require.Len(t, booking.PaymentStages, 2)
	assert.Equal(t, "Token", booking.PaymentStages[0].StageName)
	assert.Equal(t, 0, booking.PaymentStages[0].DisplayOrder)
	assert.Equal(t, "On Registration", booking.PaymentStages[1].StageName)
	assert.Equal(t, "2024-07-15", booking.PaymentStages[1].DueDate.Format("2006-01-02"))
	assert.Equal(t, domain.PaymentStatusUnpaid, booking.PaymentStages[1].Status)
}

func TestLeadService_CompleteBooking_InvalidPayloadAllowsResubmit(t *testing.T) {
	svc, db := newLeadService(t)
	ctx := testutil.TestContext()
	lead := testutil.CreateTestLead(t, db, domain.StageNegotiation)

	_, err := svc.StartTransition(ctx, lead.ID, &domain.TransitionRequest{
		TargetStage: domain.StageBooked,
	})
	require.NoError(t, err)

	_, err = svc.CompleteBooking(ctx, lead.ID, &domain.BookingRequest{
		TotalSaleValue: "1000000",
	})
	verr, ok := workflow.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, workflow.KindEmptySchedule, verr.Kind)

	// The session survives the failed payload, a corrected one commits.
	resp, err := svc.CompleteBooking(ctx, lead.ID, &domain.BookingRequest{
		TotalSaleValue: "1000000",
		PaymentStages:  []domain.PaymentStageInput{{StageName: "Token", Amount: "100000", DueDate: "2024-06-01", Status: "unpaid"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
}

func TestLeadService_CompleteBooking_NoPendingTransition(t *testing.T) {
	svc, db := newLeadService(t)
	ctx := testutil.TestContext()
	lead := testutil.CreateTestLead(t, db, domain.StageNegotiation)

	_, err := svc.CompleteBooking(ctx, lead.ID, &domain.BookingRequest{
		TotalSaleValue: "1000000",
		PaymentStages:  []domain.PaymentStageInput{{StageName: "Token", Amount: "100000", DueDate: "2024-06-01", Status: "unpaid"}},
	})
	assert.ErrorIs(t, err, service.ErrNoPendingTransition)
}

func TestLeadService_BookingRetryAfterCommitFailure(t *testing.T) {
	svc, db := newLeadService(t)
	ctx := testutil.TestContext()
	lead := testutil.CreateTestLead(t, db, domain.StageNegotiation)

	_, err := svc.StartTransition(ctx, lead.ID, &domain.TransitionRequest{
		TargetStage: domain.StageBooked,
	})
	require.NoError(t, err)

	// A booking row already on the lead makes the commit violate the
	// one-booking-per-lead constraint.
	conflicting := &domain.Booking{
		LeadID:               lead.ID,
		TotalSaleValue:       1,
		CommissionPercentage: domain.CommissionPercentage,
		CommissionAmount:     0.03,
	}
	require.NoError(t, db.Create(conflicting).Error)

	var timelineBefore int64
	require.NoError(t, db.Model(&domain.LeadTimelineEntry{}).Where("lead_id = ?", lead.ID).Count(&timelineBefore).Error)

	payload := &domain.BookingRequest{
		TotalSaleValue: "1000000",
		PaymentStages:  []domain.PaymentStageInput{{StageName: "Token", Amount: "100000", DueDate: "2024-06-01", Status: "unpaid"}},
	}
	_, err = svc.CompleteBooking(ctx, lead.ID, payload)
	var collab *workflow.CollaboratorError
	require.ErrorAs(t, err, &collab)

	// The failed commit left nothing behind.
	var stored domain.Lead
	require.NoError(t, db.First(&stored, "id = ?", lead.ID).Error)
	assert.Equal(t, domain.StageNegotiation, stored.Stage)
	var timelineAfter int64
	require.NoError(t, db.Model(&domain.LeadTimelineEntry{}).Where("lead_id = ?", lead.ID).Count(&timelineAfter).Error)
	assert.Equal(t, timelineBefore, timelineAfter)

	// Once the conflict is gone, resubmitting the same payload commits.
	require.NoError(t, db.Delete(conflicting).Error)
	resp, err := svc.CompleteBooking(ctx, lead.ID, payload)
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, domain.StageBooked, resp.Lead.Stage)
	require.NotNil(t, resp.Lead.Booking)
	assert.Equal(t, 25000.0, resp.Lead.Booking.CommissionAmount)
}

func TestLeadService_TransitionRetryAfterCommitFailure(t *testing.T) {
	svc, db := newLeadService(t)
	ctx := testutil.TestContext()
	lead := testutil.CreateTestLead(t, db, domain.StageNewLead)

	require.NoError(t, db.Exec("CREATE TRIGGER leads_locked BEFORE UPDATE ON leads BEGIN SELECT RAISE(ABORT, 'leads locked'); END").Error)

	req := &domain.TransitionRequest{
		TargetStage: domain.StageContacted,
		Remark:      "called back",
	}
	_, err := svc.StartTransition(ctx, lead.ID, req)
	var collab *workflow.CollaboratorError
	require.ErrorAs(t, err, &collab)

	require.NoError(t, db.Exec("DROP TRIGGER leads_locked").Error)

	// The rejected commit does not wedge the lead; the same request
	// goes through once the fault clears.
	resp, err := svc.StartTransition(ctx, lead.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, domain.StageContacted, resp.Lead.Stage)
	assert.Equal(t, "called back", resp.Timeline.Remark)
}

func TestLeadService_GetBooking(t *testing.T) {
	svc, db := newLeadService(t)
	ctx := testutil.TestContext()
	lead := testutil.CreateTestLead(t, db, domain.StageNegotiation)

	_, err := svc.GetBooking(ctx, lead.ID)
	assert.ErrorIs(t, err, service.ErrBookingNotFound)

	_, err = svc.GetBooking(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrLeadNotFound)

	_, err = svc.StartTransition(ctx, lead.ID, &domain.TransitionRequest{
		TargetStage: domain.StageBooked,
	})
	require.NoError(t, err)
	_, err = svc.CompleteBooking(ctx, lead.ID, &domain.BookingRequest{
		TotalSaleValue: "1,000,000",
		PaymentStages: []domain.PaymentStageInput{
			{StageName: "Token", Amount: "100000", DueDate: "2024-06-01", Status: "unpaid"},
			{StageName: "On Registration", Amount: "400000", DueDate: "2024-07-15", Status: "unpaid"},
		},
	})
	require.NoError(t, err)

	booking, err := svc.GetBooking(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000000.0, booking.TotalSaleValue)
	assert.Equal(t, 25000.0, booking.CommissionAmount)
	require.Len(t, booking.PaymentStages, 2)
	assert.Equal(t, "Token", booking.PaymentStages[0].StageName)
}

func TestLeadService_CancelBooking(t *testing.T) {
	svc, db := newLeadService(t)
	ctx := testutil.TestContext()
	lead := testutil.CreateTestLead(t, db, domain.StageNegotiation)

	_, err := svc.StartTransition(ctx, lead.ID, &domain.TransitionRequest{
		TargetStage: domain.StageBooked,
		Remark:      "agreed on price",
	})
	require.NoError(t, err)

	require.NoError(t, svc.CancelBooking(ctx, lead.ID))

	// The booking capture is closed, so a payload is refused...
	_, err = svc.CompleteBooking(ctx, lead.ID, &domain.BookingRequest{
		TotalSaleValue: "1000000",
		PaymentStages:  []domain.PaymentStageInput{{StageName: "Token", Amount: "100000", DueDate: "2024-06-01", Status: "unpaid"}},
	})
	assert.ErrorIs(t, err, service.ErrNoPendingTransition)

	// ...while the retained stage selection keeps the lead open for a
	// fresh transition.
	resp, err := svc.StartTransition(ctx, lead.ID, &domain.TransitionRequest{
		TargetStage: domain.StageBooked,
	})
	require.NoError(t, err)
	assert.Equal(t, "booking_required", resp.Status)

	err = svc.CancelBooking(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNoPendingTransition)
}

func TestLeadService_ConcurrentTransitionRejected(t *testing.T) {
	svc, db := newLeadService(t)
	ctx := testutil.TestContext()
	lead := testutil.CreateTestLead(t, db, domain.StageNegotiation)

	_, err := svc.StartTransition(ctx, lead.ID, &domain.TransitionRequest{
		TargetStage: domain.StageBooked,
	})
	require.NoError(t, err)

	_, err = svc.StartTransition(ctx, lead.ID, &domain.TransitionRequest{
		TargetStage: domain.StageContacted,
	})
	assert.ErrorIs(t, err, service.ErrTransitionInProgress)
}

func TestLeadService_CancelTransition(t *testing.T) {
	svc, db := newLeadService(t)
	ctx := testutil.TestContext()
	lead := testutil.CreateTestLead(t, db, domain.StageNegotiation)

	_, err := svc.StartTransition(ctx, lead.ID, &domain.TransitionRequest{
		TargetStage: domain.StageBooked,
	})
	require.NoError(t, err)

	require.NoError(t, svc.CancelTransition(ctx, lead.ID))

	// Nothing was persisted and the lead is free for a new transition.
	var bookings int64
	require.NoError(t, db.Model(&domain.Booking{}).Where("lead_id = ?", lead.ID).Count(&bookings).Error)
	assert.Zero(t, bookings)

	var stored domain.Lead
	require.NoError(t, db.First(&stored, "id = ?", lead.ID).Error)
	assert.Equal(t, domain.StageNegotiation, stored.Stage)

	resp, err := svc.StartTransition(ctx, lead.ID, &domain.TransitionRequest{
		TargetStage: domain.StageContacted,
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
}

func TestLeadService_CancelTransition_NoSession(t *testing.T) {
	svc, db := newLeadService(t)
	ctx := testutil.TestContext()
	lead := testutil.CreateTestLead(t, db, domain.StageNewLead)

	err := svc.CancelTransition(ctx, lead.ID)
	assert.ErrorIs(t, err, service.ErrNoPendingTransition)
}

func TestLeadService_StartTransition_LeadNotFound(t *testing.T) {
	svc, _ := newLeadService(t)
	ctx := testutil.TestContext()

	_, err := svc.StartTransition(ctx, uuid.New(), &domain.TransitionRequest{
		TargetStage: domain.StageContacted,
	})
	assert.ErrorIs(t, err, service.ErrLeadNotFound)
}

func TestLeadService_GetTimeline(t *testing.T) {
	svc, db := newLeadService(t)
	ctx := testutil.TestContext()
	lead := testutil.CreateTestLead(t, db, domain.StageNewLead)

	_, err := svc.StartTransition(ctx, lead.ID, &domain.TransitionRequest{
		TargetStage: domain.StageContacted,
	})
	require.NoError(t, err)
	_, err = svc.StartTransition(ctx, lead.ID, &domain.TransitionRequest{
		TargetStage: domain.StageNegotiation,
	})
	require.NoError(t, err)

	entries, err := svc.GetTimeline(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, domain.StageNegotiation, entries[0].ToStage)
	assert.Equal(t, domain.StageContacted, entries[1].ToStage)
}

func TestLeadService_UpdateLead(t *testing.T) {
	svc, db := newLeadService(t)
	ctx := testutil.TestContext()
	lead := testutil.CreateTestLead(t, db, domain.StageNewLead)

	name := "Asha V."
	budget := 8200000.0
	dto, err := svc.UpdateLead(ctx, lead.ID, &domain.UpdateLeadRequest{
		Name:   &name,
		Budget: &budget,
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha V.", dto.Name)
	assert.Equal(t, 8200000.0, dto.Budget)
	// Untouched fields are preserved.
	assert.Equal(t, lead.Phone, dto.Phone)
}

func TestLeadService_GetPipeline(t *testing.T) {
	svc, db := newLeadService(t)
	ctx := testutil.TestContext()
	testutil.CreateTestLead(t, db, domain.StageNewLead)
	testutil.CreateTestLead(t, db, domain.StageNewLead)
	testutil.CreateTestLead(t, db, domain.StageBooked)

	summaries, err := svc.GetPipeline(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 8)
	assert.Equal(t, domain.StageNewLead, summaries[0].Stage)
	assert.Equal(t, int64(2), summaries[0].Count)
	assert.Len(t, summaries[0].Leads, 2)
}

func TestLeadService_DeleteLead(t *testing.T) {
	svc, db := newLeadService(t)
	ctx := testutil.TestContext()
	lead := testutil.CreateTestLead(t, db, domain.StageNewLead)

	require.NoError(t, svc.DeleteLead(ctx, lead.ID))

	_, err := svc.GetLead(ctx, lead.ID)
	assert.ErrorIs(t, err, service.ErrLeadNotFound)
}
