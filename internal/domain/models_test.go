package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brickline/lead-api/internal/domain"
)

func TestLeadStage(t *testing.T) {
	t.Run("catalog members are valid", func(t *testing.T) {
		stages := []domain.LeadStage{
			domain.StageNewLead,
			domain.StageContacted,
			domain.StageSiteVisitScheduled,
			domain.StageSiteVisitCompleted,
			domain.StageNegotiation,
			domain.StageBookingInProgress,
			domain.StageBooked,
			domain.StageLostDead,
		}
		for _, stage := range stages {
			assert.True(t, stage.IsValid(), "stage %q should be valid", stage)
		}
	})

	t.Run("values outside the catalog are invalid", func(t *testing.T) {
		assert.False(t, domain.LeadStage("Qualified").IsValid())
		assert.False(t, domain.LeadStage("").IsValid())
		assert.False(t, domain.LeadStage("new lead").IsValid())
	})

	t.Run("only booked and lost are terminal", func(t *testing.T) {
		assert.True(t, domain.StageBooked.IsTerminal())
		assert.True(t, domain.StageLostDead.IsTerminal())
		assert.False(t, domain.StageNewLead.IsTerminal())
		assert.False(t, domain.StageNegotiation.IsTerminal())
	})
}

func TestPaymentStatus(t *testing.T) {
	assert.True(t, domain.PaymentStatusUnpaid.IsValid())
	assert.True(t, domain.PaymentStatusPaid.IsValid())
	assert.True(t, domain.PaymentStatusOverdue.IsValid())
	assert.False(t, domain.PaymentStatus("pending").IsValid())
	assert.False(t, domain.PaymentStatus("").IsValid())
}
