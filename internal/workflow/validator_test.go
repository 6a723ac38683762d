package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickline/lead-api/internal/domain"
	"github.com/brickline/lead-api/internal/workflow"
)

func TestValidate(t *testing.T) {
	t.Run("unknown stage", func(t *testing.T) {
		_, err := workflow.Validate(domain.StageNewLead, workflow.TransitionCommand{
			TargetStage: "Qualified",
		})
		verr, ok := workflow.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, workflow.KindUnknownStage, verr.Kind)
	})

	t.Run("plain stage change", func(t *testing.T) {
		out, err := workflow.Validate(domain.StageNewLead, workflow.TransitionCommand{
			TargetStage: domain.StageContacted,
			Remark:      "  spoke on phone  ",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StageContacted, out.TargetStage)
		assert.Equal(t, "spoke on phone", out.Remark)
		assert.False(t, out.RequiresBooking)
	})

	t.Run("lost requires a reason", func(t *testing.T) {
		_, err := workflow.Validate(domain.StageNegotiation, workflow.TransitionCommand{
			TargetStage: domain.StageLostDead,
			LostReason:  "   ",
		})
		verr, ok := workflow.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, workflow.KindMissingLostReason, verr.Kind)
	})

	t.Run("lost with a reason", func(t *testing.T) {
		out, err := workflow.Validate(domain.StageNegotiation, workflow.TransitionCommand{
			TargetStage: domain.StageLostDead,
			LostReason:  " bought with a competitor ",
		})
		require.NoError(t, err)
		assert.Equal(t, "bought with a competitor", out.LostReason)
	})

	t.Run("lost reason is dropped for other stages", func(t *testing.T) {
		out, err := workflow.Validate(domain.StageNewLead, workflow.TransitionCommand{
			TargetStage: domain.StageContacted,
			LostReason:  "should not be carried",
		})
		require.NoError(t, err)
		assert.Empty(t, out.LostReason)
	})

	t.Run("site visit requires a date", func(t *testing.T) {
		_, err := workflow.Validate(domain.StageContacted, workflow.TransitionCommand{
			TargetStage: domain.StageSiteVisitScheduled,
		})
		verr, ok := workflow.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, workflow.KindMissingSiteVisitDate, verr.Kind)
	})

	t.Run("site visit date is normalized", func(t *testing.T) {
		out, err := workflow.Validate(domain.StageContacted, workflow.TransitionCommand{
			TargetStage:   domain.StageSiteVisitScheduled,
			SiteVisitDate: "15/03/2024",
		})
		require.NoError(t, err)
		assert.Equal(t, "2024-03-15", out.SiteVisitDate)
	})

	t.Run("site visit date in the past is accepted", func(t *testing.T) {
		out, err := workflow.Validate(domain.StageContacted, workflow.TransitionCommand{
			TargetStage:   domain.StageSiteVisitScheduled,
			SiteVisitDate: "2001-01-01",
		})
		require.NoError(t, err)
		assert.Equal(t, "2001-01-01", out.SiteVisitDate)
	})

	t.Run("booked defers to the booking schedule", func(t *testing.T) {
		out, err := workflow.Validate(domain.StageNegotiation, workflow.TransitionCommand{
			TargetStage: domain.StageBooked,
		})
		require.NoError(t, err)
		assert.True(t, out.RequiresBooking)
	})

	t.Run("moving backwards is allowed", func(t *testing.T) {
		out, err := workflow.Validate(domain.StageNegotiation, workflow.TransitionCommand{
			TargetStage: domain.StageContacted,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StageContacted, out.TargetStage)
	})
}

func TestStageCatalog(t *testing.T) {
	t.Run("holds all eight stages in pipeline order", func(t *testing.T) {
		stages := workflow.Stages()
		require.Len(t, stages, 8)
		assert.Equal(t, domain.StageNewLead, stages[0].Value)
		assert.Equal(t, domain.StageBooked, stages[6].Value)
		assert.Equal(t, domain.StageLostDead, stages[7].Value)
		for _, s := range stages {
			assert.NotEmpty(t, s.Label)
			assert.NotEmpty(t, s.Color)
		}
	})

	t.Run("lookup by value", func(t *testing.T) {
		info, ok := workflow.StageByValue(domain.StageSiteVisitScheduled)
		require.True(t, ok)
		assert.Equal(t, domain.StageSiteVisitScheduled, info.Value)

		_, ok = workflow.StageByValue("Archived")
		assert.False(t, ok)
	})

	t.Run("stage index", func(t *testing.T) {
		assert.Equal(t, 0, workflow.StageIndex(domain.StageNewLead))
		assert.Equal(t, -1, workflow.StageIndex("Archived"))
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		stages := workflow.Stages()
		stages[0].Label = "mutated"
		assert.NotEqual(t, "mutated", workflow.Stages()[0].Label)
	})
}
