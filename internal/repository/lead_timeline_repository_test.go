package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickline/lead-api/internal/domain"
	"github.com/brickline/lead-api/internal/repository"
	"github.com/brickline/lead-api/internal/testutil"
)

func TestLeadTimelineRepository_RecordTransition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLeadTimelineRepository(db)
	ctx := context.Background()
	lead := testutil.CreateTestLead(t, db, domain.StageNewLead)

	from := domain.StageNewLead
	entry, err := repo.RecordTransition(ctx, lead.ID, &from, domain.StageContacted, "user-1", "Test Agent", "first call")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, domain.StageContacted, entry.ToStage)
	require.NotNil(t, entry.FromStage)
	assert.Equal(t, domain.StageNewLead, *entry.FromStage)
	assert.False(t, entry.ChangedAt.IsZero())

	t.Run("history comes back newest first", func(t *testing.T) {
		from := domain.StageContacted
		_, err := repo.RecordTransition(ctx, lead.ID, &from, domain.StageNegotiation, "user-1", "Test Agent", "")
		require.NoError(t, err)

		entries, err := repo.GetByLeadID(ctx, lead.ID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, domain.StageNegotiation, entries[0].ToStage)
		assert.Equal(t, domain.StageContacted, entries[1].ToStage)
	})

	t.Run("latest entry", func(t *testing.T) {
		latest, err := repo.GetLatestByLeadID(ctx, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StageNegotiation, latest.ToStage)
	})

	t.Run("transitions into a stage", func(t *testing.T) {
		from := time.Now().UTC().Add(-time.Hour)
		to := time.Now().UTC().Add(time.Hour)
		entries, err := repo.GetTransitionsToStage(ctx, domain.StageContacted, from, to)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, lead.ID, entries[0].LeadID)
	})
}
