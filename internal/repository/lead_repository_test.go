package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/brickline/lead-api/internal/domain"
	"github.com/brickline/lead-api/internal/repository"
	"github.com/brickline/lead-api/internal/testutil"
)

func createLead(t *testing.T, db *gorm.DB, name string, stage domain.LeadStage, budget float64) *domain.Lead {
	t.Helper()
	lead := &domain.Lead{
		Name:    name,
		Phone:   "+91 90000 00000",
		Email:   "lead@example.com",
		Source:  domain.LeadSourceWebsite,
		Budget:  budget,
		Stage:   stage,
		OwnerID: "owner-1",
	}
	require.NoError(t, db.Create(lead).Error)
	return lead
}

func TestLeadRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLeadRepository(db)
	ctx := context.Background()

	createLead(t, db, "Asha Verma", domain.StageNewLead, 5000000)
	createLead(t, db, "Rohan Mehta", domain.StageContacted, 9000000)
	createLead(t, db, "Priya Nair", domain.StageContacted, 7000000)

	t.Run("no filters returns everything", func(t *testing.T) {
		leads, total, err := repo.List(ctx, 1, 20, nil, repository.LeadSortByCreatedDesc)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, leads, 3)
	})

	t.Run("filter by stage", func(t *testing.T) {
		stage := domain.StageContacted
		leads, total, err := repo.List(ctx, 1, 20, &repository.LeadFilters{Stage: &stage}, repository.LeadSortByCreatedDesc)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, leads, 2)
	})

	t.Run("budget range", func(t *testing.T) {
		min := 6000000.0
		max := 8000000.0
		leads, _, err := repo.List(ctx, 1, 20, &repository.LeadFilters{MinBudget: &min, MaxBudget: &max}, repository.LeadSortByCreatedDesc)
		require.NoError(t, err)
		require.Len(t, leads, 1)
		assert.Equal(t, "Priya Nair", leads[0].Name)
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		q := "rohan"
		leads, _, err := repo.List(ctx, 1, 20, &repository.LeadFilters{SearchQuery: &q}, repository.LeadSortByCreatedDesc)
		require.NoError(t, err)
		require.Len(t, leads, 1)
		assert.Equal(t, "Rohan Mehta", leads[0].Name)
	})

	t.Run("budget sort", func(t *testing.T) {
		leads, _, err := repo.List(ctx, 1, 20, nil, repository.LeadSortByBudgetDesc)
		require.NoError(t, err)
		require.Len(t, leads, 3)
		assert.Equal(t, 9000000.0, leads[0].Budget)
		assert.Equal(t, 5000000.0, leads[2].Budget)
	})

	t.Run("pagination", func(t *testing.T) {
		leads, total, err := repo.List(ctx, 2, 2, nil, repository.LeadSortByBudgetAsc)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, leads, 1)
		assert.Equal(t, 9000000.0, leads[0].Budget)
	})
}

func TestLeadRepository_CountByStage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLeadRepository(db)

	createLead(t, db, "A", domain.StageNewLead, 0)
	createLead(t, db, "B", domain.StageNewLead, 0)
	createLead(t, db, "C", domain.StageBooked, 0)

	counts, err := repo.CountByStage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[domain.StageNewLead])
	assert.Equal(t, int64(1), counts[domain.StageBooked])
	assert.Zero(t, counts[domain.StageNegotiation])
}

func TestLeadRepository_GetDueForFollowUp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLeadRepository(db)
	asOf := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	overdue := createLead(t, db, "Due", domain.StageContacted, 0)
	past := asOf.AddDate(0, 0, -3)
	require.NoError(t, db.Model(overdue).Update("follow_up_date", past).Error)

	future := createLead(t, db, "Later", domain.StageContacted, 0)
	upcoming := asOf.AddDate(0, 0, 7)
	require.NoError(t, db.Model(future).Update("follow_up_date", upcoming).Error)

	// Terminal stages are excluded even with an overdue follow-up.
	booked := createLead(t, db, "Closed", domain.StageBooked, 0)
	require.NoError(t, db.Model(booked).Update("follow_up_date", past).Error)

	leads, err := repo.GetDueForFollowUp(context.Background(), asOf)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Due", leads[0].Name)
}

func TestLeadRepository_DeleteRemovesLead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLeadRepository(db)
	ctx := context.Background()

	lead := createLead(t, db, "Gone", domain.StageNewLead, 0)
	require.NoError(t, repo.Delete(ctx, lead.ID))

	_, err := repo.GetByID(ctx, lead.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
