package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brickline/lead-api/internal/domain"
)

// LeadTimelineRepository persists the append-only stage history of a
// lead. Entries are never updated or deleted.
type LeadTimelineRepository struct {
	db *gorm.DB
}

func NewLeadTimelineRepository(db *gorm.DB) *LeadTimelineRepository {
	return &LeadTimelineRepository{db: db}
}

// Create records a new stage transition
func (r *LeadTimelineRepository) Create(ctx context.Context, entry *domain.LeadTimelineEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetByLeadID returns all timeline entries for a lead, newest first
func (r *LeadTimelineRepository) GetByLeadID(ctx context.Context, leadID uuid.UUID) ([]domain.LeadTimelineEntry, error) {
	var entries []domain.LeadTimelineEntry
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("changed_at DESC").
		Find(&entries).Error
	return entries, err
}

// GetLatestByLeadID returns the most recent stage change for a lead
func (r *LeadTimelineRepository) GetLatestByLeadID(ctx context.Context, leadID uuid.UUID) (*domain.LeadTimelineEntry, error) {
	var entry domain.LeadTimelineEntry
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("changed_at DESC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetTransitionsToStage returns all transitions into a stage within a date range
func (r *LeadTimelineRepository) GetTransitionsToStage(ctx context.Context, stage domain.LeadStage, from, to time.Time) ([]domain.LeadTimelineEntry, error) {
	var entries []domain.LeadTimelineEntry
	err := r.db.WithContext(ctx).
		Where("to_stage = ?", stage).
		Where("changed_at >= ? AND changed_at <= ?", from, to).
		Order("changed_at DESC").
		Find(&entries).Error
	return entries, err
}

// RecordTransition is a convenience method to append a timeline entry
func (r *LeadTimelineRepository) RecordTransition(
	ctx context.Context,
	leadID uuid.UUID,
	fromStage *domain.LeadStage,
	toStage domain.LeadStage,
	changedByID string,
	changedByName string,
	remark string,
) (*domain.LeadTimelineEntry, error) {
	entry := &domain.LeadTimelineEntry{
		LeadID:        leadID,
		FromStage:     fromStage,
		ToStage:       toStage,
		ChangedByID:   changedByID,
		ChangedByName: changedByName,
		Remark:        remark,
		ChangedAt:     time.Now().UTC(),
	}
	if err := r.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
