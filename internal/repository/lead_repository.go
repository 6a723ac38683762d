package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brickline/lead-api/internal/domain"
)

// LeadFilters contains all filter options for listing leads
type LeadFilters struct {
	Stage           *domain.LeadStage
	Source          *domain.LeadSource
	OwnerID         *string
	ProjectInterest *string
	OnHold          *bool
	MinBudget       *float64
	MaxBudget       *float64
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
	FollowUpBefore  *time.Time
	SearchQuery     *string
}

// LeadSortOption represents available sort options
type LeadSortOption string

const (
	LeadSortByCreatedDesc  LeadSortOption = "created_desc"
	LeadSortByCreatedAsc   LeadSortOption = "created_asc"
	LeadSortByBudgetDesc   LeadSortOption = "budget_desc"
	LeadSortByBudgetAsc    LeadSortOption = "budget_asc"
	LeadSortByFollowUpAsc  LeadSortOption = "follow_up_asc"
	LeadSortByFollowUpDesc LeadSortOption = "follow_up_desc"
)

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	// Omit associations to avoid GORM trying to validate related records
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(lead).Error
}

func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.db.WithContext(ctx).
		Preload("Booking").
		Preload("Booking.PaymentStages", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Where("id = ?", id).
		First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepository) Update(ctx context.Context, lead *domain.Lead) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(lead).Error
}

func (r *LeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Lead{}, "id = ?", id).Error
}

func (r *LeadRepository) List(ctx context.Context, page, pageSize int, filters *LeadFilters, sortBy LeadSortOption) ([]domain.Lead, int64, error) {
	var leads []domain.Lead
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Lead{}).Preload("Booking")

	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.applySorting(query, sortBy)

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Find(&leads).Error

	return leads, total, err
}

// GetByStage returns all leads in a specific stage for pipeline views
func (r *LeadRepository) GetByStage(ctx context.Context, stage domain.LeadStage) ([]domain.Lead, error) {
	var leads []domain.Lead
	err := r.db.WithContext(ctx).
		Preload("Booking").
		Where("stage = ?", stage).
		Order("updated_at DESC").
		Find(&leads).Error
	return leads, err
}

// CountByStage returns lead counts per stage for the pipeline summary
func (r *LeadRepository) CountByStage(ctx context.Context) (map[domain.LeadStage]int64, error) {
	type result struct {
		Stage domain.LeadStage
		Count int64
	}
	var results []result

	err := r.db.WithContext(ctx).Model(&domain.Lead{}).
		Select("stage, count(*) as count").
		Group("stage").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.LeadStage]int64, len(results))
	for _, row := range results {
		counts[row.Stage] = row.Count
	}
	return counts, nil
}

// GetDueForFollowUp returns leads whose follow-up date has passed and
// that are not in a terminal stage.
func (r *LeadRepository) GetDueForFollowUp(ctx context.Context, asOf time.Time) ([]domain.Lead, error) {
	var leads []domain.Lead
	err := r.db.WithContext(ctx).
		Where("follow_up_date IS NOT NULL AND follow_up_date <= ?", asOf).
		Where("stage NOT IN ?", []domain.LeadStage{domain.StageBooked, domain.StageLostDead}).
		Order("follow_up_date ASC").
		Find(&leads).Error
	return leads, err
}

func (r *LeadRepository) applyFilters(query *gorm.DB, filters *LeadFilters) *gorm.DB {
	if filters == nil {
		return query
	}

	if filters.Stage != nil {
		query = query.Where("stage = ?", *filters.Stage)
	}
	if filters.Source != nil {
		query = query.Where("source = ?", *filters.Source)
	}
	if filters.OwnerID != nil {
		query = query.Where("owner_id = ?", *filters.OwnerID)
	}
	if filters.ProjectInterest != nil {
		query = query.Where("project_interest = ?", *filters.ProjectInterest)
	}
	if filters.OnHold != nil {
		query = query.Where("on_hold = ?", *filters.OnHold)
	}
	if filters.MinBudget != nil {
		query = query.Where("budget >= ?", *filters.MinBudget)
	}
	if filters.MaxBudget != nil {
		query = query.Where("budget <= ?", *filters.MaxBudget)
	}
	if filters.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filters.CreatedAfter)
	}
	if filters.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filters.CreatedBefore)
	}
	if filters.FollowUpBefore != nil {
		query = query.Where("follow_up_date IS NOT NULL AND follow_up_date <= ?", *filters.FollowUpBefore)
	}
	if filters.SearchQuery != nil && *filters.SearchQuery != "" {
		search := "%" + strings.ToLower(*filters.SearchQuery) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(email) LIKE ?",
			search, search, search,
		)
	}

	return query
}

func (r *LeadRepository) applySorting(query *gorm.DB, sortBy LeadSortOption) *gorm.DB {
	switch sortBy {
	case LeadSortByCreatedAsc:
		return query.Order("created_at ASC")
	case LeadSortByBudgetDesc:
		return query.Order("budget DESC")
	case LeadSortByBudgetAsc:
		return query.Order("budget ASC")
	case LeadSortByFollowUpAsc:
		return query.Order("follow_up_date ASC NULLS LAST")
	case LeadSortByFollowUpDesc:
		return query.Order("follow_up_date DESC NULLS LAST")
	default:
		return query.Order("created_at DESC")
	}
}
