package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brickline/lead-api/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create persists a booking together with its payment stages
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var booking domain.Booking
	err := r.db.WithContext(ctx).
		Preload("PaymentStages", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByLeadID returns the booking attached to a lead, if any
func (r *BookingRepository) GetByLeadID(ctx context.Context, leadID uuid.UUID) (*domain.Booking, error) {
	var booking domain.Booking
	err := r.db.WithContext(ctx).
		Preload("PaymentStages", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Where("lead_id = ?", leadID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdatePaymentStageStatus updates the settlement state of one payment stage
func (r *BookingRepository) UpdatePaymentStageStatus(ctx context.Context, stageID uuid.UUID, status domain.PaymentStatus, paidDate *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if paidDate != nil {
		updates["paid_date"] = *paidDate
	}
	return r.db.WithContext(ctx).
		Model(&domain.PaymentStage{}).
		Where("id = ?", stageID).
		Updates(updates).Error
}

// MarkOverdue flags unpaid payment stages whose due date has passed.
// Returns the number of stages updated.
func (r *BookingRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.PaymentStage{}).
		Where("status = ?", domain.PaymentStatusUnpaid).
		Where("due_date < ?", asOf).
		Update("status", domain.PaymentStatusOverdue)
	return result.RowsAffected, result.Error
}
