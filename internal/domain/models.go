package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns an ID when one was not provided by the caller
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// LeadStage represents one discrete phase of a sales lead's lifecycle.
// The set is closed: any value outside the catalog is rejected.
type LeadStage string

const (
	StageNewLead            LeadStage = "New Lead"
	StageContacted          LeadStage = "Contacted"
	StageSiteVisitScheduled LeadStage = "Site Visit Scheduled"
	StageSiteVisitCompleted LeadStage = "Site Visit Completed"
	StageNegotiation        LeadStage = "Negotiation"
	StageBookingInProgress  LeadStage = "Booking in Progress"
	StageBooked             LeadStage = "Booked"
	StageLostDead           LeadStage = "Lost/Dead"
)

// IsValid checks if the LeadStage is a member of the stage catalog
func (s LeadStage) IsValid() bool {
	switch s {
	case StageNewLead, StageContacted, StageSiteVisitScheduled, StageSiteVisitCompleted,
		StageNegotiation, StageBookingInProgress, StageBooked, StageLostDead:
		return true
	}
	return false
}

// IsTerminal returns true for stages that normally end the lifecycle
func (s LeadStage) IsTerminal() bool {
	return s == StageBooked || s == StageLostDead
}

// LeadSource represents where a lead originated
type LeadSource string

const (
	LeadSourceWebsite  LeadSource = "website"
	LeadSourceWalkIn   LeadSource = "walk_in"
	LeadSourceReferral LeadSource = "referral"
	LeadSourcePortal   LeadSource = "portal"
	LeadSourceCampaign LeadSource = "campaign"
	LeadSourceColdCall LeadSource = "cold_call"
	LeadSourceOther    LeadSource = "other"
)

// Lead represents a sales lead in the real-estate pipeline
type Lead struct {
	BaseModel
	Name            string     `gorm:"type:varchar(200);not null;index"`
	Phone           string     `gorm:"type:varchar(50);not null"`
	Email           string     `gorm:"type:varchar(255)"`
	Source          LeadSource `gorm:"type:varchar(50);not null;default:'other'"`
	ProjectInterest string     `gorm:"type:varchar(200);column:project_interest"`
	UnitInterest    string     `gorm:"type:varchar(100);column:unit_interest"`
	Budget          float64    `gorm:"type:decimal(15,2);not null;default:0"`
	Stage           LeadStage  `gorm:"type:varchar(50);not null;default:'New Lead';index"`
	LostReason      string     `gorm:"type:varchar(500);column:lost_reason"`
	SiteVisitDate   *time.Time `gorm:"type:date;column:site_visit_date"`
	FollowUpDate    *time.Time `gorm:"type:date;column:follow_up_date"`
	OnHold          bool       `gorm:"not null;default:false;column:on_hold"`
	OwnerID         string     `gorm:"type:varchar(100);not null;column:owner_id"`
	OwnerName       string     `gorm:"type:varchar(200);column:owner_name"`
	Notes           string     `gorm:"type:text"`
	Booking         *Booking   `gorm:"foreignKey:LeadID"`
}

// LeadTimelineEntry is an append-only log entry recording one stage change.
// Entries are never updated or deleted.
type LeadTimelineEntry struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	LeadID        uuid.UUID  `gorm:"type:uuid;not null;index;column:lead_id"`
	Lead          *Lead      `gorm:"foreignKey:LeadID"`
	FromStage     *LeadStage `gorm:"type:varchar(50);column:from_stage"`
	ToStage       LeadStage  `gorm:"type:varchar(50);not null;column:to_stage"`
	Remark        string     `gorm:"type:text"`
	ChangedByID   string     `gorm:"type:varchar(100);not null;column:changed_by_id"`
	ChangedByName string     `gorm:"type:varchar(200);column:changed_by_name"`
	ChangedAt     time.Time  `gorm:"not null;column:changed_at"`
}

// TableName overrides the default table name to match the migration
func (LeadTimelineEntry) TableName() string {
	return "lead_timeline"
}

// BeforeCreate assigns an ID when one was not provided by the caller
func (e *LeadTimelineEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// CommissionPercentage is the fixed commission rate applied to every booking.
const CommissionPercentage = 2.5

// Booking holds the financial schedule captured when a lead converts to Booked.
// It exists only as the result of a successful Booked transition.
type Booking struct {
	BaseModel
	LeadID               uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex;column:lead_id"`
	TotalSaleValue       float64        `gorm:"type:decimal(15,2);not null;column:total_sale_value"`
	CommissionPercentage float64        `gorm:"type:decimal(5,2);not null;column:commission_percentage"`
	CommissionAmount     float64        `gorm:"type:decimal(15,2);not null;column:commission_amount"`
	PaymentStages        []PaymentStage `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
}

// PaymentStatus represents the settlement state of a payment stage
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// IsValid checks if the PaymentStatus is a valid enum value
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusOverdue:
		return true
	}
	return false
}

// PaymentStage is one installment of a booking's payment schedule
type PaymentStage struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey"`
	BookingID    uuid.UUID     `gorm:"type:uuid;not null;index;column:booking_id"`
	StageName    string        `gorm:"type:varchar(200);not null;column:stage_name"`
	Amount       float64       `gorm:"type:decimal(15,2);not null"`
	DueDate      time.Time     `gorm:"type:date;not null;column:due_date"`
	Status       PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid'"`
	PaidDate     *time.Time    `gorm:"type:date;column:paid_date"`
	Remark       string        `gorm:"type:varchar(500)"`
	DisplayOrder int           `gorm:"not null;default:0;column:display_order"`
	CreatedAt    time.Time     `gorm:"not null"`
}

// BeforeCreate assigns an ID when one was not provided by the caller
func (p *PaymentStage) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// LeadDocument stores metadata for a file attached to a lead
// (booking forms, identity proofs, payment receipts)
type LeadDocument struct {
	BaseModel
	LeadID       uuid.UUID `gorm:"type:uuid;not null;index;column:lead_id"`
	FileName     string    `gorm:"type:varchar(255);not null;column:file_name"`
	ContentType  string    `gorm:"type:varchar(100);column:content_type"`
	SizeBytes    int64     `gorm:"not null;default:0;column:size_bytes"`
	StoragePath  string    `gorm:"type:varchar(500);not null;column:storage_path"`
	UploadedByID string    `gorm:"type:varchar(100);column:uploaded_by_id"`
	UploadedBy   string    `gorm:"type:varchar(200);column:uploaded_by"`
}

// UserRoleType represents a role granted to a user
type UserRoleType string

const (
	RoleAgent   UserRoleType = "agent"
	RoleManager UserRoleType = "manager"
	RoleAdmin   UserRoleType = "admin"
	RoleViewer  UserRoleType = "viewer"
)
