package domain

import (
	"time"

	"github.com/google/uuid"
)

// LeadDTO is the API representation of a lead.
type LeadDTO struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Phone           string      `json:"phone,omitempty"`
	Email           string      `json:"email,omitempty"`
	Source          LeadSource  `json:"source,omitempty"`
	ProjectInterest string      `json:"projectInterest,omitempty"`
	UnitInterest    string      `json:"unitInterest,omitempty"`
	Budget          float64     `json:"budget,omitempty"`
	Stage           LeadStage   `json:"stage"`
	LostReason      string      `json:"lostReason,omitempty"`
	SiteVisitDate   *string     `json:"siteVisitDate,omitempty"`
	FollowUpDate    *string     `json:"followUpDate,omitempty"`
	OnHold          bool        `json:"onHold"`
	OwnerID         string      `json:"ownerId,omitempty"`
	OwnerName       string      `json:"ownerName,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	Booking         *BookingDTO `json:"booking,omitempty"`
	CreatedAt       string      `json:"createdAt"`
	UpdatedAt       string      `json:"updatedAt"`
}

// TimelineEntryDTO is a single stage change in a lead's history.
type TimelineEntryDTO struct {
	ID            uuid.UUID  `json:"id"`
	LeadID        uuid.UUID  `json:"leadId"`
	FromStage     *LeadStage `json:"fromStage,omitempty"`
	ToStage       LeadStage  `json:"toStage"`
	Remark        string     `json:"remark,omitempty"`
	ChangedByID   string     `json:"changedById,omitempty"`
	ChangedByName string     `json:"changedByName,omitempty"`
	ChangedAt     string     `json:"changedAt"`
}

// BookingDTO is the API representation of a confirmed booking.
type BookingDTO struct {
	ID                   uuid.UUID         `json:"id"`
	LeadID               uuid.UUID         `json:"leadId"`
	TotalSaleValue       float64           `json:"totalSaleValue"`
	CommissionPercentage float64           `json:"commissionPercentage"`
	CommissionAmount     float64           `json:"commissionAmount"`
	PaymentStages        []PaymentStageDTO `json:"paymentStages"`
	CreatedAt            string            `json:"createdAt"`
}

type PaymentStageDTO struct {
	ID           uuid.UUID     `json:"id"`
	StageName    string        `json:"stageName"`
	Amount       float64       `json:"amount"`
	DueDate      string        `json:"dueDate"`
	Status       PaymentStatus `json:"status"`
	PaidDate     *string       `json:"paidDate,omitempty"`
	Remark       string        `json:"remark,omitempty"`
	DisplayOrder int           `json:"displayOrder"`
}

// StageInfoDTO describes one entry of the stage catalog.
type StageInfoDTO struct {
	Value LeadStage `json:"value"`
	Label string    `json:"label"`
	Color string    `json:"color"`
}

type CreateLeadRequest struct {
	Name            string     `json:"name" validate:"required,max=200"`
	Phone           string     `json:"phone,omitempty" validate:"max=30"`
	Email           string     `json:"email,omitempty" validate:"omitempty,email"`
	Source          LeadSource `json:"source,omitempty"`
	ProjectInterest string     `json:"projectInterest,omitempty" validate:"max=200"`
	UnitInterest    string     `json:"unitInterest,omitempty" validate:"max=100"`
	Budget          float64    `json:"budget,omitempty" validate:"gte=0"`
	OwnerID         string     `json:"ownerId,omitempty" validate:"max=100"`
	OwnerName       string     `json:"ownerName,omitempty" validate:"max=200"`
	Notes           string     `json:"notes,omitempty"`
}

type UpdateLeadRequest struct {
	Name            *string     `json:"name,omitempty" validate:"omitempty,max=200"`
	Phone           *string     `json:"phone,omitempty" validate:"omitempty,max=30"`
	Email           *string     `json:"email,omitempty" validate:"omitempty,email"`
	Source          *LeadSource `json:"source,omitempty"`
	ProjectInterest *string     `json:"projectInterest,omitempty" validate:"omitempty,max=200"`
	UnitInterest    *string     `json:"unitInterest,omitempty" validate:"omitempty,max=100"`
	Budget          *float64    `json:"budget,omitempty" validate:"omitempty,gte=0"`
	FollowUpDate    *time.Time  `json:"followUpDate,omitempty"`
	OnHold          *bool       `json:"onHold,omitempty"`
	OwnerID         *string     `json:"ownerId,omitempty" validate:"omitempty,max=100"`
	OwnerName       *string     `json:"ownerName,omitempty" validate:"omitempty,max=200"`
	Notes           *string     `json:"notes,omitempty"`
}

// TransitionRequest asks to move a lead to a new stage. lostReason is
// required when the target stage is Lost/Dead, siteVisitDate when the
// target is Site Visit Scheduled.
type TransitionRequest struct {
	TargetStage   LeadStage `json:"targetStage" validate:"required"`
	Remark        string    `json:"remark,omitempty" validate:"max=1000"`
	LostReason    string    `json:"lostReason,omitempty" validate:"max=500"`
	SiteVisitDate string    `json:"siteVisitDate,omitempty"`
}

// PaymentStageInput carries a single schedule row. Amounts arrive as
// strings so display-formatted values ("1,00,000") survive the trip.
type PaymentStageInput struct {
	StageName string `json:"stageName"`
	Amount    string `json:"amount"`
	DueDate   string `json:"dueDate"`
	Status    string `json:"status,omitempty"`
	PaidDate  string `json:"paidDate,omitempty"`
	Remark    string `json:"remark,omitempty" validate:"max=500"`
}

// BookingRequest completes a pending transition to Booked.
type BookingRequest struct {
	TotalSaleValue string              `json:"totalSaleValue"`
	PaymentStages  []PaymentStageInput `json:"paymentStages"`
}

// TransitionResponse reports the outcome of a transition request.
// Status is "completed" when the lead moved immediately and
// "booking_required" when a booking payload must follow.
type TransitionResponse struct {
	Status   string            `json:"status"`
	Lead     *LeadDTO          `json:"lead,omitempty"`
	Timeline *TimelineEntryDTO `json:"timelineEntry,omitempty"`
}

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// PipelineStageSummary is one bucket of the pipeline view.
type PipelineStageSummary struct {
	Stage LeadStage `json:"stage"`
	Label string    `json:"label"`
	Count int64     `json:"count"`
	Leads []LeadDTO `json:"leads"`
}

// LeadDocumentDTO is the API representation of an uploaded document.
type LeadDocumentDTO struct {
	ID          uuid.UUID `json:"id"`
	LeadID      uuid.UUID `json:"leadId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	UploadedBy  string    `json:"uploadedBy,omitempty"`
	CreatedAt   string    `json:"createdAt"`
}

// UnitDTO is a read-only inventory unit sourced from the ERP.
type UnitDTO struct {
	UnitCode    string  `json:"unitCode"`
	ProjectName string  `json:"projectName"`
	UnitType    string  `json:"unitType"`
	AreaSqft    float64 `json:"areaSqft,omitempty"`
	ListPrice   float64 `json:"listPrice"`
	Available   bool    `json:"available"`
}
