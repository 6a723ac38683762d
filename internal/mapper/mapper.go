package mapper

import (
	"github.com/brickline/lead-api/internal/domain"
)

const timestampLayout = "2006-01-02T15:04:05Z"

// ToLeadDTO converts Lead to LeadDTO
func ToLeadDTO(lead *domain.Lead) domain.LeadDTO {
	dto := domain.LeadDTO{
		ID:              lead.ID,
		Name:            lead.Name,
		Phone:           lead.Phone,
		Email:           lead.Email,
		Source:          lead.Source,
		ProjectInterest: lead.ProjectInterest,
		UnitInterest:    lead.UnitInterest,
		Budget:          lead.Budget,
		Stage:           lead.Stage,
		LostReason:      lead.LostReason,
		OnHold:          lead.OnHold,
		OwnerID:         lead.OwnerID,
		OwnerName:       lead.OwnerName,
		Notes:           lead.Notes,
		CreatedAt:       lead.CreatedAt.Format(timestampLayout),
		UpdatedAt:       lead.UpdatedAt.Format(timestampLayout),
	}

	if lead.SiteVisitDate != nil {
		d := lead.SiteVisitDate.Format("2006-01-02")
		dto.SiteVisitDate = &d
	}
	if lead.FollowUpDate != nil {
		d := lead.FollowUpDate.Format("2006-01-02")
		dto.FollowUpDate = &d
	}
	if lead.Booking != nil {
		booking := ToBookingDTO(lead.Booking)
		dto.Booking = &booking
	}

	return dto
}

// ToTimelineEntryDTO converts LeadTimelineEntry to TimelineEntryDTO
func ToTimelineEntryDTO(entry *domain.LeadTimelineEntry) domain.TimelineEntryDTO {
	return domain.TimelineEntryDTO{
		ID:            entry.ID,
		LeadID:        entry.LeadID,
		FromStage:     entry.FromStage,
		ToStage:       entry.ToStage,
		Remark:        entry.Remark,
		ChangedByID:   entry.ChangedByID,
		ChangedByName: entry.ChangedByName,
		ChangedAt:     entry.ChangedAt.Format(timestampLayout),
	}
}

// ToBookingDTO converts Booking to BookingDTO
func ToBookingDTO(booking *domain.Booking) domain.BookingDTO {
	dto := domain.BookingDTO{
		ID:                   booking.ID,
		LeadID:               booking.LeadID,
		TotalSaleValue:       booking.TotalSaleValue,
		CommissionPercentage: booking.CommissionPercentage,
		CommissionAmount:     booking.CommissionAmount,
		PaymentStages:        make([]domain.PaymentStageDTO, 0, len(booking.PaymentStages)),
		CreatedAt:            booking.CreatedAt.Format(timestampLayout),
	}
	for i := range booking.PaymentStages {
		dto.PaymentStages = append(dto.PaymentStages, ToPaymentStageDTO(&booking.PaymentStages[i]))
	}
	return dto
}

// ToPaymentStageDTO converts PaymentStage to PaymentStageDTO
func ToPaymentStageDTO(stage *domain.PaymentStage) domain.PaymentStageDTO {
	dto := domain.PaymentStageDTO{
		ID:           stage.ID,
		StageName:    stage.StageName,
		Amount:       stage.Amount,
		DueDate:      stage.DueDate.Format("2006-01-02"),
		Status:       stage.Status,
		Remark:       stage.Remark,
		DisplayOrder: stage.DisplayOrder,
	}
	if stage.PaidDate != nil {
		d := stage.PaidDate.Format("2006-01-02")
		dto.PaidDate = &d
	}
	return dto
}

// ToLeadDocumentDTO converts LeadDocument to LeadDocumentDTO
func ToLeadDocumentDTO(doc *domain.LeadDocument) domain.LeadDocumentDTO {
	return domain.LeadDocumentDTO{
		ID:          doc.ID,
		LeadID:      doc.LeadID,
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		SizeBytes:   doc.SizeBytes,
		UploadedBy:  doc.UploadedBy,
		CreatedAt:   doc.CreatedAt.Format(timestampLayout),
	}
}

// ToLeadDTOs converts a slice of leads
func ToLeadDTOs(leads []domain.Lead) []domain.LeadDTO {
	dtos := make([]domain.LeadDTO, 0, len(leads))
	for i := range leads {
		dtos = append(dtos, ToLeadDTO(&leads[i]))
	}
	return dtos
}

// ToTimelineEntryDTOs converts a slice of timeline entries
func ToTimelineEntryDTOs(entries []domain.LeadTimelineEntry) []domain.TimelineEntryDTO {
	dtos := make([]domain.TimelineEntryDTO, 0, len(entries))
	for i := range entries {
		dtos = append(dtos, ToTimelineEntryDTO(&entries[i]))
	}
	return dtos
}
