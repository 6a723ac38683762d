package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/brickline/lead-api/internal/domain"
	"github.com/brickline/lead-api/internal/mapper"
	"github.com/brickline/lead-api/internal/repository"
	"github.com/brickline/lead-api/internal/storage"
)

// DocumentService manages documents attached to leads: booking forms,
// identity proofs, payment receipts.
type DocumentService struct {
	docRepo  *repository.DocumentRepository
	leadRepo *repository.LeadRepository
	store    storage.Storage
	logger   *zap.Logger
}

func NewDocumentService(
	docRepo *repository.DocumentRepository,
	leadRepo *repository.LeadRepository,
	store storage.Storage,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		docRepo:  docRepo,
		leadRepo: leadRepo,
		store:    store,
		logger:   logger,
	}
}

// Upload stores a document and attaches it to a lead
func (s *DocumentService) Upload(ctx context.Context, leadID uuid.UUID, filename, contentType string, data io.Reader) (*domain.LeadDocumentDTO, error) {
	if _, err := s.leadRepo.GetByID(ctx, leadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	storagePath, size, err := s.store.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	uploadedByID, uploadedBy := actingUser(ctx)
	doc := &domain.LeadDocument{
		LeadID:       leadID,
		FileName:     filename,
		ContentType:  contentType,
		SizeBytes:    size,
		StoragePath:  storagePath,
		UploadedByID: uploadedByID,
		UploadedBy:   uploadedBy,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		// Best effort cleanup of the orphaned blob
		if delErr := s.store.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up stored document after db error",
				zap.String("storage_path", storagePath),
				zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to save document record: %w", err)
	}

	s.logger.Info("document uploaded",
		zap.String("lead_id", leadID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.String("file_name", filename),
		zap.Int64("size", size))

	dto := mapper.ToLeadDocumentDTO(doc)
	return &dto, nil
}

// ListByLead returns all documents attached to a lead
func (s *DocumentService) ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.LeadDocumentDTO, error) {
	if _, err := s.leadRepo.GetByID(ctx, leadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	docs, err := s.docRepo.GetByLeadID(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	dtos := make([]domain.LeadDocumentDTO, 0, len(docs))
	for i := range docs {
		dtos = append(dtos, mapper.ToLeadDocumentDTO(&docs[i]))
	}
	return dtos, nil
}

// Download opens a document for streaming. Returns the reader, the
// original file name and the content type.
func (s *DocumentService) Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, string, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrDocumentNotFound
		}
		return nil, "", "", fmt.Errorf("failed to get document: %w", err)
	}

	reader, err := s.store.Download(ctx, doc.StoragePath)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to open document: %w", err)
	}
	return reader, doc.FileName, doc.ContentType, nil
}

// Delete removes a document record and its stored content
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("failed to get document: %w", err)
	}

	if err := s.docRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document record: %w", err)
	}

	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		s.logger.Warn("failed to delete stored document",
			zap.String("document_id", id.String()),
			zap.String("storage_path", doc.StoragePath),
			zap.Error(err))
	}

	return nil
}
