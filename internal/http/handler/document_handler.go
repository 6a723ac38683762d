package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brickline/lead-api/internal/service"
)

type DocumentHandler struct {
	documentService *service.DocumentService
	maxUploadBytes  int64
	logger          *zap.Logger
}

func NewDocumentHandler(documentService *service.DocumentService, maxUploadSizeMB int64, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		maxUploadBytes:  maxUploadSizeMB * 1024 * 1024,
		logger:          logger,
	}
}

// @Summary Upload document
// @Description Attach a document (booking form, identity proof, receipt) to a lead
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Lead ID"
// @Param file formData file true "Document to upload"
// @Success 201 {object} domain.LeadDocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/documents [post]
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	leadID, ok := parseLeadID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "file too large or malformed upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc, err := h.documentService.Upload(r.Context(), leadID, header.Filename, contentType, file)
	if err != nil {
		if errors.Is(err, service.ErrLeadNotFound) {
			respondWithError(w, http.StatusNotFound, "lead not found")
			return
		}
		h.logger.Error("failed to upload document", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to upload document")
		return
	}

	respondJSON(w, http.StatusCreated, doc)
}

// @Summary List documents
// @Tags Documents
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {array} domain.LeadDocumentDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/documents [get]
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	leadID, ok := parseLeadID(w, r)
	if !ok {
		return
	}

	docs, err := h.documentService.ListByLead(r.Context(), leadID)
	if err != nil {
		if errors.Is(err, service.ErrLeadNotFound) {
			respondWithError(w, http.StatusNotFound, "lead not found")
			return
		}
		h.logger.Error("failed to list documents", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	respondJSON(w, http.StatusOK, docs)
}

// @Summary Download document
// @Tags Documents
// @Produce application/octet-stream
// @Param documentId path string true "Document ID"
// @Success 200 {file} binary
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /documents/{documentId} [get]
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	docID, err := uuid.Parse(chi.URLParam(r, "documentId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	reader, filename, contentType, err := h.documentService.Download(r.Context(), docID)
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			respondWithError(w, http.StatusNotFound, "document not found")
			return
		}
		h.logger.Error("failed to download document", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to download document")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("document stream interrupted",
			zap.String("document_id", docID.String()),
			zap.Error(err))
	}
}

// @Summary Delete document
// @Tags Documents
// @Param documentId path string true "Document ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /documents/{documentId} [delete]
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	docID, err := uuid.Parse(chi.URLParam(r, "documentId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	if err := h.documentService.Delete(r.Context(), docID); err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			respondWithError(w, http.StatusNotFound, "document not found")
			return
		}
		h.logger.Error("failed to delete document", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
