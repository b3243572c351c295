package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"noiflow/internal/config"
	"noiflow/internal/domain"
	"noiflow/internal/service"
)

// ExtractionHandler handles document extraction endpoints.
type ExtractionHandler struct {
	extraction *service.ExtractionService
	batch      *service.BatchService
	upload     config.UploadConfig
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extraction *service.ExtractionService, batch *service.BatchService, upload config.UploadConfig) *ExtractionHandler {
	return &ExtractionHandler{extraction: extraction, batch: batch, upload: upload}
}

// Extract handles POST /api/v1/extractions. The request is multipart with a
// "file" part and an optional "role" field.
func (h *ExtractionHandler) Extract(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondDomainError(c, domain.ErrMissingDocument)
		return
	}
	defer func() { _ = file.Close() }()

	doc, err := h.readDocument(file, header, c.PostForm("role"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	result, err := h.extraction.Extract(c.Request.Context(), *doc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, result)
}

// ExtractBatch handles POST /api/v1/extractions/batch. Each file part's form
// name carries its role: current, prior, budget, prior_year.
func (h *ExtractionHandler) ExtractBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File) == 0 {
		RespondDomainError(c, domain.ErrMissingDocument)
		return
	}

	var docs []domain.RawDocument
	for field, headers := range form.File {
		role := domain.ParseRole(field)
		if role == domain.RoleUnknown {
			RespondDomainError(c, domain.ErrInvalidRole)
			return
		}
		for _, header := range headers {
			file, err := header.Open()
			if err != nil {
				RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file "+header.Filename)
				return
			}
			doc, err := h.readDocument(file, header, string(role))
			_ = file.Close()
			if err != nil {
				RespondDomainError(c, err)
				return
			}
			docs = append(docs, *doc)
		}
	}

	RespondOK(c, h.batch.ExtractAll(c.Request.Context(), docs))
}

func (h *ExtractionHandler) readDocument(file multipart.File, header *multipart.FileHeader, roleStr string) (*domain.RawDocument, error) {
	if header.Size > h.upload.MaxFileSizeBytes() {
		return nil, domain.ErrFileTooLarge
	}

	role := domain.RoleCurrent
	if roleStr != "" {
		role = domain.ParseRole(roleStr)
		if role == domain.RoleUnknown {
			return nil, domain.ErrInvalidRole
		}
	}

	data, err := io.ReadAll(io.LimitReader(file, h.upload.MaxFileSizeBytes()+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > h.upload.MaxFileSizeBytes() {
		return nil, domain.ErrFileTooLarge
	}

	return &domain.RawDocument{
		Bytes:      data,
		Filename:   header.Filename,
		Role:       role,
		FormatHint: header.Header.Get("Content-Type"),
	}, nil
}
