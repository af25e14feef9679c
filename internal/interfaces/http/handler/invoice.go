package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	invoiceapp "github.com/billforge/invoicegen/internal/application/invoice"
	"github.com/billforge/invoicegen/internal/domain/document"
	"github.com/billforge/invoicegen/internal/infrastructure/logger"
	"github.com/billforge/invoicegen/internal/infrastructure/render"
	"github.com/billforge/invoicegen/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// InvoiceHandler handles invoice document API endpoints
type InvoiceHandler struct {
	BaseHandler
	service *invoiceapp.Service
	storage render.PDFStorage
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(service *invoiceapp.Service, storage render.PDFStorage) *InvoiceHandler {
	return &InvoiceHandler{
		service: service,
		storage: storage,
	}
}

// RegisterValidators installs the custom binding validators used by the
// invoice DTOs. Call once during startup.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("templatename", func(fl validator.FieldLevel) bool {
			return document.TemplateName(fl.Field().String()).IsValid()
		})
	}
}

// bindJSON binds the request body and converts validator failures into a
// per-field error response. Returns false when a response was already sent.
func (h *InvoiceHandler) bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			details := make([]dto.ValidationDetail, len(validationErrs))
			for i, fe := range validationErrs {
				details[i] = dto.ValidationDetail{
					Field:   fe.Field(),
					Message: "failed on rule: " + fe.Tag(),
				}
			}
			requestID := getRequestID(c)
			c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
				"Request validation failed", requestID, details))
			return false
		}
		h.BadRequest(c, err.Error())
		return false
	}
	return true
}

// Generate renders an invoice document. The PDF bytes come back directly;
// with "store": true the artifact is persisted instead and the response is
// JSON metadata with its download URL.
//
// POST /api/v1/invoices/generate
func (h *InvoiceHandler) Generate(c *gin.Context) {
	var req invoiceapp.DocumentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if resp.PDFData != nil {
		c.Header("X-Document-ID", resp.DocumentID)
		c.Header("X-Page-Count", strconv.Itoa(resp.PageCount))
		c.Header("Content-Disposition", `attachment; filename="`+resp.DocumentID+`.pdf"`)
		c.Data(http.StatusCreated, "application/pdf", resp.PDFData)
		return
	}

	h.Created(c, resp)
}

// Preview renders an invoice document and streams the PDF back without
// storing it
//
// POST /api/v1/invoices/preview
func (h *InvoiceHandler) Preview(c *gin.Context) {
	var req invoiceapp.DocumentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.service.Preview(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("X-Page-Count", strconv.Itoa(result.PageCount))
	c.Header("Content-Disposition", `inline; filename="preview.pdf"`)
	c.Data(http.StatusOK, "application/pdf", result.PDFData)
}

// ListTemplates returns the selectable template variants
//
// GET /api/v1/templates
func (h *InvoiceHandler) ListTemplates(c *gin.Context) {
	h.Success(c, h.service.Templates())
}

// DownloadArtifact streams a previously stored PDF
//
// GET /api/v1/invoices/files/*path
func (h *InvoiceHandler) DownloadArtifact(c *gin.Context) {
	path := c.Param("path")
	if path == "" || path == "/" {
		h.BadRequest(c, "File path is required")
		return
	}

	reader, err := h.storage.Get(c.Request.Context(), path[1:]) // strip leading slash
	if err != nil {
		var renderErr *render.RenderError
		if errors.As(err, &renderErr) && renderErr.Code == render.ErrCodeNotFound {
			h.NotFound(c, "PDF not found")
			return
		}
		h.HandleError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		// Status already went out; the download is truncated
		logger.GetGinLogger(c).Warn("artifact download interrupted",
			zap.String("path", path), zap.Error(err))
	}
}

// DeleteArtifact removes a stored PDF
//
// DELETE /api/v1/invoices/files/*path
func (h *InvoiceHandler) DeleteArtifact(c *gin.Context) {
	path := c.Param("path")
	if path == "" || path == "/" {
		h.BadRequest(c, "File path is required")
		return
	}

	if err := h.storage.Delete(c.Request.Context(), path[1:]); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// CleanupRequest selects how old artifacts must be to get removed
type CleanupRequest struct {
	OlderThanDays int `json:"older_than_days" binding:"required,min=1"`
}

// CleanupResponse reports how many artifacts were removed
type CleanupResponse struct {
	Deleted int `json:"deleted"`
}

// Cleanup removes stored PDFs older than the requested age
//
// POST /api/v1/invoices/cleanup
func (h *InvoiceHandler) Cleanup(c *gin.Context) {
	var req CleanupRequest
	if !h.bindJSON(c, &req) {
		return
	}

	deleted, err := h.service.CleanupArtifacts(c.Request.Context(),
		time.Duration(req.OlderThanDays)*24*time.Hour)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CleanupResponse{Deleted: deleted})
}
