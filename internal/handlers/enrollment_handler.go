package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nurseryhub/nursery-api/internal/enrollment"
	"github.com/nurseryhub/nursery-api/internal/models"
	"github.com/nurseryhub/nursery-api/internal/services"
)

// EnrollmentHandler serves the public enrollment wizard
type EnrollmentHandler struct {
	service    services.EnrollmentWizardServiceInterface
	regulation services.RegulationServiceInterface
}

// NewEnrollmentHandler creates a new EnrollmentHandler
func NewEnrollmentHandler(service services.EnrollmentWizardServiceInterface, regulation services.RegulationServiceInterface) *EnrollmentHandler {
	return &EnrollmentHandler{
		service:    service,
		regulation: regulation,
	}
}

// StartSession handles POST /api/v1/enrollments/wizard
func (h *EnrollmentHandler) StartSession(c *gin.Context) {
	resp, err := h.service.StartSession(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to start enrollment")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetView handles GET /api/v1/enrollments/wizard/:id
func (h *EnrollmentHandler) GetView(c *gin.Context) {
	view, err := h.service.GetView(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to load enrollment")
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateFields handles PATCH /api/v1/enrollments/wizard/:id/fields
func (h *EnrollmentHandler) UpdateFields(c *gin.Context) {
	var req models.UpdateWizardFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	view, err := h.service.UpdateFields(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err, "Failed to update enrollment")
		return
	}
	c.JSON(http.StatusOK, view)
}

// Next handles POST /api/v1/enrollments/wizard/:id/next.
// A blocked transition answers 422 with the step errors.
func (h *EnrollmentHandler) Next(c *gin.Context) {
	resp, err := h.service.Next(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to advance enrollment")
		return
	}

	status := http.StatusOK
	if !resp.OK {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, resp)
}

// Previous handles POST /api/v1/enrollments/wizard/:id/previous
func (h *EnrollmentHandler) Previous(c *gin.Context) {
	view, err := h.service.Previous(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to go back")
		return
	}
	c.JSON(http.StatusOK, view)
}

// AttachDocument handles PUT /api/v1/enrollments/wizard/:id/documents/:type (multipart "file").
// Validation failures are part of the response body, not an HTTP error.
func (h *EnrollmentHandler) AttachDocument(c *gin.Context) {
	documentType, ok := models.ParseDocumentType(c.Param("type"))
	if !ok {
		respondError(c, http.StatusBadRequest, enrollment.MsgUnknownType, enrollment.ErrUnknownDocumentType)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			respondError(c, http.StatusRequestEntityTooLarge, enrollment.MsgFileTooLarge, err)
			return
		}
		respondError(c, http.StatusBadRequest, enrollment.MsgNoFileSelected, err)
		return
	}

	file := &models.DocumentFile{
		FileName:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}

	// Oversized files are rejected by validation, their content is never needed
	if header.Size <= enrollment.MaxDocumentSize {
		f, openErr := header.Open()
		if openErr != nil {
			respondError(c, http.StatusBadRequest, "Failed to read file", openErr)
			return
		}
		defer f.Close()

		content, readErr := io.ReadAll(io.LimitReader(f, enrollment.MaxDocumentSize+1))
		if readErr != nil {
			respondError(c, http.StatusBadRequest, "Failed to read file", readErr)
			return
		}
		file.Content = content
	}

	resp, err := h.service.AttachDocument(c.Request.Context(), c.Param("id"), documentType, file)
	if err != nil {
		respondServiceError(c, err, "Failed to attach document")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveDocument handles DELETE /api/v1/enrollments/wizard/:id/documents/:type
func (h *EnrollmentHandler) RemoveDocument(c *gin.Context) {
	documentType, ok := models.ParseDocumentType(c.Param("type"))
	if !ok {
		respondError(c, http.StatusBadRequest, enrollment.MsgUnknownType, enrollment.ErrUnknownDocumentType)
		return
	}

	view, err := h.service.RemoveDocument(c.Request.Context(), c.Param("id"), documentType)
	if err != nil {
		respondServiceError(c, err, "Failed to remove document")
		return
	}
	c.JSON(http.StatusOK, view)
}

// RegulationScroll handles POST /api/v1/enrollments/wizard/:id/regulation/scroll
func (h *EnrollmentHandler) RegulationScroll(c *gin.Context) {
	var req models.RegulationScrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	view, err := h.service.ReportRegulationScroll(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err, "Failed to record scroll position")
		return
	}
	c.JSON(http.StatusOK, view)
}

// AcceptRegulation handles POST /api/v1/enrollments/wizard/:id/regulation/accept
func (h *EnrollmentHandler) AcceptRegulation(c *gin.Context) {
	var req models.AcceptRegulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	view, err := h.service.AcceptRegulation(c.Request.Context(), c.Param("id"), *req.Accepted)
	if err != nil {
		respondServiceError(c, err, "Failed to record consent")
		return
	}
	c.JSON(http.StatusOK, view)
}

// Submit handles POST /api/v1/enrollments/wizard/:id/submit.
// A failed child or enrollment creation answers 502 with the submit result.
func (h *EnrollmentHandler) Submit(c *gin.Context) {
	// The body is optional; an empty one, chunked or not, decodes to io.EOF
	var req models.SubmitEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	result, err := h.service.Submit(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err, enrollment.SubmissionFailedMessage)
		return
	}

	if !result.OK {
		attachError(c, fmt.Errorf("enrollment submission failed"))
		c.JSON(http.StatusBadGateway, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Abandon handles DELETE /api/v1/enrollments/wizard/:id
func (h *EnrollmentHandler) Abandon(c *gin.Context) {
	if err := h.service.Abandon(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err, "Failed to abandon enrollment")
		return
	}
	c.Status(http.StatusNoContent)
}

// RegulationDocument handles GET /api/v1/enrollments/regulation
func (h *EnrollmentHandler) RegulationDocument(c *gin.Context) {
	path, err := h.regulation.DocumentPath()
	if err != nil {
		respondServiceError(c, err, "Failed to load regulation")
		return
	}
	c.FileAttachment(path, "reglement-interieur.pdf")
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
