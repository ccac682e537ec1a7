package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nurseryhub/nursery-api/internal/middleware"
	"github.com/nurseryhub/nursery-api/internal/models"
	"github.com/nurseryhub/nursery-api/internal/services"
	"github.com/nurseryhub/nursery-api/pkg/logger"
	"go.uber.org/zap"
)

// AdminEnrollmentsHandler serves the staff review endpoints
type AdminEnrollmentsHandler struct {
	service services.EnrollmentAdminServiceInterface
}

// NewAdminEnrollmentsHandler creates a new AdminEnrollmentsHandler
func NewAdminEnrollmentsHandler(service services.EnrollmentAdminServiceInterface) *AdminEnrollmentsHandler {
	return &AdminEnrollmentsHandler{service: service}
}

// ListEnrollments handles GET /api/v1/admin/enrollments?status=
func (h *AdminEnrollmentsHandler) ListEnrollments(c *gin.Context) {
	status := models.EnrollmentStatus(c.Query("status"))

	resp, err := h.service.ListEnrollments(c.Request.Context(), status)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch enrollments")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetEnrollment handles GET /api/v1/admin/enrollments/:id
func (h *AdminEnrollmentsHandler) GetEnrollment(c *gin.Context) {
	detail, err := h.service.GetEnrollment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to fetch enrollment")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateStatus handles POST /api/v1/admin/enrollments/:id/status
func (h *AdminEnrollmentsHandler) UpdateStatus(c *gin.Context) {
	member, err := middleware.GetStaffMember(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var req models.UpdateEnrollmentStatusRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", gin.H{
			"message": "Status must be one of: pending, approved, rejected",
		}, bindErr)
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondServiceError(c, err, "Failed to update enrollment status")
		return
	}

	logger.Info("Enrollment reviewed",
		zap.String("enrollment_id", updated.ID),
		zap.String("status", string(updated.Status)),
		zap.String("staff_id", member.UserID))

	c.JSON(http.StatusOK, updated)
}
