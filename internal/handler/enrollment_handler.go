package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colegioadm/colegio-api/internal/service"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
	"github.com/colegioadm/colegio-api/pkg/response"
)

// EnrollmentHandler exposes the complete enrollment operation.
type EnrollmentHandler struct {
	service *service.EnrollmentService
	metrics *service.MetricsService
}

// NewEnrollmentHandler creates a new handler.
func NewEnrollmentHandler(svc *service.EnrollmentService, metrics *service.MetricsService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc, metrics: metrics}
}

// EnrollComplete godoc
// @Summary Enroll a student
// @Description Create student, grade link and tutor link atomically, consuming one seat
// @Tags Enrollment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.EnrollCompleteRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /alumnos/completo [post]
func (h *EnrollmentHandler) EnrollComplete(c *gin.Context) {
	var req service.EnrollCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment payload"))
		return
	}

	res, err := h.service.EnrollComplete(c.Request.Context(), req)
	if err != nil {
		h.metrics.RecordEnrollment("failed")
		response.Error(c, err)
		return
	}

	h.metrics.RecordEnrollment("success")
	response.Created(c, res)
}
