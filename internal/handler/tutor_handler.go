package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/colegioadm/colegio-api/internal/models"
	"github.com/colegioadm/colegio-api/internal/service"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
	"github.com/colegioadm/colegio-api/pkg/response"
)

// TutorHandler exposes guardian management endpoints.
type TutorHandler struct {
	service *service.TutorService
}

// NewTutorHandler creates a new handler.
func NewTutorHandler(svc *service.TutorService) *TutorHandler {
	return &TutorHandler{service: svc}
}

// List godoc
// @Summary List tutors
// @Tags Tutors
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name or dni"
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /tutores [get]
func (h *TutorHandler) List(c *gin.Context) {
	filter := models.TutorFilter{Search: c.Query("search")}
	if status := c.Query("status"); status != "" {
		s := models.Status(status)
		filter.Status = &s
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	tutors, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tutors, pagination)
}

// Get returns a tutor by identifier.
// @Summary Get tutor by id
// @Tags Tutors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tutor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tutores/{id} [get]
func (h *TutorHandler) Get(c *gin.Context) {
	tutor, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tutor, nil)
}

// GetByDNI returns a tutor by DNI.
// @Summary Get tutor by dni
// @Tags Tutors
// @Produce json
// @Security BearerAuth
// @Param dni path string true "Tutor DNI"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tutores/dni/{dni} [get]
func (h *TutorHandler) GetByDNI(c *gin.Context) {
	tutor, err := h.service.GetByDNI(c.Request.Context(), c.Param("dni"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tutor, nil)
}

// Create godoc
// @Summary Create tutor
// @Description Register a guardian and provision a credential for its DNI
// @Tags Tutors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateTutorRequest true "Tutor payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /tutores [post]
func (h *TutorHandler) Create(c *gin.Context) {
	var req service.CreateTutorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid tutor payload"))
		return
	}

	tutor, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tutor)
}

// Update godoc
// @Summary Update tutor
// @Tags Tutors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tutor ID"
// @Param payload body service.UpdateTutorRequest true "Tutor payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tutores/{id} [put]
func (h *TutorHandler) Update(c *gin.Context) {
	var req service.UpdateTutorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid tutor payload"))
		return
	}

	tutor, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tutor, nil)
}

// Delete godoc
// @Summary Delete tutor
// @Description Remove a guardian and revoke its credential
// @Tags Tutors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tutor ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tutores/{id} [delete]
func (h *TutorHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
