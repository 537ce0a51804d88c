package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colegioadm/colegio-api/internal/service"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
	"github.com/colegioadm/colegio-api/pkg/response"
)

// ActivityHandler exposes extracurricular activity endpoints.
type ActivityHandler struct {
	service *service.ActivityService
}

// NewActivityHandler creates a new handler.
func NewActivityHandler(svc *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: svc}
}

// List returns all activities.
// @Summary List activities
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /actividades [get]
func (h *ActivityHandler) List(c *gin.Context) {
	activities, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activities, nil)
}

// Get returns an activity by identifier.
// @Summary Get activity by id
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /actividades/{id} [get]
func (h *ActivityHandler) Get(c *gin.Context) {
	activity, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activity, nil)
}

// Create registers an activity.
// @Summary Create activity
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateActivityRequest true "Activity payload"
// @Success 201 {object} response.Envelope
// @Router /actividades [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	var req service.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid activity payload"))
		return
	}

	activity, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, activity)
}

// Delete removes an activity.
// @Summary Delete activity
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /actividades/{id} [delete]
func (h *ActivityHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Schedules lists the grade schedules for an activity.
// @Summary List activity schedules
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Success 200 {object} response.Envelope
// @Router /actividades/{id}/grados [get]
func (h *ActivityHandler) Schedules(c *gin.Context) {
	links, err := h.service.Schedules(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, links, nil)
}

// Schedule links an activity to a grade.
// @Summary Schedule activity for grade
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Param payload body service.ScheduleActivityRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /actividades/{id}/grados [post]
func (h *ActivityHandler) Schedule(c *gin.Context) {
	var req service.ScheduleActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}

	link, err := h.service.Schedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}
