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

// IncidentHandler exposes incident catalog and measure endpoints.
type IncidentHandler struct {
	service *service.IncidentService
}

// NewIncidentHandler creates a new handler.
func NewIncidentHandler(svc *service.IncidentService) *IncidentHandler {
	return &IncidentHandler{service: svc}
}

// ListIncidents returns the incident catalog.
// @Summary List incidents
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /incidencias [get]
func (h *IncidentHandler) ListIncidents(c *gin.Context) {
	incidents, err := h.service.ListIncidents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, incidents, nil)
}

// CreateIncident adds an entry to the incident catalog.
// @Summary Create incident
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateIncidentRequest true "Incident payload"
// @Success 201 {object} response.Envelope
// @Router /incidencias [post]
func (h *IncidentHandler) CreateIncident(c *gin.Context) {
	var req service.CreateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid incident payload"))
		return
	}

	incident, err := h.service.CreateIncident(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, incident)
}

// ListMeasures returns disciplinary measures matching the filter.
// @Summary List measures
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param student_id query string false "Filter by student"
// @Param incident_id query string false "Filter by incident"
// @Param type_id query string false "Filter by incident type"
// @Success 200 {object} response.Envelope
// @Router /medidas [get]
func (h *IncidentHandler) ListMeasures(c *gin.Context) {
	filter := models.MeasureFilter{
		StudentID:  c.Query("student_id"),
		IncidentID: c.Query("incident_id"),
		TypeID:     c.Query("type_id"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	measures, pagination, err := h.service.ListMeasures(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, measures, pagination)
}

// GetMeasure returns a single measure.
// @Summary Get measure by id
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Measure ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /medidas/{id} [get]
func (h *IncidentHandler) GetMeasure(c *gin.Context) {
	measure, err := h.service.GetMeasure(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, measure, nil)
}

// CreateMeasure records a disciplinary measure.
// @Summary Create measure
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateMeasureRequest true "Measure payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /medidas [post]
func (h *IncidentHandler) CreateMeasure(c *gin.Context) {
	var req service.CreateMeasureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid measure payload"))
		return
	}

	measure, err := h.service.CreateMeasure(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, measure)
}

// DeleteMeasure removes a measure record.
// @Summary Delete measure
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Measure ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /medidas/{id} [delete]
func (h *IncidentHandler) DeleteMeasure(c *gin.Context) {
	if err := h.service.DeleteMeasure(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
