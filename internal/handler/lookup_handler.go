package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colegioadm/colegio-api/internal/service"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
	"github.com/colegioadm/colegio-api/pkg/response"
)

// LookupHandler serves the reference catalogs backing dropdown fields.
type LookupHandler struct {
	service *service.LookupService
}

// NewLookupHandler creates a new handler.
func NewLookupHandler(svc *service.LookupService) *LookupHandler {
	return &LookupHandler{service: svc}
}

// Roles returns the employee role catalog.
// @Summary List roles
// @Tags Lookups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /roles [get]
func (h *LookupHandler) Roles(c *gin.Context) {
	roles, err := h.service.Roles(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roles, nil)
}

// Relationships returns the tutor relationship catalog.
// @Summary List relationships
// @Tags Lookups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /parentescos [get]
func (h *LookupHandler) Relationships(c *gin.Context) {
	rels, err := h.service.Relationships(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rels, nil)
}

// Schools returns the schools-of-origin catalog.
// @Summary List schools of origin
// @Tags Lookups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /colegios [get]
func (h *LookupHandler) Schools(c *gin.Context) {
	schools, err := h.service.Schools(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schools, nil)
}

// CreateSchool registers a new school of origin.
// @Summary Create school of origin
// @Tags Lookups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateSchoolRequest true "School payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /colegios [post]
func (h *LookupHandler) CreateSchool(c *gin.Context) {
	var req service.CreateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid school payload"))
		return
	}

	school, err := h.service.CreateSchool(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, school)
}

// Places returns the incident place catalog.
// @Summary List places
// @Tags Lookups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /lugares [get]
func (h *LookupHandler) Places(c *gin.Context) {
	places, err := h.service.Places(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, places, nil)
}

// IncidentTypes returns the incident type catalog.
// @Summary List incident types
// @Tags Lookups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /tipos-incidencia [get]
func (h *LookupHandler) IncidentTypes(c *gin.Context) {
	types, err := h.service.IncidentTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, types, nil)
}
