package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/colegioadm/colegio-api/internal/repository"
	"github.com/colegioadm/colegio-api/internal/service"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
)

type enrollmentRepoStub struct {
	err    error
	called bool
}

func (s *enrollmentRepoStub) CreateComplete(ctx context.Context, params repository.CompleteEnrollmentParams) error {
	s.called = true
	if s.err != nil {
		return s.err
	}
	params.Student.ID = "st1"
	params.GradeLink.ID = "gl1"
	params.TutorLink.ID = "tl1"
	return nil
}

func newEnrollmentHandler(repo *enrollmentRepoStub) *EnrollmentHandler {
	svc := service.NewEnrollmentService(repo, validator.New(), zap.NewNop())
	return NewEnrollmentHandler(svc, service.NewMetricsService())
}

func enrollPayload() []byte {
	payload, _ := json.Marshal(map[string]interface{}{
		"alumno": map[string]interface{}{
			"dni":              "45678901",
			"nombre":           "Ana",
			"apellido":         "Gomez",
			"fecha_nacimiento": "2012-03-14T00:00:00Z",
		},
		"relacion_grado": map[string]interface{}{
			"id_grado":               "g1",
			"id_colegio_procedencia": "s1",
		},
		"relacion_tutor": map[string]interface{}{
			"id_tutor":      "t1",
			"id_parentesco": "rel1",
		},
	})
	return payload
}

func TestEnrollmentHandlerEnrollComplete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &enrollmentRepoStub{}
	handler := newEnrollmentHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/alumnos/completo", bytes.NewReader(enrollPayload()))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.EnrollComplete(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, repo.called)
	assert.Contains(t, w.Body.String(), "st1")
}

func TestEnrollmentHandlerEnrollCompleteMissingSection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &enrollmentRepoStub{}
	handler := newEnrollmentHandler(repo)

	payload, _ := json.Marshal(map[string]interface{}{
		"alumno": map[string]interface{}{
			"dni":              "45678901",
			"nombre":           "Ana",
			"apellido":         "Gomez",
			"fecha_nacimiento": "2012-03-14T00:00:00Z",
		},
		"relacion_grado": map[string]interface{}{
			"id_grado":               "g1",
			"id_colegio_procedencia": "s1",
		},
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/alumnos/completo", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.EnrollComplete(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, repo.called)
	assert.Contains(t, w.Body.String(), "relacion_tutor")
}

func TestEnrollmentHandlerEnrollCompleteNoSeats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &enrollmentRepoStub{err: appErrors.ErrCapacityExceeded}
	handler := newEnrollmentHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/alumnos/completo", bytes.NewReader(enrollPayload()))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.EnrollComplete(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), appErrors.ErrCapacityExceeded.Code)
}

func TestEnrollmentHandlerEnrollCompleteMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEnrollmentHandler(&enrollmentRepoStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/alumnos/completo", bytes.NewBufferString(`{"alumno":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.EnrollComplete(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
