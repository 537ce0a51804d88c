package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/colegioadm/colegio-api/internal/models"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
)

type mockGradeRepo struct {
	grades map[string]*models.Grade
}

func (m *mockGradeRepo) List(ctx context.Context) ([]models.Grade, error) {
	var out []models.Grade
	for _, g := range m.grades {
		out = append(out, *g)
	}
	return out, nil
}

func (m *mockGradeRepo) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	g, ok := m.grades[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return g, nil
}

func (m *mockGradeRepo) AvailableSeats(ctx context.Context, id string) (int, error) {
	g, ok := m.grades[id]
	if !ok {
		return 0, sql.ErrNoRows
	}
	return g.AvailableSeats, nil
}

func (m *mockGradeRepo) ReserveSeat(ctx context.Context, id string) error {
	g, ok := m.grades[id]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "grade not found")
	}
	if g.AvailableSeats <= 0 {
		return appErrors.ErrCapacityExceeded
	}
	g.AvailableSeats--
	return nil
}

func (m *mockGradeRepo) Create(ctx context.Context, grade *models.Grade) error {
	grade.ID = "g-new"
	if m.grades == nil {
		m.grades = make(map[string]*models.Grade)
	}
	m.grades[grade.ID] = grade
	return nil
}

func (m *mockGradeRepo) UpdateSeats(ctx context.Context, id string, seats int) error {
	g, ok := m.grades[id]
	if !ok {
		return sql.ErrNoRows
	}
	g.AvailableSeats = seats
	return nil
}

func TestGradeServiceCapacity(t *testing.T) {
	repo := &mockGradeRepo{grades: map[string]*models.Grade{
		"g1": {ID: "g1", Name: "1ro A", AvailableSeats: 3},
		"g2": {ID: "g2", Name: "1ro B", AvailableSeats: 0},
	}}
	svc := NewGradeService(repo, validator.New(), zap.NewNop())

	cap1, err := svc.Capacity(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, 3, cap1.AvailableSeats)
	assert.True(t, cap1.HasSeats)

	cap2, err := svc.Capacity(context.Background(), "g2")
	require.NoError(t, err)
	assert.Zero(t, cap2.AvailableSeats)
	assert.False(t, cap2.HasSeats)
}

func TestGradeServiceCapacityMissing(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, validator.New(), zap.NewNop())

	_, err := svc.Capacity(context.Background(), "404")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestGradeServiceReserveSeat(t *testing.T) {
	repo := &mockGradeRepo{grades: map[string]*models.Grade{
		"g1": {ID: "g1", Name: "1ro A", AvailableSeats: 1},
	}}
	svc := NewGradeService(repo, validator.New(), zap.NewNop())

	snapshot, err := svc.ReserveSeat(context.Background(), "g1")
	require.NoError(t, err)
	assert.Zero(t, snapshot.AvailableSeats)
	assert.False(t, snapshot.HasSeats)

	_, err = svc.ReserveSeat(context.Background(), "g1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrCapacityExceeded.Code, appErr.Code)
	assert.Zero(t, repo.grades["g1"].AvailableSeats)
}

func TestGradeServiceCreateRejectsNegativeSeats(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateGradeRequest{Name: "1ro A", AvailableSeats: -1})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestGradeServiceUpdateSeats(t *testing.T) {
	repo := &mockGradeRepo{grades: map[string]*models.Grade{
		"g1": {ID: "g1", Name: "1ro A", AvailableSeats: 0},
	}}
	svc := NewGradeService(repo, validator.New(), zap.NewNop())

	grade, err := svc.UpdateSeats(context.Background(), "g1", UpdateSeatsRequest{AvailableSeats: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, grade.AvailableSeats)
}
