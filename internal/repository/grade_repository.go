package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colegioadm/colegio-api/internal/models"
	appErrors "github.com/colegioadm/colegio-api/pkg/errors"
)

// reserveSeatQuery is the guarded decrement behind the capacity
// invariant: it only fires while seats remain, so available_seats can
// never go negative regardless of concurrent enrollments. The same
// statement runs as the final step of the complete-enrollment
// transaction.
const reserveSeatQuery = `UPDATE grados SET available_seats = available_seats - 1, updated_at = $2 WHERE id = $1 AND available_seats > 0`

// GradeRepository manages grade rows and their seat ledger.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// List returns all grades ordered by name.
func (r *GradeRepository) List(ctx context.Context) ([]models.Grade, error) {
	const query = `SELECT id, name, available_seats, created_at, updated_at FROM grados ORDER BY name ASC`
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// FindByID returns a grade by identifier.
func (r *GradeRepository) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	const query = `SELECT id, name, available_seats, created_at, updated_at FROM grados WHERE id = $1 LIMIT 1`
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find grade by id: %w", err)
	}
	return &grade, nil
}

// AvailableSeats returns the current seat count for a grade.
func (r *GradeRepository) AvailableSeats(ctx context.Context, id string) (int, error) {
	const query = `SELECT available_seats FROM grados WHERE id = $1`
	var seats int
	if err := r.db.GetContext(ctx, &seats, query, id); err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("available seats: %w", err)
	}
	return seats, nil
}

// ReserveSeat consumes exactly one seat. It fails with NOT_FOUND when
// the grade does not exist and CAPACITY_EXCEEDED when no seats remain;
// it never clamps.
func (r *GradeRepository) ReserveSeat(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, reserveSeatQuery, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("reserve seat: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve seat: %w", err)
	}
	if n > 0 {
		return nil
	}

	var exists int
	err = r.db.GetContext(ctx, &exists, `SELECT 1 FROM grados WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return appErrors.Clone(appErrors.ErrNotFound, "grade not found")
	}
	if err != nil {
		return fmt.Errorf("reserve seat lookup: %w", err)
	}
	return appErrors.ErrCapacityExceeded
}

// Create inserts a new grade.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now

	const query = `INSERT INTO grados (id, name, available_seats, created_at, updated_at)
        VALUES (:id, :name, :available_seats, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("create grade: %w", err)
	}
	return nil
}

// UpdateSeats sets the seat count directly. Manual correction only;
// enrollment goes through ReserveSeat.
func (r *GradeRepository) UpdateSeats(ctx context.Context, id string, seats int) error {
	const query = `UPDATE grados SET available_seats = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, seats, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update grade seats: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
