package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// Postgres error codes used to translate storage failures into domain
// error kinds (unique_violation, foreign_key_violation).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgForeignKeyViolation
}

// violatedConstraint returns the constraint name reported by Postgres,
// empty for non-pq errors.
func violatedConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

func constraintMentions(err error, fragment string) bool {
	return strings.Contains(violatedConstraint(err), fragment)
}
