// Package postgres implements the repositories on PostgreSQL through pgx.
package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dungpham-npc/storefront/pkg/database"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
)

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// mapError translates pgx and Postgres errors into application errors.
// subject names the entity in the resulting message, e.g. "User".
func mapError(err error, subject, op string) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NotFound(subject)
	case database.IsUniqueViolation(err):
		return apperrors.Conflict(subject).WithCause(err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
