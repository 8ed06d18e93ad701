package dberrors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yigit/skillmart/internal/pkg/apperrors"
)

const uniqueViolation = "23505"

// IsDuplicateConstraintError reports whether err is a unique violation of the named
// constraint
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraintName
}

// IsNotFound reports whether a single-row query matched nothing
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Wrap marks err as a database failure of op, keeping the driver error in the chain
func Wrap(err error, op string) error {
	return fmt.Errorf("%s: %w: %w", op, apperrors.ErrDatabase, err)
}
