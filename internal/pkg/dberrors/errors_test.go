package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/yigit/skillmart/internal/pkg/apperrors"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "review_decisions_session_id_key"})

	assert.True(t, IsDuplicateConstraintError(err, "review_decisions_session_id_key"))
	assert.False(t, IsDuplicateConstraintError(err, "other_key"))
	assert.False(t, IsDuplicateConstraintError(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, IsDuplicateConstraintError(nil, "review_decisions_session_id_key"))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, IsNotFound(errors.New("timeout")))
}

func TestWrapKeepsBothCauses(t *testing.T) {
	cause := &pgconn.PgError{Code: "57P01"}
	err := Wrap(cause, "error updating wizard session")

	assert.ErrorIs(t, err, apperrors.ErrDatabase)
	var pgErr *pgconn.PgError
	assert.ErrorAs(t, err, &pgErr)
	assert.Contains(t, err.Error(), "error updating wizard session")
}
