package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/nightcafe/promobot/internal/domain"
)

func TestMapConstraintError(t *testing.T) {
	unique := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "promo_codes_code_key"}
	assert.ErrorIs(t, mapConstraintError(unique), domain.ErrDuplicateCode)

	notNull := &pgconn.PgError{Code: pgNotNullViolation, ColumnName: "issued_to"}
	assert.ErrorIs(t, mapConstraintError(notNull), domain.ErrMissingField)

	wrapped := fmt.Errorf("exec: %w", &pgconn.PgError{Code: pgUniqueViolation})
	assert.ErrorIs(t, mapConstraintError(wrapped), domain.ErrDuplicateCode)
}

func TestMapConstraintErrorPassesThroughUnknown(t *testing.T) {
	boom := errors.New("connection refused")
	got := mapConstraintError(boom)

	assert.ErrorIs(t, got, boom)
	assert.NotErrorIs(t, got, domain.ErrDuplicateCode)
	assert.NotErrorIs(t, got, domain.ErrMissingField)
}
