package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nightcafe/promobot/internal/domain"
)

// Postgres error codes translated into the domain taxonomy.
const (
	pgUniqueViolation  = "23505"
	pgNotNullViolation = "23502"
)

type PromoCodes struct {
	pool *pgxpool.Pool
}

func NewPromoCodes(pool *pgxpool.Pool) *PromoCodes {
	return &PromoCodes{pool: pool}
}

const promoCodeColumns = `id, code, discount_value, is_used, created_at, used_at, issued_to, issued_at, used_by`

// Exists reports whether a code is already present.
func (r *PromoCodes) Exists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM promo_codes WHERE code = $1)`, code,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check promo code exists: %w", err)
	}
	return exists, nil
}

// Insert creates a new issued code. Uniqueness relies on the database
// constraint, so a lost insert race surfaces as domain.ErrDuplicateCode.
func (r *PromoCodes) Insert(ctx context.Context, code, discountValue, issuedTo string, now time.Time) (*domain.PromoCode, error) {
	pc := &domain.PromoCode{
		ID:            uuid.New(),
		Code:          code,
		DiscountValue: discountValue,
		CreatedAt:     now,
		IssuedTo:      issuedTo,
		IssuedAt:      now,
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO promo_codes (id, code, discount_value, is_used, created_at, issued_to, issued_at)
		 VALUES ($1, $2, $3, FALSE, $4, $5, $6)`,
		pc.ID, pc.Code, pc.DiscountValue, pc.CreatedAt, pc.IssuedTo, pc.IssuedAt,
	)
	if err != nil {
		return nil, mapConstraintError(err)
	}
	return pc, nil
}

// FindByCode returns the code row or domain.ErrCodeNotFound.
func (r *PromoCodes) FindByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+promoCodeColumns+` FROM promo_codes WHERE code = $1`, code)
	return scanPromoCode(row)
}

// FindByIssuee returns the code issued to the identity or domain.ErrCodeNotFound.
func (r *PromoCodes) FindByIssuee(ctx context.Context, identity string) (*domain.PromoCode, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+promoCodeColumns+` FROM promo_codes WHERE issued_to = $1 LIMIT 1`, identity)
	return scanPromoCode(row)
}

// MarkUsed flips is_used in a single conditional update and reports whether
// this call won. A false return with nil error means the code was missing or
// already used by the time the update ran.
func (r *PromoCodes) MarkUsed(ctx context.Context, code string, usedAt time.Time, usedBy string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE promo_codes SET is_used = TRUE, used_at = $2, used_by = $3
		 WHERE code = $1 AND NOT is_used`,
		code, usedAt, usedBy,
	)
	if err != nil {
		return false, fmt.Errorf("mark promo code used: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Counts returns the rollup for the stats view.
func (r *PromoCodes) Counts(ctx context.Context) (domain.Counts, error) {
	var c domain.Counts
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE issued_to IS NOT NULL AND issued_to <> ''),
		        COUNT(*) FILTER (WHERE is_used)
		 FROM promo_codes`,
	).Scan(&c.Total, &c.Issued, &c.Used)
	if err != nil {
		return domain.Counts{}, fmt.Errorf("count promo codes: %w", err)
	}
	return c, nil
}

func scanPromoCode(row pgx.Row) (*domain.PromoCode, error) {
	var pc domain.PromoCode
	err := row.Scan(
		&pc.ID, &pc.Code, &pc.DiscountValue, &pc.IsUsed,
		&pc.CreatedAt, &pc.UsedAt, &pc.IssuedTo, &pc.IssuedAt, &pc.UsedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("scan promo code: %w", err)
	}
	return &pc, nil
}

func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return domain.ErrDuplicateCode
		case pgNotNullViolation:
			return domain.ErrMissingField
		}
	}
	return fmt.Errorf("insert promo code: %w", err)
}
