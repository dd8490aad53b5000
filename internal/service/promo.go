package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/nightcafe/promobot/internal/config"
	"github.com/nightcafe/promobot/internal/domain"
)

// PromoStore is the durable record of every issued code.
type PromoStore interface {
	Exists(ctx context.Context, code string) (bool, error)
	Insert(ctx context.Context, code, discountValue, issuedTo string, now time.Time) (*domain.PromoCode, error)
	FindByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	FindByIssuee(ctx context.Context, identity string) (*domain.PromoCode, error)
	MarkUsed(ctx context.Context, code string, usedAt time.Time, usedBy string) (bool, error)
	Counts(ctx context.Context) (domain.Counts, error)
}

type PromoService struct {
	store PromoStore
	cfg   *config.Config
}

func NewPromoService(store PromoStore, cfg *config.Config) *PromoService {
	return &PromoService{store: store, cfg: cfg}
}

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Issue creates a code for the identity, at most one per identity ever.
func (s *PromoService) Issue(ctx context.Context, identity string) (*domain.PromoCode, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, domain.ErrMissingField
	}

	_, err := s.store.FindByIssuee(ctx, identity)
	if err == nil {
		return nil, domain.ErrAlreadyIssued
	}
	if !errors.Is(err, domain.ErrCodeNotFound) {
		slog.Error("issuee lookup failed", "issued_to", identity, "error", err)
		return nil, domain.ErrGenerationFailed
	}

	for attempt := 1; attempt <= config.MaxGenerateAttempts; attempt++ {
		code, err := s.generateUniqueCode(ctx)
		if err != nil {
			slog.Error("code generation failed", "attempt", attempt, "error", err)
			return nil, domain.ErrGenerationFailed
		}

		pc, err := s.store.Insert(ctx, code, s.cfg.DiscountTemplate, identity, time.Now())
		switch {
		case err == nil:
			slog.Info("promo code issued", "code", code, "issued_to", identity)
			return pc, nil
		case errors.Is(err, domain.ErrDuplicateCode):
			// Lost an insert race, benign
			slog.Warn("promo code collision", "code", code, "attempt", attempt)
		default:
			slog.Error("promo code insert failed", "code", code, "error", err)
			return nil, domain.ErrGenerationFailed
		}
	}

	slog.Error("promo code generation exhausted", "attempts", config.MaxGenerateAttempts)
	return nil, domain.ErrGenerationFailed
}

// Redeem marks a code used exactly once. The conditional update in the store
// is the authority under concurrent redemption; the pre-read only picks the
// right caller-facing outcome.
func (s *PromoService) Redeem(ctx context.Context, code, redeemedBy string) (*domain.PromoCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	pc, err := s.store.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("find promo code: %w", err)
	}

	if strings.TrimSpace(pc.IssuedTo) == "" {
		return nil, domain.ErrNotIssued
	}
	if pc.IsUsed {
		return nil, domain.ErrAlreadyUsed
	}

	now := time.Now()
	won, err := s.store.MarkUsed(ctx, code, now, redeemedBy)
	if err != nil {
		return nil, fmt.Errorf("mark promo code used: %w", err)
	}
	if !won {
		return nil, domain.ErrAlreadyUsed
	}

	pc.IsUsed = true
	pc.UsedAt = &now
	pc.UsedBy = &redeemedBy

	slog.Info("promo code redeemed", "code", code, "used_by", redeemedBy)
	return pc, nil
}

// HasReceivedCode reports whether the identity was ever issued a code.
func (s *PromoService) HasReceivedCode(ctx context.Context, identity string) (bool, error) {
	_, err := s.store.FindByIssuee(ctx, identity)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrCodeNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("find by issuee: %w", err)
}

// Lookup returns the full code record for the staff detail view.
func (s *PromoService) Lookup(ctx context.Context, code string) (*domain.PromoCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	return s.store.FindByCode(ctx, code)
}

// Stats is a read-only rollup over the store.
func (s *PromoService) Stats(ctx context.Context) (*domain.Stats, error) {
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate counts: %w", err)
	}
	return &domain.Stats{
		Total:  counts.Total,
		Issued: counts.Issued,
		Used:   counts.Used,
		Active: counts.Issued - counts.Used,
	}, nil
}

// LooksLikeCode reports whether raw text is plausibly a promo code, used to
// route staff text messages.
func (s *PromoService) LooksLikeCode(text string) bool {
	text = strings.TrimSpace(text)
	if s.cfg.CodePrefix != "" && strings.HasPrefix(text, s.cfg.CodePrefix) {
		return true
	}
	return len(text) == s.cfg.CodeTotalLength()
}

// generateUniqueCode draws prefix+random candidates until one is free. The
// caller bounds total attempts; collisions here are expected to be rare given
// the 36^L candidate space.
func (s *PromoService) generateUniqueCode(ctx context.Context) (string, error) {
	for {
		code, err := randomCode(s.cfg.CodePrefix, s.cfg.CodeLength)
		if err != nil {
			return "", err
		}
		exists, err := s.store.Exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
		slog.Warn("generated code already exists", "code", code)
	}
}

func randomCode(prefix string, length int) (string, error) {
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", fmt.Errorf("random code: %w", err)
		}
		buf[i] = codeCharset[n.Int64()]
	}
	return prefix + string(buf), nil
}
