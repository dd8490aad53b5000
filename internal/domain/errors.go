package domain

import "errors"

var (
	ErrCodeNotFound     = errors.New("promo code not found")
	ErrAlreadyIssued    = errors.New("identity already received a promo code")
	ErrAlreadyUsed      = errors.New("promo code already used")
	ErrNotIssued        = errors.New("promo code was not issued to anyone")
	ErrDuplicateCode    = errors.New("promo code already exists")
	ErrMissingField     = errors.New("required promo code field is missing")
	ErrGenerationFailed = errors.New("failed to generate a unique promo code")
)
