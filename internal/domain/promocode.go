package domain

import (
	"time"

	"github.com/google/uuid"
)

// PromoCode is a single-use discount code issued to one subscriber.
type PromoCode struct {
	ID            uuid.UUID
	Code          string
	DiscountValue string
	IsUsed        bool
	CreatedAt     time.Time
	IssuedTo      string
	IssuedAt      time.Time
	UsedAt        *time.Time
	UsedBy        *string
}

// Counts is the raw rollup the store produces.
type Counts struct {
	Total  int64
	Issued int64
	Used   int64
}

// Stats adds the derived active figure for dashboards.
type Stats struct {
	Total  int64
	Issued int64
	Used   int64
	Active int64
}
