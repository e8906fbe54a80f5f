package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Type enumerates the supported discount strategies.
type Type string

const (
	// TypePercentage takes Value percent off the subtotal.
	TypePercentage Type = "percentage"
	// TypeFixed takes a flat Value off, capped at the subtotal.
	TypeFixed Type = "fixed"
	// TypeTiered takes a flat Value off per full MinSubtotal of spend.
	TypeTiered Type = "tiered"
)

var (
	// ErrUnknownCode is returned when no discount code with the given string
	// exists.
	ErrUnknownCode = errors.New("unknown discount code")
	// ErrCodeInactive is returned when the code exists but has been disabled.
	ErrCodeInactive = errors.New("discount code is inactive")
	// ErrCodeExpired is returned when the code's expiry date has passed.
	ErrCodeExpired = errors.New("discount code expired")
	// ErrMinSubtotal is returned when the order subtotal is below the code's
	// minimum spend.
	ErrMinSubtotal = errors.New("subtotal below code minimum")
)

// Code is a stored promotional code. A code is applicable iff it is active
// and its expiry date, when set, has not passed.
type Code struct {
	Code        string
	Type        Type
	Value       decimal.Decimal
	MinSubtotal decimal.Decimal
	Description string
	Active      bool
	ExpiresAt   *time.Time
}

// Applicable reports whether the code can be used at the given time. A code
// must be active and, when it carries an expiry date, the date must not have
// passed. Expiry is date-granular: the code works through the end of its
// expiry day, UTC.
func (c *Code) Applicable(now time.Time) error {
	if !c.Active {
		return ErrCodeInactive
	}
	if c.ExpiresAt != nil {
		today := now.UTC().Truncate(24 * time.Hour)
		if c.ExpiresAt.Before(today) {
			return ErrCodeExpired
		}
	}
	return nil
}

// Repository provides lookup of discount codes.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Code, error)
}
