package discount

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Amount computes the discount a code yields on the given subtotal. The
// result is deterministic for a (code, subtotal) pair and always satisfies
// 0 <= amount <= subtotal. New discount shapes plug in here without touching
// checkout orchestration.
//
// Rounding is the caller's concern: checkout rounds once, at the final total.
func Amount(c *Code, subtotal decimal.Decimal) (decimal.Decimal, error) {
	if c.MinSubtotal.IsPositive() && subtotal.LessThan(c.MinSubtotal) {
		return decimal.Zero, ErrMinSubtotal
	}

	var amount decimal.Decimal
	switch c.Type {
	case TypePercentage:
		amount = subtotal.Mul(c.Value).Div(hundred)
	case TypeFixed:
		amount = c.Value
	case TypeTiered:
		if !c.MinSubtotal.IsPositive() {
			return decimal.Zero, errors.Errorf("tiered code %q requires a positive min subtotal", c.Code)
		}
		amount = c.Value.Mul(subtotal.Div(c.MinSubtotal).Floor())
	default:
		return decimal.Zero, errors.Errorf("unsupported discount type: %q", c.Type)
	}

	return clamp(amount, subtotal), nil
}

// clamp bounds amount to [0, subtotal].
func clamp(amount, subtotal decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}
