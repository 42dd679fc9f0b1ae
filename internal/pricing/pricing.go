package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
)

const moneyPrecision int32 = 2 // currency minor units

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// FinalUnitPrice computes the discounted per-unit price of an offer using
// decimal arithmetic. Offers with no active scheme, or schemes missing
// their reference price, fall back to the original price or zero rather
// than failing: one malformed record must not abort a whole listing.
// The result is never negative.
func FinalUnitPrice(o *models.Offer) decimal.Decimal {
	switch d := o.Discount.(type) {
	case models.Percentage:
		if o.OriginalPrice == nil {
			return decimal.Zero
		}
		return money(o.OriginalPrice.Mul(one.Sub(d.Value.Div(hundred))))
	case models.FixedAmount:
		if o.OriginalPrice == nil {
			return decimal.Zero
		}
		return money(o.OriginalPrice.Sub(d.Value))
	case models.BuyXGetY:
		if o.OriginalPrice == nil {
			return decimal.Zero
		}
		// Per unit: (original * X) / (X + Y). 2x1 at $12 is 24/3 = $8.
		total := o.OriginalPrice.Mul(decimal.NewFromInt(int64(d.X)))
		return money(total.Div(decimal.NewFromInt(int64(d.X + d.Y))))
	case models.BuyXForPrice:
		// 2 for $20 is $10 per unit; no reference price needed.
		return money(d.Bundle.Div(decimal.NewFromInt(int64(d.X))))
	}
	if o.OriginalPrice == nil {
		return decimal.Zero
	}
	return money(*o.OriginalPrice)
}

// DiscountAmount computes the buyer's savings against the original price.
// Zero when no reference price exists (notably buy_x_for_price bundles
// without one) or when no scheme is active. Never negative.
func DiscountAmount(o *models.Offer) decimal.Decimal {
	if o.OriginalPrice == nil {
		return decimal.Zero
	}
	switch d := o.Discount.(type) {
	case models.Percentage, models.FixedAmount:
		return money(o.OriginalPrice.Sub(FinalUnitPrice(o)))
	case models.BuyXGetY:
		// Savings over the bundle: original*X versus final*(X+Y).
		qty := decimal.NewFromInt(int64(d.X))
		total := decimal.NewFromInt(int64(d.X + d.Y))
		return money(o.OriginalPrice.Mul(qty).Sub(FinalUnitPrice(o).Mul(total)))
	case models.BuyXForPrice:
		qty := decimal.NewFromInt(int64(d.X))
		return money(o.OriginalPrice.Mul(qty).Sub(d.Bundle))
	}
	return decimal.Zero
}

// Display returns the short badge label for an offer's scheme: "-15%",
// "-$5", "2x1", "2x$20". Empty when no scheme is active.
func Display(o *models.Offer) string {
	switch d := o.Discount.(type) {
	case models.Percentage:
		return "-" + d.Value.String() + "%"
	case models.FixedAmount:
		return "-$" + d.Value.String()
	case models.BuyXGetY:
		return fmt.Sprintf("%dx%d", d.X, d.Y)
	case models.BuyXForPrice:
		return fmt.Sprintf("%dx$%s", d.X, d.Bundle.String())
	}
	return ""
}

// IsExpired reports whether the offer's expiry has passed. Expiry is always
// computed against a clock, never stored as a terminal state.
func IsExpired(o *models.Offer, now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// money rounds to currency precision and floors at zero.
func money(d decimal.Decimal) decimal.Decimal {
	d = d.Round(moneyPrecision)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
