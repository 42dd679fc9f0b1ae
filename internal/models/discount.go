package models

import "github.com/shopspring/decimal"

// Discount scheme identifiers as stored in the offers table.
const (
	DiscountPercentage   = "percentage"
	DiscountFixed        = "fixed"
	DiscountBuyXGetY     = "buy_x_get_y"
	DiscountBuyXForPrice = "buy_x_for_price"
)

// Discount is the active pricing scheme of an offer. Exactly one variant
// applies per offer; stored columns belonging to other schemes are dropped
// when the row is mapped, so the pricing engine never has to ignore stray
// fields.
type Discount interface {
	Type() string
}

// Percentage takes a percentage off the original unit price.
type Percentage struct {
	Value decimal.Decimal
}

// FixedAmount takes a fixed amount off the original unit price.
type FixedAmount struct {
	Value decimal.Decimal
}

// BuyXGetY gives Y free units for every X paid (2x1 style).
type BuyXGetY struct {
	X, Y int
}

// BuyXForPrice sells X units for a bundle price (2 for $20 style). The
// offer's original price is optional for this scheme.
type BuyXForPrice struct {
	X      int
	Bundle decimal.Decimal
}

func (Percentage) Type() string   { return DiscountPercentage }
func (FixedAmount) Type() string  { return DiscountFixed }
func (BuyXGetY) Type() string     { return DiscountBuyXGetY }
func (BuyXForPrice) Type() string { return DiscountBuyXForPrice }

// ParseDiscount maps the stored scheme columns to a Discount variant. An
// unrecognized type or an incomplete or invalid field set (missing value,
// non-positive amounts or quantities) yields nil, which pricing treats as
// "no active scheme".
func ParseDiscount(typ string, value *decimal.Decimal, x, y int, bundle *decimal.Decimal) Discount {
	switch typ {
	case DiscountPercentage:
		if value == nil || !value.IsPositive() {
			return nil
		}
		return Percentage{Value: *value}
	case DiscountFixed:
		if value == nil || !value.IsPositive() {
			return nil
		}
		return FixedAmount{Value: *value}
	case DiscountBuyXGetY:
		if x <= 0 || y <= 0 {
			return nil
		}
		return BuyXGetY{X: x, Y: y}
	case DiscountBuyXForPrice:
		if x <= 0 || bundle == nil || !bundle.IsPositive() {
			return nil
		}
		return BuyXForPrice{X: x, Bundle: *bundle}
	}
	return nil
}
