package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func decPtr(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestParseDiscount(t *testing.T) {
	tests := []struct {
		name     string
		typ      string
		value    *decimal.Decimal
		x, y     int
		bundle   *decimal.Decimal
		expected Discount
	}{
		{name: "percentage", typ: DiscountPercentage, value: decPtr("15"), expected: Percentage{Value: *decPtr("15")}},
		{name: "percentage missing value", typ: DiscountPercentage, expected: nil},
		{name: "percentage zero value", typ: DiscountPercentage, value: decPtr("0"), expected: nil},
		{name: "fixed", typ: DiscountFixed, value: decPtr("5.50"), expected: FixedAmount{Value: *decPtr("5.50")}},
		{name: "fixed negative value", typ: DiscountFixed, value: decPtr("-2"), expected: nil},
		{name: "buy x get y", typ: DiscountBuyXGetY, x: 2, y: 1, expected: BuyXGetY{X: 2, Y: 1}},
		{name: "buy x get y zero x", typ: DiscountBuyXGetY, x: 0, y: 1, expected: nil},
		{name: "buy x get y zero y", typ: DiscountBuyXGetY, x: 2, y: 0, expected: nil},
		{name: "buy x for price", typ: DiscountBuyXForPrice, x: 2, bundle: decPtr("20"), expected: BuyXForPrice{X: 2, Bundle: *decPtr("20")}},
		{name: "buy x for price missing bundle", typ: DiscountBuyXForPrice, x: 2, expected: nil},
		{name: "buy x for price zero x", typ: DiscountBuyXForPrice, x: 0, bundle: decPtr("20"), expected: nil},
		{name: "unrecognized type", typ: "loyalty_points", value: decPtr("10"), expected: nil},
		{name: "empty type", typ: "", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDiscount(tt.typ, tt.value, tt.x, tt.y, tt.bundle)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// Stray columns from other schemes never leak into the parsed variant.
func TestParseDiscountIgnoresForeignFields(t *testing.T) {
	got := ParseDiscount(DiscountPercentage, decPtr("10"), 3, 2, decPtr("99"))
	assert.Equal(t, Percentage{Value: *decPtr("10")}, got)
}

func TestUserEligibility(t *testing.T) {
	verified := User{Role: RoleBusiness, BusinessVerified: true}
	assert.True(t, verified.CanCreateOffers())

	vetted := User{Role: RoleBusiness, BusinessVerified: true, BusinessVetted: true}
	assert.False(t, vetted.CanCreateOffers())

	unverified := User{Role: RoleBusiness}
	assert.False(t, unverified.CanCreateOffers())

	regular := User{Role: RoleUser}
	assert.False(t, regular.CanCreateOffers())
}
