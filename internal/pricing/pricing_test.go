package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestFinalUnitPrice(t *testing.T) {
	tests := []struct {
		name     string
		offer    models.Offer
		expected string
	}{
		{
			name:     "percentage basic",
			offer:    models.Offer{OriginalPrice: decPtr("100"), Discount: models.Percentage{Value: dec("25")}},
			expected: "75",
		},
		{
			name:     "percentage with cents",
			offer:    models.Offer{OriginalPrice: decPtr("19.99"), Discount: models.Percentage{Value: dec("10")}},
			expected: "17.99",
		},
		{
			name:     "percentage zero discount leaves price",
			offer:    models.Offer{OriginalPrice: decPtr("50"), Discount: models.Percentage{Value: dec("0.0001")}},
			expected: "50",
		},
		{
			name:     "percentage without original price",
			offer:    models.Offer{Discount: models.Percentage{Value: dec("25")}},
			expected: "0",
		},
		{
			name:     "fixed basic",
			offer:    models.Offer{OriginalPrice: decPtr("30"), Discount: models.FixedAmount{Value: dec("12.50")}},
			expected: "17.5",
		},
		{
			name:     "fixed discount above price floors at zero",
			offer:    models.Offer{OriginalPrice: decPtr("10"), Discount: models.FixedAmount{Value: dec("15")}},
			expected: "0",
		},
		{
			name:     "fixed discount equal to price",
			offer:    models.Offer{OriginalPrice: decPtr("10"), Discount: models.FixedAmount{Value: dec("10")}},
			expected: "0",
		},
		{
			name:     "buy 2 get 1 at 12 gives 8 per unit",
			offer:    models.Offer{OriginalPrice: decPtr("12"), Discount: models.BuyXGetY{X: 2, Y: 1}},
			expected: "8",
		},
		{
			name:     "buy x get y without original price",
			offer:    models.Offer{Discount: models.BuyXGetY{X: 2, Y: 1}},
			expected: "0",
		},
		{
			name:     "2 for 20 gives 10 per unit",
			offer:    models.Offer{Discount: models.BuyXForPrice{X: 2, Bundle: dec("20")}},
			expected: "10",
		},
		{
			name:     "bundle price ignores original price",
			offer:    models.Offer{OriginalPrice: decPtr("15"), Discount: models.BuyXForPrice{X: 2, Bundle: dec("20")}},
			expected: "10",
		},
		{
			name:     "no scheme falls back to original price",
			offer:    models.Offer{OriginalPrice: decPtr("42.10")},
			expected: "42.1",
		},
		{
			name:     "no scheme and no price",
			offer:    models.Offer{},
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FinalUnitPrice(&tt.offer)
			assert.True(t, dec(tt.expected).Equal(got), "want %s, got %s", tt.expected, got)
			assert.False(t, got.IsNegative())
		})
	}
}

func TestDiscountAmount(t *testing.T) {
	tests := []struct {
		name     string
		offer    models.Offer
		expected string
	}{
		{
			name:     "percentage savings",
			offer:    models.Offer{OriginalPrice: decPtr("100"), Discount: models.Percentage{Value: dec("25")}},
			expected: "25",
		},
		{
			name:     "fixed savings capped at price",
			offer:    models.Offer{OriginalPrice: decPtr("10"), Discount: models.FixedAmount{Value: dec("15")}},
			expected: "10",
		},
		{
			name:     "buy 2 get 1 saves one unit",
			offer:    models.Offer{OriginalPrice: decPtr("12"), Discount: models.BuyXGetY{X: 2, Y: 1}},
			expected: "0",
		},
		{
			name:     "bundle with reference price",
			offer:    models.Offer{OriginalPrice: decPtr("15"), Discount: models.BuyXForPrice{X: 2, Bundle: dec("20")}},
			expected: "10",
		},
		{
			name:     "bundle without reference price is zero",
			offer:    models.Offer{Discount: models.BuyXForPrice{X: 2, Bundle: dec("20")}},
			expected: "0",
		},
		{
			name:     "bundle above list price never negative",
			offer:    models.Offer{OriginalPrice: decPtr("5"), Discount: models.BuyXForPrice{X: 2, Bundle: dec("20")}},
			expected: "0",
		},
		{
			name:     "no scheme saves nothing",
			offer:    models.Offer{OriginalPrice: decPtr("99")},
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiscountAmount(&tt.offer)
			assert.True(t, dec(tt.expected).Equal(got), "want %s, got %s", tt.expected, got)
			assert.False(t, got.IsNegative())
		})
	}
}

func TestDiscountAmountBuyXGetY(t *testing.T) {
	// 2x1 at $12: buyer pays 2 units worth $24 and receives 3. Per-unit
	// price is exact ($8), so original*X equals final*(X+Y) and the bundle
	// savings formula nets to zero; the saved value shows up purely in the
	// per-unit price drop.
	offer := models.Offer{OriginalPrice: decPtr("12"), Discount: models.BuyXGetY{X: 2, Y: 1}}
	assert.True(t, dec("8").Equal(FinalUnitPrice(&offer)))
	assert.True(t, DiscountAmount(&offer).IsZero())
}

func TestPercentageIdentity(t *testing.T) {
	// discount_amount == original - final for the whole percentage range.
	original := dec("80")
	for v := 0; v <= 100; v += 5 {
		offer := models.Offer{
			OriginalPrice: &original,
			Discount:      models.ParseDiscount(models.DiscountPercentage, decPtr(decimal.NewFromInt(int64(v)).String()), 0, 0, nil),
		}
		final := FinalUnitPrice(&offer)
		saved := DiscountAmount(&offer)
		assert.True(t, original.Sub(final).Equal(saved), "v=%d: %s - %s != %s", v, original, final, saved)
		assert.False(t, final.IsNegative())
		assert.False(t, saved.IsNegative())
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		name     string
		offer    models.Offer
		expected string
	}{
		{"percentage", models.Offer{Discount: models.Percentage{Value: dec("15")}}, "-15%"},
		{"fixed", models.Offer{Discount: models.FixedAmount{Value: dec("5")}}, "-$5"},
		{"buy x get y", models.Offer{Discount: models.BuyXGetY{X: 2, Y: 1}}, "2x1"},
		{"buy x for price", models.Offer{Discount: models.BuyXForPrice{X: 2, Bundle: dec("20")}}, "2x$20"},
		{"no scheme", models.Offer{OriginalPrice: decPtr("10")}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Display(&tt.offer))
		})
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	offer := models.Offer{ExpiresAt: now}

	assert.False(t, IsExpired(&offer, now), "expiry instant itself is not expired")
	assert.False(t, IsExpired(&offer, now.Add(-time.Second)))
	assert.True(t, IsExpired(&offer, now.Add(time.Second)))
}

func TestPopularityScore(t *testing.T) {
	offer := models.Offer{Views: 10, LikesCount: 4, ReviewsCount: 3, AvgRating: 4.5}
	// 10*1 + 4*5 + 3*10 + 4.5*20 = 150
	assert.InDelta(t, 150.0, PopularityScore(&offer), 1e-9)

	assert.Zero(t, PopularityScore(&models.Offer{}))
}
