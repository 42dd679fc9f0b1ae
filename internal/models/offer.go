package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Offer struct {
	ID          int64
	BusinessID  int64
	CategoryID  int64
	Title       string
	Description string

	// OriginalPrice is the per-unit reference price. Optional for
	// buy_x_for_price offers (menu-wide bundles with no single-item price).
	OriginalPrice *decimal.Decimal
	Discount      Discount

	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time

	Views    int64
	IsActive bool

	// Aggregates annotated by the repository at query time; never stored.
	LikesCount   int
	ReviewsCount int
	AvgRating    float64

	// Owning business, loaded alongside the offer. Ranking needs its
	// coordinates, display needs its name.
	Business *User

	CategoryName string
}

type Category struct {
	ID          int64
	Name        string
	Description string
	Icon        string
	Color       string
}

type Review struct {
	ID        int64
	OfferID   int64
	UserID    int64
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Annotated at query time.
	Username string
}
