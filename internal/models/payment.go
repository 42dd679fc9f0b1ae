package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment types and statuses. Payments are an inert ledger: recorded and
// summed for admin statistics, never charged from here.
const (
	PaymentMonthly  = "monthly"
	PaymentPerOffer = "per_offer"
	PaymentFeatured = "featured"

	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

type Payment struct {
	ID          int64
	BusinessID  int64
	PaymentType string
	Amount      decimal.Decimal
	Status      string
	Description string
	CreatedAt   time.Time
	CompletedAt *time.Time
}
