package models

import "time"

// Notification types.
const (
	NotifyNewOffer        = "new_offer"
	NotifyBusinessRequest = "business_request"
	NotifyRequestApproved = "request_approved"
	NotifyRequestRejected = "request_rejected"
	NotifyVeto            = "veto"
	NotifyVetoAppeal      = "veto_appeal"
	NotifyNewReview       = "new_review"
	NotifyOfferExpiring   = "offer_expiring"
)

type Notification struct {
	ID        int64
	UserID    int64
	Type      string
	Title     string
	Message   string
	Link      string
	IsRead    bool
	CreatedAt time.Time
}
