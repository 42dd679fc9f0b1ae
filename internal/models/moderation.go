package models

import "time"

// Moderation record statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// BusinessRequest is a user's application to become a business account.
type BusinessRequest struct {
	ID                  int64
	UserID              int64
	BusinessName        string
	BusinessDescription string
	Phone               string
	Latitude            float64
	Longitude           float64
	LocationName        string
	Status              string
	CreatedAt           time.Time
	ReviewedAt          *time.Time
	ReviewedBy          *int64
	RejectionReason     string

	// Annotated at query time.
	Username string
}

// VetoAppeal is a vetted business asking for the veto to be lifted.
type VetoAppeal struct {
	ID            int64
	BusinessID    int64
	Reason        string
	Status        string
	CreatedAt     time.Time
	ReviewedAt    *time.Time
	AdminResponse string

	// Annotated at query time.
	BusinessName string
}
