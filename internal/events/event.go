package events

import (
	"time"

	"github.com/google/uuid"
)

// Domain event types emitted by write operations.
const (
	OfferCreated             = "offer.created"
	ReviewCreated            = "review.created"
	BusinessRequestSubmitted = "business_request.submitted"
	BusinessRequestApproved  = "business_request.approved"
	BusinessRequestRejected  = "business_request.rejected"
	BusinessVetoed           = "business.vetoed"
	BusinessVerified         = "business.verified"
	VetoAppealSubmitted      = "veto_appeal.submitted"
	OfferExpiring            = "offer.expiring"
)

// Event is a domain event. Write operations publish these instead of
// touching notification storage, which keeps the pricing/ranking core and
// the services free of notification concerns.
type Event struct {
	ID         uuid.UUID
	Type       string
	OccurredAt time.Time

	// Subject identifiers; zero when not applicable to the event type.
	UserID     int64 // the user the event concerns (requester, reviewer, ...)
	BusinessID int64
	CategoryID int64
	OfferID    int64

	// Human-readable context carried into notifications.
	Title   string
	Message string
	Link    string
}

// New builds an event of the given type stamped with a fresh id.
func New(eventType string) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
	}
}
