package service

import (
	"context"
	"fmt"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/events"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
)

type ReviewStore interface {
	Create(ctx context.Context, rev *models.Review) error
	Update(ctx context.Context, rev *models.Review) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Review, error)
	ForOffer(ctx context.Context, offerID int64) ([]*models.Review, error)
	ForOfferAndUser(ctx context.Context, offerID, userID int64) (*models.Review, error)
}

type ReviewService struct {
	reviews ReviewStore
	offers  OfferStore
	users   UserStore
	bus     *events.Bus
}

func NewReviewService(reviews ReviewStore, offers OfferStore, users UserStore, bus *events.Bus) *ReviewService {
	return &ReviewService{reviews: reviews, offers: offers, users: users, bus: bus}
}

// Create adds the caller's review of an offer; one review per user per
// offer, ratings 1 through 5.
func (s *ReviewService) Create(ctx context.Context, actorID, offerID int64, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, invalid("rating must be between 1 and 5")
	}

	offer, err := s.offers.GetOffer(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("load offer: %w", err)
	}
	if offer == nil {
		return nil, ErrNotFound
	}

	existing, err := s.reviews.ForOfferAndUser(ctx, offerID, actorID)
	if err != nil {
		return nil, fmt.Errorf("load existing review: %w", err)
	}
	if existing != nil {
		return nil, invalid("you already reviewed this offer")
	}

	rev := &models.Review{
		OfferID: offerID,
		UserID:  actorID,
		Rating:  rating,
		Comment: comment,
	}
	if err := s.reviews.Create(ctx, rev); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	actor, err := s.users.Get(ctx, actorID)
	if err == nil && actor != nil {
		rev.Username = actor.Username

		e := events.New(events.ReviewCreated)
		e.OfferID = offerID
		e.BusinessID = offer.BusinessID
		e.UserID = actorID
		e.Title = "New review"
		e.Message = fmt.Sprintf("%s left a %d-star review on %s", actor.Username, rating, offer.Title)
		e.Link = fmt.Sprintf("/offers/%d", offerID)
		s.bus.Publish(ctx, e)
	}

	return rev, nil
}

// Update edits the caller's own review.
func (s *ReviewService) Update(ctx context.Context, actorID, reviewID int64, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, invalid("rating must be between 1 and 5")
	}

	rev, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("load review: %w", err)
	}
	if rev == nil {
		return nil, ErrNotFound
	}
	if rev.UserID != actorID {
		return nil, ErrForbidden
	}

	rev.Rating = rating
	rev.Comment = comment
	if err := s.reviews.Update(ctx, rev); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	return rev, nil
}

// Delete removes a review; the author or an admin may.
func (s *ReviewService) Delete(ctx context.Context, actor *models.User, reviewID int64) error {
	rev, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("load review: %w", err)
	}
	if rev == nil {
		return ErrNotFound
	}
	if rev.UserID != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}
	return s.reviews.Delete(ctx, reviewID)
}

// ForOffer lists an offer's reviews.
func (s *ReviewService) ForOffer(ctx context.Context, offerID int64) ([]*models.Review, error) {
	return s.reviews.ForOffer(ctx, offerID)
}
