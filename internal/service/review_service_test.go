package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/events"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
)

type fakeReviews struct {
	byID   map[int64]*models.Review
	nextID int64
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{byID: make(map[int64]*models.Review)}
}

func (f *fakeReviews) Create(_ context.Context, rev *models.Review) error {
	f.nextID++
	rev.ID = f.nextID
	f.byID[rev.ID] = rev
	return nil
}

func (f *fakeReviews) Update(_ context.Context, rev *models.Review) error {
	f.byID[rev.ID] = rev
	return nil
}

func (f *fakeReviews) Delete(_ context.Context, id int64) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeReviews) Get(_ context.Context, id int64) (*models.Review, error) {
	return f.byID[id], nil
}

func (f *fakeReviews) ForOffer(_ context.Context, offerID int64) ([]*models.Review, error) {
	var out []*models.Review
	for _, r := range f.byID {
		if r.OfferID == offerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviews) ForOfferAndUser(_ context.Context, offerID, userID int64) (*models.Review, error) {
	for _, r := range f.byID {
		if r.OfferID == offerID && r.UserID == userID {
			return r, nil
		}
	}
	return nil, nil
}

func testReviewService() (*ReviewService, *fakeReviews, *fakeOffers) {
	reviews := newFakeReviews()
	offers := newFakeOffers()
	users := &fakeUsers{byID: map[int64]*models.User{
		4: {ID: 4, Username: "shopper", Role: models.RoleUser},
		5: {ID: 5, Username: "moderator", Role: models.RoleAdmin},
	}}
	return NewReviewService(reviews, offers, users, events.NewBus()), reviews, offers
}

func TestReviewServiceCreate(t *testing.T) {
	svc, _, offers := testReviewService()
	offer := &models.Offer{BusinessID: 1, Title: "Lunch special", IsActive: true}
	require.NoError(t, offers.Create(context.Background(), offer))

	rev, err := svc.Create(context.Background(), 4, offer.ID, 5, "great deal")
	require.NoError(t, err)
	assert.Equal(t, 5, rev.Rating)
	assert.Equal(t, "shopper", rev.Username)

	// Second review from the same user is rejected.
	_, err = svc.Create(context.Background(), 4, offer.ID, 3, "changed my mind")
	var verr ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestReviewServiceCreateBounds(t *testing.T) {
	svc, _, offers := testReviewService()
	offer := &models.Offer{BusinessID: 1, IsActive: true}
	require.NoError(t, offers.Create(context.Background(), offer))

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Create(context.Background(), 4, offer.ID, rating, "nope")
		var verr ValidationError
		assert.ErrorAs(t, err, &verr, "rating %d", rating)
	}

	_, err := svc.Create(context.Background(), 4, 999, 5, "missing offer")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewServiceUpdateAndDelete(t *testing.T) {
	svc, reviews, offers := testReviewService()
	offer := &models.Offer{BusinessID: 1, IsActive: true}
	require.NoError(t, offers.Create(context.Background(), offer))

	rev, err := svc.Create(context.Background(), 4, offer.ID, 4, "good")
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), 5, rev.ID, 1, "hijack")
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(context.Background(), 4, rev.ID, 2, "went downhill")
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating)

	// A stranger cannot delete, the author can; admins can too.
	stranger := &models.User{ID: 9, Role: models.RoleUser}
	assert.ErrorIs(t, svc.Delete(context.Background(), stranger, rev.ID), ErrForbidden)

	admin := &models.User{ID: 5, Role: models.RoleAdmin}
	require.NoError(t, svc.Delete(context.Background(), admin, rev.ID))
	assert.Empty(t, reviews.byID)
}
