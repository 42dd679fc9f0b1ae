package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/events"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/repository"
)

type fakeOffers struct {
	byID   map[int64]*models.Offer
	nextID int64
	likes  map[int64]map[int64]bool
}

func newFakeOffers() *fakeOffers {
	return &fakeOffers{byID: make(map[int64]*models.Offer), likes: make(map[int64]map[int64]bool)}
}

func (f *fakeOffers) ActiveOffers(_ context.Context, _ repository.OfferFilters) ([]*models.Offer, error) {
	var out []*models.Offer
	for _, o := range f.byID {
		if o.IsActive {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOffers) GetOffer(_ context.Context, id int64) (*models.Offer, error) {
	return f.byID[id], nil
}

func (f *fakeOffers) OffersByBusiness(_ context.Context, businessID int64) ([]*models.Offer, error) {
	var out []*models.Offer
	for _, o := range f.byID {
		if o.BusinessID == businessID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOffers) Create(_ context.Context, o *models.Offer) error {
	f.nextID++
	o.ID = f.nextID
	f.byID[o.ID] = o
	return nil
}

func (f *fakeOffers) Update(_ context.Context, o *models.Offer) error {
	f.byID[o.ID] = o
	return nil
}

func (f *fakeOffers) Deactivate(_ context.Context, id int64) error {
	if o := f.byID[id]; o != nil {
		o.IsActive = false
	}
	return nil
}

func (f *fakeOffers) IncrementViews(_ context.Context, id int64) error {
	return nil
}

func (f *fakeOffers) ToggleLike(_ context.Context, offerID, userID int64) (bool, error) {
	if f.likes[offerID] == nil {
		f.likes[offerID] = make(map[int64]bool)
	}
	liked := !f.likes[offerID][userID]
	f.likes[offerID][userID] = liked
	return liked, nil
}

type fakeUsers struct {
	byID map[int64]*models.User
}

func (f *fakeUsers) Get(_ context.Context, id int64) (*models.User, error) {
	return f.byID[id], nil
}

type fakeCategories struct {
	byID map[int64]*models.Category
}

func (f *fakeCategories) Get(_ context.Context, id int64) (*models.Category, error) {
	return f.byID[id], nil
}

func (f *fakeCategories) List(_ context.Context) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.byID {
		out = append(out, *c)
	}
	return out, nil
}

func testOfferService() (*OfferService, *fakeOffers, *fakeUsers) {
	offers := newFakeOffers()
	users := &fakeUsers{byID: map[int64]*models.User{
		1: {ID: 1, Username: "cafe", Role: models.RoleBusiness, BusinessName: "Cafe Central", BusinessVerified: true},
		2: {ID: 2, Username: "pending", Role: models.RoleBusiness},
		3: {ID: 3, Username: "banned", Role: models.RoleBusiness, BusinessVerified: true, BusinessVetted: true},
		4: {ID: 4, Username: "shopper", Role: models.RoleUser},
	}}
	categories := &fakeCategories{byID: map[int64]*models.Category{
		1: {ID: 1, Name: "Food"},
	}}
	return NewOfferService(offers, users, categories, events.NewBus()), offers, users
}

func validInput() OfferInput {
	price := decimal.NewFromInt(20)
	value := decimal.NewFromInt(25)
	return OfferInput{
		CategoryID:    1,
		Title:         "Lunch special",
		Description:   "25% off lunch",
		OriginalPrice: &price,
		DiscountType:  models.DiscountPercentage,
		DiscountValue: &value,
		ExpiresAt:     time.Now().Add(48 * time.Hour),
	}
}

func TestOfferServiceCreate(t *testing.T) {
	svc, _, _ := testOfferService()

	offer, err := svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)
	assert.NotZero(t, offer.ID)
	assert.True(t, offer.IsActive)
	assert.Equal(t, models.Percentage{Value: decimal.NewFromInt(25)}, offer.Discount)
}

func TestOfferServiceCreateEligibility(t *testing.T) {
	svc, _, _ := testOfferService()

	tests := []struct {
		name    string
		actorID int64
	}{
		{"unverified business", 2},
		{"vetted business", 3},
		{"regular user", 4},
		{"unknown user", 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.actorID, validInput())
			assert.ErrorIs(t, err, ErrForbidden)
		})
	}
}

func TestOfferServiceValidation(t *testing.T) {
	svc, _, _ := testOfferService()
	bundle := decimal.NewFromInt(20)
	lowRef := decimal.NewFromInt(4) // under half of 20/2

	tests := []struct {
		name   string
		mutate func(*OfferInput)
	}{
		{"missing title", func(in *OfferInput) { in.Title = "" }},
		{"past expiry", func(in *OfferInput) { in.ExpiresAt = time.Now().Add(-time.Hour) }},
		{"unknown category", func(in *OfferInput) { in.CategoryID = 42 }},
		{"unknown discount type", func(in *OfferInput) { in.DiscountType = "bogo" }},
		{"percentage without value", func(in *OfferInput) { in.DiscountValue = nil }},
		{"percentage above 100", func(in *OfferInput) {
			v := decimal.NewFromInt(150)
			in.DiscountValue = &v
		}},
		{"percentage without price", func(in *OfferInput) { in.OriginalPrice = nil }},
		{"bundle without price", func(in *OfferInput) {
			in.DiscountType = models.DiscountBuyXForPrice
			in.QuantityX = 2
			in.BundlePrice = nil
		}},
		{"bundle reference price too low", func(in *OfferInput) {
			in.DiscountType = models.DiscountBuyXForPrice
			in.QuantityX = 2
			in.BundlePrice = &bundle
			in.OriginalPrice = &lowRef
		}},
		{"buy x get y zero quantity", func(in *OfferInput) {
			in.DiscountType = models.DiscountBuyXGetY
			in.QuantityX = 0
			in.QuantityY = 1
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), 1, in)
			var verr ValidationError
			assert.ErrorAs(t, err, &verr, "want validation error, got %v", err)
		})
	}
}

func TestOfferServiceBundleWithoutReferencePrice(t *testing.T) {
	svc, _, _ := testOfferService()
	bundle := decimal.NewFromInt(20)

	in := validInput()
	in.OriginalPrice = nil
	in.DiscountType = models.DiscountBuyXForPrice
	in.QuantityX = 2
	in.DiscountValue = nil
	in.BundlePrice = &bundle

	offer, err := svc.Create(context.Background(), 1, in)
	require.NoError(t, err)
	assert.Equal(t, models.BuyXForPrice{X: 2, Bundle: bundle}, offer.Discount)
	assert.Nil(t, offer.OriginalPrice)
}

func TestOfferServiceUpdateOwnerOnly(t *testing.T) {
	svc, offers, _ := testOfferService()

	created, err := svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), 4, created.ID, validInput())
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(context.Background(), 1, 999, validInput())
	assert.ErrorIs(t, err, ErrNotFound)

	in := validInput()
	in.Title = "Dinner special"
	updated, err := svc.Update(context.Background(), 1, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Dinner special", updated.Title)
	assert.Equal(t, "Dinner special", offers.byID[created.ID].Title)
}

func TestOfferServiceToggleLike(t *testing.T) {
	svc, _, _ := testOfferService()

	created, err := svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)

	liked, err := svc.ToggleLike(context.Background(), 4, created.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = svc.ToggleLike(context.Background(), 4, created.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	_, err = svc.ToggleLike(context.Background(), 4, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOfferServiceFeed(t *testing.T) {
	svc, offers, users := testOfferService()

	lat, lon := 0.0, 0.0
	owner := users.byID[1]
	owner.Latitude = &lat
	owner.Longitude = &lon

	now := time.Now()
	popular := &models.Offer{BusinessID: 1, Views: 500, IsActive: true, ExpiresAt: now.Add(30 * 24 * time.Hour), Business: owner}
	expiring := &models.Offer{BusinessID: 1, Views: 1, IsActive: true, ExpiresAt: now.Add(24 * time.Hour), Business: owner}
	inactive := &models.Offer{BusinessID: 1, Views: 900, IsActive: false, ExpiresAt: now.Add(24 * time.Hour), Business: owner}
	require.NoError(t, offers.Create(context.Background(), popular))
	require.NoError(t, offers.Create(context.Background(), expiring))
	require.NoError(t, offers.Create(context.Background(), inactive))

	viewerLat, viewerLon := 0.0, 0.01
	viewer := &models.User{ID: 4, Latitude: &viewerLat, Longitude: &viewerLon}

	feed, err := svc.Feed(context.Background(), viewer)
	require.NoError(t, err)

	require.Len(t, feed.Popular, 2)
	assert.Equal(t, popular.ID, feed.Popular[0].ID)

	require.Len(t, feed.Expiring, 1)
	assert.Equal(t, expiring.ID, feed.Expiring[0].ID)

	require.Len(t, feed.Nearby, 2)
	assert.InDelta(t, 1.11, feed.Nearby[0].DistanceKm, 0.01)

	anonymous, err := svc.Feed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, anonymous.Nearby)
}
