package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/cache"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/events"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/logger"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/ranking"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/repository"
)

// Home feed shape. Fixed design constants.
const (
	popularLimit  = 8
	expiringDays  = 3
	expiringLimit = 6
	nearbyMaxKm   = 10
	nearbyLimit   = 6
)

// Stores required by the offer service; narrow interfaces so tests can use
// in-memory fakes.
type OfferStore interface {
	ActiveOffers(ctx context.Context, f repository.OfferFilters) ([]*models.Offer, error)
	GetOffer(ctx context.Context, id int64) (*models.Offer, error)
	OffersByBusiness(ctx context.Context, businessID int64) ([]*models.Offer, error)
	Create(ctx context.Context, o *models.Offer) error
	Update(ctx context.Context, o *models.Offer) error
	Deactivate(ctx context.Context, id int64) error
	IncrementViews(ctx context.Context, id int64) error
	ToggleLike(ctx context.Context, offerID, userID int64) (bool, error)
}

type UserStore interface {
	Get(ctx context.Context, id int64) (*models.User, error)
}

type CategoryStore interface {
	Get(ctx context.Context, id int64) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
}

type OfferService struct {
	offers     OfferStore
	users      UserStore
	categories CategoryStore
	bus        *events.Bus

	// feedCache holds the eligible-candidate snapshot the home feed ranks
	// over; nearby distances are still computed per caller.
	feedCache *cache.Cache[[]*models.Offer]
}

func NewOfferService(offers OfferStore, users UserStore, categories CategoryStore, bus *events.Bus) *OfferService {
	return &OfferService{
		offers:     offers,
		users:      users,
		categories: categories,
		bus:        bus,
		feedCache:  cache.New[[]*models.Offer](30 * time.Second),
	}
}

// OfferInput is the write payload for creating or editing an offer. The
// discount columns arrive flat from the form and are parsed into the
// Discount sum type after per-scheme validation.
type OfferInput struct {
	CategoryID    int64
	Title         string
	Description   string
	OriginalPrice *decimal.Decimal
	DiscountType  string
	DiscountValue *decimal.Decimal
	QuantityX     int
	QuantityY     int
	BundlePrice   *decimal.Decimal
	ExpiresAt     time.Time
}

// Create publishes a new offer for a verified, non-vetted business.
func (s *OfferService) Create(ctx context.Context, actorID int64, in OfferInput) (*models.Offer, error) {
	actor, err := s.users.Get(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("load actor: %w", err)
	}
	if actor == nil || !actor.CanCreateOffers() {
		return nil, ErrForbidden
	}

	discount, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	offer := &models.Offer{
		BusinessID:    actorID,
		CategoryID:    in.CategoryID,
		Title:         in.Title,
		Description:   in.Description,
		OriginalPrice: in.OriginalPrice,
		Discount:      discount,
		ExpiresAt:     in.ExpiresAt,
		IsActive:      true,
	}
	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}
	s.feedCache.Delete("candidates")

	e := events.New(events.OfferCreated)
	e.OfferID = offer.ID
	e.BusinessID = actorID
	e.CategoryID = in.CategoryID
	e.Title = fmt.Sprintf("New offer from %s", actor.BusinessName)
	e.Message = offer.Title
	e.Link = fmt.Sprintf("/offers/%d", offer.ID)
	s.bus.Publish(ctx, e)

	return offer, nil
}

// Update edits an offer; only its owner may, and only while the business
// remains eligible.
func (s *OfferService) Update(ctx context.Context, actorID, offerID int64, in OfferInput) (*models.Offer, error) {
	offer, err := s.offers.GetOffer(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("load offer: %w", err)
	}
	if offer == nil {
		return nil, ErrNotFound
	}
	if offer.BusinessID != actorID {
		return nil, ErrForbidden
	}

	discount, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	offer.CategoryID = in.CategoryID
	offer.Title = in.Title
	offer.Description = in.Description
	offer.OriginalPrice = in.OriginalPrice
	offer.Discount = discount
	offer.ExpiresAt = in.ExpiresAt

	if err := s.offers.Update(ctx, offer); err != nil {
		return nil, fmt.Errorf("update offer: %w", err)
	}
	s.feedCache.Delete("candidates")
	return offer, nil
}

// Deactivate soft-removes an offer from public feeds; owner only.
func (s *OfferService) Deactivate(ctx context.Context, actorID, offerID int64) error {
	offer, err := s.offers.GetOffer(ctx, offerID)
	if err != nil {
		return fmt.Errorf("load offer: %w", err)
	}
	if offer == nil {
		return ErrNotFound
	}
	if offer.BusinessID != actorID {
		return ErrForbidden
	}
	if err := s.offers.Deactivate(ctx, offerID); err != nil {
		return err
	}
	s.feedCache.Delete("candidates")
	return nil
}

// Get fetches one offer and bumps its view counter. The increment is
// fire-and-forget: the persistence layer applies it atomically and a
// failure only loses one view.
func (s *OfferService) Get(ctx context.Context, offerID int64) (*models.Offer, error) {
	offer, err := s.offers.GetOffer(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("load offer: %w", err)
	}
	if offer == nil {
		return nil, ErrNotFound
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.offers.IncrementViews(ctx, offerID); err != nil {
			logger.Warn("view increment failed", zap.Int64("offer_id", offerID), zap.Error(err))
		}
	}()
	offer.Views++

	return offer, nil
}

// Search lists eligible offers with filters, sort and pagination.
func (s *OfferService) Search(ctx context.Context, f repository.OfferFilters) ([]*models.Offer, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 12
	}
	return s.offers.ActiveOffers(ctx, f)
}

// ByBusiness lists the caller's own offers, including inactive and expired.
func (s *OfferService) ByBusiness(ctx context.Context, businessID int64) ([]*models.Offer, error) {
	return s.offers.OffersByBusiness(ctx, businessID)
}

// ToggleLike flips the caller's like and returns the new state.
func (s *OfferService) ToggleLike(ctx context.Context, actorID, offerID int64) (bool, error) {
	offer, err := s.offers.GetOffer(ctx, offerID)
	if err != nil {
		return false, fmt.Errorf("load offer: %w", err)
	}
	if offer == nil {
		return false, ErrNotFound
	}
	return s.offers.ToggleLike(ctx, offerID, actorID)
}

// Categories lists all offer categories.
func (s *OfferService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// HomeFeed is the landing-page composition: most popular, closest to
// expiry, and (when the caller shared a location) nearest offers.
type HomeFeed struct {
	Popular  []*models.Offer
	Expiring []*models.Offer
	Nearby   []ranking.NearbyOffer
}

// Feed builds the home feed from one eligible-candidate snapshot. user may
// be nil (anonymous browsing skips the nearby section).
func (s *OfferService) Feed(ctx context.Context, user *models.User) (HomeFeed, error) {
	candidates, ok := s.feedCache.Get("candidates")
	if !ok {
		var err error
		candidates, err = s.offers.ActiveOffers(ctx, repository.OfferFilters{})
		if err != nil {
			return HomeFeed{}, fmt.Errorf("load candidates: %w", err)
		}
		s.feedCache.Set("candidates", candidates)
	}

	feed := HomeFeed{
		Popular:  ranking.PopularOffers(candidates, popularLimit),
		Expiring: ranking.ExpiringSoon(candidates, time.Now(), expiringDays, expiringLimit),
	}

	if user != nil && user.HasLocation() {
		nearby := ranking.NearbyOffers(*user.Latitude, *user.Longitude, nearbyMaxKm, candidates)
		if len(nearby) > nearbyLimit {
			nearby = nearby[:nearbyLimit]
		}
		feed.Nearby = nearby
	}

	return feed, nil
}

// validate applies per-scheme requiredness the way the form layer does, and
// returns the parsed discount. The pricing engine itself stays lenient;
// writes are where bad configurations get rejected.
func (s *OfferService) validate(ctx context.Context, in OfferInput) (models.Discount, error) {
	if in.Title == "" {
		return nil, invalid("title is required")
	}
	if !in.ExpiresAt.After(time.Now()) {
		return nil, invalid("expiry must be in the future")
	}
	if in.OriginalPrice != nil && !in.OriginalPrice.IsPositive() {
		return nil, invalid("original price must be positive")
	}

	category, err := s.categories.Get(ctx, in.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	if category == nil {
		return nil, invalid("unknown category")
	}

	switch in.DiscountType {
	case models.DiscountPercentage:
		if in.DiscountValue == nil || !in.DiscountValue.IsPositive() {
			return nil, invalid("discount value is required")
		}
		if in.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return nil, invalid("percentage cannot exceed 100")
		}
		if in.OriginalPrice == nil {
			return nil, invalid("original price is required for percentage offers")
		}
	case models.DiscountFixed:
		if in.DiscountValue == nil || !in.DiscountValue.IsPositive() {
			return nil, invalid("discount value is required")
		}
		if in.OriginalPrice == nil {
			return nil, invalid("original price is required for fixed offers")
		}
	case models.DiscountBuyXGetY:
		if in.QuantityX < 1 || in.QuantityY < 1 {
			return nil, invalid("quantities must be at least 1")
		}
		if in.OriginalPrice == nil {
			return nil, invalid("original price is required for buy-x-get-y offers")
		}
	case models.DiscountBuyXForPrice:
		if in.QuantityX < 1 {
			return nil, invalid("quantity must be at least 1")
		}
		if in.BundlePrice == nil || !in.BundlePrice.IsPositive() {
			return nil, invalid("bundle price is required")
		}
		// A reference price far below the per-unit bundle price makes the
		// "deal" meaningless; reject under half the per-unit price.
		if in.OriginalPrice != nil {
			perUnit := in.BundlePrice.Div(decimal.NewFromInt(int64(in.QuantityX)))
			minReference := perUnit.Mul(decimal.NewFromFloat(0.5))
			if in.OriginalPrice.LessThan(minReference) {
				return nil, invalid(fmt.Sprintf("original price looks too low; expected at least %s per unit", minReference.Round(2)))
			}
		}
	default:
		return nil, invalid("unknown discount type")
	}

	return models.ParseDiscount(in.DiscountType, in.DiscountValue, in.QuantityX, in.QuantityY, in.BundlePrice), nil
}
