package service

import (
	"context"
	"fmt"
	"math"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/repository"
)

type BusinessOfferStatsStore interface {
	BusinessStats(ctx context.Context, businessID int64) (repository.BusinessOfferStats, error)
}

type BusinessReviewStatsStore interface {
	BusinessReviewStats(ctx context.Context, businessID int64) (count int, avg float64, err error)
}

type FollowStore interface {
	Get(ctx context.Context, id int64) (*models.User, error)
	FollowersCount(ctx context.Context, businessID int64) (int, error)
	ToggleFollowBusiness(ctx context.Context, userID, businessID int64) (bool, error)
	ToggleFollowCategory(ctx context.Context, userID, categoryID int64) (bool, error)
}

type PaymentLedger interface {
	ForBusiness(ctx context.Context, businessID int64) ([]models.Payment, error)
}

// BusinessService serves the business dashboard, payment history, and
// follow edges.
type BusinessService struct {
	offers   BusinessOfferStatsStore
	reviews  BusinessReviewStatsStore
	users    FollowStore
	payments PaymentLedger
}

func NewBusinessService(offers BusinessOfferStatsStore, reviews BusinessReviewStatsStore, users FollowStore, payments PaymentLedger) *BusinessService {
	return &BusinessService{offers: offers, reviews: reviews, users: users, payments: payments}
}

// DashboardStats is the business owner's overview.
type DashboardStats struct {
	TotalOffers  int
	ActiveOffers int
	TotalViews   int64
	TotalLikes   int
	TotalReviews int
	AvgRating    float64
	Followers    int
}

func (s *BusinessService) Dashboard(ctx context.Context, businessID int64) (DashboardStats, error) {
	var stats DashboardStats

	offerStats, err := s.offers.BusinessStats(ctx, businessID)
	if err != nil {
		return stats, fmt.Errorf("offer stats: %w", err)
	}
	stats.TotalOffers = offerStats.TotalOffers
	stats.ActiveOffers = offerStats.ActiveOffers
	stats.TotalViews = offerStats.TotalViews
	stats.TotalLikes = offerStats.TotalLikes

	count, avg, err := s.reviews.BusinessReviewStats(ctx, businessID)
	if err != nil {
		return stats, fmt.Errorf("review stats: %w", err)
	}
	stats.TotalReviews = count
	stats.AvgRating = math.Round(avg*10) / 10

	if stats.Followers, err = s.users.FollowersCount(ctx, businessID); err != nil {
		return stats, fmt.Errorf("followers: %w", err)
	}

	return stats, nil
}

// ToggleFollowBusiness flips the caller's follow on a verified business.
func (s *BusinessService) ToggleFollowBusiness(ctx context.Context, actorID, businessID int64) (bool, error) {
	if actorID == businessID {
		return false, invalid("cannot follow yourself")
	}

	target, err := s.users.Get(ctx, businessID)
	if err != nil {
		return false, fmt.Errorf("load business: %w", err)
	}
	if target == nil || !target.IsBusiness() || !target.BusinessVerified {
		return false, ErrNotFound
	}

	return s.users.ToggleFollowBusiness(ctx, actorID, businessID)
}

// ToggleFollowCategory flips the caller's follow on a category.
func (s *BusinessService) ToggleFollowCategory(ctx context.Context, actorID, categoryID int64) (bool, error) {
	return s.users.ToggleFollowCategory(ctx, actorID, categoryID)
}

// Payments lists the caller's listing-fee history, newest first.
func (s *BusinessService) Payments(ctx context.Context, businessID int64) ([]models.Payment, error) {
	return s.payments.ForBusiness(ctx, businessID)
}
