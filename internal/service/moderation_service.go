package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/events"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/repository"
)

type ModerationStore interface {
	CreateBusinessRequest(ctx context.Context, req *models.BusinessRequest) error
	GetBusinessRequest(ctx context.Context, id int64) (*models.BusinessRequest, error)
	PendingBusinessRequests(ctx context.Context) ([]*models.BusinessRequest, error)
	ResolveBusinessRequest(ctx context.Context, id int64, status string, reviewerID int64, rejectionReason string) error
	CountPendingRequests(ctx context.Context) (int, error)
	CreateVetoAppeal(ctx context.Context, a *models.VetoAppeal) error
	GetVetoAppeal(ctx context.Context, id int64) (*models.VetoAppeal, error)
	PendingVetoAppeals(ctx context.Context) ([]*models.VetoAppeal, error)
	ResolveVetoAppeal(ctx context.Context, id int64, status, adminResponse string) error
}

type ModerationUserStore interface {
	Get(ctx context.Context, id int64) (*models.User, error)
	PromoteToBusiness(ctx context.Context, req *models.BusinessRequest) error
	SetVetted(ctx context.Context, businessID int64, vetted bool, reason string) error
	AdminCounts(ctx context.Context) (repository.AdminUserCounts, error)
}

type ModerationOfferStore interface {
	AllOffers(ctx context.Context, limit, offset int) ([]*models.Offer, error)
	Delete(ctx context.Context, id int64) error
	CountOffers(ctx context.Context) (total, active int, err error)
	OffersByCategory(ctx context.Context, limit int) ([]repository.CategoryCount, error)
}

type RevenueStore interface {
	Create(ctx context.Context, p *models.Payment) error
	CompletedRevenue(ctx context.Context) (decimal.Decimal, error)
}

// ModerationService covers the admin vetting workflows: business account
// requests, vetoes, and veto appeals.
type ModerationService struct {
	moderation ModerationStore
	users      ModerationUserStore
	offers     ModerationOfferStore
	payments   RevenueStore
	bus        *events.Bus
}

func NewModerationService(moderation ModerationStore, users ModerationUserStore, offers ModerationOfferStore, payments RevenueStore, bus *events.Bus) *ModerationService {
	return &ModerationService{
		moderation: moderation,
		users:      users,
		offers:     offers,
		payments:   payments,
		bus:        bus,
	}
}

// BusinessRequestInput is the application payload for a business account.
type BusinessRequestInput struct {
	BusinessName        string
	BusinessDescription string
	Phone               string
	Latitude            float64
	Longitude           float64
	LocationName        string
}

// SubmitBusinessRequest files a user's application to become a business.
func (s *ModerationService) SubmitBusinessRequest(ctx context.Context, actorID int64, in BusinessRequestInput) (*models.BusinessRequest, error) {
	if in.BusinessName == "" {
		return nil, invalid("business name is required")
	}

	actor, err := s.users.Get(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("load actor: %w", err)
	}
	if actor == nil {
		return nil, ErrNotFound
	}
	if actor.IsBusiness() && actor.BusinessVerified {
		return nil, invalid("account is already a verified business")
	}

	req := &models.BusinessRequest{
		UserID:              actorID,
		BusinessName:        in.BusinessName,
		BusinessDescription: in.BusinessDescription,
		Phone:               in.Phone,
		Latitude:            in.Latitude,
		Longitude:           in.Longitude,
		LocationName:        in.LocationName,
	}
	if err := s.moderation.CreateBusinessRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("create business request: %w", err)
	}

	e := events.New(events.BusinessRequestSubmitted)
	e.UserID = actorID
	e.Title = "New business request"
	e.Message = fmt.Sprintf("%s applied to become a business: %s", actor.Username, in.BusinessName)
	e.Link = "/admin/business-requests"
	s.bus.Publish(ctx, e)

	return req, nil
}

// PendingBusinessRequests lists applications awaiting review.
func (s *ModerationService) PendingBusinessRequests(ctx context.Context) ([]*models.BusinessRequest, error) {
	return s.moderation.PendingBusinessRequests(ctx)
}

// ApproveBusinessRequest verifies the applicant and promotes the account.
func (s *ModerationService) ApproveBusinessRequest(ctx context.Context, reviewerID, requestID int64) error {
	req, err := s.moderation.GetBusinessRequest(ctx, requestID)
	if err != nil {
		return fmt.Errorf("load request: %w", err)
	}
	if req == nil {
		return ErrNotFound
	}

	if err := s.moderation.ResolveBusinessRequest(ctx, requestID, models.StatusApproved, reviewerID, ""); err != nil {
		return fmt.Errorf("resolve request: %w", err)
	}
	if err := s.users.PromoteToBusiness(ctx, req); err != nil {
		return fmt.Errorf("promote user: %w", err)
	}

	e := events.New(events.BusinessRequestApproved)
	e.UserID = req.UserID
	e.Title = "Request approved"
	e.Message = fmt.Sprintf("Your request for %s was approved. You can now create offers.", req.BusinessName)
	e.Link = "/business/dashboard"
	s.bus.Publish(ctx, e)

	return nil
}

// RejectBusinessRequest declines the application with a reason.
func (s *ModerationService) RejectBusinessRequest(ctx context.Context, reviewerID, requestID int64, reason string) error {
	req, err := s.moderation.GetBusinessRequest(ctx, requestID)
	if err != nil {
		return fmt.Errorf("load request: %w", err)
	}
	if req == nil {
		return ErrNotFound
	}

	if err := s.moderation.ResolveBusinessRequest(ctx, requestID, models.StatusRejected, reviewerID, reason); err != nil {
		return fmt.Errorf("resolve request: %w", err)
	}

	e := events.New(events.BusinessRequestRejected)
	e.UserID = req.UserID
	e.Title = "Request rejected"
	e.Message = fmt.Sprintf("Your request for %s was rejected. Reason: %s", req.BusinessName, reason)
	e.Link = "/profile"
	s.bus.Publish(ctx, e)

	return nil
}

// VetoBusiness bars a business from publishing; its offers drop out of
// feeds through the eligibility predicate, no offer rows change.
func (s *ModerationService) VetoBusiness(ctx context.Context, businessID int64, reason string) error {
	business, err := s.users.Get(ctx, businessID)
	if err != nil {
		return fmt.Errorf("load business: %w", err)
	}
	if business == nil || !business.IsBusiness() {
		return ErrNotFound
	}

	if err := s.users.SetVetted(ctx, businessID, true, reason); err != nil {
		return fmt.Errorf("set vetted: %w", err)
	}

	e := events.New(events.BusinessVetoed)
	e.BusinessID = businessID
	e.Title = "Account vetoed"
	e.Message = fmt.Sprintf("Your account was vetoed. Reason: %s. You may appeal this decision.", reason)
	e.Link = "/business/dashboard"
	s.bus.Publish(ctx, e)

	return nil
}

// RemoveVeto reinstates a vetted business.
func (s *ModerationService) RemoveVeto(ctx context.Context, businessID int64) error {
	if err := s.users.SetVetted(ctx, businessID, false, ""); err != nil {
		return fmt.Errorf("clear vetted: %w", err)
	}

	e := events.New(events.BusinessVerified)
	e.BusinessID = businessID
	e.Title = "Veto lifted"
	e.Message = "Your account was reinstated. Your offers are visible again."
	e.Link = "/business/dashboard"
	s.bus.Publish(ctx, e)

	return nil
}

// SubmitVetoAppeal files a vetted business's appeal.
func (s *ModerationService) SubmitVetoAppeal(ctx context.Context, businessID int64, reason string) (*models.VetoAppeal, error) {
	if reason == "" {
		return nil, invalid("appeal reason is required")
	}

	business, err := s.users.Get(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("load business: %w", err)
	}
	if business == nil {
		return nil, ErrNotFound
	}
	if !business.BusinessVetted {
		return nil, invalid("account is not vetoed")
	}

	appeal := &models.VetoAppeal{BusinessID: businessID, Reason: reason}
	if err := s.moderation.CreateVetoAppeal(ctx, appeal); err != nil {
		return nil, fmt.Errorf("create appeal: %w", err)
	}

	e := events.New(events.VetoAppealSubmitted)
	e.BusinessID = businessID
	e.Title = "New veto appeal"
	e.Message = fmt.Sprintf("%s appealed their veto.", business.BusinessName)
	e.Link = "/admin/veto-appeals"
	s.bus.Publish(ctx, e)

	return appeal, nil
}

// PendingVetoAppeals lists appeals awaiting review.
func (s *ModerationService) PendingVetoAppeals(ctx context.Context) ([]*models.VetoAppeal, error) {
	return s.moderation.PendingVetoAppeals(ctx)
}

// ResolveVetoAppeal records the decision; approval lifts the veto.
func (s *ModerationService) ResolveVetoAppeal(ctx context.Context, appealID int64, approve bool, response string) error {
	appeal, err := s.moderation.GetVetoAppeal(ctx, appealID)
	if err != nil {
		return fmt.Errorf("load appeal: %w", err)
	}
	if appeal == nil {
		return ErrNotFound
	}

	status := models.StatusRejected
	if approve {
		status = models.StatusApproved
	}
	if err := s.moderation.ResolveVetoAppeal(ctx, appealID, status, response); err != nil {
		return fmt.Errorf("resolve appeal: %w", err)
	}

	if approve {
		return s.RemoveVeto(ctx, appeal.BusinessID)
	}
	return nil
}

// ListOffers is the admin offer listing (no eligibility filter).
func (s *ModerationService) ListOffers(ctx context.Context, limit, offset int) ([]*models.Offer, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.offers.AllOffers(ctx, limit, offset)
}

// DeleteOffer hard-removes an offer (moderation).
func (s *ModerationService) DeleteOffer(ctx context.Context, offerID int64) error {
	return s.offers.Delete(ctx, offerID)
}

// RecordPayment enters a listing-fee payment into the ledger. Charging
// happens on an external processor; this is bookkeeping only.
func (s *ModerationService) RecordPayment(ctx context.Context, businessID int64, paymentType string, amount decimal.Decimal, description string) (*models.Payment, error) {
	switch paymentType {
	case models.PaymentMonthly, models.PaymentPerOffer, models.PaymentFeatured:
	default:
		return nil, invalid("unknown payment type")
	}
	if !amount.IsPositive() {
		return nil, invalid("amount must be positive")
	}

	business, err := s.users.Get(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("load business: %w", err)
	}
	if business == nil {
		return nil, ErrNotFound
	}
	if !business.BusinessVerified {
		return nil, invalid("payments apply to verified businesses only")
	}

	p := &models.Payment{
		BusinessID:  businessID,
		PaymentType: paymentType,
		Amount:      amount,
		Status:      models.PaymentCompleted,
		Description: description,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}
	return p, nil
}

// AdminStats is the admin dashboard aggregate.
type AdminStats struct {
	RegularUsers       int
	VerifiedBusinesses int
	VettedBusinesses   int
	PendingRequests    int
	TotalOffers        int
	ActiveOffers       int
	TotalRevenue       decimal.Decimal
	OffersByCategory   []repository.CategoryCount
}

func (s *ModerationService) Stats(ctx context.Context) (AdminStats, error) {
	var stats AdminStats

	counts, err := s.users.AdminCounts(ctx)
	if err != nil {
		return stats, fmt.Errorf("user counts: %w", err)
	}
	stats.RegularUsers = counts.RegularUsers
	stats.VerifiedBusinesses = counts.VerifiedBusinesses
	stats.VettedBusinesses = counts.VettedBusinesses

	if stats.PendingRequests, err = s.moderation.CountPendingRequests(ctx); err != nil {
		return stats, fmt.Errorf("pending requests: %w", err)
	}
	if stats.TotalOffers, stats.ActiveOffers, err = s.offers.CountOffers(ctx); err != nil {
		return stats, fmt.Errorf("offer counts: %w", err)
	}
	if stats.TotalRevenue, err = s.payments.CompletedRevenue(ctx); err != nil {
		return stats, fmt.Errorf("revenue: %w", err)
	}
	if stats.OffersByCategory, err = s.offers.OffersByCategory(ctx, 5); err != nil {
		return stats, fmt.Errorf("offers by category: %w", err)
	}

	return stats, nil
}
