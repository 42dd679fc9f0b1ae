package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/events"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/repository"
)

type fakeModeration struct {
	requests map[int64]*models.BusinessRequest
	appeals  map[int64]*models.VetoAppeal
	nextID   int64
}

func newFakeModeration() *fakeModeration {
	return &fakeModeration{
		requests: make(map[int64]*models.BusinessRequest),
		appeals:  make(map[int64]*models.VetoAppeal),
	}
}

func (f *fakeModeration) CreateBusinessRequest(_ context.Context, req *models.BusinessRequest) error {
	f.nextID++
	req.ID = f.nextID
	req.Status = models.StatusPending
	f.requests[req.ID] = req
	return nil
}

func (f *fakeModeration) GetBusinessRequest(_ context.Context, id int64) (*models.BusinessRequest, error) {
	return f.requests[id], nil
}

func (f *fakeModeration) PendingBusinessRequests(_ context.Context) ([]*models.BusinessRequest, error) {
	var out []*models.BusinessRequest
	for _, req := range f.requests {
		if req.Status == models.StatusPending {
			out = append(out, req)
		}
	}
	return out, nil
}

func (f *fakeModeration) ResolveBusinessRequest(_ context.Context, id int64, status string, reviewerID int64, reason string) error {
	req := f.requests[id]
	req.Status = status
	req.ReviewedBy = &reviewerID
	req.RejectionReason = reason
	return nil
}

func (f *fakeModeration) CountPendingRequests(ctx context.Context) (int, error) {
	pending, _ := f.PendingBusinessRequests(ctx)
	return len(pending), nil
}

func (f *fakeModeration) CreateVetoAppeal(_ context.Context, a *models.VetoAppeal) error {
	f.nextID++
	a.ID = f.nextID
	a.Status = models.StatusPending
	f.appeals[a.ID] = a
	return nil
}

func (f *fakeModeration) GetVetoAppeal(_ context.Context, id int64) (*models.VetoAppeal, error) {
	return f.appeals[id], nil
}

func (f *fakeModeration) PendingVetoAppeals(_ context.Context) ([]*models.VetoAppeal, error) {
	var out []*models.VetoAppeal
	for _, a := range f.appeals {
		if a.Status == models.StatusPending {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeModeration) ResolveVetoAppeal(_ context.Context, id int64, status, response string) error {
	a := f.appeals[id]
	a.Status = status
	a.AdminResponse = response
	return nil
}

type fakeModUsers struct {
	byID map[int64]*models.User
}

func (f *fakeModUsers) Get(_ context.Context, id int64) (*models.User, error) {
	return f.byID[id], nil
}

func (f *fakeModUsers) PromoteToBusiness(_ context.Context, req *models.BusinessRequest) error {
	u := f.byID[req.UserID]
	u.Role = models.RoleBusiness
	u.BusinessName = req.BusinessName
	u.BusinessVerified = true
	return nil
}

func (f *fakeModUsers) SetVetted(_ context.Context, businessID int64, vetted bool, reason string) error {
	u := f.byID[businessID]
	u.BusinessVetted = vetted
	u.VetoReason = reason
	return nil
}

func (f *fakeModUsers) AdminCounts(_ context.Context) (repository.AdminUserCounts, error) {
	var counts repository.AdminUserCounts
	for _, u := range f.byID {
		switch {
		case u.BusinessVetted:
			counts.VettedBusinesses++
		case u.BusinessVerified:
			counts.VerifiedBusinesses++
		case u.Role == models.RoleUser:
			counts.RegularUsers++
		}
	}
	return counts, nil
}

type fakeModOffers struct{}

func (fakeModOffers) AllOffers(context.Context, int, int) ([]*models.Offer, error) {
	return nil, nil
}

func (fakeModOffers) Delete(context.Context, int64) error { return nil }

func (fakeModOffers) CountOffers(context.Context) (int, int, error) { return 0, 0, nil }

func (fakeModOffers) OffersByCategory(context.Context, int) ([]repository.CategoryCount, error) {
	return nil, nil
}

type fakePayments struct {
	completed decimal.Decimal
	recorded  []*models.Payment
}

func (f *fakePayments) Create(_ context.Context, p *models.Payment) error {
	p.ID = int64(len(f.recorded) + 1)
	f.recorded = append(f.recorded, p)
	if p.Status == models.PaymentCompleted {
		f.completed = f.completed.Add(p.Amount)
	}
	return nil
}

func (f *fakePayments) CompletedRevenue(context.Context) (decimal.Decimal, error) {
	return f.completed, nil
}

func testModerationService() (*ModerationService, *fakeModeration, *fakeModUsers, *fakePayments) {
	moderation := newFakeModeration()
	users := &fakeModUsers{byID: map[int64]*models.User{
		1: {ID: 1, Username: "admin", Role: models.RoleAdmin},
		2: {ID: 2, Username: "applicant", Role: models.RoleUser},
		3: {ID: 3, Username: "banned", Role: models.RoleBusiness, BusinessName: "Banned Bar", BusinessVerified: true, BusinessVetted: true},
	}}
	payments := &fakePayments{}
	svc := NewModerationService(moderation, users, fakeModOffers{}, payments, events.NewBus())
	return svc, moderation, users, payments
}

func TestApproveBusinessRequestPromotesUser(t *testing.T) {
	svc, _, users, _ := testModerationService()

	req, err := svc.SubmitBusinessRequest(context.Background(), 2, BusinessRequestInput{
		BusinessName: "Panaderia Sol",
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, req.Status)

	require.NoError(t, svc.ApproveBusinessRequest(context.Background(), 1, req.ID))

	u := users.byID[2]
	assert.Equal(t, models.RoleBusiness, u.Role)
	assert.True(t, u.BusinessVerified)
	assert.Equal(t, "Panaderia Sol", u.BusinessName)

	pending, err := svc.PendingBusinessRequests(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSubmitBusinessRequestGuards(t *testing.T) {
	svc, _, _, _ := testModerationService()

	_, err := svc.SubmitBusinessRequest(context.Background(), 2, BusinessRequestInput{})
	assert.ErrorContains(t, err, "business name")

	_, err = svc.SubmitBusinessRequest(context.Background(), 3, BusinessRequestInput{BusinessName: "Again"})
	assert.ErrorContains(t, err, "already a verified business")
}

func TestRejectBusinessRequestKeepsUser(t *testing.T) {
	svc, moderation, users, _ := testModerationService()

	req, err := svc.SubmitBusinessRequest(context.Background(), 2, BusinessRequestInput{BusinessName: "No Luck"})
	require.NoError(t, err)

	require.NoError(t, svc.RejectBusinessRequest(context.Background(), 1, req.ID, "incomplete application"))

	assert.Equal(t, models.StatusRejected, moderation.requests[req.ID].Status)
	assert.Equal(t, "incomplete application", moderation.requests[req.ID].RejectionReason)
	assert.Equal(t, models.RoleUser, users.byID[2].Role)
}

func TestVetoAppealLifecycle(t *testing.T) {
	svc, _, users, _ := testModerationService()

	appeal, err := svc.SubmitVetoAppeal(context.Background(), 3, "we fixed the listings")
	require.NoError(t, err)

	require.NoError(t, svc.ResolveVetoAppeal(context.Background(), appeal.ID, true, "welcome back"))
	assert.False(t, users.byID[3].BusinessVetted)
}

func TestSubmitVetoAppealRequiresVeto(t *testing.T) {
	svc, _, _, _ := testModerationService()

	_, err := svc.SubmitVetoAppeal(context.Background(), 2, "why not")
	assert.ErrorContains(t, err, "not vetoed")
}

func TestVetoBusinessSetsReason(t *testing.T) {
	svc, _, users, _ := testModerationService()
	users.byID[4] = &models.User{ID: 4, Role: models.RoleBusiness, BusinessName: "Sloppy Shop", BusinessVerified: true}

	require.NoError(t, svc.VetoBusiness(context.Background(), 4, "misleading prices"))
	assert.True(t, users.byID[4].BusinessVetted)
	assert.Equal(t, "misleading prices", users.byID[4].VetoReason)

	err := svc.VetoBusiness(context.Background(), 2, "not a business")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordPayment(t *testing.T) {
	svc, _, _, payments := testModerationService()

	p, err := svc.RecordPayment(context.Background(), 3, models.PaymentMonthly, decimal.NewFromInt(50), "august fee")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, p.Status)

	revenue, err := payments.CompletedRevenue(context.Background())
	require.NoError(t, err)
	assert.True(t, revenue.Equal(decimal.NewFromInt(50)))

	_, err = svc.RecordPayment(context.Background(), 3, "weekly", decimal.NewFromInt(10), "")
	assert.ErrorContains(t, err, "unknown payment type")

	_, err = svc.RecordPayment(context.Background(), 3, models.PaymentFeatured, decimal.Zero, "")
	assert.ErrorContains(t, err, "amount must be positive")

	_, err = svc.RecordPayment(context.Background(), 2, models.PaymentMonthly, decimal.NewFromInt(10), "")
	assert.ErrorContains(t, err, "verified businesses only")
}
