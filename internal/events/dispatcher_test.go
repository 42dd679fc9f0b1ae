package events

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
)

type memStore struct {
	mu    sync.Mutex
	notes []models.Notification
}

func (s *memStore) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, *n)
	return nil
}

func (s *memStore) byUser() map[int64]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]int)
	for _, n := range s.notes {
		out[n.UserID]++
	}
	return out
}

type memRecipients struct {
	admins            []models.User
	businessFollowers []models.User
	categoryFollowers []models.User
}

func (r *memRecipients) Admins(context.Context) ([]models.User, error) {
	return r.admins, nil
}

func (r *memRecipients) BusinessFollowers(context.Context, int64) ([]models.User, error) {
	return r.businessFollowers, nil
}

func (r *memRecipients) CategoryFollowers(context.Context, int64) ([]models.User, error) {
	return r.categoryFollowers, nil
}

func TestBusPublishDeliversToSubscribers(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var got []string
	bus.Subscribe(OfferCreated, func(_ context.Context, e Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.Type)
		return nil
	})

	e := New(OfferCreated)
	bus.Publish(context.Background(), e)
	bus.Publish(context.Background(), New(ReviewCreated)) // no subscriber, dropped
	bus.Wait()

	assert.Equal(t, []string{OfferCreated}, got)
	assert.NotEqual(t, e.ID, New(OfferCreated).ID)
}

func TestDispatcherOfferCreatedFanOut(t *testing.T) {
	store := &memStore{}
	recipients := &memRecipients{
		businessFollowers: []models.User{
			{ID: 1, NotificationsEnabled: true},
			{ID: 2, NotificationsEnabled: false},
		},
		categoryFollowers: []models.User{
			{ID: 1, NotificationsEnabled: true}, // follows both, one notification
			{ID: 3, NotificationsEnabled: true},
		},
	}

	bus := NewBus()
	NewDispatcher(store, recipients).Register(bus)

	e := New(OfferCreated)
	e.BusinessID = 9
	e.CategoryID = 4
	e.Title = "New offer from Cafe Central"
	bus.Publish(context.Background(), e)
	bus.Wait()

	counts := store.byUser()
	assert.Equal(t, map[int64]int{1: 1, 3: 1}, counts, "disabled users and duplicates are skipped")
	for _, n := range store.notes {
		assert.Equal(t, models.NotifyNewOffer, n.Type)
		assert.Equal(t, "New offer from Cafe Central", n.Title)
	}
}

func TestDispatcherAdminAndUserEvents(t *testing.T) {
	store := &memStore{}
	recipients := &memRecipients{
		admins: []models.User{{ID: 100}, {ID: 101}},
	}

	bus := NewBus()
	NewDispatcher(store, recipients).Register(bus)

	submitted := New(BusinessRequestSubmitted)
	submitted.UserID = 7
	bus.Publish(context.Background(), submitted)

	approved := New(BusinessRequestApproved)
	approved.UserID = 7
	bus.Publish(context.Background(), approved)

	vetoed := New(BusinessVetoed)
	vetoed.BusinessID = 8
	bus.Publish(context.Background(), vetoed)

	bus.Wait()

	counts := store.byUser()
	require.Equal(t, map[int64]int{100: 1, 101: 1, 7: 1, 8: 1}, counts)

	types := make(map[int64]string)
	for _, n := range store.notes {
		if n.UserID == 7 || n.UserID == 8 {
			types[n.UserID] = n.Type
		}
	}
	assert.Equal(t, models.NotifyRequestApproved, types[7])
	assert.Equal(t, models.NotifyVeto, types[8])
}
