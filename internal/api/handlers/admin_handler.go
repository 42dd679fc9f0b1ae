package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/api/middleware"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/repository"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/service"
)

type rejectPayload struct {
	Reason string `json:"reason"`
}

type resolveAppealPayload struct {
	Approve  bool   `json:"approve"`
	Response string `json:"response"`
}

type paymentPayload struct {
	BusinessID  int64  `json:"business_id"`
	PaymentType string `json:"payment_type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type categoryPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

type businessRequestResponse struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username,omitempty"`
	BusinessName string    `json:"business_name"`
	Phone        string    `json:"phone,omitempty"`
	LocationName string    `json:"location_name,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type vetoAppealResponse struct {
	ID           int64     `json:"id"`
	BusinessID   int64     `json:"business_id"`
	BusinessName string    `json:"business_name,omitempty"`
	Reason       string    `json:"reason"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type categoryCountResponse struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

func categoryCounts(counts []repository.CategoryCount) []categoryCountResponse {
	out := make([]categoryCountResponse, 0, len(counts))
	for _, c := range counts {
		out = append(out, categoryCountResponse{Category: c.Category, Count: c.Count})
	}
	return out
}

// CategoryCreator is the slice of the category repository the admin surface
// needs for curating the catalog.
type CategoryCreator interface {
	Create(ctx context.Context, c *models.Category) error
}

type AdminHandler struct {
	moderation *service.ModerationService
	categories CategoryCreator
}

func NewAdminHandler(moderation *service.ModerationService, categories CategoryCreator) *AdminHandler {
	return &AdminHandler{moderation: moderation, categories: categories}
}

// Stats handles GET /admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.moderation.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"regular_users":       stats.RegularUsers,
		"verified_businesses": stats.VerifiedBusinesses,
		"vetted_businesses":   stats.VettedBusinesses,
		"pending_requests":    stats.PendingRequests,
		"total_offers":        stats.TotalOffers,
		"active_offers":       stats.ActiveOffers,
		"total_revenue":       stats.TotalRevenue.StringFixed(2),
		"offers_by_category":  categoryCounts(stats.OffersByCategory),
	})
}

// PendingRequests handles GET /admin/requests.
func (h *AdminHandler) PendingRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.moderation.PendingBusinessRequests(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]businessRequestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, businessRequestResponse{
			ID:           req.ID,
			UserID:       req.UserID,
			Username:     req.Username,
			BusinessName: req.BusinessName,
			Phone:        req.Phone,
			LocationName: req.LocationName,
			Status:       req.Status,
			CreatedAt:    req.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": out})
}

// ApproveRequest handles POST /admin/requests/{id}/approve.
func (h *AdminHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid request id")
		return
	}
	if err := h.moderation.ApproveBusinessRequest(r.Context(), p.UserID, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.StatusApproved})
}

// RejectRequest handles POST /admin/requests/{id}/reject.
func (h *AdminHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid request id")
		return
	}

	var req rejectPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, errInvalidBody.Error())
		return
	}

	if err := h.moderation.RejectBusinessRequest(r.Context(), p.UserID, id, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.StatusRejected})
}

// Veto handles POST /admin/businesses/{id}/veto.
func (h *AdminHandler) Veto(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid business id")
		return
	}

	var req rejectPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, errInvalidBody.Error())
		return
	}

	if err := h.moderation.VetoBusiness(r.Context(), id, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "vetoed"})
}

// RemoveVeto handles DELETE /admin/businesses/{id}/veto.
func (h *AdminHandler) RemoveVeto(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid business id")
		return
	}
	if err := h.moderation.RemoveVeto(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "veto removed"})
}

// PendingAppeals handles GET /admin/appeals.
func (h *AdminHandler) PendingAppeals(w http.ResponseWriter, r *http.Request) {
	appeals, err := h.moderation.PendingVetoAppeals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]vetoAppealResponse, 0, len(appeals))
	for _, a := range appeals {
		out = append(out, vetoAppealResponse{
			ID:           a.ID,
			BusinessID:   a.BusinessID,
			BusinessName: a.BusinessName,
			Reason:       a.Reason,
			Status:       a.Status,
			CreatedAt:    a.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"appeals": out})
}

// ResolveAppeal handles POST /admin/appeals/{id}/resolve.
func (h *AdminHandler) ResolveAppeal(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid appeal id")
		return
	}

	var req resolveAppealPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, errInvalidBody.Error())
		return
	}

	if err := h.moderation.ResolveVetoAppeal(r.Context(), id, req.Approve, req.Response); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"approved": req.Approve})
}

// ListOffers handles GET /admin/offers, the moderation view over every
// offer regardless of eligibility.
func (h *AdminHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	offers, err := h.moderation.ListOffers(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"offers": newOfferResponses(offers)})
}

// DeleteOffer handles DELETE /admin/offers/{id}, a hard moderation removal.
func (h *AdminHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid offer id")
		return
	}
	if err := h.moderation.DeleteOffer(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// RecordPayment handles POST /admin/payments, bookkeeping for listing fees
// charged outside this service.
func (h *AdminHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, errInvalidBody.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeBadRequest(w, errBadDecimal("amount").Error())
		return
	}

	p, err := h.moderation.RecordPayment(r.Context(), req.BusinessID, req.PaymentType, amount, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newPaymentResponse(*p))
}

// CreateCategory handles POST /admin/categories.
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, errInvalidBody.Error())
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}

	cat := models.Category{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
	}
	if err := h.categories.Create(r.Context(), &cat); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{
		ID:          cat.ID,
		Name:        cat.Name,
		Description: cat.Description,
		Icon:        cat.Icon,
		Color:       cat.Color,
	})
}
