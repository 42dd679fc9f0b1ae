package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/api/middleware"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/service"
)

type businessRequestPayload struct {
	BusinessName        string  `json:"business_name"`
	BusinessDescription string  `json:"business_description"`
	Phone               string  `json:"phone"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	LocationName        string  `json:"location_name"`
}

type appealPayload struct {
	Reason string `json:"reason"`
}

type paymentResponse struct {
	ID          int64      `json:"id"`
	BusinessID  int64      `json:"business_id"`
	PaymentType string     `json:"payment_type"`
	Amount      string     `json:"amount"`
	Status      string     `json:"status"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func newPaymentResponse(p models.Payment) paymentResponse {
	return paymentResponse{
		ID:          p.ID,
		BusinessID:  p.BusinessID,
		PaymentType: p.PaymentType,
		Amount:      p.Amount.StringFixed(2),
		Status:      p.Status,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		CompletedAt: p.CompletedAt,
	}
}

type BusinessHandler struct {
	business   *service.BusinessService
	moderation *service.ModerationService
}

func NewBusinessHandler(business *service.BusinessService, moderation *service.ModerationService) *BusinessHandler {
	return &BusinessHandler{business: business, moderation: moderation}
}

// SubmitRequest handles POST /business/requests, a user applying for a
// business account.
func (h *BusinessHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())

	var req businessRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, errInvalidBody.Error())
		return
	}

	out, err := h.moderation.SubmitBusinessRequest(r.Context(), p.UserID, service.BusinessRequestInput{
		BusinessName:        req.BusinessName,
		BusinessDescription: req.BusinessDescription,
		Phone:               req.Phone,
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		LocationName:        req.LocationName,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": out.ID, "status": out.Status})
}

// Dashboard handles GET /business/dashboard.
func (h *BusinessHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())

	stats, err := h.business.Dashboard(r.Context(), p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_offers":  stats.TotalOffers,
		"active_offers": stats.ActiveOffers,
		"total_views":   stats.TotalViews,
		"total_likes":   stats.TotalLikes,
		"total_reviews": stats.TotalReviews,
		"avg_rating":    stats.AvgRating,
		"followers":     stats.Followers,
	})
}

// SubmitAppeal handles POST /business/appeals, a vetted business asking for
// the veto to be reconsidered.
func (h *BusinessHandler) SubmitAppeal(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())

	var req appealPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, errInvalidBody.Error())
		return
	}

	appeal, err := h.moderation.SubmitVetoAppeal(r.Context(), p.UserID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": appeal.ID, "status": appeal.Status})
}

// Payments handles GET /business/payments.
func (h *BusinessHandler) Payments(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())

	payments, err := h.business.Payments(r.Context(), p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]paymentResponse, 0, len(payments))
	for _, pay := range payments {
		out = append(out, newPaymentResponse(pay))
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": out})
}

// FollowBusiness handles POST /business/{id}/follow.
func (h *BusinessHandler) FollowBusiness(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	businessID, err := idParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid business id")
		return
	}

	following, err := h.business.ToggleFollowBusiness(r.Context(), p.UserID, businessID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"following": following})
}

// FollowCategory handles POST /categories/{id}/follow.
func (h *BusinessHandler) FollowCategory(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	categoryID, err := idParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid category id")
		return
	}

	following, err := h.business.ToggleFollowCategory(r.Context(), p.UserID, categoryID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"following": following})
}
