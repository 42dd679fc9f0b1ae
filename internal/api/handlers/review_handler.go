package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/api/middleware"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/service"
)

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type reviewResponse struct {
	ID        int64     `json:"id"`
	OfferID   int64     `json:"offer_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newReviewResponse(rev *models.Review) reviewResponse {
	return reviewResponse{
		ID:        rev.ID,
		OfferID:   rev.OfferID,
		UserID:    rev.UserID,
		Username:  rev.Username,
		Rating:    rev.Rating,
		Comment:   rev.Comment,
		CreatedAt: rev.CreatedAt,
	}
}

type ReviewHandler struct {
	reviews *service.ReviewService
	users   service.UserStore
}

func NewReviewHandler(reviews *service.ReviewService, users service.UserStore) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, users: users}
}

// Create handles POST /offers/{id}/reviews.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	offerID, err := idParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid offer id")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, errInvalidBody.Error())
		return
	}

	rev, err := h.reviews.Create(r.Context(), p.UserID, offerID, req.Rating, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newReviewResponse(rev))
}

// ForOffer handles GET /offers/{id}/reviews.
func (h *ReviewHandler) ForOffer(w http.ResponseWriter, r *http.Request) {
	offerID, err := idParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid offer id")
		return
	}
	reviews, err := h.reviews.ForOffer(r.Context(), offerID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]reviewResponse, 0, len(reviews))
	for _, rev := range reviews {
		out = append(out, newReviewResponse(rev))
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": out})
}

// Update handles PUT /reviews/{id}.
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	reviewID, err := idParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid review id")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, errInvalidBody.Error())
		return
	}

	rev, err := h.reviews.Update(r.Context(), p.UserID, reviewID, req.Rating, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newReviewResponse(rev))
}

// Delete handles DELETE /reviews/{id}. Authors remove their own reviews;
// admins remove anyone's, so the full actor record is loaded here.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	reviewID, err := idParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid review id")
		return
	}

	actor, err := h.users.Get(r.Context(), p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if actor == nil {
		writeError(w, service.ErrNotFound)
		return
	}

	if err := h.reviews.Delete(r.Context(), actor, reviewID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
