package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/api/middleware"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/cache"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/pricing"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/repository"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/service"
)

// offerRequest is the write payload. Money fields travel as strings so the
// decimal values survive the JSON round trip unmangled.
type offerRequest struct {
	CategoryID    int64  `json:"category_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	OriginalPrice string `json:"original_price"`
	DiscountType  string `json:"discount_type"`
	DiscountValue string `json:"discount_value"`
	QuantityX     int    `json:"quantity_x"`
	QuantityY     int    `json:"quantity_y"`
	BundlePrice   string `json:"bundle_price"`
	ExpiresAt     string `json:"expires_at"`
}

type discountResponse struct {
	Type        string `json:"type"`
	Value       string `json:"value,omitempty"`
	QuantityX   int    `json:"quantity_x,omitempty"`
	QuantityY   int    `json:"quantity_y,omitempty"`
	BundlePrice string `json:"bundle_price,omitempty"`
}

type offerResponse struct {
	ID            int64             `json:"id"`
	BusinessID    int64             `json:"business_id"`
	BusinessName  string            `json:"business_name,omitempty"`
	CategoryID    int64             `json:"category_id"`
	Category      string            `json:"category,omitempty"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	OriginalPrice *string           `json:"original_price,omitempty"`
	Discount      *discountResponse `json:"discount,omitempty"`
	Display       string            `json:"display,omitempty"`
	FinalPrice    string            `json:"final_price"`
	Savings       string            `json:"savings"`
	Popularity    float64           `json:"popularity"`
	Views         int64             `json:"views"`
	LikesCount    int               `json:"likes_count"`
	ReviewsCount  int               `json:"reviews_count"`
	AvgRating     float64           `json:"avg_rating"`
	IsActive      bool              `json:"is_active"`
	ExpiresAt     time.Time         `json:"expires_at"`
	CreatedAt     time.Time         `json:"created_at"`
	DistanceKm    *float64          `json:"distance_km,omitempty"`
}

func newOfferResponse(o *models.Offer) offerResponse {
	resp := offerResponse{
		ID:           o.ID,
		BusinessID:   o.BusinessID,
		CategoryID:   o.CategoryID,
		Category:     o.CategoryName,
		Title:        o.Title,
		Description:  o.Description,
		Display:      pricing.Display(o),
		FinalPrice:   pricing.FinalUnitPrice(o).StringFixed(2),
		Savings:      pricing.DiscountAmount(o).StringFixed(2),
		Popularity:   pricing.PopularityScore(o),
		Views:        o.Views,
		LikesCount:   o.LikesCount,
		ReviewsCount: o.ReviewsCount,
		AvgRating:    o.AvgRating,
		IsActive:     o.IsActive,
		ExpiresAt:    o.ExpiresAt,
		CreatedAt:    o.CreatedAt,
	}
	if o.Business != nil {
		resp.BusinessName = o.Business.BusinessName
	}
	if o.OriginalPrice != nil {
		s := o.OriginalPrice.StringFixed(2)
		resp.OriginalPrice = &s
	}
	switch d := o.Discount.(type) {
	case models.Percentage:
		resp.Discount = &discountResponse{Type: d.Type(), Value: d.Value.String()}
	case models.FixedAmount:
		resp.Discount = &discountResponse{Type: d.Type(), Value: d.Value.StringFixed(2)}
	case models.BuyXGetY:
		resp.Discount = &discountResponse{Type: d.Type(), QuantityX: d.X, QuantityY: d.Y}
	case models.BuyXForPrice:
		resp.Discount = &discountResponse{Type: d.Type(), QuantityX: d.X, BundlePrice: d.Bundle.StringFixed(2)}
	}
	return resp
}

func newOfferResponses(offers []*models.Offer) []offerResponse {
	out := make([]offerResponse, 0, len(offers))
	for _, o := range offers {
		out = append(out, newOfferResponse(o))
	}
	return out
}

type categoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
}

func newCategoryResponses(cats []models.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name, Description: c.Description, Icon: c.Icon, Color: c.Color})
	}
	return out
}

type OfferHandler struct {
	offers     *service.OfferService
	users      service.UserStore
	categories *cache.Cache[[]categoryResponse]
}

func NewOfferHandler(offers *service.OfferService, users service.UserStore) *OfferHandler {
	return &OfferHandler{
		offers:     offers,
		users:      users,
		categories: cache.New[[]categoryResponse](5 * time.Minute),
	}
}

// List handles GET /offers with optional filters.
func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repositoryFilters(q)
	offers, err := h.offers.Search(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"offers": newOfferResponses(offers)})
}

// Detail handles GET /offers/{id}.
func (h *OfferHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid offer id")
		return
	}
	offer, err := h.offers.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOfferResponse(offer))
}

// Feed handles GET /feed. Anonymous callers get the popular and expiring
// sections; the nearby section needs a principal with a stored location.
func (h *OfferHandler) Feed(w http.ResponseWriter, r *http.Request) {
	var user *models.User
	if p, ok := middleware.PrincipalFrom(r.Context()); ok {
		u, err := h.users.Get(r.Context(), p.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		user = u
	}

	feed, err := h.offers.Feed(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}

	nearby := make([]offerResponse, 0, len(feed.Nearby))
	for _, n := range feed.Nearby {
		resp := newOfferResponse(n.Offer)
		d := n.DistanceKm
		resp.DistanceKm = &d
		nearby = append(nearby, resp)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"popular":  newOfferResponses(feed.Popular),
		"expiring": newOfferResponses(feed.Expiring),
		"nearby":   nearby,
	})
}

// Create handles POST /offers.
func (h *OfferHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())

	in, err := decodeOfferInput(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	offer, err := h.offers.Create(r.Context(), p.UserID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newOfferResponse(offer))
}

// Update handles PUT /offers/{id}.
func (h *OfferHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid offer id")
		return
	}

	in, err := decodeOfferInput(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	offer, err := h.offers.Update(r.Context(), p.UserID, id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOfferResponse(offer))
}

// Deactivate handles DELETE /offers/{id}. Offers are taken off the listing,
// never removed, so existing reviews keep their subject.
func (h *OfferHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid offer id")
		return
	}
	if err := h.offers.Deactivate(r.Context(), p.UserID, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// ToggleLike handles POST /offers/{id}/like.
func (h *OfferHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid offer id")
		return
	}
	liked, err := h.offers.ToggleLike(r.Context(), p.UserID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

// Mine handles GET /offers/mine, the owning business's own listing.
func (h *OfferHandler) Mine(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	offers, err := h.offers.ByBusiness(r.Context(), p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"offers": newOfferResponses(offers)})
}

// Categories handles GET /categories. The list changes rarely, so it is
// served from a short-lived cache.
func (h *OfferHandler) Categories(w http.ResponseWriter, r *http.Request) {
	if cats, ok := h.categories.Get("all"); ok {
		writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
		return
	}
	cats, err := h.offers.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := newCategoryResponses(cats)
	h.categories.Set("all", out)
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

func decodeOfferInput(r *http.Request) (service.OfferInput, error) {
	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return service.OfferInput{}, errInvalidBody
	}

	in := service.OfferInput{
		CategoryID:   req.CategoryID,
		Title:        req.Title,
		Description:  req.Description,
		DiscountType: req.DiscountType,
		QuantityX:    req.QuantityX,
		QuantityY:    req.QuantityY,
	}

	var err error
	if in.OriginalPrice, err = parseDecimal(req.OriginalPrice); err != nil {
		return service.OfferInput{}, errBadDecimal("original_price")
	}
	if in.DiscountValue, err = parseDecimal(req.DiscountValue); err != nil {
		return service.OfferInput{}, errBadDecimal("discount_value")
	}
	if in.BundlePrice, err = parseDecimal(req.BundlePrice); err != nil {
		return service.OfferInput{}, errBadDecimal("bundle_price")
	}
	if req.ExpiresAt != "" {
		if in.ExpiresAt, err = time.Parse(time.RFC3339, req.ExpiresAt); err != nil {
			return service.OfferInput{}, errBadTimestamp("expires_at")
		}
	}
	return in, nil
}

// parseDecimal maps an empty string to nil; optional money fields are
// simply omitted from the payload.
func parseDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// repositoryFilters maps the listing query string onto repository filters.
// Bad numeric values are ignored rather than rejected; a browse page with a
// mistyped filter should still render.
func repositoryFilters(q url.Values) repository.OfferFilters {
	f := repository.OfferFilters{
		Query: q.Get("q"),
		Sort:  q.Get("sort"),
	}
	if id, err := strconv.ParseInt(q.Get("category"), 10, 64); err == nil {
		f.CategoryID = id
	}
	if d, err := parseDecimal(q.Get("min_price")); err == nil {
		f.MinPrice = d
	}
	if d, err := parseDecimal(q.Get("max_price")); err == nil {
		f.MaxPrice = d
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		f.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil {
		f.Offset = n
	}
	return f
}
