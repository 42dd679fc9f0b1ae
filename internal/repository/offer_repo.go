package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
)

// Sort orders accepted by ActiveOffers.
const (
	SortRecent    = "recent"
	SortPopular   = "popular"
	SortExpiring  = "expiring"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
)

// OfferFilters narrows the active-offer listing.
type OfferFilters struct {
	CategoryID int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Query      string
	Sort       string
	Limit      int
	Offset     int
}

type OfferRepo struct {
	db *sql.DB
}

func NewOfferRepo(db *sql.DB) *OfferRepo {
	return &OfferRepo{db: db}
}

// offerColumns is the shared select list for offer queries: the offer row,
// the owning business projection, the category name, and the live
// like/review aggregates.
const offerColumns = `
	o.id, o.business_id, o.category_id, o.title, o.description,
	o.original_price, o.discount_type, o.discount_value,
	o.quantity_x, o.quantity_y, o.bundle_price,
	o.created_at, o.updated_at, o.expires_at, o.views, o.is_active,
	b.username, b.business_name, b.latitude, b.longitude,
	b.business_verified, b.business_vetted,
	c.name,
	COALESCE(l.likes_count, 0), COALESCE(r.reviews_count, 0), COALESCE(r.avg_rating, 0)
`

const offerJoins = `
	FROM offers o
	JOIN users b ON b.id = o.business_id
	JOIN categories c ON c.id = o.category_id
	LEFT JOIN (
		SELECT offer_id, COUNT(*) AS likes_count
		FROM offer_likes GROUP BY offer_id
	) l ON l.offer_id = o.id
	LEFT JOIN (
		SELECT offer_id, COUNT(*) AS reviews_count, AVG(rating)::float AS avg_rating
		FROM reviews GROUP BY offer_id
	) r ON r.offer_id = o.id
`

// eligibleOffers is the public-feed eligibility predicate: active,
// unexpired, owned by a verified and non-vetted business.
const eligibleOffers = `
	o.is_active = TRUE
	AND o.expires_at > NOW()
	AND b.business_verified = TRUE
	AND b.business_vetted = FALSE
`

func scanOffer(s interface{ Scan(...any) error }) (*models.Offer, error) {
	var (
		o             models.Offer
		business      models.User
		originalPrice sql.NullString
		discountType  string
		discountValue sql.NullString
		quantityX     sql.NullInt64
		quantityY     sql.NullInt64
		bundlePrice   sql.NullString
		latitude      sql.NullFloat64
		longitude     sql.NullFloat64
	)

	err := s.Scan(
		&o.ID, &o.BusinessID, &o.CategoryID, &o.Title, &o.Description,
		&originalPrice, &discountType, &discountValue,
		&quantityX, &quantityY, &bundlePrice,
		&o.CreatedAt, &o.UpdatedAt, &o.ExpiresAt, &o.Views, &o.IsActive,
		&business.Username, &business.BusinessName, &latitude, &longitude,
		&business.BusinessVerified, &business.BusinessVetted,
		&o.CategoryName,
		&o.LikesCount, &o.ReviewsCount, &o.AvgRating,
	)
	if err != nil {
		return nil, err
	}

	o.OriginalPrice = nullDecimal(originalPrice)
	o.Discount = models.ParseDiscount(
		discountType,
		nullDecimal(discountValue),
		int(quantityX.Int64), int(quantityY.Int64),
		nullDecimal(bundlePrice),
	)

	business.ID = o.BusinessID
	business.Role = models.RoleBusiness
	if latitude.Valid {
		business.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		business.Longitude = &longitude.Float64
	}
	o.Business = &business

	return &o, nil
}

func nullDecimal(v sql.NullString) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil
	}
	return &d
}

// ActiveOffers lists eligible offers with filters, sort and pagination
// applied in SQL. Price filters apply to the original price column.
func (r *OfferRepo) ActiveOffers(ctx context.Context, f OfferFilters) ([]*models.Offer, error) {
	query := `SELECT ` + offerColumns + offerJoins + ` WHERE ` + eligibleOffers
	args := make([]any, 0, 6)

	if f.CategoryID > 0 {
		args = append(args, f.CategoryID)
		query += fmt.Sprintf(" AND o.category_id = $%d", len(args))
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (o.title ILIKE $%d OR o.description ILIKE $%d OR b.business_name ILIKE $%d)", n, n, n)
	}
	if f.MinPrice != nil {
		args = append(args, f.MinPrice.String())
		query += fmt.Sprintf(" AND o.original_price >= $%d", len(args))
	}
	if f.MaxPrice != nil {
		args = append(args, f.MaxPrice.String())
		query += fmt.Sprintf(" AND o.original_price <= $%d", len(args))
	}

	switch f.Sort {
	case SortPopular:
		query += " ORDER BY COALESCE(l.likes_count, 0) DESC, o.views DESC"
	case SortExpiring:
		query += " ORDER BY o.expires_at ASC"
	case SortPriceLow:
		query += " ORDER BY o.original_price ASC NULLS LAST"
	case SortPriceHigh:
		query += " ORDER BY o.original_price DESC NULLS LAST"
	default:
		query += " ORDER BY o.created_at DESC"
	}

	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return r.queryOffers(ctx, query, args...)
}

// GetOffer fetches a single offer regardless of eligibility (owners and
// admins see inactive and expired offers). Returns (nil, nil) when absent.
func (r *OfferRepo) GetOffer(ctx context.Context, id int64) (*models.Offer, error) {
	query := `SELECT ` + offerColumns + offerJoins + ` WHERE o.id = $1`

	offer, err := scanOffer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return offer, nil
}

// OffersByBusiness lists a business's own offers, newest first.
func (r *OfferRepo) OffersByBusiness(ctx context.Context, businessID int64) ([]*models.Offer, error) {
	query := `SELECT ` + offerColumns + offerJoins + ` WHERE o.business_id = $1 ORDER BY o.created_at DESC`
	return r.queryOffers(ctx, query, businessID)
}

// AllOffers lists every offer for the admin surface, newest first.
func (r *OfferRepo) AllOffers(ctx context.Context, limit, offset int) ([]*models.Offer, error) {
	query := `SELECT ` + offerColumns + offerJoins + ` ORDER BY o.created_at DESC LIMIT $1 OFFSET $2`
	return r.queryOffers(ctx, query, limit, offset)
}

func (r *OfferRepo) queryOffers(ctx context.Context, query string, args ...any) ([]*models.Offer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}
	defer rows.Close()

	var offers []*models.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// Create inserts the offer and fills in its id and timestamps.
func (r *OfferRepo) Create(ctx context.Context, o *models.Offer) error {
	value, x, y, bundle := discountColumns(o.Discount)

	query := `
		INSERT INTO offers (business_id, category_id, title, description,
			original_price, discount_type, discount_value,
			quantity_x, quantity_y, bundle_price, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		o.BusinessID, o.CategoryID, o.Title, o.Description,
		decimalArg(o.OriginalPrice), discountType(o.Discount), value,
		x, y, bundle, o.ExpiresAt,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

// Update rewrites the mutable offer fields.
func (r *OfferRepo) Update(ctx context.Context, o *models.Offer) error {
	value, x, y, bundle := discountColumns(o.Discount)

	query := `
		UPDATE offers
		SET category_id = $2, title = $3, description = $4,
		    original_price = $5, discount_type = $6, discount_value = $7,
		    quantity_x = $8, quantity_y = $9, bundle_price = $10,
		    expires_at = $11, is_active = $12, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		o.ID, o.CategoryID, o.Title, o.Description,
		decimalArg(o.OriginalPrice), discountType(o.Discount), value,
		x, y, bundle, o.ExpiresAt, o.IsActive,
	)
	return err
}

// Deactivate soft-removes the offer from public feeds.
func (r *OfferRepo) Deactivate(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE offers SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

// Delete hard-removes an offer (admin moderation only).
func (r *OfferRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM offers WHERE id = $1`, id)
	return err
}

// IncrementViews bumps the view counter with a single atomic update so
// concurrent viewers never lose increments.
func (r *OfferRepo) IncrementViews(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE offers SET views = views + 1 WHERE id = $1`, id)
	return err
}

// ToggleLike flips the caller's like on the offer inside a transaction and
// reports the resulting state.
func (r *OfferRepo) ToggleLike(ctx context.Context, offerID, userID int64) (liked bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM offer_likes WHERE offer_id = $1 AND user_id = $2`, offerID, userID)
	if err != nil {
		return false, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if removed == 0 {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO offer_likes (offer_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			offerID, userID,
		); err != nil {
			return false, err
		}
		liked = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("tx commit: %w", err)
	}
	committed = true
	return liked, nil
}

// CountLikes returns the live like count for one offer.
func (r *OfferRepo) CountLikes(ctx context.Context, offerID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM offer_likes WHERE offer_id = $1`, offerID).Scan(&n)
	return n, err
}

// HasLiked reports whether the user currently likes the offer.
func (r *OfferRepo) HasLiked(ctx context.Context, offerID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM offer_likes WHERE offer_id = $1 AND user_id = $2)`,
		offerID, userID,
	).Scan(&exists)
	return exists, err
}

// CountOffers returns total and currently-active offer counts.
func (r *OfferRepo) CountOffers(ctx context.Context) (total, active int, err error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active AND expires_at > NOW())
		FROM offers
	`
	err = r.db.QueryRowContext(ctx, query).Scan(&total, &active)
	return total, active, err
}

// BusinessOfferStats aggregates the figures shown on a business dashboard.
type BusinessOfferStats struct {
	TotalOffers  int
	ActiveOffers int
	TotalViews   int64
	TotalLikes   int
}

func (r *OfferRepo) BusinessStats(ctx context.Context, businessID int64) (BusinessOfferStats, error) {
	var s BusinessOfferStats
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active AND expires_at > NOW()),
		       COALESCE(SUM(views), 0),
		       COALESCE((SELECT COUNT(*) FROM offer_likes ol
		                 JOIN offers oo ON oo.id = ol.offer_id
		                 WHERE oo.business_id = $1), 0)
		FROM offers
		WHERE business_id = $1
	`
	err := r.db.QueryRowContext(ctx, query, businessID).
		Scan(&s.TotalOffers, &s.ActiveOffers, &s.TotalViews, &s.TotalLikes)
	return s, err
}

// CategoryCount pairs a category name with its offer count.
type CategoryCount struct {
	Category string
	Count    int
}

// OffersByCategory returns the top categories by offer count.
func (r *OfferRepo) OffersByCategory(ctx context.Context, limit int) ([]CategoryCount, error) {
	query := `
		SELECT c.name, COUNT(o.id)
		FROM offers o
		JOIN categories c ON c.id = o.category_id
		GROUP BY c.name
		ORDER BY COUNT(o.id) DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// discountColumns flattens a Discount variant back into its storage
// columns; fields belonging to other schemes are stored NULL (or the
// schema default of 1 for quantities).
func discountColumns(d models.Discount) (value any, x, y any, bundle any) {
	switch v := d.(type) {
	case models.Percentage:
		return v.Value.String(), 1, nil, nil
	case models.FixedAmount:
		return v.Value.String(), 1, nil, nil
	case models.BuyXGetY:
		return nil, v.X, v.Y, nil
	case models.BuyXForPrice:
		return nil, v.X, nil, v.Bundle.String()
	}
	return nil, 1, nil, nil
}

func discountType(d models.Discount) string {
	if d == nil {
		return models.DiscountPercentage
	}
	return d.Type()
}

func decimalArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}
