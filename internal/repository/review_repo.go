package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
)

type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// Create inserts a review; the offer+user unique constraint makes a second
// review from the same user fail.
func (r *ReviewRepo) Create(ctx context.Context, rev *models.Review) error {
	query := `
		INSERT INTO reviews (offer_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query, rev.OfferID, rev.UserID, rev.Rating, rev.Comment).
		Scan(&rev.ID, &rev.CreatedAt, &rev.UpdatedAt)
}

func (r *ReviewRepo) Update(ctx context.Context, rev *models.Review) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET rating = $2, comment = $3, updated_at = NOW() WHERE id = $1`,
		rev.ID, rev.Rating, rev.Comment,
	)
	return err
}

func (r *ReviewRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	return err
}

// Get returns (nil, nil) when the review does not exist.
func (r *ReviewRepo) Get(ctx context.Context, id int64) (*models.Review, error) {
	query := `
		SELECT r.id, r.offer_id, r.user_id, r.rating, r.comment, r.created_at, r.updated_at, u.username
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1
	`
	rev, err := scanReview(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rev, nil
}

// ForOffer lists reviews for an offer, newest first.
func (r *ReviewRepo) ForOffer(ctx context.Context, offerID int64) ([]*models.Review, error) {
	query := `
		SELECT r.id, r.offer_id, r.user_id, r.rating, r.comment, r.created_at, r.updated_at, u.username
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.offer_id = $1
		ORDER BY r.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, offerID)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}

// ForOfferAndUser returns the user's review of the offer, (nil, nil) if none.
func (r *ReviewRepo) ForOfferAndUser(ctx context.Context, offerID, userID int64) (*models.Review, error) {
	query := `
		SELECT r.id, r.offer_id, r.user_id, r.rating, r.comment, r.created_at, r.updated_at, u.username
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.offer_id = $1 AND r.user_id = $2
	`
	rev, err := scanReview(r.db.QueryRowContext(ctx, query, offerID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rev, nil
}

// CountForOffer returns the live review count for one offer.
func (r *ReviewRepo) CountForOffer(ctx context.Context, offerID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE offer_id = $1`, offerID).Scan(&n)
	return n, err
}

// AvgRatingForOffer returns the live mean rating, zero with no reviews.
func (r *ReviewRepo) AvgRatingForOffer(ctx context.Context, offerID int64) (float64, error) {
	var avg float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(rating)::float, 0) FROM reviews WHERE offer_id = $1`, offerID,
	).Scan(&avg)
	return avg, err
}

// BusinessReviewStats aggregates review count and mean rating over all of a
// business's offers for the dashboard.
func (r *ReviewRepo) BusinessReviewStats(ctx context.Context, businessID int64) (count int, avg float64, err error) {
	query := `
		SELECT COUNT(*), COALESCE(AVG(r.rating)::float, 0)
		FROM reviews r
		JOIN offers o ON o.id = r.offer_id
		WHERE o.business_id = $1
	`
	err = r.db.QueryRowContext(ctx, query, businessID).Scan(&count, &avg)
	return count, avg, err
}

func scanReview(s interface{ Scan(...any) error }) (*models.Review, error) {
	var rev models.Review
	err := s.Scan(&rev.ID, &rev.OfferID, &rev.UserID, &rev.Rating, &rev.Comment,
		&rev.CreatedAt, &rev.UpdatedAt, &rev.Username)
	if err != nil {
		return nil, err
	}
	return &rev, nil
}
