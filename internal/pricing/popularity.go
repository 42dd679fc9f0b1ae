package pricing

import "github.com/Desarrolo-de-Software-V/all-offers/internal/models"

// Popularity weights. Fixed design constants.
const (
	weightView   = 1
	weightLike   = 5
	weightReview = 10
	weightRating = 20
)

// PopularityScore weighs views, likes, review count and average rating
// (mean of 1-5 stars, 0 with no reviews). Recomputed on demand from the
// live aggregates on the offer so it always reflects current counts.
func PopularityScore(o *models.Offer) float64 {
	return float64(o.Views)*weightView +
		float64(o.LikesCount)*weightLike +
		float64(o.ReviewsCount)*weightReview +
		o.AvgRating*weightRating
}
