// Package ranking orders and filters offer candidate sets for the feeds.
// All functions are pure and total: empty input yields empty output, and
// malformed candidates are skipped rather than erroring. Callers pass
// pre-filtered eligible candidates (active, unexpired, verified and
// non-vetted businesses); the repository query applies that predicate.
package ranking

import (
	"math"
	"sort"
	"time"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
	"github.com/Desarrolo-de-Software-V/all-offers/internal/pricing"
)

// NearbyOffer pairs an offer with its computed distance from the caller.
type NearbyOffer struct {
	Offer      *models.Offer
	DistanceKm float64
}

// NearbyOffers keeps candidates whose business is within maxDistanceKm of
// the given point, ordered ascending by distance. Offers whose business has
// no coordinates are silently excluded. Equal distances keep candidate
// order.
func NearbyOffers(userLat, userLon, maxDistanceKm float64, candidates []*models.Offer) []NearbyOffer {
	nearby := make([]NearbyOffer, 0, len(candidates))
	for _, o := range candidates {
		if o.Business == nil || !o.Business.HasLocation() {
			continue
		}
		d := HaversineKm(userLat, userLon, *o.Business.Latitude, *o.Business.Longitude)
		if d <= maxDistanceKm {
			nearby = append(nearby, NearbyOffer{Offer: o, DistanceKm: roundKm(d)})
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	return nearby
}

// PopularOffers sorts candidates descending by popularity score and
// truncates to limit. The sort is stable: ties keep candidate order.
func PopularOffers(candidates []*models.Offer, limit int) []*models.Offer {
	type scored struct {
		offer *models.Offer
		score float64
	}
	ranked := make([]scored, len(candidates))
	for i, o := range candidates {
		ranked[i] = scored{offer: o, score: pricing.PopularityScore(o)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]*models.Offer, len(ranked))
	for i, r := range ranked {
		out[i] = r.offer
	}
	return out
}

// ExpiringSoon keeps candidates expiring in (now, now+withinDays], ordered
// ascending by expiry and truncated to limit.
func ExpiringSoon(candidates []*models.Offer, now time.Time, withinDays int, limit int) []*models.Offer {
	cutoff := now.Add(time.Duration(withinDays) * 24 * time.Hour)
	soon := make([]*models.Offer, 0, len(candidates))
	for _, o := range candidates {
		if o.ExpiresAt.After(now) && !o.ExpiresAt.After(cutoff) {
			soon = append(soon, o)
		}
	}
	sort.SliceStable(soon, func(i, j int) bool {
		return soon[i].ExpiresAt.Before(soon[j].ExpiresAt)
	})
	if limit >= 0 && len(soon) > limit {
		soon = soon[:limit]
	}
	return soon
}

// roundKm rounds a distance to two decimals for display and ordering.
func roundKm(d float64) float64 {
	return math.Round(d*100) / 100
}
