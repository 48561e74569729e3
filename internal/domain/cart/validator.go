package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/catalog"
)

// Validate checks every line of c against the current offers and returns
// the issues found. It never mutates anything. offers holds the offers that
// still exist; an absent entry means the offer is gone.
//
// An unavailable line yields exactly one issue. Otherwise a line can carry
// both a stock and a price_changed issue.
func Validate(c *Cart, offers map[uuid.UUID]*catalog.Offer, now time.Time) []Issue {
	var issues []Issue
	for _, item := range c.Items {
		offer, ok := offers[item.OfferID]
		if !ok || offer == nil || !offer.IsPurchasable(now) {
			issues = append(issues, Issue{
				ItemID:  item.ID,
				OfferID: item.OfferID,
				Type:    IssueUnavailable,
			})
			continue
		}

		if item.Quantity > offer.Stock {
			issues = append(issues, Issue{
				ItemID:         item.ID,
				OfferID:        item.OfferID,
				Type:           IssueStock,
				AvailableStock: offer.Stock,
			})
		}

		if !offer.Price.Equals(item.PriceAtAddition) {
			issues = append(issues, Issue{
				ItemID:   item.ID,
				OfferID:  item.OfferID,
				Type:     IssuePriceChanged,
				NewPrice: offer.Price,
			})
		}
	}
	return issues
}

// IndexOffers builds the lookup map Validate expects
func IndexOffers(offers []*catalog.Offer) map[uuid.UUID]*catalog.Offer {
	idx := make(map[uuid.UUID]*catalog.Offer, len(offers))
	for _, o := range offers {
		idx[o.ID] = o
	}
	return idx
}
