package cart

import (
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/cart"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
)

// AddItemRequest puts an offer into the buyer's cart
type AddItemRequest struct {
	UserID   uuid.UUID
	OfferID  uuid.UUID
	Quantity int
}

// UpdateQuantityRequest changes the quantity of one cart line
type UpdateQuantityRequest struct {
	UserID   uuid.UUID
	ItemID   uuid.UUID
	Quantity int
}

// ItemResponse is one cart line
type ItemResponse struct {
	ID              uuid.UUID         `json:"id"`
	OfferID         uuid.UUID         `json:"offer_id"`
	Quantity        int               `json:"quantity"`
	PriceAtAddition valueobject.Money `json:"price_at_addition"`
}

// UpdateResponse reports the outcome of a quantity change. Result is one of
// removed, updated or failed.
type UpdateResponse struct {
	Result         string        `json:"result"`
	Item           *ItemResponse `json:"item,omitempty"`
	Reason         string        `json:"reason,omitempty"`
	AvailableStock *int          `json:"available_stock,omitempty"`
}

// IssueResponse is one problem blocking checkout
type IssueResponse struct {
	ItemID         uuid.UUID          `json:"item_id"`
	OfferID        uuid.UUID          `json:"offer_id"`
	Type           string             `json:"type"`
	AvailableStock *int               `json:"available_stock,omitempty"`
	NewPrice       *valueobject.Money `json:"new_price,omitempty"`
}

// ValidationResponse lists the issues of the buyer's cart
type ValidationResponse struct {
	CartID uuid.UUID       `json:"cart_id"`
	Valid  bool            `json:"valid"`
	Issues []IssueResponse `json:"issues"`
}

func toItemResponse(it cart.Item) ItemResponse {
	return ItemResponse{
		ID:              it.ID,
		OfferID:         it.OfferID,
		Quantity:        it.Quantity,
		PriceAtAddition: it.PriceAtAddition,
	}
}

func toUpdateResponse(r cart.UpdateResult) UpdateResponse {
	switch v := r.(type) {
	case cart.Removed:
		return UpdateResponse{Result: "removed"}
	case cart.Updated:
		item := toItemResponse(v.Item)
		return UpdateResponse{Result: "updated", Item: &item}
	case cart.Failed:
		resp := UpdateResponse{Result: "failed", Reason: string(v.Reason)}
		if v.Reason == cart.FailureInsufficientStock {
			stock := v.AvailableStock
			resp.AvailableStock = &stock
		}
		return resp
	}
	return UpdateResponse{}
}

// ToIssueResponses converts domain issues
func ToIssueResponses(issues []cart.Issue) []IssueResponse {
	out := make([]IssueResponse, len(issues))
	for i, is := range issues {
		out[i] = IssueResponse{ItemID: is.ItemID, OfferID: is.OfferID, Type: string(is.Type)}
		switch is.Type {
		case cart.IssueStock:
			stock := is.AvailableStock
			out[i].AvailableStock = &stock
		case cart.IssuePriceChanged:
			price := is.NewPrice
			out[i].NewPrice = &price
		}
	}
	return out
}
