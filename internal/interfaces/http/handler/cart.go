package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcart "github.com/marketplace/backend/internal/application/cart"
)

// CartService is the cart use-case surface the handler needs
type CartService interface {
	AddItem(ctx context.Context, req appcart.AddItemRequest) (*appcart.ItemResponse, error)
	UpdateQuantity(ctx context.Context, req appcart.UpdateQuantityRequest) (*appcart.UpdateResponse, error)
	Validate(ctx context.Context, userID uuid.UUID) (*appcart.ValidationResponse, error)
}

// CartHandler handles the buyer's cart
type CartHandler struct {
	BaseHandler
	carts CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// AddCartItemRequest is the body of POST /cart/items
type AddCartItemRequest struct {
	OfferID  string `json:"offer_id" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,min=1,max=999"`
}

// UpdateCartItemRequest is the body of PATCH /cart/items/:id.
// A quantity of zero removes the line.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=999"`
}

// AddItem godoc
// @ID           addCartItem
// @Summary      Add an offer to the cart
// @Description  Adds quantity units of an offer. An existing line for the same offer is increased.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body AddCartItemRequest true "Offer and quantity"
// @Success      201 {object} dto.Response{data=appcart.ItemResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.carts.AddItem(c.Request.Context(), appcart.AddItemRequest{
		UserID:   p.UserID,
		OfferID:  uuid.MustParse(req.OfferID),
		Quantity: req.Quantity,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, item)
}

// UpdateItem godoc
// @ID           updateCartItem
// @Summary      Change the quantity of a cart line
// @Description  Result is removed, updated or failed. A failed update leaves the line unchanged.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id path string true "Cart item ID" format(uuid)
// @Param        request body UpdateCartItemRequest true "New quantity"
// @Success      200 {object} dto.Response{data=appcart.UpdateResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /cart/items/{id} [patch]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	itemID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.carts.UpdateQuantity(c.Request.Context(), appcart.UpdateQuantityRequest{
		UserID:   p.UserID,
		ItemID:   itemID,
		Quantity: *req.Quantity,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Validate godoc
// @ID           validateCart
// @Summary      Check the cart before checkout
// @Description  Lists every line that would block checkout. An empty cart is valid with no issues.
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=appcart.ValidationResponse}
// @Security     BearerAuth
// @Router       /cart/validate [get]
func (h *CartHandler) Validate(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	resp, err := h.carts.Validate(c.Request.Context(), p.UserID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}
