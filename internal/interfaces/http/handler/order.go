package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apporder "github.com/marketplace/backend/internal/application/order"
	"github.com/marketplace/backend/internal/domain/order"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/auth"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
)

// OrderService is the order use-case surface the handler needs
type OrderService interface {
	CreateFromCart(ctx context.Context, req apporder.CheckoutRequest) (*apporder.OrderResponse, error)
	GetOrder(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*apporder.OrderResponse, error)
	ListOrders(ctx context.Context, req apporder.ListRequest) (*apporder.OrderListResponse, error)
	CancelOrder(ctx context.Context, req apporder.CancelRequest) (*apporder.OrderResponse, error)
	UpdateStatus(ctx context.Context, req apporder.StatusUpdateRequest) (*apporder.OrderResponse, error)
}

// OrderHandler handles checkout and the order lifecycle
type OrderHandler struct {
	BaseHandler
	orders OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CheckoutRequest is the body of POST /checkout
type CheckoutRequest struct {
	ShippingAddress  string `json:"shipping_address" binding:"required,max=500"`
	Region           string `json:"region" binding:"omitempty,max=64"`
	ShippingProvider string `json:"shipping_provider" binding:"omitempty,max=64"`
	Notes            string `json:"notes" binding:"omitempty,max=1000"`
}

// ListOrdersQuery holds the query parameters of GET /orders
type ListOrdersQuery struct {
	dto.PageRequest
	Status    string `form:"status" binding:"omitempty,oneof=pending confirmed processing shipped delivered cancelled"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=created_at updated_at order_number status total_amount"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// CancelOrderRequest is the body of POST /orders/:id/cancel
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// UpdateOrderStatusRequest is the body of PATCH /orders/:id/status.
// At least one of the two fields is required.
type UpdateOrderStatusRequest struct {
	Status        *string `json:"status" binding:"omitempty,oneof=confirmed processing shipped delivered cancelled"`
	PaymentStatus *string `json:"payment_status" binding:"omitempty,oneof=paid failed refunded"`
}

// Checkout godoc
// @ID           checkout
// @Summary      Turn the cart into an order
// @Description  Validates the cart, reserves stock and freezes commission, tax and shipping per line.
// @Description  Repeating a request with the same Idempotency-Key returns the first order.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client supplied deduplication key"
// @Param        request body CheckoutRequest true "Shipping details"
// @Success      201 {object} dto.Response{data=apporder.OrderResponse}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response "ERR_STOCK_RACE_LOST, retryable"
// @Failure      422 {object} dto.Response "ERR_CART_INVALID or ERR_EMPTY_CART"
// @Security     BearerAuth
// @Router       /checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}
	key := c.GetHeader(middleware.IdempotencyKeyHeader)
	if len(key) > 128 {
		h.BadRequest(c, middleware.IdempotencyKeyHeader, "Must be at most 128 characters")
		return
	}

	resp, err := h.orders.CreateFromCart(c.Request.Context(), apporder.CheckoutRequest{
		BuyerID:          p.UserID,
		ShippingAddress:  req.ShippingAddress,
		Region:           req.Region,
		ShippingProvider: req.ShippingProvider,
		Notes:            req.Notes,
		IdempotencyKey:   key,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @ID           listOrders
// @Summary      List orders
// @Description  Buyers see their own orders, sellers the orders containing their lines, admins all orders.
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100)
// @Param        status query string false "Order status"
// @Success      200 {object} dto.Response{data=[]apporder.OrderResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q ListOrdersQuery
	if !h.bindQuery(c, &q) {
		return
	}

	req := apporder.ListRequest{
		Page:      q.Page,
		PageSize:  q.PageSize,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
	switch p.Role {
	case auth.RoleBuyer:
		req.BuyerID = &p.UserID
	case auth.RoleSeller:
		req.SellerID = &p.UserID
	}
	if q.Status != "" {
		st := order.Status(q.Status)
		req.Status = &st
	}

	page, err := h.orders.ListOrders(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @ID           getOrder
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=apporder.OrderResponse}
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var viewer *uuid.UUID
	if p.Role == auth.RoleBuyer {
		viewer = &p.UserID
	}
	resp, err := h.orders.GetOrder(c.Request.Context(), id, viewer)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if p.Role == auth.RoleSeller && !sellsIn(resp, p.UserID) {
		h.HandleDomainError(c, shared.ErrNotFound)
		return
	}
	h.Success(c, resp)
}

// Cancel godoc
// @ID           cancelOrder
// @Summary      Cancel an order
// @Description  Allowed while the order is pending or confirmed. Stock is restored and a paid order is refunded.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body CancelOrderRequest false "Cancellation reason"
// @Success      200 {object} dto.Response{data=apporder.OrderResponse}
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response "ERR_NOT_CANCELLABLE"
// @Security     BearerAuth
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req CancelOrderRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	cancel := apporder.CancelRequest{OrderID: id, Reason: req.Reason}
	if !p.IsAdmin() {
		cancel.BuyerID = &p.UserID
	}
	resp, err := h.orders.CancelOrder(c.Request.Context(), cancel)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateStatus godoc
// @ID           updateOrderStatus
// @Summary      Move an order or its payment forward
// @Description  Delivery starts the earnings release clock; payment capture credits pending seller earnings.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body UpdateOrderStatusRequest true "Target statuses"
// @Success      200 {object} dto.Response{data=apporder.OrderResponse}
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response "ERR_INVALID_STATE"
// @Security     BearerAuth
// @Router       /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.Status == nil && req.PaymentStatus == nil {
		h.BadRequest(c, "status", "Either status or payment_status is required")
		return
	}

	upd := apporder.StatusUpdateRequest{OrderID: id}
	if req.Status != nil {
		st := order.Status(*req.Status)
		upd.Status = &st
	}
	if req.PaymentStatus != nil {
		ps := order.PaymentStatus(*req.PaymentStatus)
		upd.PaymentStatus = &ps
	}
	resp, err := h.orders.UpdateStatus(c.Request.Context(), upd)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

func sellsIn(o *apporder.OrderResponse, sellerID uuid.UUID) bool {
	for _, it := range o.Items {
		if it.SellerID == sellerID {
			return true
		}
	}
	return false
}
