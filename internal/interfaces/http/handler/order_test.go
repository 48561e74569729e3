package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apporder "github.com/marketplace/backend/internal/application/order"
	"github.com/marketplace/backend/internal/domain/cart"
	"github.com/marketplace/backend/internal/domain/order"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupOrderRouter(p *middleware.Principal) (*gin.Engine, *MockOrderService) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc)
	r := newTestRouter(p)
	r.POST("/checkout", h.Checkout)
	r.GET("/orders", h.List)
	r.GET("/orders/:id", h.Get)
	r.POST("/orders/:id/cancel", h.Cancel)
	r.PATCH("/orders/:id/status", h.UpdateStatus)
	return r, svc
}

func TestOrderHandler_Checkout(t *testing.T) {
	p := buyer()
	body := `{"shipping_address":"Bagdat Cd. 1, Istanbul","region":"marmara","shipping_provider":"yurtici","notes":"ring twice"}`

	t.Run("creates an order with the idempotency key", func(t *testing.T) {
		r, svc := setupOrderRouter(p)
		svc.On("CreateFromCart", mock.Anything, apporder.CheckoutRequest{
			BuyerID:          p.UserID,
			ShippingAddress:  "Bagdat Cd. 1, Istanbul",
			Region:           "marmara",
			ShippingProvider: "yurtici",
			Notes:            "ring twice",
			IdempotencyKey:   "key-1",
		}).Return(&apporder.OrderResponse{ID: uuid.New(), OrderNumber: "MKT-20261017-000001"}, nil)

		w := doRequest(r, http.MethodPost, "/checkout", body, middleware.IdempotencyKeyHeader, "key-1")

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp apporder.OrderResponse
		decodeData(t, w, &resp)
		assert.Equal(t, "MKT-20261017-000001", resp.OrderNumber)
		svc.AssertExpectations(t)
	})

	t.Run("shipping address is required", func(t *testing.T) {
		r, svc := setupOrderRouter(p)
		w := doRequest(r, http.MethodPost, "/checkout", `{"region":"marmara"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		require.NotEmpty(t, env.Error.Details)
		assert.Equal(t, "shipping_address", env.Error.Details[0].Field)
		svc.AssertNotCalled(t, "CreateFromCart", mock.Anything, mock.Anything)
	})

	t.Run("oversized idempotency key", func(t *testing.T) {
		r, _ := setupOrderRouter(p)
		long := make([]byte, 129)
		for i := range long {
			long[i] = 'k'
		}
		w := doRequest(r, http.MethodPost, "/checkout", body, middleware.IdempotencyKeyHeader, string(long))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("stock race is retryable", func(t *testing.T) {
		r, svc := setupOrderRouter(p)
		svc.On("CreateFromCart", mock.Anything, mock.Anything).Return(nil, shared.ErrStockRaceLost.WithDetails(map[string]any{
			"issues": []cart.Issue{{ItemID: uuid.New(), OfferID: uuid.New(), Type: cart.IssueStock, AvailableStock: 0}},
		}))

		w := doRequest(r, http.MethodPost, "/checkout", body)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decode(t, w)
		assert.Equal(t, dto.ErrCodeStockRaceLost, env.Error.Code)
		assert.True(t, env.Error.Retryable)
		assert.Len(t, env.Error.Issues, 1)
	})

	t.Run("empty cart", func(t *testing.T) {
		r, svc := setupOrderRouter(p)
		svc.On("CreateFromCart", mock.Anything, mock.Anything).Return(nil, shared.ErrEmptyCart)

		w := doRequest(r, http.MethodPost, "/checkout", body)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeEmptyCart, decode(t, w).Error.Code)
	})
}

func TestOrderHandler_List_ScopesByRole(t *testing.T) {
	page := &apporder.OrderListResponse{Items: []apporder.OrderResponse{{ID: uuid.New()}}, Total: 1, Page: 1, PageSize: 20, TotalPages: 1}

	t.Run("buyer sees own orders", func(t *testing.T) {
		p := buyer()
		r, svc := setupOrderRouter(p)
		svc.On("ListOrders", mock.Anything, mock.MatchedBy(func(req apporder.ListRequest) bool {
			return req.BuyerID != nil && *req.BuyerID == p.UserID && req.SellerID == nil
		})).Return(page, nil)

		w := doRequest(r, http.MethodGet, "/orders?page=1&page_size=20", "")

		assert.Equal(t, http.StatusOK, w.Code)
		env := decode(t, w)
		require.NotNil(t, env.Meta)
		assert.Equal(t, int64(1), env.Meta.Total)
		svc.AssertExpectations(t)
	})

	t.Run("seller filters by seller", func(t *testing.T) {
		p := seller()
		r, svc := setupOrderRouter(p)
		svc.On("ListOrders", mock.Anything, mock.MatchedBy(func(req apporder.ListRequest) bool {
			return req.SellerID != nil && *req.SellerID == p.UserID && req.BuyerID == nil &&
				req.Status != nil && *req.Status == order.StatusShipped
		})).Return(page, nil)

		w := doRequest(r, http.MethodGet, "/orders?status=shipped", "")
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("admin is unfiltered", func(t *testing.T) {
		r, svc := setupOrderRouter(admin())
		svc.On("ListOrders", mock.Anything, mock.MatchedBy(func(req apporder.ListRequest) bool {
			return req.BuyerID == nil && req.SellerID == nil
		})).Return(page, nil)

		w := doRequest(r, http.MethodGet, "/orders", "")
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("unknown status", func(t *testing.T) {
		r, _ := setupOrderRouter(buyer())
		w := doRequest(r, http.MethodGet, "/orders?status=lost", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_Get(t *testing.T) {
	orderID := uuid.New()

	t.Run("buyer is passed as viewer", func(t *testing.T) {
		p := buyer()
		r, svc := setupOrderRouter(p)
		svc.On("GetOrder", mock.Anything, orderID, &p.UserID).Return(&apporder.OrderResponse{ID: orderID}, nil)

		w := doRequest(r, http.MethodGet, "/orders/"+orderID.String(), "")
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("another buyer's order is not found", func(t *testing.T) {
		r, svc := setupOrderRouter(buyer())
		svc.On("GetOrder", mock.Anything, orderID, mock.Anything).Return(nil, shared.ErrNotFound)

		w := doRequest(r, http.MethodGet, "/orders/"+orderID.String(), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("seller without a line is not found", func(t *testing.T) {
		p := seller()
		r, svc := setupOrderRouter(p)
		svc.On("GetOrder", mock.Anything, orderID, (*uuid.UUID)(nil)).Return(&apporder.OrderResponse{
			ID:    orderID,
			Items: []apporder.OrderItemResponse{{SellerID: uuid.New()}},
		}, nil)

		w := doRequest(r, http.MethodGet, "/orders/"+orderID.String(), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("seller with a line", func(t *testing.T) {
		p := seller()
		r, svc := setupOrderRouter(p)
		svc.On("GetOrder", mock.Anything, orderID, (*uuid.UUID)(nil)).Return(&apporder.OrderResponse{
			ID:    orderID,
			Items: []apporder.OrderItemResponse{{SellerID: uuid.New()}, {SellerID: p.UserID}},
		}, nil)

		w := doRequest(r, http.MethodGet, "/orders/"+orderID.String(), "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestOrderHandler_Cancel(t *testing.T) {
	orderID := uuid.New()

	t.Run("buyer cancels own order", func(t *testing.T) {
		p := buyer()
		r, svc := setupOrderRouter(p)
		svc.On("CancelOrder", mock.Anything, apporder.CancelRequest{OrderID: orderID, BuyerID: &p.UserID, Reason: "changed my mind"}).
			Return(&apporder.OrderResponse{ID: orderID, Status: "cancelled"}, nil)

		w := doRequest(r, http.MethodPost, "/orders/"+orderID.String()+"/cancel", `{"reason":"changed my mind"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("admin cancels without a body", func(t *testing.T) {
		r, svc := setupOrderRouter(admin())
		svc.On("CancelOrder", mock.Anything, apporder.CancelRequest{OrderID: orderID}).
			Return(&apporder.OrderResponse{ID: orderID, Status: "cancelled"}, nil)

		w := doRequest(r, http.MethodPost, "/orders/"+orderID.String()+"/cancel", "")
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("shipped order", func(t *testing.T) {
		r, svc := setupOrderRouter(buyer())
		svc.On("CancelOrder", mock.Anything, mock.Anything).Return(nil, shared.ErrNotCancellable)

		w := doRequest(r, http.MethodPost, "/orders/"+orderID.String()+"/cancel", "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeNotCancellable, decode(t, w).Error.Code)
	})
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	orderID := uuid.New()

	t.Run("status and payment", func(t *testing.T) {
		r, svc := setupOrderRouter(admin())
		svc.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(req apporder.StatusUpdateRequest) bool {
			return req.OrderID == orderID &&
				req.Status != nil && *req.Status == order.StatusConfirmed &&
				req.PaymentStatus != nil && *req.PaymentStatus == order.PaymentPaid
		})).Return(&apporder.OrderResponse{ID: orderID}, nil)

		w := doRequest(r, http.MethodPatch, "/orders/"+orderID.String()+"/status", `{"status":"confirmed","payment_status":"paid"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("empty body", func(t *testing.T) {
		r, _ := setupOrderRouter(admin())
		w := doRequest(r, http.MethodPatch, "/orders/"+orderID.String()+"/status", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		r, _ := setupOrderRouter(admin())
		w := doRequest(r, http.MethodPatch, "/orders/"+orderID.String()+"/status", `{"status":"teleported"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("illegal transition", func(t *testing.T) {
		r, svc := setupOrderRouter(admin())
		svc.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil, shared.ErrInvalidState)

		w := doRequest(r, http.MethodPatch, "/orders/"+orderID.String()+"/status", `{"status":"delivered"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidState, decode(t, w).Error.Code)
	})
}
