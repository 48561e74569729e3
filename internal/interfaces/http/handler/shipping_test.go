package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	appshipping "github.com/marketplace/backend/internal/application/shipping"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupShippingRouter() (*gin.Engine, *MockShippingService) {
	svc := new(MockShippingService)
	h := NewShippingHandler(svc)
	r := newTestRouter(buyer())
	r.GET("/shipping/quote", h.Quote)
	r.GET("/shipping/options", h.Options)
	r.GET("/shipping/free-shipping", h.FreeShipping)
	return r, svc
}

func TestShippingHandler_Quote(t *testing.T) {
	t.Run("quotes", func(t *testing.T) {
		r, svc := setupShippingRouter()
		svc.On("Quote", mock.Anything, mock.MatchedBy(func(req appshipping.QuoteRequest) bool {
			return req.Desi.Equal(decimal.RequireFromString("2.5")) && req.Provider == "aras" && req.Region == "ege"
		})).Return(&appshipping.QuoteResponse{Provider: "aras", Price: valueobject.MustMoney("45.00")}, nil)

		w := doRequest(r, http.MethodGet, "/shipping/quote?desi=2.5&provider=aras&region=ege", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var resp appshipping.QuoteResponse
		decodeData(t, w, &resp)
		assert.Equal(t, "aras", resp.Provider)
		assert.Equal(t, "45.00", resp.Price.String())
	})

	t.Run("desi required", func(t *testing.T) {
		r, _ := setupShippingRouter()
		assert.Equal(t, http.StatusBadRequest, doRequest(r, http.MethodGet, "/shipping/quote", "").Code)
		assert.Equal(t, http.StatusBadRequest, doRequest(r, http.MethodGet, "/shipping/quote?desi=-1", "").Code)
	})

	t.Run("no provider carries the weight", func(t *testing.T) {
		r, svc := setupShippingRouter()
		svc.On("Quote", mock.Anything, mock.Anything).Return(nil, shared.ErrInvalidState)

		w := doRequest(r, http.MethodGet, "/shipping/quote?desi=500", "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestShippingHandler_Options(t *testing.T) {
	r, svc := setupShippingRouter()
	svc.On("Options", mock.Anything, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(3))
	})).Return([]appshipping.QuoteResponse{
		{Provider: "ptt", Price: valueobject.MustMoney("30.00")},
		{Provider: "aras", Price: valueobject.MustMoney("45.00")},
	}, nil)

	w := doRequest(r, http.MethodGet, "/shipping/options?desi=3", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []appshipping.QuoteResponse
	decodeData(t, w, &resp)
	require.Len(t, resp, 2)
	assert.Equal(t, "ptt", resp[0].Provider)
}

func TestShippingHandler_FreeShipping(t *testing.T) {
	r, svc := setupShippingRouter()
	remaining := valueobject.MustMoney("50.00")
	svc.On("FreeShipping", mock.Anything, mock.MatchedBy(func(req appshipping.FreeShippingRequest) bool {
		return req.Amount.Equals(valueobject.MustMoney("250")) && req.TotalDesi.IsZero() && req.Provider == ""
	})).Return(&appshipping.FreeShippingResponse{Eligible: false, Remaining: &remaining}, nil)

	w := doRequest(r, http.MethodGet, "/shipping/free-shipping?amount=250", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp appshipping.FreeShippingResponse
	decodeData(t, w, &resp)
	assert.False(t, resp.Eligible)
	require.NotNil(t, resp.Remaining)
	assert.Equal(t, "50.00", resp.Remaining.String())
}
