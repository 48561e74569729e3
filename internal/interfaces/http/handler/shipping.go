package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	appshipping "github.com/marketplace/backend/internal/application/shipping"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ShippingService is the rate resolver surface the handler needs
type ShippingService interface {
	Quote(ctx context.Context, req appshipping.QuoteRequest) (*appshipping.QuoteResponse, error)
	Options(ctx context.Context, desi decimal.Decimal) ([]appshipping.QuoteResponse, error)
	FreeShipping(ctx context.Context, req appshipping.FreeShippingRequest) (*appshipping.FreeShippingResponse, error)
}

// ShippingHandler answers shipping price questions
type ShippingHandler struct {
	BaseHandler
	shipping ShippingService
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(shipping ShippingService) *ShippingHandler {
	return &ShippingHandler{shipping: shipping}
}

// QuoteQuery holds the query parameters of GET /shipping/quote
type QuoteQuery struct {
	Desi     string `form:"desi" binding:"required,decimal2"`
	Provider string `form:"provider" binding:"omitempty,max=64"`
	Region   string `form:"region" binding:"omitempty,max=64"`
}

// OptionsQuery holds the query parameters of GET /shipping/options
type OptionsQuery struct {
	Desi string `form:"desi" binding:"required,decimal2"`
}

// FreeShippingQuery holds the query parameters of GET /shipping/free-shipping
type FreeShippingQuery struct {
	Amount   string `form:"amount" binding:"required,decimal2"`
	Desi     string `form:"desi" binding:"omitempty,decimal2"`
	Provider string `form:"provider" binding:"omitempty,max=64"`
}

// Quote godoc
// @ID           quoteShipping
// @Summary      Price one shipment
// @Description  Uses the requested provider when it carries the weight, otherwise the default provider, otherwise the cheapest.
// @Tags         shipping
// @Produce      json
// @Param        desi query string true "Volumetric weight"
// @Param        provider query string false "Preferred provider"
// @Param        region query string false "Destination region"
// @Success      200 {object} dto.Response{data=appshipping.QuoteResponse}
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /shipping/quote [get]
func (h *ShippingHandler) Quote(c *gin.Context) {
	var q QuoteQuery
	if !h.bindQuery(c, &q) {
		return
	}
	resp, err := h.shipping.Quote(c.Request.Context(), appshipping.QuoteRequest{
		Desi:     decimal.RequireFromString(q.Desi),
		Provider: q.Provider,
		Region:   q.Region,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Options godoc
// @ID           listShippingOptions
// @Summary      List every provider able to carry a shipment
// @Tags         shipping
// @Produce      json
// @Param        desi query string true "Volumetric weight"
// @Success      200 {object} dto.Response{data=[]appshipping.QuoteResponse}
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /shipping/options [get]
func (h *ShippingHandler) Options(c *gin.Context) {
	var q OptionsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	options, err := h.shipping.Options(c.Request.Context(), decimal.RequireFromString(q.Desi))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, options)
}

// FreeShipping godoc
// @ID           checkFreeShipping
// @Summary      Check free-shipping eligibility
// @Description  Remaining is how much more the buyer has to spend when not yet eligible.
// @Tags         shipping
// @Produce      json
// @Param        amount query string true "Order amount"
// @Param        desi query string false "Total volumetric weight"
// @Param        provider query string false "Provider"
// @Success      200 {object} dto.Response{data=appshipping.FreeShippingResponse}
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /shipping/free-shipping [get]
func (h *ShippingHandler) FreeShipping(c *gin.Context) {
	var q FreeShippingQuery
	if !h.bindQuery(c, &q) {
		return
	}
	req := appshipping.FreeShippingRequest{
		Amount:   valueobject.MustMoney(q.Amount),
		Provider: q.Provider,
	}
	if q.Desi != "" {
		req.TotalDesi = decimal.RequireFromString(q.Desi)
	}
	resp, err := h.shipping.FreeShipping(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}
