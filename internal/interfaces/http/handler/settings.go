package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/marketplace/backend/internal/domain/settings"
	"github.com/shopspring/decimal"
)

// SettingsService reads and replaces marketplace-wide settings
type SettingsService interface {
	Current(ctx context.Context) (settings.Marketplace, error)
	Update(ctx context.Context, m settings.Marketplace) (settings.Marketplace, error)
}

// SettingsHandler is the operator surface for marketplace settings
type SettingsHandler struct {
	BaseHandler
	settings SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(s SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: s}
}

// UpdateSettingsRequest is the body of PUT /admin/settings/marketplace.
// Every field is replaced; rates are percentages.
type UpdateSettingsRequest struct {
	MarketplaceFeeRate      string `json:"marketplace_fee_rate" binding:"required,numeric"`
	WithholdingTaxRate      string `json:"withholding_tax_rate" binding:"required,numeric"`
	OrderNumberPrefix       string `json:"order_number_prefix" binding:"required,len=3,uppercase"`
	DefaultShippingProvider string `json:"default_shipping_provider" binding:"required,max=64"`
	EarningsReleaseDays     *int   `json:"earnings_release_days" binding:"required,min=0,max=365"`
}

// Get godoc
// @ID           getMarketplaceSettings
// @Summary      Get marketplace settings
// @Tags         admin
// @Produce      json
// @Success      200 {object} dto.Response{data=settings.Marketplace}
// @Failure      403 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/settings/marketplace [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	m, err := h.settings.Current(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, m)
}

// Update godoc
// @ID           updateMarketplaceSettings
// @Summary      Replace marketplace settings
// @Description  New rates apply to orders created afterwards. Existing orders keep their frozen amounts.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body UpdateSettingsRequest true "Settings"
// @Success      200 {object} dto.Response{data=settings.Marketplace}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/settings/marketplace [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req UpdateSettingsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	fee, err := decimal.NewFromString(req.MarketplaceFeeRate)
	if err != nil {
		h.BadRequest(c, "marketplace_fee_rate", "Must be a decimal number")
		return
	}
	tax, err := decimal.NewFromString(req.WithholdingTaxRate)
	if err != nil {
		h.BadRequest(c, "withholding_tax_rate", "Must be a decimal number")
		return
	}

	m, err := h.settings.Update(c.Request.Context(), settings.Marketplace{
		MarketplaceFeeRate:      fee,
		WithholdingTaxRate:      tax,
		OrderNumberPrefix:       req.OrderNumberPrefix,
		DefaultShippingProvider: req.DefaultShippingProvider,
		EarningsReleaseDays:     *req.EarningsReleaseDays,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, m)
}
