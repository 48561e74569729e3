package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/marketplace/backend/internal/domain/settings"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupSettingsRouter() (*gin.Engine, *MockSettingsService) {
	svc := new(MockSettingsService)
	h := NewSettingsHandler(svc)
	r := newTestRouter(admin())
	r.GET("/admin/settings/marketplace", h.Get)
	r.PUT("/admin/settings/marketplace", h.Update)
	return r, svc
}

func testMarketplaceSettings() settings.Marketplace {
	return settings.Marketplace{
		MarketplaceFeeRate:      decimal.RequireFromString("12.5"),
		WithholdingTaxRate:      decimal.RequireFromString("1"),
		OrderNumberPrefix:       "MKT",
		DefaultShippingProvider: "yurtici",
		EarningsReleaseDays:     7,
	}
}

func TestSettingsHandler_Get(t *testing.T) {
	r, svc := setupSettingsRouter()
	svc.On("Current", mock.Anything).Return(testMarketplaceSettings(), nil)

	w := doRequest(r, http.MethodGet, "/admin/settings/marketplace", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var got settings.Marketplace
	decodeData(t, w, &got)
	assert.Equal(t, "MKT", got.OrderNumberPrefix)
	assert.True(t, got.MarketplaceFeeRate.Equal(decimal.RequireFromString("12.5")))
}

func TestSettingsHandler_Update(t *testing.T) {
	body := `{"marketplace_fee_rate":"12.5","withholding_tax_rate":"1","order_number_prefix":"MKT","default_shipping_provider":"yurtici","earnings_release_days":7}`

	t.Run("replaces settings", func(t *testing.T) {
		r, svc := setupSettingsRouter()
		svc.On("Update", mock.Anything, mock.MatchedBy(func(m settings.Marketplace) bool {
			return m.MarketplaceFeeRate.Equal(decimal.RequireFromString("12.5")) &&
				m.OrderNumberPrefix == "MKT" && m.EarningsReleaseDays == 7
		})).Return(testMarketplaceSettings(), nil)

		w := doRequest(r, http.MethodPut, "/admin/settings/marketplace", body)
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("zero release days is allowed", func(t *testing.T) {
		r, svc := setupSettingsRouter()
		svc.On("Update", mock.Anything, mock.MatchedBy(func(m settings.Marketplace) bool {
			return m.EarningsReleaseDays == 0
		})).Return(testMarketplaceSettings(), nil)

		w := doRequest(r, http.MethodPut, "/admin/settings/marketplace",
			`{"marketplace_fee_rate":"10","withholding_tax_rate":"0","order_number_prefix":"ABC","default_shipping_provider":"ptt","earnings_release_days":0}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("lower-case prefix is rejected", func(t *testing.T) {
		r, svc := setupSettingsRouter()
		w := doRequest(r, http.MethodPut, "/admin/settings/marketplace",
			`{"marketplace_fee_rate":"10","withholding_tax_rate":"0","order_number_prefix":"abc","default_shipping_provider":"ptt","earnings_release_days":7}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("out of range rate from the domain", func(t *testing.T) {
		r, svc := setupSettingsRouter()
		svc.On("Update", mock.Anything, mock.Anything).
			Return(settings.Marketplace{}, shared.ErrInvalidInput.WithMessage("marketplace_fee_rate must be between 0 and 100"))

		w := doRequest(r, http.MethodPut, "/admin/settings/marketplace",
			`{"marketplace_fee_rate":"150","withholding_tax_rate":"0","order_number_prefix":"MKT","default_shipping_provider":"ptt","earnings_release_days":7}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.Equal(t, dto.ErrCodeInvalidInput, env.Error.Code)
		assert.Contains(t, env.Error.Details[0].Message, "marketplace_fee_rate")
	})
}
