package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/valutatrade/tradehub/internal/core/ports/services"
	"github.com/valutatrade/tradehub/internal/dto"
)

// CurrencyHandler serves the supported currency registry.
type CurrencyHandler struct {
	currencyService portssvc.CurrencySvcFacade
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(cs portssvc.CurrencySvcFacade) *CurrencyHandler {
	return &CurrencyHandler{currencyService: cs}
}

func registerCurrencyRoutes(v1 *gin.RouterGroup, currencyService portssvc.CurrencySvcFacade) {
	h := NewCurrencyHandler(currencyService)

	currencies := v1.Group("/currencies")
	{
		currencies.GET("/", h.ListCurrencies)
		currencies.GET("/:currencyCode", h.GetCurrency)
	}
}

// ListCurrencies returns every supported currency.
func (h *CurrencyHandler) ListCurrencies(c *gin.Context) {
	currencies, err := h.currencyService.ListCurrencies(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListCurrencyResponse(currencies))
}

// GetCurrency returns one currency by code.
func (h *CurrencyHandler) GetCurrency(c *gin.Context) {
	currency, err := h.currencyService.GetCurrencyByCode(c.Request.Context(), c.Param("currencyCode"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(currency))
}
