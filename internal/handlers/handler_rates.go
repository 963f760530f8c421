package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/valutatrade/tradehub/internal/core/ports/services"
	"github.com/valutatrade/tradehub/internal/dto"
)

// RateHandler serves rate lookups and manual refresh triggering.
type RateHandler struct {
	rateService portssvc.RateSvcFacade
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(rs portssvc.RateSvcFacade) *RateHandler {
	return &RateHandler{rateService: rs}
}

func registerRateRoutes(v1 *gin.RouterGroup, rateService portssvc.RateSvcFacade) {
	h := NewRateHandler(rateService)

	rates := v1.Group("/rates")
	{
		rates.GET("/:fromCurrency/:toCurrency", h.GetRate)
		rates.POST("/refresh", h.Refresh)
	}
}

// GetRate returns the current quote for a pair, refreshing on staleness.
func (h *RateHandler) GetRate(c *gin.Context) {
	quote, err := h.rateService.GetExchangeRate(
		c.Request.Context(),
		c.Param("fromCurrency"),
		c.Param("toCurrency"),
	)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(quote))
}

// Refresh triggers one aggregator run over all sources outside the
// scheduler's cadence.
func (h *RateHandler) Refresh(c *gin.Context) {
	res, err := h.rateService.RefreshAll(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	status := http.StatusOK
	if !res.OK() {
		// Nothing fetched at all; the caller should know the run was a no-op.
		status = http.StatusBadGateway
	}
	c.JSON(status, dto.ToRefreshResponse(res))
}
