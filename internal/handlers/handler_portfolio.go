package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/valutatrade/tradehub/internal/core/ports/services"
	"github.com/valutatrade/tradehub/internal/dto"
	"github.com/valutatrade/tradehub/internal/middleware"
)

// PortfolioHandler serves trades and the portfolio valuation report for the
// authenticated user.
type PortfolioHandler struct {
	ledgerService portssvc.LedgerSvcFacade
	defaultBase   string
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(ls portssvc.LedgerSvcFacade, defaultBase string) *PortfolioHandler {
	return &PortfolioHandler{ledgerService: ls, defaultBase: defaultBase}
}

func registerPortfolioRoutes(v1 *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, defaultBase string) {
	h := NewPortfolioHandler(ledgerService, defaultBase)

	portfolio := v1.Group("/portfolio")
	{
		portfolio.GET("/", h.GetValuation)
		portfolio.POST("/buy", h.Buy)
		portfolio.POST("/sell", h.Sell)
	}
}

// Buy credits the requested amount to the user's wallet.
func (h *PortfolioHandler) Buy(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	var req dto.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	res, err := h.ledgerService.Buy(c.Request.Context(), userID, req.CurrencyCode, req.Amount)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTradeResponse(res))
}

// Sell debits the requested amount from the user's wallet.
func (h *PortfolioHandler) Sell(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	var req dto.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	res, err := h.ledgerService.Sell(c.Request.Context(), userID, req.CurrencyCode, req.Amount)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTradeResponse(res))
}

// GetValuation reports the user's portfolio converted to the base currency
// from the optional ?base= query parameter.
func (h *PortfolioHandler) GetValuation(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	base := c.DefaultQuery("base", h.defaultBase)
	valuation, err := h.ledgerService.GetPortfolioValuation(c.Request.Context(), userID, base)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPortfolioValuationResponse(valuation))
}
