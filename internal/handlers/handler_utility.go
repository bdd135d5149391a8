package handlers

import (
	"net/http"
	"time"

	portssvc "github.com/SscSPs/expense_manager_app/internal/core/ports/services"
	"github.com/SscSPs/expense_manager_app/internal/dto"
	"github.com/gin-gonic/gin"
)

// StatusResponse reports service liveness.
type StatusResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type utilityHandler struct {
	currencyService portssvc.CurrencySvcFacade
}

func registerUtilityRoutes(rg *gin.RouterGroup, currencyService portssvc.CurrencySvcFacade) {
	h := &utilityHandler{currencyService: currencyService}

	rg.GET("/exchange-rate", h.getExchangeRate)
}

// getStatus godoc
// @Summary API status
// @Tags utility
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /status [get]
func getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{Status: "ok", Timestamp: time.Now().UTC()})
}

// getExchangeRate godoc
// @Summary Get an exchange rate
// @Tags utility
// @Produce json
// @Param from query string true "Source currency code"
// @Param to query string true "Target currency code"
// @Success 200 {object} dto.ExchangeRateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /exchange-rate [get]
func (h *utilityHandler) getExchangeRate(c *gin.Context) {
	var params dto.ExchangeRateParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "exchange rate query")
		return
	}

	rate, err := h.currencyService.GetExchangeRate(c.Request.Context(), params.From, params.To)
	if err != nil {
		respondError(c, err, "Failed to get exchange rate")
		return
	}
	c.JSON(http.StatusOK, dto.ExchangeRateResponse{From: params.From, To: params.To, Rate: rate})
}
