package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parking/internal/service"
)

// TariffHandler answers fee quotes without touching any session.
type TariffHandler struct {
	fees *service.FeeCalculator
}

// NewTariffHandler creates a new TariffHandler.
func NewTariffHandler(fees *service.FeeCalculator) *TariffHandler {
	return &TariffHandler{fees: fees}
}

// QuoteResponse is the HTTP response for a fee quote.
type QuoteResponse struct {
	Tier   string `json:"tier"`
	Start  string `json:"start"`
	Stop   string `json:"stop"`
	Amount string `json:"amount"`
}

// Quote handles GET /v1/tariff/quote?start=HH:MM:SS&stop=HH:MM:SS&tier=VIP
func (h *TariffHandler) Quote(c *gin.Context) {
	start := c.Query("start")
	stop := c.Query("stop")
	if start == "" || stop == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "start and stop are required"})
		return
	}

	tier, err := service.ParseTier(c.Query("tier"))
	if err != nil {
		respondError(c, err)
		return
	}

	amount, err := h.fees.FeeForClock(start, stop, tier)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, QuoteResponse{
		Tier:   string(tier),
		Start:  start,
		Stop:   stop,
		Amount: amount.StringFixed(2),
	})
}
