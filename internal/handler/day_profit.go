package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"parking/internal/domain"
	"parking/internal/service"
)

// DayProfitHandler handles HTTP requests for day profit totals.
type DayProfitHandler struct {
	dayProfitService *service.DayProfitService
}

// NewDayProfitHandler creates a new DayProfitHandler.
func NewDayProfitHandler(dayProfitService *service.DayProfitService) *DayProfitHandler {
	return &DayProfitHandler{
		dayProfitService: dayProfitService,
	}
}

// DayProfitResponse is the HTTP response for a day record.
type DayProfitResponse struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Currency string `json:"currency"`
	Profit   string `json:"profit"`
	URL      string `json:"url"`
}

// ProfitResponse is the HTTP response for a day total.
type ProfitResponse struct {
	Date     string `json:"date"`
	Currency string `json:"currency"`
	Profit   string `json:"profit"`
}

func newDayProfitResponse(d *domain.DayProfit) DayProfitResponse {
	date := domain.FormatDay(d.Date)
	return DayProfitResponse{
		ID:       d.ID,
		Date:     date,
		Currency: string(d.Currency),
		Profit:   d.Profit.StringFixed(2),
		URL:      "/v1/days/" + date,
	}
}

// dayParam joins the :year/:month/:day path segments, zero-padding numeric parts.
func dayParam(c *gin.Context) string {
	year, month, day := c.Param("year"), c.Param("month"), c.Param("day")

	y, errY := strconv.Atoi(year)
	m, errM := strconv.Atoi(month)
	d, errD := strconv.Atoi(day)
	if errY != nil || errM != nil || errD != nil {
		return year + "/" + month + "/" + day
	}
	return fmt.Sprintf("%04d/%02d/%02d", y, m, d)
}

// lookupDate returns the requested date if it is valid. A malformed date names
// no record, so it is answered as not found.
func (h *DayProfitHandler) lookupDate(c *gin.Context) (string, bool) {
	date, err := h.dayProfitService.ValidateDate(dayParam(c))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return "", false
	}
	return date, true
}

// Show handles GET /v1/days/:year/:month/:day/show/:currency
func (h *DayProfitHandler) Show(c *gin.Context) {
	date, ok := h.lookupDate(c)
	if !ok {
		return
	}

	record, err := h.dayProfitService.Get(c.Request.Context(), date, c.Param("currency"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newDayProfitResponse(record))
}

// Profit handles GET /v1/days/:year/:month/:day/profit/:currency
func (h *DayProfitHandler) Profit(c *gin.Context) {
	date, ok := h.lookupDate(c)
	if !ok {
		return
	}
	currency := c.Param("currency")

	profit, err := h.dayProfitService.Amount(c.Request.Context(), date, currency)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ProfitResponse{
		Date:     date,
		Currency: currency,
		Profit:   profit.StringFixed(2),
	})
}

// Upsert handles POST /v1/days/:year/:month/:day/profit/:currency
func (h *DayProfitHandler) Upsert(c *gin.Context) {
	record, err := h.dayProfitService.Upsert(c.Request.Context(), dayParam(c), c.Param("currency"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newDayProfitResponse(record))
}
