package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"parking/internal/domain"
	"parking/internal/service"
)

// SessionHandler handles HTTP requests for parking sessions.
type SessionHandler struct {
	sessionService *service.SessionService
	strictPlates   bool
}

// NewSessionHandler creates a new SessionHandler.
// With strictPlates off, a malformed plate on start answers 204 instead of 400.
func NewSessionHandler(sessionService *service.SessionService, strictPlates bool) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		strictPlates:   strictPlates,
	}
}

// StartSessionRequest is the HTTP request body for starting a parking meter.
type StartSessionRequest struct {
	LicensePlate string `json:"license_plate"`
	Tier         string `json:"tier,omitempty"`     // REGULAR (default) or VIP
	Currency     string `json:"currency,omitempty"` // defaults to the base currency
}

// SessionResponse is the HTTP response for session data.
type SessionResponse struct {
	ID             string `json:"id"`
	LicensePlate   string `json:"license_plate"`
	Tier           string `json:"tier"`
	Currency       string `json:"currency"`
	Active         bool   `json:"active"`
	StartTime      string `json:"start_time"`
	StopTime       string `json:"stop_time,omitempty"`
	TransactionDay string `json:"transaction_day"`
	AmountDue      string `json:"amount_due"`
	URL            string `json:"url"`
}

// TicketResponse is the HTTP response for ticket validity checks.
type TicketResponse struct {
	Valid bool `json:"valid"`
}

// AmountResponse is the HTTP response for amount due checks.
type AmountResponse struct {
	AmountDue string `json:"amount_due"`
}

func newSessionResponse(s *domain.Session) SessionResponse {
	response := SessionResponse{
		ID:             s.ID,
		LicensePlate:   s.LicensePlate,
		Tier:           string(s.Tier),
		Currency:       string(s.Currency),
		Active:         s.Active,
		StartTime:      s.StartTime.Format(timeLayout),
		TransactionDay: domain.FormatDay(s.TransactionDay),
		AmountDue:      s.AmountDue.StringFixed(2),
		URL:            "/v1/sessions/" + s.ID,
	}

	if s.StopTime != nil {
		response.StopTime = s.StopTime.Format(timeLayout)
	}

	return response
}

// Start handles POST /v1/sessions/start
func (h *SessionHandler) Start(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), service.StartSessionRequest{
		LicensePlate: req.LicensePlate,
		Tier:         req.Tier,
		Currency:     req.Currency,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidLicensePlate) && !h.strictPlates {
			c.Status(http.StatusNoContent)
			return
		}
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, newSessionResponse(session))
}

// StopByID handles PUT /v1/sessions/:id/stop
func (h *SessionHandler) StopByID(c *gin.Context) {
	session, err := h.sessionService.StopByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newSessionResponse(session))
}

// StopByPlate handles PUT /v1/sessions/plate/:plate/stop
func (h *SessionHandler) StopByPlate(c *gin.Context) {
	session, err := h.sessionService.StopByPlate(c.Request.Context(), c.Param("plate"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newSessionResponse(session))
}

// TicketValidByID handles GET /v1/sessions/:id/valid
func (h *SessionHandler) TicketValidByID(c *gin.Context) {
	valid, err := h.sessionService.TicketValidByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, TicketResponse{Valid: valid})
}

// TicketValidByPlate handles GET /v1/sessions/plate/:plate/valid
func (h *SessionHandler) TicketValidByPlate(c *gin.Context) {
	valid, err := h.sessionService.TicketValidByPlate(c.Request.Context(), c.Param("plate"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, TicketResponse{Valid: valid})
}

// AmountDueByID handles GET /v1/sessions/:id/amount
func (h *SessionHandler) AmountDueByID(c *gin.Context) {
	amount, err := h.sessionService.AmountDueByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, AmountResponse{AmountDue: amount.StringFixed(2)})
}

// AmountDueByPlate handles GET /v1/sessions/plate/:plate/amount
func (h *SessionHandler) AmountDueByPlate(c *gin.Context) {
	amount, err := h.sessionService.AmountDueByPlate(c.Request.Context(), c.Param("plate"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, AmountResponse{AmountDue: amount.StringFixed(2)})
}

// GetByID handles GET /v1/sessions/:id
func (h *SessionHandler) GetByID(c *gin.Context) {
	session, err := h.sessionService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newSessionResponse(session))
}

// GetByPlate handles GET /v1/sessions/plate/:plate
func (h *SessionHandler) GetByPlate(c *gin.Context) {
	session, err := h.sessionService.FindByPlate(c.Request.Context(), c.Param("plate"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newSessionResponse(session))
}

// GetAll handles GET /v1/sessions
func (h *SessionHandler) GetAll(c *gin.Context) {
	sessions, err := h.sessionService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		response = append(response, newSessionResponse(s))
	}

	c.JSON(http.StatusOK, response)
}
