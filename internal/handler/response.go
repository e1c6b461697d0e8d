package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"parking/internal/repository"
	"parking/internal/service"
)

// timeLayout is the wire format of instants in responses.
const timeLayout = "2006-01-02T15:04:05Z07:00"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidLicensePlate),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidTier),
		errors.Is(err, service.ErrInvalidCurrency),
		errors.Is(err, service.ErrInvalidSessionID):
		return http.StatusBadRequest

	// Stop before start, unparseable clock times
	case errors.Is(err, service.ErrInvalidDuration):
		return http.StatusUnprocessableEntity

	// Lock contention, concurrent inserts
	case errors.Is(err, service.ErrResourceBusy),
		errors.Is(err, repository.ErrConflict):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
