package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"parking/internal/repository"
	"parking/internal/service"
)

func TestMapErrorToHTTPStatus(t *testing.T) {
	testCases := []struct {
		err  error
		want int
	}{
		{err: repository.ErrNotFound, want: http.StatusNotFound},
		{err: fmt.Errorf("wrapped: %w", repository.ErrNotFound), want: http.StatusNotFound},
		{err: service.ErrInvalidLicensePlate, want: http.StatusBadRequest},
		{err: service.ErrInvalidDate, want: http.StatusBadRequest},
		{err: service.ErrInvalidTier, want: http.StatusBadRequest},
		{err: service.ErrInvalidCurrency, want: http.StatusBadRequest},
		{err: service.ErrInvalidSessionID, want: http.StatusBadRequest},
		{err: service.ErrInvalidDuration, want: http.StatusUnprocessableEntity},
		{err: fmt.Errorf("%w: session:AB-123", service.ErrResourceBusy), want: http.StatusConflict},
		{err: fmt.Errorf("%w: sessions_license_plate_key", repository.ErrConflict), want: http.StatusConflict},
		{err: errors.New("connection reset"), want: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		if got := mapErrorToHTTPStatus(tc.err); got != tc.want {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

func TestDayParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		year, month, day string
		want             string
	}{
		{"2024", "03", "15", "2024/03/15"},
		{"2024", "3", "5", "2024/03/05"},
		{"2024", "march", "5", "2024/march/5"},
	}

	for _, tc := range testCases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Params = gin.Params{
			{Key: "year", Value: tc.year},
			{Key: "month", Value: tc.month},
			{Key: "day", Value: tc.day},
		}
		if got := dayParam(c); got != tc.want {
			t.Errorf("expected %q, got %q", tc.want, got)
		}
	}
}
