package service

import "errors"

var (
	// ErrInvalidLicensePlate is returned when a plate does not match the "AB-123" format.
	ErrInvalidLicensePlate = errors.New("invalid license plate")

	// ErrInvalidDuration is returned when a stop time precedes its start time or a time cannot be parsed.
	ErrInvalidDuration = errors.New("invalid parking duration")

	// ErrInvalidDate is returned when a day string cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidTier is returned when the driver tier is unknown.
	ErrInvalidTier = errors.New("invalid driver tier")

	// ErrInvalidCurrency is returned when the currency code is unsupported.
	ErrInvalidCurrency = errors.New("invalid currency")

	// ErrInvalidSessionID is returned when session ID is empty.
	ErrInvalidSessionID = errors.New("invalid session id")

	// ErrResourceBusy is returned when a session or day lock could not be taken in time.
	ErrResourceBusy = errors.New("resource is busy, retry later")
)
