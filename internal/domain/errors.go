package domain

import "errors"

// Availability validation errors
var (
	ErrInvalidWindow  = errors.New("invalid time window")
	ErrInvalidWeekday = errors.New("invalid weekday")
	ErrNoWeekdays     = errors.New("at least one weekday is required")
)

// ErrInvalidLabel is returned for empty or oversized spec and keystone labels.
var ErrInvalidLabel = errors.New("spec and keystone must be 1-32 characters")
