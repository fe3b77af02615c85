package entity

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidAmount   = errors.New("amount must be a positive number")
	ErrInvalidCategory = errors.New("unknown expense category")
	ErrInvalidTrip     = errors.New("invalid trip")
)

func upper(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

func lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
