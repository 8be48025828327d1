package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrUnknownIngredient = errors.New("unknown ingredient")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrInvalidDocument   = errors.New("invalid document")
	ErrTripNotActive     = errors.New("shopping trip is not active")
	ErrInvalidInput      = errors.New("invalid input")
)
