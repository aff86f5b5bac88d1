package engine

import "errors"

var (
	// ErrInvalidRule is returned when a rule or chart config cannot be registered.
	ErrInvalidRule = errors.New("invalid visualization rule")

	// ErrMissingAxis is returned by compilers when a required axis role is unbound.
	ErrMissingAxis = errors.New("missing axis mapping")

	// ErrUnknownChartType is returned when a chart type has no registered config.
	ErrUnknownChartType = errors.New("unknown chart type")
)
