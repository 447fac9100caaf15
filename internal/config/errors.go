// Package config provides configuration types and defaults for vpsnr.
package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrMissingPath indicates a required input path was empty.
	ErrMissingPath = errors.New("input path is required")

	// ErrInvalidDimensions indicates a non-positive comparison resolution.
	ErrInvalidDimensions = errors.New("comparison dimensions out of range")

	// ErrInvalidMetricMode indicates an unknown aggregation mode.
	ErrInvalidMetricMode = errors.New("invalid metric mode")

	// ErrInvalidEnvironment indicates an environment variable could not be parsed.
	ErrInvalidEnvironment = errors.New("invalid environment configuration")
)
