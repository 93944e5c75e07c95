// internal/core/domain/errors.go
package domain

import "errors"

// Errores de dominio comunes.
var (
	// Run errors
	ErrInvalidRunState = errors.New("invalid run state")
	ErrRunNotFinished  = errors.New("run has not finished")

	// Export errors
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrInvalidOutputPath = errors.New("invalid output path")
)
