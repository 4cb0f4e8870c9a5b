package services

import "errors"

// Analytics service errors
var (
	// ErrNoSource is returned when an upload reaches the service without a
	// readable workbook stream.
	ErrNoSource = errors.New("no workbook source provided")
)
