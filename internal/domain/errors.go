package domain

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported or unreadable document format")
	ErrExtractionTimeout = errors.New("extraction attempt timed out")
	ErrSchemaMismatch    = errors.New("model output does not match the required schema")
	ErrAllZeroPrimaries  = errors.New("model output has all-zero primary metrics")
	ErrFileTooLarge      = errors.New("file exceeds maximum allowed size")
	ErrMissingDocument   = errors.New("no document provided")
	ErrInvalidRole       = errors.New("invalid document role")
)
