package models

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyIdentifier indicates that deterministic generation was requested without an identifier
	ErrEmptyIdentifier = errors.New("identifier is empty")

	// ErrGenerationFailed indicates that the generation function failed or produced malformed output
	ErrGenerationFailed = errors.New("generation failed")

	// ErrUnknownGenerator indicates that no generation function is registered under the requested name
	ErrUnknownGenerator = errors.New("unknown generator")

	// ErrCacheMiss indicates that the requested key is absent or its entry has expired
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheCorrupted indicates that a stored cache entry failed to parse
	ErrCacheCorrupted = errors.New("cache entry corrupted")

	// ErrCachePersistence indicates that the cache could not be read from or written to durable storage
	ErrCachePersistence = errors.New("cache persistence failure")

	// ErrMissingKeyField indicates that fusion was requested without a unique key field
	ErrMissingKeyField = errors.New("fusion key field is required")

	// ErrRateLimitExceeded indicates that rate limit has been exceeded
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// GenerationError represents an error specific to one generation run
type GenerationError struct {
	Identifier string
	Message    string
	Err        error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("identifier %s: %s: %v", e.Identifier, e.Message, e.Err)
	}
	return fmt.Sprintf("identifier %s: %s", e.Identifier, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewGenerationError creates a new generation-specific error
func NewGenerationError(identifier, message string, err error) *GenerationError {
	return &GenerationError{
		Identifier: identifier,
		Message:    message,
		Err:        err,
	}
}
