// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package chat

import "errors"

// Config Errors
var (
	ErrCacheMessageSizeInvalid   = errors.New("Cache max-message-size could not be parsed")
	ErrCenterLimitNegative       = errors.New("Center limit must not be negative")
	ErrInvalidOrigin             = errors.New("Allowed origin is not a valid glob")
	ErrInvalidWidth              = errors.New("Character widths must be single characters with a width between 1 and 64")
	ErrLoggerExcludeEmpty        = errors.New("Encountered logging type '-' with no type to exclude")
	ErrLoggerFilenameMissing     = errors.New("Logging configuration specifies 'file' method but 'filename' is empty")
	ErrLoggerHasNoTypes          = errors.New("Logger has no types to log")
	ErrNoListenerDefined         = errors.New("Server listening address missing")
	ErrServerMessageSizeTooSmall = errors.New("Server max-message-size must be at least 512 bytes")
)

// Runtime Errors
var (
	errMessageTooLarge = errors.New("Message is too large")
	errUnknownRequest  = errors.New("Unknown request type")
)
