package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration signals invalid request or tuning parameters.
	ErrConfiguration = errors.New("configuration error")
	// ErrProfileNotFound signals a missing (or inaccessible) client profile.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrChannelUnavailable signals a channel whose backing store could not answer.
	ErrChannelUnavailable = errors.New("channel unavailable")
	// ErrCorpusUnavailable signals that the recent document corpus could not be read.
	ErrCorpusUnavailable = errors.New("document corpus unavailable")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
)

// ConfigurationError wraps ErrConfiguration with the offending field.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrConfiguration.Error(), e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// NewConfigurationError creates a configuration error for a field.
func NewConfigurationError(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ChannelUnavailableError wraps ErrChannelUnavailable with the channel name and cause.
type ChannelUnavailableError struct {
	Channel string
	Err     error
}

func (e *ChannelUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrChannelUnavailable.Error(), e.Channel, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ChannelUnavailableError) Unwrap() []error { return []error{ErrChannelUnavailable, e.Err} }
