// Package delivery sends finished photos out of the booth: by email, to the cloud and to a printer.
// Each channel is independent; one failing never affects another or the local copy.
package delivery

import (
	"errors"
	"fmt"
)

// Channel names, used in results, events and the gallery delivery log.
const (
	ChannelEmail   = "email"
	ChannelCloud   = "onedrive"
	ChannelPrinter = "printer"
)

var (
	// ErrDisabled is returned by a channel switched off in the configuration.
	ErrDisabled = errors.New("channel is disabled")
	// ErrNotConfigured is returned when required settings are missing.
	ErrNotConfigured = errors.New("channel is not configured")
	// ErrUnsupported is returned when the platform cannot serve the channel.
	ErrUnsupported = errors.New("not supported on this platform")
)

// Error is a failed delivery. Its message is the diagnostic shown to the operator.
type Error struct {
	Channel    string
	Diagnostic string
	Err        error
}

func (e *Error) Error() string {
	if e.Diagnostic != "" {
		return e.Channel + ": " + e.Diagnostic
	}
	if e.Err != nil {
		return e.Channel + ": " + e.Err.Error()
	}
	return e.Channel + ": delivery failed"
}

func (e *Error) Unwrap() error {
	return e.Err
}

func failf(channel string, err error, format string, args ...any) *Error {
	return &Error{Channel: channel, Err: err, Diagnostic: fmt.Sprintf(format, args...)}
}

// Channel is a configured delivery route.
type Channel interface {
	Name() string
	Enabled() bool
}
