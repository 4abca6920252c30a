// Package common defines shared constants and sentinel errors used across
// the corral device daemon and the ticket authority. Callers should use
// errors.Is to match these values.
package common

import (
	"context"
	"errors"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrGone       = errors.New("gone")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Ticket protocol errors.
	ErrChallengeMissing  = errors.New("challenge missing")
	ErrTicketDenied      = errors.New("ticket denied")
	ErrMalformedResponse = errors.New("malformed response")

	// Transfer errors.
	ErrChannelUnavailable = errors.New("channel unavailable")
	ErrAllChannelsFailed  = errors.New("all channels failed")
	ErrBadPadding         = errors.New("bad padding")
	ErrDigestMismatch     = errors.New("digest mismatch")
	ErrPathMismatch       = errors.New("path mismatch")
	ErrUnexpectedStatus   = errors.New("unexpected status")
	ErrStalled            = errors.New("transfer stalled")
)

// ErrCancelled reports a deliberate abort. It matches context.Canceled too,
// so callers may test for either.
var ErrCancelled = cancelledError{}

type cancelledError struct{}

func (cancelledError) Error() string { return "cancelled" }

func (cancelledError) Is(target error) bool { return target == context.Canceled }

// IsCancelled reports whether err stems from a cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}
