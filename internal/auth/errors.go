package auth

import (
	"context"
	"errors"

	"espnauth/internal/retry"
)

// ErrorKind classifies why an authentication attempt failed. Every
// failure leaving this package carries exactly one kind.
type ErrorKind string

const (
	// KindBrowserInit means the automation engine failed to start.
	// Fatal for the call; never retried internally.
	KindBrowserInit ErrorKind = "browser_init"
	// KindFormNotFound means no credential input was located after
	// exhausting retries and the frame search.
	KindFormNotFound ErrorKind = "form_not_found"
	// KindInvalidCredentials means submission went through but the page
	// indicates the credentials were rejected.
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	// KindTimeout means a bounded wait elapsed without its signal.
	KindTimeout ErrorKind = "timeout"
	// KindMissingSessionCookies means login appeared to succeed but the
	// cookie pair could not be found by exact or fuzzy match.
	KindMissingSessionCookies ErrorKind = "missing_session_cookies"
	// KindDebugTimeout means the interactive wait bound was reached
	// with no human-completed login detected.
	KindDebugTimeout ErrorKind = "debug_timeout"
)

var (
	errBrowserInit           = errors.New("browser failed to start")
	errFormNotFound          = errors.New("no credential input found; the site may have changed its login markup")
	errInvalidCredentials    = errors.New("credentials rejected by the login page")
	errTimeout               = errors.New("timed out waiting for the expected signal")
	errMissingSessionCookies = errors.New("session cookies not present after login")
	errDebugTimeout          = errors.New("no login detected before the interactive wait expired")
)

// classify maps a pipeline error to its kind. Deadline expiry from any
// bounded wait counts as a timeout; anything unrecognized is treated
// as an engine failure so it is visibly wrong rather than silently
// mislabeled.
func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, errFormNotFound):
		return KindFormNotFound
	case errors.Is(err, errInvalidCredentials):
		return KindInvalidCredentials
	case errors.Is(err, errMissingSessionCookies):
		return KindMissingSessionCookies
	case errors.Is(err, errDebugTimeout):
		return KindDebugTimeout
	case errors.Is(err, errTimeout),
		errors.Is(err, retry.ErrDeadline),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindTimeout
	case errors.Is(err, errBrowserInit):
		return KindBrowserInit
	default:
		return KindBrowserInit
	}
}
