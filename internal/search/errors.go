package search

import "errors"

// ErrNoStrategy means no registered strategy handles the requested mode and
// no semantic fallback is registered. It is a configuration error: callers
// should surface it as service-unavailable and not retry.
var ErrNoStrategy = errors.New("no search strategy registered for mode and no semantic fallback")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
