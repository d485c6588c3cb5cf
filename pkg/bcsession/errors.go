package bcsession

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when a request's reply does not arrive within
// its deadline (default 5s, caller overridable).
var ErrTimeout = errors.New("bcsession: request timeout")

// ErrTransportLost is returned to every pending waiter and future
// caller once the underlying transport fails or is closed.
var ErrTransportLost = errors.New("bcsession: transport lost")

// ErrNotAuthorized is returned when login fails with a non-200 status.
var ErrNotAuthorized = errors.New("bcsession: not authorized")

// ErrCancelled is returned to in-flight requests when the session is
// explicitly closed while they are pending.
var ErrCancelled = errors.New("bcsession: cancelled")

// ErrUnsupportedDialect is returned when a camera never advances past
// the legacy pre-modern-XML handshake; this dialect is out of scope.
var ErrUnsupportedDialect = errors.New("bcsession: unsupported legacy dialect")

// RemoteStatusError wraps a non-200 status code returned for a specific
// request, carrying the code for callers that need to branch on it.
type RemoteStatusError struct {
	MessageID uint32
	Code      uint16
}

func (e *RemoteStatusError) Error() string {
	return fmt.Sprintf("bcsession: remote status %#04x for message id %d", e.Code, e.MessageID)
}
