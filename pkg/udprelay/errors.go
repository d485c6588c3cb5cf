package udprelay

import "errors"

// ErrTimeout is returned when no datagram has been received from the
// peer within the liveness window (15s).
var ErrTimeout = errors.New("udprelay: session timeout")

// ErrCancelled is returned to all pending Read/Write callers once a
// session's Close or an external cancellation tears it down.
var ErrCancelled = errors.New("udprelay: session cancelled")

// ErrClosed is returned by Read/Write once a session has ended without
// a more specific cause recorded; no FIN acknowledgement is awaited.
var ErrClosed = errors.New("udprelay: session closed")
