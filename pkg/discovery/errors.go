package discovery

import "errors"

// ErrNotFound names the case of a vendor server with no record of the
// requested UID. No strategy in this package returns it; any strategy
// failure moves Resolve on to the next strategy.
var ErrNotFound = errors.New("discovery: uid not found")

// ErrAuthRejected names the case of a vendor server rejecting the
// request on authentication grounds. No strategy in this package
// returns it; any strategy failure moves Resolve on to the next
// strategy.
var ErrAuthRejected = errors.New("discovery: vendor server rejected credentials")
