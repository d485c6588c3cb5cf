package camera

import "time"

// pausePolicy tracks the inputs to the start/stop decision for the
// upstream Preview subscription: client presence and motion state, each
// gated by the config's on_client/on_motion flags, with a timeout before
// a drop actually pauses the stream.
//
// start if ((¬onClient ∨ hasClient) ∧ (¬onMotion ∨ hasMotion))
// pause once that condition has been continuously false for ≥ timeout.
type pausePolicy struct {
	onMotion bool
	onClient bool
	timeout  time.Duration

	hasClient bool
	hasMotion bool

	// falseSince is the time the combined condition first went false, or
	// the zero Time while it holds true.
	falseSince time.Time
}

func newPausePolicy(onMotion, onClient bool, timeoutSeconds int) *pausePolicy {
	return &pausePolicy{
		onMotion: onMotion,
		onClient: onClient,
		timeout:  time.Duration(timeoutSeconds) * time.Second,
	}
}

func (p *pausePolicy) wantActive() bool {
	if p.onClient && !p.hasClient {
		return false
	}
	if p.onMotion && !p.hasMotion {
		return false
	}
	return true
}

// setClient and setMotion update the tracked inputs and report the
// updated want-active state, for callers that act immediately on a
// start transition but defer a stop through poll.
func (p *pausePolicy) setClient(has bool) bool {
	p.hasClient = has
	return p.wantActive()
}

func (p *pausePolicy) setMotion(has bool) bool {
	p.hasMotion = has
	return p.wantActive()
}

// poll is called on a steady tick; it returns shouldStop=true exactly
// once, when wantActive has been continuously false for ≥ timeout, and
// resets its own tracking, so if the condition stays false it fires
// again only after another full timeout.
func (p *pausePolicy) poll(now time.Time) (shouldStop bool) {
	if p.wantActive() {
		p.falseSince = time.Time{}
		return false
	}
	if p.falseSince.IsZero() {
		p.falseSince = now
		return false
	}
	if now.Sub(p.falseSince) >= p.timeout {
		p.falseSince = time.Time{}
		return true
	}
	return false
}
