package camera

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPausePolicyWantActiveOnClientOnly(t *testing.T) {
	p := newPausePolicy(false, true, 2)
	assert.False(t, p.wantActive())
	assert.True(t, p.setClient(true))
	assert.False(t, p.setClient(false))
}

func TestPausePolicyWantActiveRequiresMotionWhenConfigured(t *testing.T) {
	p := newPausePolicy(true, true, 2)
	p.setClient(true)
	assert.False(t, p.wantActive(), "on_motion set but no motion yet")
	assert.True(t, p.setMotion(true))
	assert.False(t, p.setMotion(false))
}

func TestPausePolicyPollFiresOnceAfterTimeout(t *testing.T) {
	p := newPausePolicy(false, true, 2)
	p.setClient(true)
	now := time.Now()

	assert.False(t, p.poll(now), "still active, nothing to stop")

	p.setClient(false)
	assert.False(t, p.poll(now), "just went false, timeout not elapsed")
	assert.False(t, p.poll(now.Add(1*time.Second)), "1s < 2s timeout")
	assert.True(t, p.poll(now.Add(2*time.Second)), "timeout elapsed")
	assert.False(t, p.poll(now.Add(3*time.Second)), "already fired, falseSince reset")
}

func TestPausePolicyResetsTimeoutOnFlapBack(t *testing.T) {
	p := newPausePolicy(false, true, 2)
	p.setClient(true)
	now := time.Now()

	p.setClient(false)
	p.poll(now.Add(1 * time.Second))

	p.setClient(true) // client comes back before the timeout expires
	assert.False(t, p.poll(now.Add(1500*time.Millisecond)))

	p.setClient(false)
	assert.False(t, p.poll(now.Add(2*time.Second)), "falseSince restarted on flap-back")
	assert.True(t, p.poll(now.Add(4*time.Second)))
}
