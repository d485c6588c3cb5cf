// Package bridge defines the extension points an external RTSP/MQTT
// collaborator wires up: the camera registry exposes its typed
// events/control surface, but never opens an RTSP listener or speaks
// MQTT itself. RTSP and MQTT serving are independently Init()-able
// consumers of that surface, generalized here to a pair of function
// variables an external build can set before main runs, since this
// repository doesn't ship those consumers itself.
package bridge

import (
	"context"
	"errors"

	"github.com/neolink-go/neolink/internal/config"
)

// ErrNotWired is returned by RunRTSP/RunMQTT when no external
// collaborator has set the matching entrypoint.
var ErrNotWired = errors.New("bridge: entrypoint not wired")

// RTSPEntrypoint, when set, serves each camera's preview stream over
// RTSP against cfg until ctx is cancelled. nil by default.
var RTSPEntrypoint func(ctx context.Context, cfg *config.Config) error

// MQTTEntrypoint, when set, runs the MQTT bridge (topics, discovery,
// control/status/query routing) against cfg until ctx is cancelled.
// nil by default.
var MQTTEntrypoint func(ctx context.Context, cfg *config.Config) error

// RunRTSP invokes RTSPEntrypoint, or ErrNotWired if unset.
func RunRTSP(ctx context.Context, cfg *config.Config) error {
	if RTSPEntrypoint == nil {
		return ErrNotWired
	}
	return RTSPEntrypoint(ctx, cfg)
}

// RunMQTT invokes MQTTEntrypoint, or ErrNotWired if unset.
func RunMQTT(ctx context.Context, cfg *config.Config) error {
	if MQTTEntrypoint == nil {
		return ErrNotWired
	}
	return MQTTEntrypoint(ctx, cfg)
}

// RunBoth runs RTSP and MQTT concurrently, returning the first error
// from either (including ErrNotWired if both are unset).
func RunBoth(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() { errCh <- RunRTSP(ctx, cfg) }()
	go func() { errCh <- RunMQTT(ctx, cfg) }()

	err := <-errCh
	cancel()
	<-errCh
	return err
}
