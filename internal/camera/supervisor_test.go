package camera

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neolink-go/neolink/internal/config"
)

// unresolvableCfg builds a camera config whose discovery strategy is
// invalid, so connect's discovery.Resolve call fails immediately with
// an "unknown strategy" error rather than attempting any real network
// round-trip — these tests exercise the actor's command/lifecycle
// plumbing, not a live camera.
func unresolvableCfg(name string) *config.Camera {
	return &config.Camera{
		Name:      name,
		Discovery: config.Discovery("unresolvable-in-test"),
	}
}

func TestSupervisorShutdownStopsRunGoroutine(t *testing.T) {
	sup := New("cam", unresolvableCfg("cam"), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	require.NoError(t, sup.Shutdown(shutdownCtx))

	select {
	case <-sup.done:
	default:
		t.Fatal("Run goroutine did not exit after Shutdown")
	}
}

func TestSupervisorShutdownIsIdempotent(t *testing.T) {
	sup := New("cam", unresolvableCfg("cam"), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	require.NoError(t, sup.Shutdown(shutdownCtx))
	require.NoError(t, sup.Shutdown(shutdownCtx))
}

func TestSupervisorQueryPreviewNeedsNoSession(t *testing.T) {
	sup := New("cam", unresolvableCfg("cam"), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer shutdownCancel()
		sup.Shutdown(shutdownCtx)
	}()

	qctx, qcancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer qcancel()
	res, err := sup.Query(qctx, QueryPreview)
	require.NoError(t, err)
	assert.False(t, res.PreviewActive)
}

func TestSupervisorControlWithoutSessionFails(t *testing.T) {
	sup := New("cam", unresolvableCfg("cam"), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer shutdownCancel()
		sup.Shutdown(shutdownCtx)
	}()

	cctx, ccancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer ccancel()
	err := sup.Control(cctx, ControlOp{Kind: ControlLedOn})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSupervisorStateAfterShutdownIsClosed(t *testing.T) {
	sup := New("cam", unresolvableCfg("cam"), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	require.NoError(t, sup.Shutdown(shutdownCtx))

	_, err := sup.State(shutdownCtx)
	assert.ErrorIs(t, err, ErrClosed)
}
