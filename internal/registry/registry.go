// Package registry holds the process-wide map of camera name to its
// running supervisor, serializing reconfiguration at a single-writer
// boundary.
//
// A package-level mutex-guarded map with Get/GetAll/Add/Reconfigure/Delete,
// generalized from stream handles to camera supervisors.
package registry

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/neolink-go/neolink/internal/camera"
	"github.com/neolink-go/neolink/internal/config"
	"github.com/neolink-go/neolink/pkg/core"
)

const shutdownGrace = 10 * time.Second

var (
	mu      sync.Mutex
	items   = map[string]*camera.Supervisor{}
	applied = map[string]config.Camera{}
	log     zerolog.Logger
)

// Init sets the logger used for registry-level events (camera add/
// remove/reconfigure); call once at start-up.
func Init(logger zerolog.Logger) {
	log = logger.With().Str("module", "registry").Logger()
}

// Get returns the named camera's supervisor, or nil if no such camera
// is registered.
func Get(name string) *camera.Supervisor {
	mu.Lock()
	defer mu.Unlock()
	return items[name]
}

// GetAll returns a snapshot of every registered camera name and its
// supervisor.
func GetAll() map[string]*camera.Supervisor {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]*camera.Supervisor, len(items))
	for k, v := range items {
		out[k] = v
	}
	return out
}

// Add starts a new supervisor for cfg under name, replacing and
// shutting down any previous entry with the same name first. Disabled
// cameras are registered but not started.
func Add(ctx context.Context, name string, cfg *config.Camera) *camera.Supervisor {
	mu.Lock()
	old := items[name]
	var sup *camera.Supervisor
	if cfg.Enabled {
		sup = camera.New(name, cfg, log)
		go sup.Run(ctx)
	}
	items[name] = sup
	applied[name] = *cfg
	mu.Unlock()

	if old != nil {
		shutdownAsync(old)
	}
	return sup
}

// Reconfigure atomically replaces the named camera's supervisor: a new
// one is started under the updated config, new callers are routed to
// it as soon as Reconfigure returns, and the old one is drained and
// shut down in the background so in-flight subscribers are not cut off
// mid-tear-down.
func Reconfigure(ctx context.Context, name string, cfg *config.Camera) *camera.Supervisor {
	return Add(ctx, name, cfg)
}

// Delete removes the named camera, shutting down its supervisor if one
// is running.
func Delete(name string) {
	mu.Lock()
	sup := items[name]
	delete(items, name)
	delete(applied, name)
	mu.Unlock()

	if sup != nil {
		shutdownAsync(sup)
	}
}

// Sync reconciles the registry against a freshly loaded config: cameras
// absent from cfg are shut down and removed; cameras present are added
// or reconfigured; cameras already running under an identical config
// are left untouched so their sessions are not needlessly dropped.
func Sync(ctx context.Context, cfg *config.Config) {
	mu.Lock()
	wanted := make(map[string]*config.Camera, len(cfg.Cameras))
	for i := range cfg.Cameras {
		wanted[cfg.Cameras[i].Name] = &cfg.Cameras[i]
	}

	var stale, changed []string
	for name := range items {
		if _, ok := wanted[name]; !ok {
			stale = append(stale, name)
		}
	}
	for name, camCfg := range wanted {
		if prev, ok := applied[name]; !ok || !reflect.DeepEqual(prev, *camCfg) {
			changed = append(changed, name)
		}
	}
	mu.Unlock()

	for _, name := range stale {
		log.Info().Str("camera", name).Msg("removed from config")
		Delete(name)
	}
	for _, name := range changed {
		log.Info().Str("camera", name).Msg("reconfigured")
		Reconfigure(ctx, name, wanted[name])
	}
}

// Shutdown stops every registered supervisor and blocks until each has
// torn down or shutdownGrace elapses, for use at process exit.
func Shutdown() {
	mu.Lock()
	sups := make([]*camera.Supervisor, 0, len(items))
	for _, sup := range items {
		if sup != nil {
			sups = append(sups, sup)
		}
	}
	items = map[string]*camera.Supervisor{}
	applied = map[string]config.Camera{}
	mu.Unlock()

	if len(sups) == 0 {
		return
	}
	var wait core.Waiter
	wait.Add(len(sups))
	for _, sup := range sups {
		go func(sup *camera.Supervisor) {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := sup.Shutdown(ctx); err != nil {
				log.Warn().Err(err).Msg("supervisor shutdown")
			}
			wait.Done(nil)
		}(sup)
	}
	wait.Wait()
}

func shutdownAsync(sup *camera.Supervisor) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := sup.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("supervisor shutdown")
		}
	}()
}
