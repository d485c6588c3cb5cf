package registry

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/neolink-go/neolink/internal/camera"
	"github.com/neolink-go/neolink/internal/config"
)

// disabled cameras never start a supervisor, so these tests exercise
// the registry's bookkeeping without opening any real network
// connection.

func resetRegistry() {
	mu.Lock()
	items = map[string]*camera.Supervisor{}
	applied = map[string]config.Camera{}
	mu.Unlock()
}

func TestAddDisabledCameraRegistersNilSupervisor(t *testing.T) {
	Init(zerolog.Nop())
	resetRegistry()

	sup := Add(context.Background(), "front", &config.Camera{Name: "front", Enabled: false})
	assert.Nil(t, sup)
	assert.Contains(t, GetAll(), "front")
	assert.Nil(t, Get("front"))
}

func TestSyncRemovesCamerasAbsentFromConfig(t *testing.T) {
	Init(zerolog.Nop())
	resetRegistry()

	Add(context.Background(), "front", &config.Camera{Name: "front", Enabled: false})
	Add(context.Background(), "back", &config.Camera{Name: "back", Enabled: false})

	Sync(context.Background(), &config.Config{Cameras: []config.Camera{
		{Name: "front", Enabled: false},
	}})

	assert.Contains(t, GetAll(), "front")
	assert.NotContains(t, GetAll(), "back")
}

func TestSyncAddsNewCameras(t *testing.T) {
	Init(zerolog.Nop())
	resetRegistry()

	Sync(context.Background(), &config.Config{Cameras: []config.Camera{
		{Name: "front", Enabled: false},
	}})

	assert.Contains(t, GetAll(), "front")
}
