package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceEnvVars(t *testing.T) {
	t.Setenv("NEO_TEST_USER", "admin")

	assert.Equal(t, "admin", ReplaceEnvVars("${NEO_TEST_USER}"))
	assert.Equal(t, "fallback", ReplaceEnvVars("${NEO_TEST_MISSING:fallback}"))
	assert.Equal(t, "${NEO_TEST_MISSING}", ReplaceEnvVars("${NEO_TEST_MISSING}"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/neolink.toml"

	const body = `
bind = "0.0.0.0"

[mqtt]
broker_addr = "127.0.0.1"
port = 1883

[[cameras]]
name = "frontdoor"
username = "admin"
password = "${NEO_TEST_PASS:changeme}"
address = "192.168.1.50"
discovery = "local"
stream = "Main"
enabled = true

[cameras.pause]
on_motion = true
timeout = 30

[cameras.mqtt]
enable_motion = true
battery_update = 60000
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Cameras, 1)

	cam := cfg.Cameras[0]
	assert.Equal(t, "frontdoor", cam.Name)
	assert.Equal(t, "changeme", cam.Password)
	assert.Equal(t, DiscoveryLocal, cam.Discovery)
	assert.Equal(t, StreamMain, cam.Stream)
	assert.True(t, cam.Pause.OnMotion)
	assert.Equal(t, 30, cam.Pause.Timeout)
	assert.True(t, cam.MQTT.EnableMotion)
	assert.Equal(t, 60000, cam.MQTT.BatteryUpdate)

	require.NotNil(t, cfg.CameraByName("frontdoor"))
	assert.Nil(t, cfg.CameraByName("missing"))
}
