package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/neolink-go/neolink/internal/applog"
	"github.com/neolink-go/neolink/internal/bridge"
	"github.com/neolink-go/neolink/internal/config"
	"github.com/neolink-go/neolink/internal/registry"
)

// runBridge implements the rtsp/mqtt/mqtt-rtsp long-running modes: load
// config, bring up the camera registry, hand it to whichever external
// entrypoints are wired, and block until a signal or a fatal entrypoint
// error. mode, if not given explicitly on the command line, falls back
// to NEO_LINK_MODE.
func runBridge(ctx context.Context, mode string, args []string) error {
	fs := flag.NewFlagSet(mode, flag.ExitOnError)
	configPath := fs.String("config", "config.toml", "path to the configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(config.AbsPath(*configPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Bind = fmt.Sprintf("%s:%s", cfg.Bind, portFromEnv())

	applog.Init("", "info", "stderr")
	applog.LogStartup()
	registry.Init(applog.Logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry.Sync(ctx, cfg)
	defer registry.Shutdown()

	go watchReload(ctx, *configPath)

	switch mode {
	case "rtsp":
		return bridge.RunRTSP(ctx, cfg)
	case "mqtt":
		return bridge.RunMQTT(ctx, cfg)
	default:
		return bridge.RunBoth(ctx, cfg)
	}
}

// watchReload reloads the config file on SIGHUP and re-syncs the
// registry, turning config edits into camera restarts without a
// process bounce.
func watchReload(ctx context.Context, configPath string) {
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sighup:
			cfg, err := config.Load(config.AbsPath(configPath))
			if err != nil {
				applog.Logger.Warn().Err(err).Msg("config reload failed")
				continue
			}
			applog.Logger.Info().Msg("config reloaded")
			registry.Sync(ctx, cfg)
		}
	}
}

// modeFromEnv resolves the long-running mode when neolink is started
// without an explicit subcommand, via the NEO_LINK_MODE environment
// variable (NEO_LINK_PORT is read separately by portFromEnv).
func modeFromEnv() (mode string, ok bool) {
	mode = os.Getenv("NEO_LINK_MODE")
	switch mode {
	case "rtsp", "mqtt", "mqtt-rtsp":
		return mode, true
	default:
		return "", false
	}
}

const defaultPort = "8554"

func portFromEnv() string {
	if p := os.Getenv("NEO_LINK_PORT"); p != "" {
		return p
	}
	return defaultPort
}
