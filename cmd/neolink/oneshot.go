package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/neolink-go/neolink/internal/applog"
	"github.com/neolink-go/neolink/internal/camera"
	"github.com/neolink-go/neolink/internal/config"
)

const oneShotTimeout = 15 * time.Second

// withCamera loads cfg, resolves the named camera, brings up a
// standalone Supervisor for it (bypassing the registry, since one-shot
// utilities have no business sharing a process-wide camera map with a
// long-running bridge), runs fn against it under oneShotTimeout, and
// tears it down.
func withCamera(ctx context.Context, configPath, name string, fn func(ctx context.Context, sup *camera.Supervisor) error) error {
	return withCameraTimeout(ctx, configPath, name, oneShotTimeout, fn)
}

// withCameraTimeout is withCamera with an explicit budget for fn, for
// utilities like talk whose upload duration is caller-controlled rather
// than a fixed request/reply round-trip.
func withCameraTimeout(ctx context.Context, configPath, name string, timeout time.Duration, fn func(ctx context.Context, sup *camera.Supervisor) error) error {
	cfg, err := config.Load(config.AbsPath(configPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	camCfg := cfg.CameraByName(name)
	if camCfg == nil {
		return fmt.Errorf("no camera named %q in config", name)
	}

	applog.Init("", "warn", "stderr")

	sup := camera.New(name, camCfg, applog.Logger)
	runCtx, cancel := context.WithCancel(ctx)
	go sup.Run(runCtx)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), oneShotTimeout)
		defer shutdownCancel()
		sup.Shutdown(shutdownCtx)
		cancel()
	}()

	fnCtx, fnCancel := context.WithTimeout(ctx, timeout)
	defer fnCancel()
	return fn(fnCtx, sup)
}

func runBattery(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("battery", flag.ExitOnError)
	configPath := fs.String("config", "config.toml", "path to the configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name, err := requireCameraArg(fs)
	if err != nil {
		return err
	}

	return withCamera(ctx, *configPath, name, func(ctx context.Context, sup *camera.Supervisor) error {
		res, err := sup.Query(ctx, camera.QueryBattery)
		if err != nil {
			return err
		}
		fmt.Printf("battery: %d%%\n", res.BatteryPercent)
		return nil
	})
}

func runPir(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pir", flag.ExitOnError)
	configPath := fs.String("config", "config.toml", "path to the configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name, state, err := requireCameraAndState(fs)
	if err != nil {
		return err
	}

	kind := camera.ControlPirOff
	if state {
		kind = camera.ControlPirOn
	}
	return withCamera(ctx, *configPath, name, func(ctx context.Context, sup *camera.Supervisor) error {
		return sup.Control(ctx, camera.ControlOp{Kind: kind})
	})
}

func runStatusLight(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("status-light", flag.ExitOnError)
	configPath := fs.String("config", "config.toml", "path to the configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name, state, err := requireCameraAndState(fs)
	if err != nil {
		return err
	}

	kind := camera.ControlLedOff
	if state {
		kind = camera.ControlLedOn
	}
	return withCamera(ctx, *configPath, name, func(ctx context.Context, sup *camera.Supervisor) error {
		return sup.Control(ctx, camera.ControlOp{Kind: kind})
	})
}

func runReboot(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reboot", flag.ExitOnError)
	configPath := fs.String("config", "config.toml", "path to the configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name, err := requireCameraArg(fs)
	if err != nil {
		return err
	}

	return withCamera(ctx, *configPath, name, func(ctx context.Context, sup *camera.Supervisor) error {
		return sup.Control(ctx, camera.ControlOp{Kind: camera.ControlReboot})
	})
}

func requireCameraArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() < 1 {
		return "", fmt.Errorf("%s: missing camera name", fs.Name())
	}
	return fs.Arg(0), nil
}

func requireCameraAndState(fs *flag.FlagSet) (name string, on bool, err error) {
	if fs.NArg() < 2 {
		return "", false, fmt.Errorf("%s: usage: %s <camera> on|off", fs.Name(), fs.Name())
	}
	name = fs.Arg(0)
	switch fs.Arg(1) {
	case "on":
		return name, true, nil
	case "off":
		return name, false, nil
	default:
		return "", false, fmt.Errorf("%s: state must be on|off, got %q", fs.Name(), fs.Arg(1))
	}
}
