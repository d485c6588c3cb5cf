package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/neolink-go/neolink/internal/camera"
)

// runPtz implements `ptz <camera> control <speed> <dir> | preset [id] |
// assign <id> <name> | zoom <factor>`.
func runPtz(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ptz", flag.ExitOnError)
	configPath := fs.String("config", "config.toml", "path to the configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("ptz: usage: ptz <camera> control <speed> <dir> | preset [id] | assign <id> <name> | zoom <factor>")
	}
	name := fs.Arg(0)
	verb := fs.Arg(1)
	rest := fs.Args()[2:]

	op, err := buildPtzOp(verb, rest)
	if err != nil {
		return err
	}

	return withCamera(ctx, *configPath, name, func(ctx context.Context, sup *camera.Supervisor) error {
		if op.Kind == camera.ControlPtzPreset && op.PresetID == 0 && len(rest) == 0 {
			res, err := sup.Query(ctx, camera.QueryPtzPresets)
			if err != nil {
				return err
			}
			for _, p := range res.Presets {
				fmt.Printf("%d: %s\n", p.ID, p.Name)
			}
			return nil
		}
		return sup.Control(ctx, op)
	})
}

func buildPtzOp(verb string, rest []string) (camera.ControlOp, error) {
	switch verb {
	case "control":
		if len(rest) != 2 {
			return camera.ControlOp{}, fmt.Errorf("ptz control: usage: ptz <camera> control <speed> <dir>")
		}
		speed, err := strconv.Atoi(rest[0])
		if err != nil {
			return camera.ControlOp{}, fmt.Errorf("ptz control: invalid speed %q: %w", rest[0], err)
		}
		return camera.ControlOp{Kind: camera.ControlPtzMove, PtzSpeed: speed, PtzDir: rest[1]}, nil

	case "preset":
		if len(rest) == 0 {
			return camera.ControlOp{Kind: camera.ControlPtzPreset}, nil
		}
		id, err := strconv.Atoi(rest[0])
		if err != nil {
			return camera.ControlOp{}, fmt.Errorf("ptz preset: invalid id %q: %w", rest[0], err)
		}
		return camera.ControlOp{Kind: camera.ControlPtzPreset, PresetID: id}, nil

	case "assign":
		if len(rest) != 2 {
			return camera.ControlOp{}, fmt.Errorf("ptz assign: usage: ptz <camera> assign <id> <name>")
		}
		id, err := strconv.Atoi(rest[0])
		if err != nil {
			return camera.ControlOp{}, fmt.Errorf("ptz assign: invalid id %q: %w", rest[0], err)
		}
		return camera.ControlOp{Kind: camera.ControlPtzAssign, PresetID: id, PresetName: rest[1]}, nil

	case "zoom":
		if len(rest) != 1 {
			return camera.ControlOp{}, fmt.Errorf("ptz zoom: usage: ptz <camera> zoom <factor>")
		}
		factor, err := strconv.Atoi(rest[0])
		if err != nil {
			return camera.ControlOp{}, fmt.Errorf("ptz zoom: invalid factor %q: %w", rest[0], err)
		}
		return camera.ControlOp{Kind: camera.ControlZoom, ZoomFactor: factor}, nil

	default:
		return camera.ControlOp{}, fmt.Errorf("ptz: unknown verb %q", verb)
	}
}
