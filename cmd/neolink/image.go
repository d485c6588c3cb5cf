package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/neolink-go/neolink/internal/camera"
	"github.com/neolink-go/neolink/pkg/bcmedia"
)

func runImage(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("image", flag.ExitOnError)
	configPath := fs.String("config", "config.toml", "path to the configuration file")
	filePath := fs.String("file-path", "", "output file path")
	useStream := fs.Bool("use-stream", false, "grab a frame from the live stream instead of requesting a still")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name, err := requireCameraArg(fs)
	if err != nil {
		return err
	}
	if *filePath == "" {
		return errors.New("image: --file-path is required")
	}

	return withCamera(ctx, *configPath, name, func(ctx context.Context, sup *camera.Supervisor) error {
		var data []byte
		var err error
		if *useStream {
			data, err = grabStreamFrame(ctx, sup)
		} else {
			data, err = sup.Snapshot(ctx)
		}
		if err != nil {
			return err
		}
		return os.WriteFile(*filePath, data, 0644)
	})
}

// grabStreamFrame subscribes to the camera's Preview output and
// returns the first keyframe it sees. Unlike Snapshot's JPEG, this is
// the raw H264/H265 bitstream frame, matching --use-stream's intent of
// pulling a frame out of the running video pipeline rather than
// issuing a separate still-image request.
func grabStreamFrame(ctx context.Context, sup *camera.Supervisor) ([]byte, error) {
	sub, id, err := sup.SubscribeStream(ctx)
	if err != nil {
		return nil, err
	}
	defer sup.UnsubscribeStream(context.Background(), id)

	for {
		select {
		case frame, ok := <-sub.Frames:
			if !ok {
				return nil, fmt.Errorf("image: stream closed before a keyframe arrived")
			}
			if frame.Kind == bcmedia.KindKeyframe {
				return frame.Data, nil
			}
		case err := <-sub.Errors:
			return nil, err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
