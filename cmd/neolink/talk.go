package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/neolink-go/neolink/internal/camera"
)

const (
	defaultSampleRate = 8000
	defaultBlockSize  = 1024
	uploadGrace       = 5 * time.Second
)

// runTalk implements `talk <camera> [--adpcm-file <f> --sample-rate <r>
// --block-size <b>] | [--microphone]`. Only the pre-encoded-file form is
// supported: no audio-capture library appears anywhere in the retrieval
// pack, so --microphone is rejected with a clear "not wired" error
// rather than a half-built capture path.
func runTalk(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("talk", flag.ExitOnError)
	configPath := fs.String("config", "config.toml", "path to the configuration file")
	adpcmFile := fs.String("adpcm-file", "", "path to a pre-encoded ADPCM audio file")
	sampleRate := fs.Int("sample-rate", defaultSampleRate, "ADPCM sample rate in Hz")
	blockSize := fs.Int("block-size", defaultBlockSize, "bytes per uploaded chunk")
	microphone := fs.Bool("microphone", false, "stream from the local microphone (unsupported)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name, err := requireCameraArg(fs)
	if err != nil {
		return err
	}

	if *microphone {
		return errors.New("talk: --microphone is not wired: no audio capture library is available; use --adpcm-file")
	}
	if *adpcmFile == "" {
		return errors.New("talk: --adpcm-file or --microphone is required")
	}

	f, err := os.Open(*adpcmFile)
	if err != nil {
		return fmt.Errorf("talk: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("talk: %w", err)
	}

	// 4-bit ADPCM packs two samples per byte; pacing chunk delivery to
	// roughly the audio's real duration keeps the upload from front-
	// running what the camera's talk buffer can play back.
	chunkDuration := time.Duration(float64(*blockSize) * 2 / float64(*sampleRate) * float64(time.Second))
	totalDuration := time.Duration(float64(info.Size())*2/float64(*sampleRate)*float64(time.Second)) + uploadGrace

	return withCameraTimeout(ctx, *configPath, name, totalDuration, func(ctx context.Context, sup *camera.Supervisor) error {
		buf := make([]byte, *blockSize)
		for {
			n, err := io.ReadFull(f, buf)
			if n > 0 {
				if sendErr := sup.SendTalkAudio(ctx, buf[:n]); sendErr != nil {
					return sendErr
				}
			}
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("talk: %w", err)
			}

			select {
			case <-time.After(chunkDuration):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
}
