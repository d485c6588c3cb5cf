// Package applog bootstraps process-wide structured logging and the
// flag/version surface shared by cmd/neolink's subcommands.
package applog

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var Version = "0.1.0"

var Logger zerolog.Logger

// MemoryLog keeps a bounded in-memory tail of recent log lines so a
// running camera bridge can expose its own logs without tailing a file.
var MemoryLog = newBuffer(16)

// Init configures Logger from the given format/level/output strings
// (format: "", "text", "color", "json"; output: "", "stderr",
// "stdout"; level: a zerolog level name).
func Init(format, level, output string) {
	var writer io.Writer

	switch output {
	case "stderr":
		writer = os.Stderr
	case "stdout":
		writer = os.Stdout
	default:
		writer = os.Stdout
	}

	if format != "json" {
		console := &zerolog.ConsoleWriter{Out: writer}

		switch format {
		case "text":
			console.NoColor = true
		case "color":
			console.NoColor = false
		default:
			if f, ok := writer.(*os.File); ok {
				console.NoColor = !isatty.IsTerminal(f.Fd())
			}
		}

		writer = console
	}

	writer = zerolog.MultiLevelWriter(writer, MemoryLog)

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	Logger = zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}

// LogStartup emits the version/platform banner on every process start.
func LogStartup() {
	platform := fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
	Logger.Info().Str("version", Version).Str("revision", BuildRevision()).
		Str("platform", platform).Msg("neolink")
	Logger.Debug().Str("version", runtime.Version()).Msg("build")
}

// BuildRevision extracts a short VCS revision from the embedded build
// info, for -version output.
func BuildRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			if len(setting.Value) > 7 {
				return setting.Value[:7]
			}
			return setting.Value
		}
	}
	return ""
}

const chunkSize = 1 << 16

// circularBuffer is a fixed-capacity ring of byte chunks used as a
// secondary zerolog writer so recent log output survives without disk.
type circularBuffer struct {
	chunks [][]byte
	r, w   int
}

func newBuffer(chunks int) *circularBuffer {
	b := &circularBuffer{chunks: make([][]byte, 0, chunks)}
	b.chunks = append(b.chunks, make([]byte, 0, chunkSize))
	return b
}

func (b *circularBuffer) Write(p []byte) (n int, err error) {
	n = len(p)

	if len(b.chunks[b.w])+n > chunkSize {
		if b.w++; b.w == cap(b.chunks) {
			b.w = 0
		}
		if b.r == b.w {
			if b.r++; b.r == cap(b.chunks) {
				b.r = 0
			}
		}
		if b.w == len(b.chunks) {
			b.chunks = append(b.chunks, make([]byte, 0, chunkSize))
		} else {
			b.chunks[b.w] = b.chunks[b.w][:0]
		}
	}

	b.chunks[b.w] = append(b.chunks[b.w], p...)
	return
}

func (b *circularBuffer) WriteTo(w io.Writer) (n int64, err error) {
	for i := b.r; ; {
		var nn int
		if nn, err = w.Write(b.chunks[i]); err != nil {
			return
		}
		n += int64(nn)

		if i == b.w {
			break
		}
		if i++; i == cap(b.chunks) {
			i = 0
		}
	}
	return
}
