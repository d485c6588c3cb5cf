// Command neolink is the process entrypoint: a small subcommand
// dispatcher over the camera registry and supervisor contract the
// core package exposes, generalized from a single always-on daemon
// mode into neolink's long-running bridge modes plus a set of
// one-shot utility subcommands.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/neolink-go/neolink/internal/applog"
)

func main() {
	var cmd string
	var args []string

	if len(os.Args) < 2 {
		mode, ok := modeFromEnv()
		if !ok {
			usage()
			os.Exit(2)
		}
		cmd, args = mode, nil
	} else {
		cmd, args = os.Args[1], os.Args[2:]
	}

	var err error
	switch cmd {
	case "rtsp", "mqtt", "mqtt-rtsp":
		err = runBridge(context.Background(), cmd, args)
	case "image":
		err = runImage(context.Background(), args)
	case "battery":
		err = runBattery(context.Background(), args)
	case "pir":
		err = runPir(context.Background(), args)
	case "reboot":
		err = runReboot(context.Background(), args)
	case "status-light":
		err = runStatusLight(context.Background(), args)
	case "talk":
		err = runTalk(context.Background(), args)
	case "ptz":
		err = runPtz(context.Background(), args)
	case "-h", "-help", "--help", "help":
		usage()
		return
	case "-version", "--version", "version":
		printVersion()
		return
	default:
		fmt.Fprintf(os.Stderr, "neolink: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "neolink: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	rev := applog.BuildRevision()
	if rev == "" {
		fmt.Printf("neolink %s\n", applog.Version)
		return
	}
	fmt.Printf("neolink %s (%s)\n", applog.Version, rev)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: neolink <command> [args] --config <path>

commands:
  rtsp                                           run the RTSP bridge
  mqtt                                           run the MQTT bridge
  mqtt-rtsp                                      run both bridges
  image --file-path <p> [--use-stream] <camera>  save a still image
  battery <camera>                               print battery status
  pir <camera> on|off                            set PIR alarm state
  reboot <camera>                                reboot the camera
  status-light <camera> on|off                   set the status LED
  talk <camera> [--adpcm-file <f> --sample-rate <r> --block-size <b>] | [--microphone]
  ptz <camera> control <speed> <dir> | preset [id] | assign <id> <name> | zoom <factor>
  version                                         print the build version
  help                                            print this message`)
}
