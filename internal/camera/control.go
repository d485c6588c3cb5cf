package camera

import (
	"context"
	"fmt"

	"github.com/neolink-go/neolink/pkg/baichuan"
	"github.com/neolink-go/neolink/pkg/bcsession"
	"github.com/neolink-go/neolink/pkg/core"
)

// validPtzDirs lists the PTZ move commands the camera accepts; anything
// else is rejected before it reaches the wire rather than surfacing as
// an opaque camera-side error.
var validPtzDirs = []string{
	"Left", "Right", "Up", "Down",
	"LeftUp", "LeftDown", "RightUp", "RightDown",
	"Stop",
}

// ControlKind tags which control operation a ControlOp carries. The set
// and field usage mirror the operation list directly: no pack source
// documents the exact XML shapes for PTZ, reboot, floodlight, siren, or
// wakeup, so their request bodies are built from the message-id catalog
// and field names chosen to match the sibling Get/Set pairs already
// grounded in xml.go (LedState, PirAlarm).
type ControlKind int

const (
	ControlLedOn ControlKind = iota
	ControlLedOff
	ControlIrAuto
	ControlIrOn
	ControlIrOff
	ControlReboot
	ControlPtzMove
	ControlPtzPreset
	ControlPtzAssign
	ControlZoom
	ControlPirOn
	ControlPirOff
	ControlFloodlightOn
	ControlFloodlightOff
	ControlFloodlightTasksOn
	ControlFloodlightTasksOff
	ControlSiren
	ControlWakeup
)

// ControlOp is a single control request, with the fields relevant to
// its Kind populated and the rest left zero.
type ControlOp struct {
	Kind ControlKind

	PtzDir     string // "Left", "Right", "Up", "Down", "LeftUp", ... "Stop"
	PtzSpeed   int
	PresetID   int
	PresetName string
	ZoomFactor int // absolute zoom position
	SirenSecs  int
	WakeupMins int
}

// applyControl sends the request for op over sess and waits for the
// camera's status reply. Preview/PreviewStop are handled by the
// supervisor's pause policy directly and are not reachable through
// ControlOp.
func applyControl(ctx context.Context, sess *bcsession.Session, channel int, op ControlOp) error {
	msgID, body, err := buildControlRequest(channel, op)
	if err != nil {
		return err
	}
	_, err = sess.Request(ctx, msgID, nil, body)
	return err
}

func buildControlRequest(channel int, op ControlOp) (uint32, []byte, error) {
	switch op.Kind {
	case ControlLedOn:
		b, err := baichuan.NewLEDStateRequest(channel, true)
		return baichuan.MsgSetLEDStatus, b, err
	case ControlLedOff:
		b, err := baichuan.NewLEDStateRequest(channel, false)
		return baichuan.MsgSetLEDStatus, b, err

	case ControlIrAuto:
		b, err := baichuan.NewIRLightsRequest(channel, "auto")
		return baichuan.MsgSetIRLights, b, err
	case ControlIrOn:
		b, err := baichuan.NewIRLightsRequest(channel, "open")
		return baichuan.MsgSetIRLights, b, err
	case ControlIrOff:
		b, err := baichuan.NewIRLightsRequest(channel, "close")
		return baichuan.MsgSetIRLights, b, err

	case ControlReboot:
		b, err := baichuan.NewRebootRequest(channel)
		return baichuan.MsgReboot, b, err

	case ControlPtzMove:
		if !core.Contains(validPtzDirs, op.PtzDir) {
			return 0, nil, fmt.Errorf("camera: invalid PTZ direction %q", op.PtzDir)
		}
		b, err := baichuan.NewPTZControlRequest(channel, op.PtzDir, op.PtzSpeed)
		return baichuan.MsgPTZControl, b, err
	case ControlPtzPreset:
		b, err := baichuan.NewPTZPresetGotoRequest(channel, op.PresetID)
		return baichuan.MsgPTZControlPreset, b, err
	case ControlPtzAssign:
		b, err := baichuan.NewPTZPresetAssignRequest(channel, op.PresetID, op.PresetName)
		return baichuan.MsgPTZPresetAssign, b, err

	case ControlZoom:
		b, err := baichuan.NewZoomRequest(channel, op.ZoomFactor)
		return baichuan.MsgSetZoomFocus, b, err

	case ControlPirOn:
		b, err := baichuan.NewPirAlarmRequest(channel, true)
		return baichuan.MsgSetPIRAlarm, b, err
	case ControlPirOff:
		b, err := baichuan.NewPirAlarmRequest(channel, false)
		return baichuan.MsgSetPIRAlarm, b, err

	case ControlFloodlightOn:
		b, err := baichuan.NewFloodlightManualRequest(channel, true)
		return baichuan.MsgFloodlightManual, b, err
	case ControlFloodlightOff:
		b, err := baichuan.NewFloodlightManualRequest(channel, false)
		return baichuan.MsgFloodlightManual, b, err

	case ControlFloodlightTasksOn:
		b, err := baichuan.NewFloodlightTasksRequest(channel, true)
		return baichuan.MsgFloodlightTasks, b, err
	case ControlFloodlightTasksOff:
		b, err := baichuan.NewFloodlightTasksRequest(channel, false)
		return baichuan.MsgFloodlightTasks, b, err

	case ControlSiren:
		b, err := baichuan.NewSirenRequest(channel, op.SirenSecs)
		return baichuan.MsgSirenAlarm, b, err

	case ControlWakeup:
		b, err := baichuan.NewWakeupRequest(channel, op.WakeupMins)
		return baichuan.MsgWakeup, b, err
	}
	return 0, nil, fmt.Errorf("camera: unknown control kind %d", op.Kind)
}
