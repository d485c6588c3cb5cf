package camera

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neolink-go/neolink/pkg/baichuan"
)

func TestBuildControlRequestLedOn(t *testing.T) {
	msgID, body, err := buildControlRequest(0, ControlOp{Kind: ControlLedOn})
	require.NoError(t, err)
	assert.Equal(t, baichuan.MsgSetLEDStatus, msgID)

	var got baichuan.LEDStatus
	require.NoError(t, xml.Unmarshal(body, &got))
	assert.Equal(t, "open", got.LedState.State)
	assert.Equal(t, "0", got.LedState.ChannelID)
}

func TestBuildControlRequestPtzMove(t *testing.T) {
	msgID, body, err := buildControlRequest(1, ControlOp{Kind: ControlPtzMove, PtzDir: "Left", PtzSpeed: 32})
	require.NoError(t, err)
	assert.Equal(t, baichuan.MsgPTZControl, msgID)

	var got baichuan.PtzControl
	require.NoError(t, xml.Unmarshal(body, &got))
	assert.Equal(t, "Left", got.PtzControl.Command)
	assert.Equal(t, "32", got.PtzControl.Speed)
	assert.Equal(t, "1", got.PtzControl.ChannelID)
}

func TestBuildControlRequestPtzMoveStopOmitsSpeed(t *testing.T) {
	_, body, err := buildControlRequest(0, ControlOp{Kind: ControlPtzMove, PtzDir: "Stop"})
	require.NoError(t, err)

	var got baichuan.PtzControl
	require.NoError(t, xml.Unmarshal(body, &got))
	assert.Equal(t, "", got.PtzControl.Speed)
}

func TestBuildControlRequestPtzAssign(t *testing.T) {
	msgID, body, err := buildControlRequest(0, ControlOp{Kind: ControlPtzAssign, PresetID: 3, PresetName: "kitchen"})
	require.NoError(t, err)
	assert.Equal(t, baichuan.MsgPTZPresetAssign, msgID)

	var got baichuan.PtzPresetAssign
	require.NoError(t, xml.Unmarshal(body, &got))
	assert.Equal(t, "3", got.PtzPreset.ID)
	assert.Equal(t, "kitchen", got.PtzPreset.Name)
}

func TestBuildControlRequestSiren(t *testing.T) {
	msgID, _, err := buildControlRequest(0, ControlOp{Kind: ControlSiren, SirenSecs: 5})
	require.NoError(t, err)
	assert.Equal(t, baichuan.MsgSirenAlarm, msgID)
}

func TestBuildControlRequestUnknownKind(t *testing.T) {
	_, _, err := buildControlRequest(0, ControlOp{Kind: ControlKind(999)})
	assert.Error(t, err)
}
