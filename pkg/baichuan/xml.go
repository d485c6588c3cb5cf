package baichuan

import "encoding/xml"

// Extension is the addressing header carried ahead of most message
// payloads: channel id, and for message id 3 (Preview) a binaryData flag
// that switches the payload from XML to an opaque BcMedia fragment.
type Extension struct {
	XMLName    xml.Name `xml:"Extension"`
	Version    string   `xml:"version,attr,omitempty"`
	ChannelID  *int     `xml:"channelId,omitempty"`
	BinaryData int      `xml:"binaryData,omitempty"`
	EncryptLen int      `xml:"encryptLen,omitempty"`
	CheckPos   int      `xml:"checkPos,omitempty"`
	CheckValue int      `xml:"checkValue,omitempty"`
}

// LegacyLoginResponse is returned by the legacy 20-byte login/upgrade
// exchange; its sole purpose for modern cameras is carrying the nonce
// that seeds the AES key derivation.
type LegacyLoginResponse struct {
	XMLName    xml.Name `xml:"body"`
	Encryption struct {
		Type         string   `xml:"type"`
		Nonce        string   `xml:"nonce"`
		AuthTypeList []string `xml:"authTypeList>authType"`
	} `xml:"Encryption"`
}

// ModernLoginRequest is the AES-encrypted LoginUser/LoginNet body sent
// once the nonce-derived hashes are known.
type ModernLoginRequest struct {
	XMLName   xml.Name `xml:"body"`
	LoginUser struct {
		Version  string `xml:"version,attr"`
		UserName string `xml:"userName"`
		Password string `xml:"password"`
		UserVer  string `xml:"userVer"`
	} `xml:"LoginUser"`
	LoginNet struct {
		Version string `xml:"version,attr"`
		Type    string `xml:"type"`
		UDPPort string `xml:"udpPort"`
	} `xml:"LoginNet"`
}

// NewModernLoginRequest builds the login body from the nonce-hashed
// username/password, matching the camera's own login schema.
func NewModernLoginRequest(userHash, passHash string) ([]byte, error) {
	var req ModernLoginRequest
	req.LoginUser.Version = "1.1"
	req.LoginUser.UserName = userHash
	req.LoginUser.Password = passHash
	req.LoginUser.UserVer = "1"
	req.LoginNet.Version = "1.1"
	req.LoginNet.Type = "LAN"
	req.LoginNet.UDPPort = "0"

	b, err := xml.Marshal(req)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// ModernLoginResponse carries the device capability advertisement the
// camera returns once login succeeds.
type ModernLoginResponse struct {
	XMLName    xml.Name `xml:"body"`
	DeviceInfo struct {
		FirmVersion string `xml:"firmVersion"`
		ChannelNum  string `xml:"channelNum"`
		Type        string `xml:"type"`
	} `xml:"DeviceInfo"`
	StreamInfoList struct {
		StreamInfo struct {
			EncodeTable []struct {
				Type       string `xml:"type"`
				Resolution struct {
					Width  string `xml:"width"`
					Height string `xml:"height"`
				} `xml:"resolution"`
			} `xml:"encodeTable"`
		} `xml:"StreamInfo"`
	} `xml:"StreamInfoList"`
}

// PreviewRequest starts (msg id 3) or stops (msg id 4) a camera stream.
type PreviewRequest struct {
	XMLName xml.Name `xml:"body"`
	Preview struct {
		Version    string `xml:"version,attr"`
		ChannelID  string `xml:"channelId"`
		Handle     string `xml:"handle"`
		StreamType string `xml:"streamType,omitempty"`
	} `xml:"Preview"`
}

// NewPreviewStartRequest builds the msg id 3 body for the given stream
// name ("mainStream", "subStream", "externStream").
func NewPreviewStartRequest(channel int, handle, streamType string) ([]byte, error) {
	var req PreviewRequest
	req.Preview.Version = "1.1"
	req.Preview.ChannelID = itoa(uint32(channel))
	req.Preview.Handle = handle
	req.Preview.StreamType = streamType
	b, err := xml.Marshal(req)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// NewPreviewStopRequest builds the msg id 4 body for the given handle.
func NewPreviewStopRequest(channel int, handle string) ([]byte, error) {
	var req PreviewRequest
	req.Preview.Version = "1.1"
	req.Preview.ChannelID = itoa(uint32(channel))
	req.Preview.Handle = handle
	b, err := xml.Marshal(req)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// LEDStatus is the payload shape for msg ids 190/192 (get/set LED).
type LEDStatus struct {
	XMLName xml.Name `xml:"body"`
	LedState struct {
		ChannelID string `xml:"channelId"`
		State     string `xml:"state"`
	} `xml:"LedState"`
}

// PirAlarm is the payload shape for msg ids 199/201 (get/set PIR).
type PirAlarm struct {
	XMLName  xml.Name `xml:"body"`
	PirAlarm struct {
		ChannelID string `xml:"channelId"`
		Enable    string `xml:"enable"`
	} `xml:"PirAlarm"`
}

// BatteryInfo is the decoded payload shape for msg id 252.
type BatteryInfo struct {
	XMLName     xml.Name `xml:"body"`
	BatteryInfo struct {
		ChannelID    string `xml:"channelId"`
		BatteryPercent string `xml:"batteryPercent"`
		BatteryVersion string `xml:"batteryVersion"`
	} `xml:"BatteryInfo"`
}

// NewLEDStateRequest builds the msg id 192 (SetLedStatus) body.
func NewLEDStateRequest(channel int, on bool) ([]byte, error) {
	var req LEDStatus
	req.LedState.ChannelID = itoa(uint32(channel))
	req.LedState.State = boolState(on)
	b, err := xml.Marshal(req)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// IRLights is the payload shape for msg ids 216/217 (get/set IR lights).
type IRLights struct {
	XMLName  xml.Name `xml:"body"`
	IrLights struct {
		ChannelID string `xml:"channelId"`
		State     string `xml:"state"` // "auto", "open", "close"
	} `xml:"IrLights"`
}

// NewIRLightsRequest builds the msg id 217 (SetIrLights) body.
func NewIRLightsRequest(channel int, state string) ([]byte, error) {
	var req IRLights
	req.IrLights.ChannelID = itoa(uint32(channel))
	req.IrLights.State = state
	b, err := xml.Marshal(req)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// NewPirAlarmRequest builds the msg id 201 (SetPirAlarm) body.
func NewPirAlarmRequest(channel int, on bool) ([]byte, error) {
	var req PirAlarm
	req.PirAlarm.ChannelID = itoa(uint32(channel))
	req.PirAlarm.Enable = boolState01(on)
	b, err := xml.Marshal(req)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// PtzControl is the payload shape for msg id 18 (PtzControl): a directed
// move at a given speed, or "Stop" to halt.
type PtzControl struct {
	XMLName    xml.Name `xml:"body"`
	PtzControl struct {
		ChannelID string `xml:"channelId"`
		Command   string `xml:"command"`
		Speed     string `xml:"speed,omitempty"`
	} `xml:"PtzControl"`
}

// NewPTZControlRequest builds the msg id 18 body for a directional move
// ("Left", "Right", "Up", "Down", "LeftUp", ... or "Stop") at speed.
func NewPTZControlRequest(channel int, command string, speed int) ([]byte, error) {
	var req PtzControl
	req.PtzControl.ChannelID = itoa(uint32(channel))
	req.PtzControl.Command = command
	if command != "Stop" {
		req.PtzControl.Speed = itoa(uint32(speed))
	}
	b, err := xml.Marshal(req)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// PtzControlPreset is the payload shape for msg id 19 (PtzControlPreset):
// goto a stored preset position.
type PtzControlPreset struct {
	XMLName    xml.Name `xml:"body"`
	PtzControl struct {
		ChannelID string `xml:"channelId"`
		Command   string `xml:"command"`
		PresetID  string `xml:"presetId"`
	} `xml:"PtzControl"`
}

// NewPTZPresetGotoRequest builds the msg id 19 body to move to preset id.
func NewPTZPresetGotoRequest(channel, presetID int) ([]byte, error) {
	var req PtzControlPreset
	req.PtzControl.ChannelID = itoa(uint32(channel))
	req.PtzControl.Command = "ToPos"
	req.PtzControl.PresetID = itoa(uint32(presetID))
	b, err := xml.Marshal(req)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// PtzPreset is the payload shape for msg id 132 (GetPtzPreset).
type PtzPreset struct {
	XMLName   xml.Name `xml:"body"`
	PtzPreset struct {
		ChannelID string `xml:"channelId"`
		PresetList struct {
			Preset []struct {
				ID   string `xml:"id"`
				Name string `xml:"name"`
			} `xml:"preset"`
		} `xml:"PresetList"`
	} `xml:"PtzPreset"`
}

// PtzPresetAssign is the payload shape for msg id 133 (PtzPresetAssign):
// save the current position under id/name.
type PtzPresetAssign struct {
	XMLName   xml.Name `xml:"body"`
	PtzPreset struct {
		ChannelID string `xml:"channelId"`
		ID        string `xml:"id"`
		Name      string `xml:"name"`
	} `xml:"PtzPreset"`
}

// NewPTZPresetAssignRequest builds the msg id 133 body saving the
// camera's current position as preset id/name.
func NewPTZPresetAssignRequest(channel, id int, name string) ([]byte, error) {
	var req PtzPresetAssign
	req.PtzPreset.ChannelID = itoa(uint32(channel))
	req.PtzPreset.ID = itoa(uint32(id))
	req.PtzPreset.Name = name
	b, err := xml.Marshal(req)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// ZoomFocus is the payload shape for msg ids 294/295 (get/set zoom/focus).
type ZoomFocus struct {
	XMLName   xml.Name `xml:"body"`
	ZoomFocus struct {
		ChannelID string `xml:"channelId"`
		ZoomPos   string `xml:"zoomPos,omitempty"`
		FocusPos  string `xml:"focusPos,omitempty"`
	} `xml:"ZoomFocus"`
}

// NewZoomRequest builds the msg id 295 (SetZoomFocus) body; zoomPos is
// written unchanged as the absolute zoom position.
func NewZoomRequest(channel int, zoomPos int) ([]byte, error) {
	var req ZoomFocus
	req.ZoomFocus.ChannelID = itoa(uint32(channel))
	req.ZoomFocus.ZoomPos = itoa(uint32(zoomPos))
	b, err := xml.Marshal(req)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// NewRebootRequest builds the msg id 23 (Reboot) body, carrying only the
// target channel id.
func NewRebootRequest(channel int) ([]byte, error) {
	type rebootReq struct {
		XMLName xml.Name `xml:"body"`
		Reboot  struct {
			ChannelID string `xml:"channelId"`
		} `xml:"Reboot"`
	}
	var req rebootReq
	req.Reboot.ChannelID = itoa(uint32(channel))
	b, err := xml.Marshal(req)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// FloodlightManual is the payload shape for msg id 268/288 (manual
// floodlight control).
type FloodlightManual struct {
	XMLName          xml.Name `xml:"body"`
	FloodlightManual struct {
		ChannelID string `xml:"channelId"`
		Status    string `xml:"status"`
		Duration  string `xml:"duration,omitempty"`
	} `xml:"FloodlightManual"`
}

// NewFloodlightManualRequest builds the msg id 268 body to force the
// floodlight on or off.
func NewFloodlightManualRequest(channel int, on bool) ([]byte, error) {
	var req FloodlightManual
	req.FloodlightManual.ChannelID = itoa(uint32(channel))
	req.FloodlightManual.Status = boolState01(on)
	b, err := xml.Marshal(req)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// FloodlightTask is the payload shape for msg id 438 (scheduled
// floodlight-on-motion task toggle).
type FloodlightTask struct {
	XMLName         xml.Name `xml:"body"`
	FloodlightTask struct {
		ChannelID string `xml:"channelId"`
		Enable    string `xml:"enable"`
	} `xml:"FloodlightTask"`
}

// NewFloodlightTasksRequest builds the msg id 438 body toggling the
// motion-triggered floodlight schedule.
func NewFloodlightTasksRequest(channel int, on bool) ([]byte, error) {
	var req FloodlightTask
	req.FloodlightTask.ChannelID = itoa(uint32(channel))
	req.FloodlightTask.Enable = boolState01(on)
	b, err := xml.Marshal(req)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// NewSirenRequest builds the msg id 219 (SirenAlarm) body, sounding the
// camera's siren for duration seconds.
func NewSirenRequest(channel, duration int) ([]byte, error) {
	type sirenReq struct {
		XMLName    xml.Name `xml:"body"`
		SirenAlarm struct {
			ChannelID string `xml:"channelId"`
			Status    string `xml:"status"`
			Duration  string `xml:"duration"`
		} `xml:"SirenAlarm"`
	}
	var req sirenReq
	req.SirenAlarm.ChannelID = itoa(uint32(channel))
	req.SirenAlarm.Status = "1"
	req.SirenAlarm.Duration = itoa(uint32(duration))
	b, err := xml.Marshal(req)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// NewWakeupRequest builds the msg id 282 (Wakeup) body, requesting the
// camera stay awake for minutes. Its effect on cameras without
// idle-disconnect behavior is undefined; the request is sent
// regardless.
func NewWakeupRequest(channel, minutes int) ([]byte, error) {
	type wakeupReq struct {
		XMLName xml.Name `xml:"body"`
		Wakeup  struct {
			ChannelID string `xml:"channelId"`
			Minutes   string `xml:"minutes"`
		} `xml:"Wakeup"`
	}
	var req wakeupReq
	req.Wakeup.ChannelID = itoa(uint32(channel))
	req.Wakeup.Minutes = itoa(uint32(minutes))
	b, err := xml.Marshal(req)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

func boolState(on bool) string {
	if on {
		return "open"
	}
	return "close"
}

func boolState01(on bool) string {
	if on {
		return "1"
	}
	return "0"
}

// AlarmEvent is the notification payload shape for msg id 31 (motion).
type AlarmEvent struct {
	XMLName xml.Name `xml:"body"`
	AlarmEventList struct {
		AlarmEvent []struct {
			ChannelID string `xml:"channelId"`
			Status    string `xml:"status"`
		} `xml:"AlarmEvent"`
	} `xml:"AlarmEventList"`
}
