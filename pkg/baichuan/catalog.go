package baichuan

// Message-id catalog. Names follow the camera vendor's own terminology
// where known; ids with no settled name keep a descriptive label.
const (
	MsgLogin             uint32 = 1
	MsgLogout            uint32 = 2
	MsgVideo             uint32 = 3
	MsgVideoStop         uint32 = 4
	MsgTalkAbility       uint32 = 10
	MsgPTZControl        uint32 = 18
	MsgPTZControlPreset  uint32 = 19
	MsgReboot            uint32 = 23
	MsgMotionRequest     uint32 = 25
	MsgMotionRequest2    uint32 = 26
	MsgMotionAlarm       uint32 = 31
	MsgPTZZoomFocus      uint32 = 33
	MsgSetServicePorts   uint32 = 42
	MsgGetServicePorts   uint32 = 43
	MsgFloodlightManual2 uint32 = 44
	MsgFloodlightStatus2 uint32 = 45
	MsgGetAbilitySupport uint32 = 58
	MsgVersion           uint32 = 76
	MsgUID               uint32 = 77
	MsgPing              uint32 = 80
	MsgGetGeneral        uint32 = 93
	MsgSetGeneral        uint32 = 102
	MsgSnap              uint32 = 104
	MsgNet3g4gInfo       uint32 = 106
	MsgPushInfo          uint32 = 109
	MsgTestEmail         uint32 = 115
	MsgStreamInfoList    uint32 = 116
	MsgAbilityInfo       uint32 = 124
	MsgGetPTZPreset      uint32 = 132
	MsgPTZPresetAssign   uint32 = 133
	MsgGetSupport        uint32 = 141
	MsgTalkConfig        uint32 = 146
	MsgTalk              uint32 = 151
	MsgGetLEDStatus      uint32 = 190
	MsgSetLEDStatus      uint32 = 192
	MsgGetPIRAlarm       uint32 = 199
	MsgSetPIRAlarm       uint32 = 201
	MsgSetEmailTask      uint32 = 202
	MsgGetEmailTask      uint32 = 208
	MsgUDPKeepAlive      uint32 = 209
	MsgGetIRLights       uint32 = 216
	MsgSetIRLights       uint32 = 217
	MsgSirenAlarm        uint32 = 219
	MsgBatteryInfoList   uint32 = 232
	MsgBatteryInfo       uint32 = 252
	MsgBatteryCfg        uint32 = 255
	MsgPlayAudio         uint32 = 264
	MsgFloodlightManual  uint32 = 268
	MsgWakeup            uint32 = 282
	MsgFloodlightTasksW  uint32 = 287
	MsgFloodlightManualA uint32 = 288
	MsgFloodlightStatus  uint32 = 290
	MsgFloodlightTasksR  uint32 = 291
	MsgGetZoomFocus      uint32 = 294
	MsgSetZoomFocus      uint32 = 295
	MsgSirenCfg          uint32 = 299
	MsgFloodlightTasks   uint32 = 438
)

var catalogNames = map[uint32]string{
	MsgLogin:             "Login",
	MsgLogout:            "Logout",
	MsgVideo:             "Preview",
	MsgVideoStop:         "PreviewStop",
	MsgTalkAbility:       "TalkAbility",
	MsgPTZControl:        "PtzControl",
	MsgPTZControlPreset:  "PtzControlPreset",
	MsgReboot:            "Reboot",
	MsgMotionRequest:     "MotionRequest",
	MsgMotionRequest2:    "MotionRequest2",
	MsgMotionAlarm:       "Alarm",
	MsgPTZZoomFocus:      "PtzZoomFocus",
	MsgSetServicePorts:   "SetServicePorts",
	MsgGetServicePorts:   "GetServicePorts",
	MsgFloodlightManual2: "FloodlightManual2",
	MsgFloodlightStatus2: "FloodlightStatus2",
	MsgGetAbilitySupport: "GetAbilitySupport",
	MsgVersion:           "Version",
	MsgUID:               "UID",
	MsgPing:              "Ping",
	MsgGetGeneral:        "GetGeneral",
	MsgSetGeneral:        "SetGeneral",
	MsgSnap:              "Snap",
	MsgNet3g4gInfo:       "Net3g4gInfo",
	MsgPushInfo:          "PushInfo",
	MsgTestEmail:         "TestEmail",
	MsgStreamInfoList:    "StreamInfoList",
	MsgAbilityInfo:       "AbilityInfo",
	MsgGetPTZPreset:      "GetPtzPreset",
	MsgPTZPresetAssign:   "PtzPresetAssign",
	MsgGetSupport:        "GetSupport",
	MsgTalkConfig:        "TalkConfig",
	MsgTalk:              "Talk",
	MsgGetLEDStatus:      "GetLedStatus",
	MsgSetLEDStatus:      "SetLedStatus",
	MsgGetPIRAlarm:       "GetPirAlarm",
	MsgSetPIRAlarm:       "SetPirAlarm",
	MsgSetEmailTask:      "SetEmailTask",
	MsgGetEmailTask:      "GetEmailTask",
	MsgUDPKeepAlive:      "UdpKeepAlive",
	MsgGetIRLights:       "GetIrLights",
	MsgSetIRLights:       "SetIrLights",
	MsgSirenAlarm:        "SirenAlarm",
	MsgBatteryInfoList:   "BatteryInfoList",
	MsgBatteryInfo:       "BatteryInfo",
	MsgBatteryCfg:        "BatteryCfg",
	MsgPlayAudio:         "PlayAudio",
	MsgFloodlightManual:  "FloodlightManual",
	MsgWakeup:            "Wakeup",
	MsgFloodlightTasksW:  "FloodlightTasksWrite",
	MsgFloodlightManualA: "FloodlightManualA",
	MsgFloodlightStatus:  "FloodlightStatus",
	MsgFloodlightTasksR:  "FloodlightTasksRead",
	MsgGetZoomFocus:      "GetZoomFocus",
	MsgSetZoomFocus:      "SetZoomFocus",
	MsgSirenCfg:          "SirenCfg",
	MsgFloodlightTasks:   "FloodlightTasks",
}

// Name returns the catalog name for a message id, or "" if the id is
// unrecognized. Unrecognized ids are not rejected here; bcsession's
// reader discards notifications with such ids without logging them.
func Name(id uint32) string {
	return catalogNames[id]
}

// Known reports whether id appears in the catalog.
func Known(id uint32) bool {
	_, ok := catalogNames[id]
	return ok
}
