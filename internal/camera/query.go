package camera

import (
	"context"
	"fmt"

	"github.com/neolink-go/neolink/pkg/baichuan"
	"github.com/neolink-go/neolink/pkg/bcsession"
)

// QueryKind tags which read-only query a caller is issuing.
type QueryKind int

const (
	QueryBattery QueryKind = iota
	QueryPir
	QueryPtzPresets
	QueryPreview
	QueryFloodlightStatus
)

// QueryResult holds whichever fields the requested QueryKind populates.
type QueryResult struct {
	BatteryPercent int
	PirEnabled     bool
	Presets        []PtzPresetEntry
	PreviewActive  bool
	FloodlightOn   bool
}

// PtzPresetEntry is one stored preset position.
type PtzPresetEntry struct {
	ID   int
	Name string
}

// runQuery sends the request for kind over sess, deserializing the
// camera's response. previewActive is the supervisor's own bookkeeping,
// since QueryPreview has no dedicated message id to round-trip.
func runQuery(ctx context.Context, sess *bcsession.Session, channel int, kind QueryKind, previewActive bool) (QueryResult, error) {
	switch kind {
	case QueryBattery:
		msg, err := sess.Request(ctx, baichuan.MsgBatteryInfo, nil, nil)
		if err != nil {
			return QueryResult{}, err
		}
		var info baichuan.BatteryInfo
		if err := decodeXML(msg.Payload, &info); err != nil {
			return QueryResult{}, fmt.Errorf("camera: decode battery info: %w", err)
		}
		return QueryResult{BatteryPercent: atoiOr(info.BatteryInfo.BatteryPercent, 0)}, nil

	case QueryPir:
		msg, err := sess.Request(ctx, baichuan.MsgGetPIRAlarm, nil, nil)
		if err != nil {
			return QueryResult{}, err
		}
		var pir baichuan.PirAlarm
		if err := decodeXML(msg.Payload, &pir); err != nil {
			return QueryResult{}, fmt.Errorf("camera: decode pir alarm: %w", err)
		}
		return QueryResult{PirEnabled: pir.PirAlarm.Enable == "1"}, nil

	case QueryPtzPresets:
		msg, err := sess.Request(ctx, baichuan.MsgGetPTZPreset, nil, nil)
		if err != nil {
			return QueryResult{}, err
		}
		var presets baichuan.PtzPreset
		if err := decodeXML(msg.Payload, &presets); err != nil {
			return QueryResult{}, fmt.Errorf("camera: decode ptz presets: %w", err)
		}
		out := make([]PtzPresetEntry, 0, len(presets.PtzPreset.PresetList.Preset))
		for _, p := range presets.PtzPreset.PresetList.Preset {
			out = append(out, PtzPresetEntry{ID: atoiOr(p.ID, 0), Name: p.Name})
		}
		return QueryResult{Presets: out}, nil

	case QueryPreview:
		return QueryResult{PreviewActive: previewActive}, nil

	case QueryFloodlightStatus:
		msg, err := sess.Request(ctx, baichuan.MsgFloodlightStatus, nil, nil)
		if err != nil {
			return QueryResult{}, err
		}
		var status struct {
			FloodlightStatus struct {
				Status string `xml:"status"`
			} `xml:"FloodlightStatus"`
		}
		if err := decodeXML(msg.Payload, &status); err != nil {
			return QueryResult{}, fmt.Errorf("camera: decode floodlight status: %w", err)
		}
		return QueryResult{FloodlightOn: status.FloodlightStatus.Status == "1"}, nil
	}
	return QueryResult{}, fmt.Errorf("camera: unknown query kind %d", kind)
}
