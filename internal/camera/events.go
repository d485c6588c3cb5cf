package camera

import "github.com/neolink-go/neolink/pkg/baichuan"

// EventKind tags which variant an Event carries.
type EventKind int

const (
	EventMotionStart EventKind = iota
	EventMotionStop
	EventBatteryUpdate
	EventPreviewJpeg
	EventFloodlightChanged
	EventDisconnect
	EventReconnect
)

// Event is a single typed item from a camera's events() sequence.
type Event struct {
	Kind            EventKind
	BatteryPercent  int
	BatteryVoltage  int
	PreviewJpeg     []byte
	FloodlightOn    bool
	Err             error // set on EventDisconnect
}

const eventQueueSize = 32

// eventHub fans Events out to any number of listeners, dropping the
// oldest queued event for a slow listener rather than blocking the
// actor loop — events are a best-effort telemetry stream, not a
// command/response channel.
type eventHub struct {
	listeners map[chan Event]struct{}
}

func newEventHub() *eventHub {
	return &eventHub{listeners: make(map[chan Event]struct{})}
}

func (h *eventHub) subscribe() <-chan Event {
	ch := make(chan Event, eventQueueSize)
	h.listeners[ch] = struct{}{}
	return ch
}

func (h *eventHub) unsubscribe(ch <-chan Event) {
	for c := range h.listeners {
		if c == ch {
			delete(h.listeners, c)
			close(c)
			return
		}
	}
}

func (h *eventHub) publish(ev Event) {
	for ch := range h.listeners {
		select {
		case ch <- ev:
		default:
			// drop the oldest queued event to make room, then retry once
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// translateNotification maps a raw BC notification to a typed Event, or
// reports ok=false for ids the supervisor doesn't surface as events
// (e.g. Net3g4gInfo, treated as a keep-alive).
func translateNotification(n baichuan.Message) (Event, bool) {
	switch n.Header.MessageID {
	case baichuan.MsgMotionAlarm:
		var alarm baichuan.AlarmEvent
		if err := decodeXML(n.Payload, &alarm); err != nil || len(alarm.AlarmEventList.AlarmEvent) == 0 {
			return Event{}, false
		}
		if alarm.AlarmEventList.AlarmEvent[0].Status == "MD" {
			return Event{Kind: EventMotionStart}, true
		}
		return Event{Kind: EventMotionStop}, true

	case baichuan.MsgBatteryInfo:
		var info baichuan.BatteryInfo
		if err := decodeXML(n.Payload, &info); err != nil {
			return Event{}, false
		}
		return Event{Kind: EventBatteryUpdate, BatteryPercent: atoiOr(info.BatteryInfo.BatteryPercent, 0)}, true

	case baichuan.MsgFloodlightStatus, baichuan.MsgFloodlightStatus2:
		return Event{Kind: EventFloodlightChanged}, true

	default:
		return Event{}, false
	}
}
