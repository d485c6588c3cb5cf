package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neolink-go/neolink/pkg/baichuan"
)

func TestTranslateNotificationMotionStart(t *testing.T) {
	n := baichuan.Message{
		Header:  baichuan.Header{MessageID: baichuan.MsgMotionAlarm},
		Payload: []byte(`<?xml version="1.0"?><body><AlarmEventList><AlarmEvent><channelId>0</channelId><status>MD</status></AlarmEvent></AlarmEventList></body>`),
	}
	ev, ok := translateNotification(n)
	require.True(t, ok)
	assert.Equal(t, EventMotionStart, ev.Kind)
}

func TestTranslateNotificationMotionStop(t *testing.T) {
	n := baichuan.Message{
		Header:  baichuan.Header{MessageID: baichuan.MsgMotionAlarm},
		Payload: []byte(`<?xml version="1.0"?><body><AlarmEventList><AlarmEvent><channelId>0</channelId><status>none</status></AlarmEvent></AlarmEventList></body>`),
	}
	ev, ok := translateNotification(n)
	require.True(t, ok)
	assert.Equal(t, EventMotionStop, ev.Kind)
}

func TestTranslateNotificationBattery(t *testing.T) {
	n := baichuan.Message{
		Header:  baichuan.Header{MessageID: baichuan.MsgBatteryInfo},
		Payload: []byte(`<?xml version="1.0"?><body><BatteryInfo><channelId>0</channelId><batteryPercent>73</batteryPercent></BatteryInfo></body>`),
	}
	ev, ok := translateNotification(n)
	require.True(t, ok)
	assert.Equal(t, EventBatteryUpdate, ev.Kind)
	assert.Equal(t, 73, ev.BatteryPercent)
}

func TestTranslateNotificationUnknownID(t *testing.T) {
	n := baichuan.Message{Header: baichuan.Header{MessageID: baichuan.MsgNet3g4gInfo}}
	_, ok := translateNotification(n)
	assert.False(t, ok)
}

func TestEventHubDropsOldestForSlowListener(t *testing.T) {
	h := newEventHub()
	ch := h.subscribe()

	for i := 0; i < eventQueueSize+5; i++ {
		h.publish(Event{Kind: EventMotionStart})
	}

	assert.Len(t, ch, eventQueueSize, "listener queue caps at its buffer size rather than blocking the publisher")
}

func TestEventHubUnsubscribeClosesChannel(t *testing.T) {
	h := newEventHub()
	ch := h.subscribe()
	h.unsubscribe(ch)

	_, ok := <-ch
	assert.False(t, ok)
}
