package bcmedia

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, sub *Subscriber, n int) []Frame {
	t.Helper()
	var got []Frame
	for i := 0; i < n; i++ {
		select {
		case f, ok := <-sub.Frames:
			if !ok {
				return got
			}
			got = append(got, f)
		default:
			sub.Flush()
			f, ok := <-sub.Frames
			if !ok {
				return got
			}
			got = append(got, f)
		}
	}
	return got
}

func TestSubscriberDropsUntilKeyframe(t *testing.T) {
	hub := NewHub(4)
	sub := NewSubscriber()
	hub.Subscribe(sub)

	hub.Publish(Frame{Kind: KindDeltaframe, Data: []byte{1}})
	hub.Publish(Frame{Kind: KindKeyframe, Data: []byte{2}})
	hub.Publish(Frame{Kind: KindDeltaframe, Data: []byte{3}})

	got := drain(t, sub, 2)
	require.Len(t, got, 2)
	assert.Equal(t, KindKeyframe, got[0].Kind)
	assert.Equal(t, KindDeltaframe, got[1].Kind)
}

func TestSubscriberNewSubscriberPrimedWithLastKeyframe(t *testing.T) {
	hub := NewHub(4)
	hub.Publish(Frame{Kind: KindKeyframe, Data: []byte{1}})

	sub := NewSubscriber()
	hub.Subscribe(sub)

	got := drain(t, sub, 1)
	require.Len(t, got, 1)
	assert.Equal(t, KindKeyframe, got[0].Kind)
}

func TestSubscriberDropsPFramesBeforeEvicting(t *testing.T) {
	hub := NewHub(2)
	sub := NewSubscriber()
	hub.Subscribe(sub)

	hub.Publish(Frame{Kind: KindKeyframe, Data: []byte{0}})
	hub.Publish(Frame{Kind: KindDeltaframe, Data: []byte{1}})
	hub.Publish(Frame{Kind: KindDeltaframe, Data: []byte{2}})
	hub.Publish(Frame{Kind: KindDeltaframe, Data: []byte{3}})

	select {
	case err := <-sub.Errors:
		t.Fatalf("unexpected slow-consumer error: %v", err)
	default:
	}

	got := drain(t, sub, 3)
	require.Len(t, got, 3)
	assert.Equal(t, KindKeyframe, got[0].Kind)
	assert.Equal(t, byte(2), got[1].Data[0])
	assert.Equal(t, byte(3), got[2].Data[0])
}

func TestSubscriberSlowConsumerDisconnects(t *testing.T) {
	hub := NewHub(1)
	sub := NewSubscriber()
	hub.Subscribe(sub)

	hub.Publish(Frame{Kind: KindKeyframe, Data: []byte{0}})
	hub.Publish(Frame{Kind: KindKeyframe, Data: []byte{1}})
	hub.Publish(Frame{Kind: KindKeyframe, Data: []byte{2}})

	select {
	case err := <-sub.Errors:
		assert.ErrorIs(t, err, ErrSlowConsumer)
	default:
		t.Fatal("expected ErrSlowConsumer")
	}

	_, ok := <-sub.Frames
	assert.False(t, ok)
}
