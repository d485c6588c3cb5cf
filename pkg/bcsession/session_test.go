package bcsession

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neolink-go/neolink/pkg/baichuan"
)

func TestSendRejectsWhenNotActive(t *testing.T) {
	client, _ := net.Pipe()
	defer client.Close()

	s := New(client, "user", "pw")
	err := s.Send(baichuan.MsgVideo, nil, nil)
	assert.ErrorIs(t, err, ErrTransportLost)
}

func TestSendWritesMessageWithoutWaiter(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	s := New(client, "user", "pw")
	s.setState(StateActive)

	done := make(chan baichuan.Message, 1)
	go func() {
		codec := baichuan.NewCodec(server, 1)
		msg, err := codec.Decode(baichuan.Keys{Mode: baichuan.ModeNone})
		require.NoError(t, err)
		done <- msg
	}()

	require.NoError(t, s.Send(baichuan.MsgVideo, nil, []byte("<body/>")))

	select {
	case msg := <-done:
		assert.Equal(t, baichuan.MsgVideo, msg.Header.MessageID)
		assert.Equal(t, []byte("<body/>"), msg.Payload)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for sent message")
	}

	assert.Empty(t, s.waiters, "Send must not register a reply waiter")
}

func TestDoneAndErrAfterFail(t *testing.T) {
	client, _ := net.Pipe()
	defer client.Close()

	s := New(client, "user", "pw")
	s.setState(StateActive)

	select {
	case <-s.Done():
		t.Fatal("Done must not be closed before any failure")
	default:
	}
	assert.NoError(t, s.Err())

	boom := assert.AnError
	s.fail(boom)

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("Done was not closed after fail")
	}
	assert.ErrorIs(t, s.Err(), boom)
	assert.Equal(t, StateFailed, s.State())
}

func TestFailIsIdempotent(t *testing.T) {
	client, _ := net.Pipe()
	defer client.Close()

	s := New(client, "user", "pw")
	s.setState(StateActive)

	s.fail(assert.AnError)
	assert.NotPanics(t, func() { s.fail(assert.AnError) })
}
