package camera

import (
	"context"
	"time"

	"github.com/neolink-go/neolink/pkg/baichuan"
	"github.com/neolink-go/neolink/pkg/bcsession"
)

// Snapshot requests a single JPEG still from the camera's Snap endpoint
// (message id 104), independent of any running Preview subscription.
// Grounded on the message-id catalog's MsgSnap entry; no pack source
// documents a request body beyond the bare channel addressing every
// other query already carries, so none is sent.
func (s *Supervisor) Snapshot(ctx context.Context) ([]byte, error) {
	var sess *bcsession.Session
	if err := s.call(ctx, func() {
		s.lastActivity = time.Now()
		s.ensureConnecting()
		sess = s.session
	}); err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotConnected
	}
	msg, err := sess.Request(ctx, baichuan.MsgSnap, nil, nil)
	if err != nil {
		return nil, err
	}
	return msg.Payload, nil
}

// SendTalkAudio uploads one chunk of pre-encoded talk audio (message id
// 151). No pack source documents an acknowledgement shape for outbound
// audio, so this follows the same fire-and-forget convention as Preview
// start/stop — the closest pack-grounded analog for a continuous,
// camera-bound media push.
func (s *Supervisor) SendTalkAudio(ctx context.Context, chunk []byte) error {
	var sess *bcsession.Session
	if err := s.call(ctx, func() {
		s.lastActivity = time.Now()
		s.ensureConnecting()
		sess = s.session
	}); err != nil {
		return err
	}
	if sess == nil {
		return ErrNotConnected
	}
	return sess.Send(baichuan.MsgTalk, nil, chunk)
}
