// Package bcsession implements the Baichuan session state machine: the
// login handshake, the per-request/response correlation table, and the
// notification fanout to subscribers, layered over any net.Conn-shaped
// transport (a direct TCP dial or a udprelay.Session).
package bcsession

import (
	"context"
	"encoding/xml"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/neolink-go/neolink/pkg/baichuan"
)

// State is a BC session's lifecycle stage.
type State int

const (
	StateConnected State = iota
	StateAuthenticating
	StateActive
	StateClosing
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateAuthenticating:
		return "authenticating"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

const (
	defaultRequestTimeout = 5 * time.Second
	pingInterval          = 10 * time.Second
	pingDeadline          = 30 * time.Second
	closingDrain          = 2 * time.Second
)

// Notification is a camera-initiated message with no matching waiter,
// dispatched to subscribers keyed by message id.
type Notification struct {
	MessageID uint32
	Extension []byte
	Payload   []byte
}

// DeviceInfo is the subset of the modern login response the supervisor
// cares about.
type DeviceInfo struct {
	FirmVersion string
	ChannelNum  string
}

type waiter struct {
	reply chan baichuan.Message
	err   chan error
}

// Session is an authenticated, in-order BC message channel.
type Session struct {
	conn  net.Conn
	codec *baichuan.Codec

	username, password string

	mu       sync.Mutex
	state    State
	keys     baichuan.Keys
	nonce    string
	nextNum  uint32
	waiters  map[waitKey]*waiter
	subs     map[uint32][]chan Notification
	closeErr error

	done chan struct{}
}

type waitKey struct {
	msgID uint32
	num   uint8
}

// New wraps conn as a BC session. The session starts in StateConnected;
// call Login to advance it.
func New(conn net.Conn, username, password string) *Session {
	return &Session{
		conn:     conn,
		codec:    baichuan.NewCodec(conn, 1),
		username: username,
		password: password,
		state:    StateConnected,
		waiters:  make(map[waitKey]*waiter),
		subs:     make(map[uint32][]chan Notification),
		done:     make(chan struct{}),
	}
}

// State returns the session's current lifecycle stage.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Login runs the legacy-then-modern handshake: the legacy exchange
// yields the nonce that seeds the AES key, and the modern exchange
// carries nonce-hashed credentials. On success the session enters
// StateActive and the reader loop starts.
func (s *Session) Login(ctx context.Context) (*DeviceInfo, error) {
	s.setState(StateConnected)

	legacyHeader := baichuan.Header{
		Magic:     baichuan.MagicLegacy,
		MessageID: baichuan.MsgLogin,
		Status:    0xDC12,
		Class:     baichuan.ClassLegacy20,
		EncOffset: baichuan.BuildEncOffset(0, 0, 1),
	}
	if err := s.codec.Encode(baichuan.Message{Header: legacyHeader}, baichuan.Keys{Mode: baichuan.ModeNone}); err != nil {
		return nil, fmt.Errorf("bcsession: send legacy login: %w", err)
	}

	legacyReply, err := s.codec.Decode(baichuan.Keys{Mode: baichuan.ModeNone})
	if err != nil {
		return nil, fmt.Errorf("bcsession: read legacy login reply: %w", err)
	}

	var legacy baichuan.LegacyLoginResponse
	decrypted := baichuan.XOR(legacyReply.Header.EncOffset, legacyReply.Payload)
	if err := decodeXML(decrypted, &legacy); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedDialect, err)
	}
	if legacy.Encryption.Nonce == "" {
		return nil, ErrUnsupportedDialect
	}

	s.mu.Lock()
	s.nonce = legacy.Encryption.Nonce
	s.keys = baichuan.Keys{Mode: baichuan.ModeAES, AESKey: baichuan.AESKey(s.nonce, s.password)}
	s.mu.Unlock()

	s.setState(StateAuthenticating)

	userHash := baichuan.HashCredential(s.username, s.nonce)
	passHash := baichuan.HashCredential(s.password, s.nonce)
	body, err := baichuan.NewModernLoginRequest(userHash, passHash)
	if err != nil {
		return nil, err
	}

	modernHeader := baichuan.Header{
		Magic:     baichuan.MagicLegacy,
		MessageID: baichuan.MsgLogin,
		Class:     baichuan.ClassModern24,
		EncOffset: baichuan.BuildEncOffset(0, 0, 1),
	}
	if err := s.codec.Encode(baichuan.Message{Header: modernHeader, Payload: body}, s.keys); err != nil {
		s.setState(StateFailed)
		return nil, fmt.Errorf("bcsession: send modern login: %w", err)
	}

	modernReply, err := s.codec.Decode(s.keys)
	if err != nil {
		s.setState(StateFailed)
		return nil, fmt.Errorf("bcsession: read modern login reply: %w", err)
	}
	if modernReply.Header.Status != 0x00c8 {
		s.setState(StateFailed)
		return nil, fmt.Errorf("%w: %w", ErrNotAuthorized, &RemoteStatusError{MessageID: baichuan.MsgLogin, Code: modernReply.Header.Status})
	}

	var res baichuan.ModernLoginResponse
	if err := decodeXML(modernReply.Payload, &res); err != nil {
		s.setState(StateFailed)
		return nil, fmt.Errorf("bcsession: parse login response: %w", err)
	}

	s.setState(StateActive)
	go s.readLoop()
	go s.pingLoop(context.Background())

	return &DeviceInfo{FirmVersion: res.DeviceInfo.FirmVersion, ChannelNum: res.DeviceInfo.ChannelNum}, nil
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Request sends a message and blocks for its matching reply, or until
// ctx is done or the default/override timeout elapses.
func (s *Session) Request(ctx context.Context, msgID uint32, extension, payload []byte) (baichuan.Message, error) {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return baichuan.Message{}, ErrTransportLost
	}
	num := uint8(s.nextNum)
	s.nextNum++
	key := waitKey{msgID: msgID, num: num}
	w := &waiter{reply: make(chan baichuan.Message, 1), err: make(chan error, 1)}
	s.waiters[key] = w
	keys := s.keys
	s.mu.Unlock()

	header := baichuan.Header{
		Magic:     baichuan.MagicLegacy,
		MessageID: msgID,
		Class:     baichuan.ClassModern24,
		EncOffset: baichuan.BuildEncOffset(0, 0, num),
	}

	if err := s.codec.Encode(baichuan.Message{Header: header, Extension: extension, Payload: payload}, keys); err != nil {
		s.removeWaiter(key)
		return baichuan.Message{}, fmt.Errorf("bcsession: send request: %w", err)
	}

	timeout := defaultRequestTimeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-w.reply:
		return msg, nil
	case err := <-w.err:
		return baichuan.Message{}, err
	case <-timer.C:
		s.removeWaiter(key)
		return baichuan.Message{}, ErrTimeout
	case <-ctx.Done():
		s.removeWaiter(key)
		return baichuan.Message{}, ctx.Err()
	case <-s.done:
		return baichuan.Message{}, ErrTransportLost
	}
}

// Send writes a message without registering a reply waiter, for message
// ids whose "reply" is not a single matched response — Preview (3) and
// PreviewStop (4), whose camera-side acknowledgement is simply the
// arrival (or cessation) of msgID notifications on the stream itself.
func (s *Session) Send(msgID uint32, extension, payload []byte) error {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return ErrTransportLost
	}
	num := uint8(s.nextNum)
	s.nextNum++
	keys := s.keys
	s.mu.Unlock()

	header := baichuan.Header{
		Magic:     baichuan.MagicLegacy,
		MessageID: msgID,
		Class:     baichuan.ClassModern24,
		EncOffset: baichuan.BuildEncOffset(0, 0, num),
	}
	if err := s.codec.Encode(baichuan.Message{Header: header, Extension: extension, Payload: payload}, keys); err != nil {
		return fmt.Errorf("bcsession: send: %w", err)
	}
	return nil
}

// Done returns a channel closed once the session has failed or been
// closed, for callers that need to detect transport loss without
// issuing a request.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that caused the session to fail, or nil if it
// is still active or was closed cleanly.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeErr
}

func (s *Session) removeWaiter(key waitKey) {
	s.mu.Lock()
	delete(s.waiters, key)
	s.mu.Unlock()
}

// Subscribe returns a channel of notifications for msgID. The channel
// is unsubscribed when ctx is done.
func (s *Session) Subscribe(ctx context.Context, msgID uint32) <-chan Notification {
	ch := make(chan Notification, 32)
	s.mu.Lock()
	s.subs[msgID] = append(s.subs[msgID], ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		subs := s.subs[msgID]
		for i, c := range subs {
			if c == ch {
				s.subs[msgID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	}()

	return ch
}

// readLoop is the sole decoder: it dispatches each decoded message to
// either its waiter or, if unmatched, to msgID subscribers, strictly in
// received order.
func (s *Session) readLoop() {
	for {
		s.mu.Lock()
		keys := s.keys
		s.mu.Unlock()

		msg, err := s.codec.Decode(keys)
		if err != nil {
			s.fail(err)
			return
		}

		_, _, num := baichuan.ParseEncOffset(msg.Header.EncOffset)
		key := waitKey{msgID: msg.Header.MessageID, num: num}

		s.mu.Lock()
		w, matched := s.waiters[key]
		if matched {
			delete(s.waiters, key)
		}
		subs := append([]chan Notification(nil), s.subs[msg.Header.MessageID]...)
		s.mu.Unlock()

		if matched {
			if msg.Header.Status != 0 && msg.Header.Status != 0x00c8 {
				w.err <- &RemoteStatusError{MessageID: msg.Header.MessageID, Code: msg.Header.Status}
			} else {
				w.reply <- msg
			}
			continue
		}

		if !baichuan.Known(msg.Header.MessageID) {
			continue
		}

		note := Notification{MessageID: msg.Header.MessageID, Extension: msg.Extension, Payload: msg.Payload}
		for _, ch := range subs {
			select {
			case ch <- note:
			default: // slow subscriber: drop rather than stall the reader
			}
		}
	}
}

// pingLoop sends a lightweight keep-alive every pingInterval while
// Active; failing to get any reply within pingDeadline fails the
// session.
func (s *Session) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.State() != StateActive {
				return
			}
			reqCtx, cancel := context.WithTimeout(ctx, pingDeadline)
			_, err := s.Request(reqCtx, baichuan.MsgPing, nil, nil)
			cancel()
			if err != nil {
				s.fail(fmt.Errorf("bcsession: ping: %w", err))
				return
			}
		}
	}
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	if s.state == StateClosed || s.state == StateFailed {
		s.mu.Unlock()
		return
	}
	s.state = StateFailed
	s.closeErr = err
	waiters := s.waiters
	s.waiters = make(map[waitKey]*waiter)
	s.mu.Unlock()

	for _, w := range waiters {
		w.err <- ErrTransportLost
	}

	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

// Close drains pending replies with a brief grace period, then closes
// the transport. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = StateClosing
	waiters := s.waiters
	s.mu.Unlock()

	if len(waiters) > 0 {
		time.Sleep(closingDrain)
	}

	s.mu.Lock()
	for _, w := range s.waiters {
		w.err <- ErrCancelled
	}
	s.waiters = make(map[waitKey]*waiter)
	s.state = StateClosed
	s.mu.Unlock()

	select {
	case <-s.done:
	default:
		close(s.done)
	}

	return s.conn.Close()
}

func decodeXML(b []byte, v any) error {
	return xml.Unmarshal(b, v)
}
