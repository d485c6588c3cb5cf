// Package camera implements the per-camera supervisor: an actor that
// owns a camera's BC session end to end, multiplexes its Preview media
// to any number of stream subscribers, applies the pause policy, and
// exposes control/query/events operations while automatically
// reconnecting on failure.
//
// One task owns all mutable state for a camera, driven by a command
// channel plus notification forwarders, never a shared mutex.
package camera

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/neolink-go/neolink/internal/config"
	"github.com/neolink-go/neolink/pkg/baichuan"
	"github.com/neolink-go/neolink/pkg/bcmedia"
	"github.com/neolink-go/neolink/pkg/bcsession"
	"github.com/neolink-go/neolink/pkg/core"
	"github.com/neolink-go/neolink/pkg/discovery"
)

// State is the supervisor's own lifecycle stage, distinct from the BC
// session's State: it additionally tracks discovery and back-off.
type State int

const (
	StateDiscovering State = iota
	StateConnecting
	StateActive
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDiscovering:
		return "discovering"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// ErrClosed is returned by any operation issued after Shutdown.
var ErrClosed = errors.New("camera: supervisor closed")

// ErrNotConnected is returned by Control/Query while no session is
// active.
var ErrNotConnected = errors.New("camera: not connected")

const (
	minBackoff        = 1 * time.Second
	maxBackoff        = 60 * time.Second
	idleCheckPeriod   = 5 * time.Second
	pauseCheckPeriod  = 250 * time.Millisecond
	idleTimeout       = 30 * time.Second
	loginTimeout      = 10 * time.Second
	discoveryTimeout  = 10 * time.Second
	requestTimeout    = 5 * time.Second
)

// Supervisor is a single camera's actor. All mutable fields below this
// comment are owned exclusively by the goroutine running Run; every
// other method communicates with it by enqueuing a closure on cmds or,
// for blocking network calls, by first snapshotting the current session
// through cmds and then calling it directly (bcsession.Session itself
// is safe for concurrent use).
type Supervisor struct {
	name string
	cfg  *config.Camera
	log  zerolog.Logger

	cmds chan func()
	done chan struct{}

	events *eventHub
	pause  *pausePolicy

	state   State
	session *bcsession.Session
	channel int

	subs map[uuid.UUID]*bcmedia.Subscriber
	hub  *bcmedia.Hub
	demux bcmedia.Demuxer

	previewActive   bool
	previewStarting bool

	lastActivity time.Time
	backoff      time.Duration

	genCancel context.CancelFunc

	videoCh chan bcsession.Notification
	noteCh  chan bcsession.Notification
	failCh  chan *bcsession.Session

	idleWorker  *core.Worker
	pauseWorker *core.Worker

	stop   context.CancelFunc
	runCtx context.Context
}

// New builds a Supervisor for cfg. Call Run in its own goroutine to
// start it, and Shutdown to tear it down.
func New(name string, cfg *config.Camera, log zerolog.Logger) *Supervisor {
	s := &Supervisor{
		name:         name,
		cfg:          cfg,
		log:          log.With().Str("camera", name).Logger(),
		cmds:         make(chan func()),
		done:         make(chan struct{}),
		events:       newEventHub(),
		pause:        newPausePolicy(cfg.Pause.OnMotion, cfg.Pause.OnClient, cfg.Pause.Timeout),
		state:        StateDiscovering,
		subs:         make(map[uuid.UUID]*bcmedia.Subscriber),
		hub:          bcmedia.NewHub(0),
		lastActivity: time.Now(),
		backoff:      minBackoff,
		videoCh:      make(chan bcsession.Notification, 4),
		noteCh:       make(chan bcsession.Notification, 16),
		failCh:       make(chan *bcsession.Session, 1),
	}
	return s
}

// Run is the actor's main loop; it blocks until ctx is cancelled or
// Shutdown is called.
func (s *Supervisor) Run(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.stop = cancel
	s.runCtx = runCtx
	defer close(s.done)

	s.idleWorker = core.NewWorker(idleCheckPeriod, func() time.Duration {
		s.enqueue(s.checkIdle)
		return idleCheckPeriod
	})
	s.pauseWorker = core.NewWorker(pauseCheckPeriod, func() time.Duration {
		s.enqueue(s.checkPause)
		return pauseCheckPeriod
	})
	defer s.idleWorker.Stop()
	defer s.pauseWorker.Stop()

	s.connect(runCtx)

	for {
		select {
		case <-runCtx.Done():
			s.teardown()
			return
		case fn := <-s.cmds:
			fn()
		case note := <-s.videoCh:
			s.handleVideo(note)
		case note := <-s.noteCh:
			s.handleNotification(note)
		case sess := <-s.failCh:
			s.onSessionFailed(runCtx, sess)
		}
	}
}

// enqueue posts fn to the actor loop, dropping it silently if the
// supervisor has already shut down — callers that need to know the
// outcome use call instead.
func (s *Supervisor) enqueue(fn func()) {
	select {
	case s.cmds <- fn:
	case <-s.done:
	}
}

// call posts fn to the actor loop and blocks until it has run.
func (s *Supervisor) call(ctx context.Context, fn func()) error {
	rdone := make(chan struct{})
	wrapped := func() { fn(); close(rdone) }
	select {
	case s.cmds <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrClosed
	}
	select {
	case <-rdone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrClosed
	}
}

// connect runs discovery and login, asynchronously so the actor loop
// keeps servicing commands while the network round-trips happen; on
// completion it reports back to the actor loop via failCh's sibling
// path (onConnected runs as an enqueued closure).
func (s *Supervisor) connect(ctx context.Context) {
	s.state = StateConnecting
	cfg := s.cfg

	go func() {
		dctx, cancel := context.WithTimeout(ctx, discoveryTimeout)
		binding, err := discovery.Resolve(dctx, discovery.Target{
			UID:      cfg.UID,
			Address:  cfg.Address,
			Strategy: discovery.Strategy(cfg.Discovery),
		})
		cancel()
		if err != nil {
			s.enqueue(func() { s.onConnectFailed(ctx, fmt.Errorf("discover: %w", err)) })
			return
		}

		sess := bcsession.New(binding.Session, cfg.Username, cfg.Password)
		lctx, lcancel := context.WithTimeout(ctx, loginTimeout)
		info, err := sess.Login(lctx)
		lcancel()
		if err != nil {
			sess.Close()
			s.enqueue(func() { s.onConnectFailed(ctx, fmt.Errorf("login: %w", err)) })
			return
		}

		s.enqueue(func() { s.onConnected(ctx, sess, info) })
	}()
}

func (s *Supervisor) onConnectFailed(ctx context.Context, err error) {
	s.log.Warn().Err(err).Msg("connect failed")
	s.state = StateReconnecting
	s.scheduleReconnect(ctx)
}

func (s *Supervisor) onConnected(ctx context.Context, sess *bcsession.Session, info *bcsession.DeviceInfo) {
	s.log.Info().Str("firmware", info.FirmVersion).Msg("connected")
	s.session = sess
	s.channel = 0
	s.state = StateActive
	s.backoff = minBackoff
	s.lastActivity = time.Now()

	genCtx, cancel := context.WithCancel(ctx)
	s.genCancel = cancel

	go s.forward(genCtx, sess.Subscribe(genCtx, baichuan.MsgVideo), s.videoCh)
	for _, id := range []uint32{baichuan.MsgMotionAlarm, baichuan.MsgBatteryInfo, baichuan.MsgFloodlightStatus, baichuan.MsgFloodlightStatus2} {
		go s.forward(genCtx, sess.Subscribe(genCtx, id), s.noteCh)
	}
	go s.watchFailure(genCtx, sess)

	s.events.publish(Event{Kind: EventReconnect})
	if s.pause.wantActive() {
		s.startPreviewAsync()
	}
}

// forward relays notifications from in to the supervisor's long-lived
// out channel, stopping when ctx is cancelled (session torn down) or in
// is closed (ctx cancellation unsubscribed it).
func (s *Supervisor) forward(ctx context.Context, in <-chan bcsession.Notification, out chan bcsession.Notification) {
	for {
		select {
		case n, ok := <-in:
			if !ok {
				return
			}
			select {
			case out <- n:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Supervisor) watchFailure(ctx context.Context, sess *bcsession.Session) {
	select {
	case <-sess.Done():
		select {
		case s.failCh <- sess:
		case <-ctx.Done():
		}
	case <-ctx.Done():
	}
}

func (s *Supervisor) onSessionFailed(ctx context.Context, sess *bcsession.Session) {
	if s.session != sess {
		return // stale report from a superseded generation
	}
	s.log.Warn().Err(sess.Err()).Msg("session failed")
	s.session = nil
	s.previewActive = false
	s.previewStarting = false
	if s.genCancel != nil {
		s.genCancel()
	}
	s.state = StateReconnecting
	s.events.publish(Event{Kind: EventDisconnect, Err: sess.Err()})
	s.scheduleReconnect(ctx)
}

func (s *Supervisor) scheduleReconnect(ctx context.Context) {
	backoff := s.backoff
	s.backoff *= 2
	if s.backoff > maxBackoff {
		s.backoff = maxBackoff
	}
	time.AfterFunc(backoff, func() { s.enqueue(func() { s.connect(ctx) }) })
}

func (s *Supervisor) handleVideo(n bcsession.Notification) {
	s.lastActivity = time.Now()
	ext, err := baichuan.DecodeExtension(n.Extension)
	binaryData := err == nil && ext != nil && ext.BinaryData != 0
	if err := s.demux.Feed(n.Payload, binaryData, s.hub.Publish); err != nil {
		s.log.Debug().Err(err).Msg("media desync")
	}
}

func (s *Supervisor) handleNotification(n bcsession.Notification) {
	ev, ok := translateNotification(baichuan.Message{
		Header:  baichuan.Header{MessageID: n.MessageID},
		Payload: n.Payload,
	})
	if !ok {
		return
	}
	if ev.Kind == EventMotionStart {
		s.lastActivity = time.Now()
		if s.pause.setMotion(true) && !s.previewActive && !s.previewStarting {
			s.startPreviewAsync()
		}
	} else if ev.Kind == EventMotionStop {
		s.pause.setMotion(false)
	}
	s.events.publish(ev)
}

// checkIdle tears down the session if idle_disconnect is enabled and
// nothing has happened (active stream, motion, ongoing request) for
// idleTimeout.
func (s *Supervisor) checkIdle() {
	if !s.cfg.IdleDisconnect || s.session == nil {
		return
	}
	if len(s.subs) > 0 || s.pause.hasMotion {
		s.lastActivity = time.Now()
		return
	}
	if time.Since(s.lastActivity) < idleTimeout {
		return
	}
	s.log.Info().Msg("idle disconnect")
	if s.genCancel != nil {
		s.genCancel()
	}
	sess := s.session
	s.session = nil
	s.previewActive = false
	s.state = StateDiscovering
	go sess.Close()
}

// checkPause applies the stop half of the pause policy on a steady
// tick; starts are triggered immediately from SubscribeStream/motion.
func (s *Supervisor) checkPause() {
	if s.session == nil || !s.previewActive {
		return
	}
	if s.pause.poll(time.Now()) {
		s.stopPreviewAsync()
	}
}

func (s *Supervisor) startPreviewAsync() {
	if s.session == nil || s.previewActive || s.previewStarting {
		return
	}
	s.previewStarting = true
	sess := s.session
	channel := s.channel
	streamType := streamTypeFor(s.cfg.Stream)

	go func() {
		body, err := baichuan.NewPreviewStartRequest(channel, "1", streamType)
		if err != nil {
			s.enqueue(func() { s.previewStarting = false })
			return
		}
		err = sess.Send(baichuan.MsgVideo, nil, body)
		s.enqueue(func() {
			s.previewStarting = false
			if sess != s.session {
				return
			}
			if err != nil {
				s.log.Warn().Err(err).Msg("preview start failed")
				return
			}
			s.previewActive = true
			s.demux.Reset()
		})
	}()
}

func (s *Supervisor) stopPreviewAsync() {
	if s.session == nil || !s.previewActive {
		return
	}
	s.previewActive = false
	sess := s.session
	channel := s.channel

	go func() {
		body, err := baichuan.NewPreviewStopRequest(channel, "1")
		if err != nil {
			return
		}
		if err := sess.Send(baichuan.MsgVideoStop, nil, body); err != nil {
			s.log.Debug().Err(err).Msg("preview stop failed")
		}
	}()
}

func streamTypeFor(stream config.Stream) string {
	switch stream {
	case config.StreamSub:
		return "subStream"
	case config.StreamThird:
		return "externStream"
	default:
		return "mainStream"
	}
}

// SubscribeStream registers a new stream subscriber and, if this is the
// first active client, triggers the pause policy's start condition.
func (s *Supervisor) SubscribeStream(ctx context.Context) (*bcmedia.Subscriber, uuid.UUID, error) {
	var sub *bcmedia.Subscriber
	var id uuid.UUID
	err := s.call(ctx, func() {
		sub = bcmedia.NewSubscriber()
		id = uuid.New()
		s.hub.Subscribe(sub)
		s.subs[id] = sub
		s.lastActivity = time.Now()
		s.ensureConnecting()
		if s.pause.setClient(true) {
			s.startPreviewAsync()
		}
	})
	if err != nil {
		return nil, uuid.UUID{}, err
	}
	return sub, id, nil
}

// UnsubscribeStream drops a subscriber by handle. The pause policy's
// stop condition, if now false, is applied on the next checkPause tick
// rather than immediately, per the timeout semantics.
func (s *Supervisor) UnsubscribeStream(ctx context.Context, id uuid.UUID) error {
	return s.call(ctx, func() {
		if sub, ok := s.subs[id]; ok {
			s.hub.Unsubscribe(sub)
			delete(s.subs, id)
		}
		s.pause.setClient(len(s.subs) > 0)
	})
}

// ensureConnecting kicks off a fresh connection attempt if the
// supervisor is sitting idle with no session — reached after an
// idle-disconnect — so any new request or motion event reopens the
// session via the full discovery path rather than waiting on it to
// happen on its own.
func (s *Supervisor) ensureConnecting() {
	if s.session == nil && s.state != StateConnecting && s.state != StateClosed {
		s.connect(s.runCtx)
	}
}

// Control issues a control operation against the camera's live session.
func (s *Supervisor) Control(ctx context.Context, op ControlOp) error {
	var sess *bcsession.Session
	var channel int
	if err := s.call(ctx, func() {
		s.lastActivity = time.Now()
		s.ensureConnecting()
		sess = s.session
		channel = s.channel
	}); err != nil {
		return err
	}
	if sess == nil {
		return ErrNotConnected
	}
	return applyControl(ctx, sess, channel, op)
}

// Query issues a read-only query against the camera's live session.
func (s *Supervisor) Query(ctx context.Context, kind QueryKind) (QueryResult, error) {
	var sess *bcsession.Session
	var channel int
	var previewActive bool
	if err := s.call(ctx, func() {
		s.lastActivity = time.Now()
		s.ensureConnecting()
		sess = s.session
		channel = s.channel
		previewActive = s.previewActive
	}); err != nil {
		return QueryResult{}, err
	}
	if sess == nil && kind != QueryPreview {
		return QueryResult{}, ErrNotConnected
	}
	return runQuery(ctx, sess, channel, kind, previewActive)
}

// Events returns a channel of this camera's typed events. The channel
// is never closed by the supervisor; callers stop reading when done.
func (s *Supervisor) Events() <-chan Event {
	ch := make(chan Event)
	s.enqueue(func() {
		listener := s.events.subscribe()
		go func() {
			for ev := range listener {
				select {
				case ch <- ev:
				case <-s.done:
					return
				}
			}
		}()
	})
	return ch
}

// State returns the supervisor's current lifecycle stage.
func (s *Supervisor) State(ctx context.Context) (State, error) {
	var st State
	err := s.call(ctx, func() { st = s.state })
	return st, err
}

// Shutdown tears down the session and stops the actor loop, waiting for
// Run to return.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	if err := s.call(ctx, func() {
		s.teardown()
		s.stop()
	}); err != nil && !errors.Is(err, ErrClosed) {
		return err
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Supervisor) teardown() {
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	if s.genCancel != nil {
		s.genCancel()
	}
	if s.session != nil {
		s.session.Close()
		s.session = nil
	}
}
