package udprelay

import (
	"bytes"
	"net"
	"sync"
	"time"
)

const (
	// chunkSize keeps each DATA datagram's payload comfortably under a
	// typical path MTU once the relay header is added.
	chunkSize = 1350

	// windowSize bounds the number of unacknowledged chunks in flight.
	windowSize = 256

	minRetx     = 500 * time.Millisecond
	maxRetx     = 8 * time.Second
	keepalive   = 2 * time.Second
	livenessTTL = 15 * time.Second
	delayedAck  = 50 * time.Millisecond
)

// Session is a reliable, ordered, single-peer byte stream over UDP,
// shaped to satisfy net.Conn so bcsession can treat it exactly like a
// direct TCP connection once discovery has promoted a peer to it.
type Session struct {
	conn net.PacketConn
	peer net.Addr
	sid  uint32

	writeMu    sync.Mutex
	unacked    map[uint32][]byte
	nextTxSeq  uint32
	sendBase   uint32
	windowFree chan struct{}

	readMu    sync.Mutex
	recvBuf   map[uint32][]byte
	nextRx    uint32
	delivered bytes.Buffer
	dataReady chan struct{}

	ackDue      bool
	ackTimer    *time.Timer
	lastRxAt    time.Time
	lastRxMu    sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
	closeErr  error
	closeMu   sync.Mutex
}

// NewSession wraps conn as a reliable stream to peer, identified by sid
// (assigned by whichever discovery strategy produced the binding).
func NewSession(conn net.PacketConn, peer net.Addr, sid uint32) *Session {
	s := &Session{
		conn:       conn,
		peer:       peer,
		sid:        sid,
		unacked:    make(map[uint32][]byte),
		recvBuf:    make(map[uint32][]byte),
		windowFree: make(chan struct{}, 1),
		dataReady:  make(chan struct{}, 1),
		done:       make(chan struct{}),
		lastRxAt:   time.Now(),
	}
	s.ackTimer = time.AfterFunc(time.Hour, s.flushAck)
	s.ackTimer.Stop()

	go s.readLoop()
	go s.retransmitLoop()
	go s.livenessLoop()
	return s
}

// Write implements io.Writer, slicing p into window-bounded DATA chunks.
func (s *Session) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		n := len(p)
		if n > chunkSize {
			n = chunkSize
		}
		if err := s.writeChunk(p[:n]); err != nil {
			return total, err
		}
		total += n
		p = p[n:]
	}
	return total, nil
}

func (s *Session) writeChunk(chunk []byte) error {
	for {
		s.writeMu.Lock()
		if uint32(len(s.unacked)) < windowSize {
			seq := s.nextTxSeq
			s.nextTxSeq++
			buf := append([]byte(nil), chunk...)
			s.unacked[seq] = buf
			s.writeMu.Unlock()

			return s.send(Datagram{Kind: KindData, SID: s.sid, Seq: seq, Payload: buf})
		}
		s.writeMu.Unlock()

		select {
		case <-s.windowFree:
		case <-s.done:
			return s.err()
		}
	}
}

func (s *Session) send(d Datagram) error {
	_, err := s.conn.WriteTo(Encode(d), s.peer)
	return err
}

// Read implements io.Reader over the in-order delivered byte stream.
func (s *Session) Read(p []byte) (int, error) {
	for {
		s.readMu.Lock()
		if s.delivered.Len() > 0 {
			n, _ := s.delivered.Read(p)
			s.readMu.Unlock()
			return n, nil
		}
		s.readMu.Unlock()

		select {
		case <-s.dataReady:
		case <-s.done:
			return 0, s.err()
		}
	}
}

func (s *Session) readLoop() {
	buf := make([]byte, 2048)
	for {
		_ = s.conn.SetReadDeadline(time.Now().Add(livenessTTL))
		n, _, err := s.conn.ReadFrom(buf)
		select {
		case <-s.done:
			return
		default:
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue // livenessLoop enforces the real timeout policy
			}
			s.fail(err)
			return
		}

		d, err := Decode(buf[:n])
		if err != nil || d.SID != s.sid {
			continue
		}

		s.touchLiveness()

		switch d.Kind {
		case KindData:
			s.onData(d)
		case KindAck:
			s.onAck(d)
		case KindKeepalive:
			// liveness already touched above; nothing else to do
		case KindDiscovery:
			// discovery datagrams on an already-promoted session are
			// stale retries from the discovery engine; ignore.
		}
	}
}

func (s *Session) onData(d Datagram) {
	s.readMu.Lock()
	if d.Seq >= s.nextRx {
		s.recvBuf[d.Seq] = append([]byte(nil), d.Payload...)
	}
	advanced := 0
	for {
		chunk, ok := s.recvBuf[s.nextRx]
		if !ok {
			break
		}
		s.delivered.Write(chunk)
		delete(s.recvBuf, s.nextRx)
		s.nextRx++
		advanced++
	}
	next := s.nextRx
	s.readMu.Unlock()

	if advanced > 0 {
		notify(s.dataReady)
	}

	if advanced >= 2 {
		s.sendAck(next)
	} else {
		s.scheduleAck()
	}
}

func (s *Session) scheduleAck() {
	s.readMu.Lock()
	already := s.ackDue
	s.ackDue = true
	s.readMu.Unlock()
	if !already {
		s.ackTimer.Reset(delayedAck)
	}
}

func (s *Session) flushAck() {
	s.readMu.Lock()
	next := s.nextRx
	s.ackDue = false
	s.readMu.Unlock()
	s.sendAck(next)
}

func (s *Session) sendAck(next uint32) {
	_ = s.send(Datagram{Kind: KindAck, SID: s.sid, Seq: next})
}

func (s *Session) onAck(d Datagram) {
	s.writeMu.Lock()
	for seq := range s.unacked {
		if seq < d.Seq {
			delete(s.unacked, seq)
		}
	}
	if d.Seq > s.sendBase {
		s.sendBase = d.Seq
	}
	s.writeMu.Unlock()
	notify(s.windowFree)
}

func (s *Session) retransmitLoop() {
	interval := minRetx
	ticker := time.NewTicker(minRetx)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			pending := make([]Datagram, 0, len(s.unacked))
			for seq, payload := range s.unacked {
				pending = append(pending, Datagram{Kind: KindData, SID: s.sid, Seq: seq, Payload: payload})
			}
			s.writeMu.Unlock()

			if len(pending) == 0 {
				interval = minRetx
				continue
			}

			for _, d := range pending {
				_ = s.send(d)
			}

			if interval < maxRetx {
				interval *= 2
				if interval > maxRetx {
					interval = maxRetx
				}
			}
			ticker.Reset(interval)
		}
	}
}

func (s *Session) livenessLoop() {
	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.lastRxMu.Lock()
			idle := time.Since(s.lastRxAt)
			s.lastRxMu.Unlock()

			if idle >= livenessTTL {
				s.fail(ErrTimeout)
				return
			}
			_ = s.send(Datagram{Kind: KindKeepalive, SID: s.sid})
		}
	}
}

func (s *Session) touchLiveness() {
	s.lastRxMu.Lock()
	s.lastRxAt = time.Now()
	s.lastRxMu.Unlock()
}

func (s *Session) fail(err error) {
	s.closeMu.Lock()
	if s.closeErr == nil {
		s.closeErr = err
	}
	s.closeMu.Unlock()
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Session) err() error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closeErr != nil {
		return s.closeErr
	}
	return ErrClosed
}

// Close sends a best-effort FIN-equivalent and tears the session down;
// pending Read/Write callers observe ErrCancelled.
func (s *Session) Close() error {
	select {
	case <-s.done:
		return nil
	default:
	}
	_ = s.send(Datagram{Kind: KindKeepalive, SID: s.sid, Seq: 0xFFFFFFFF})
	s.closeMu.Lock()
	if s.closeErr == nil {
		s.closeErr = ErrCancelled
	}
	s.closeMu.Unlock()
	s.closeOnce.Do(func() { close(s.done) })
	s.ackTimer.Stop()
	return s.conn.Close()
}

func (s *Session) LocalAddr() net.Addr  { return s.conn.LocalAddr() }
func (s *Session) RemoteAddr() net.Addr { return s.peer }

func (s *Session) SetDeadline(t time.Time) error     { return s.conn.SetReadDeadline(t) }
func (s *Session) SetReadDeadline(t time.Time) error { return s.conn.SetReadDeadline(t) }
func (s *Session) SetWriteDeadline(time.Time) error  { return nil }

// notify performs a non-blocking send on a capacity-1 signal channel.
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
