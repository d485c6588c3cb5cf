package udprelay

import (
	"io"
	"math/rand"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDatagramEncodeDecode(t *testing.T) {
	d := Datagram{Kind: KindData, SID: 7, Seq: 42, Payload: []byte("hello")}
	got, err := Decode(Encode(d))
	require.NoError(t, err)
	require.Equal(t, d, got)
}

func TestDatagramDiscoverySubKind(t *testing.T) {
	d := Datagram{Kind: KindDiscovery, SID: 1, SubKind: 3, Payload: []byte("uid")}
	got, err := Decode(Encode(d))
	require.NoError(t, err)
	require.Equal(t, d, got)
}

// fakeAddr satisfies net.Addr for the in-memory transport below.
type fakeAddr string

func (a fakeAddr) Network() string { return "fake" }
func (a fakeAddr) String() string  { return string(a) }

// lossyConn is a net.PacketConn over an in-memory link that drops and
// reorders datagrams according to a seeded PRNG, so the windowed
// retransmit/reorder logic in Session can be exercised deterministically
// without a real, flaky network.
type lossyConn struct {
	addr   fakeAddr
	peer   *lossyConn
	recv   chan []byte
	closed chan struct{}
	rng    *rand.Rand
	drop   float64
}

func newLossyPair(rng *rand.Rand, drop float64) (*lossyConn, *lossyConn) {
	a := &lossyConn{addr: "a", recv: make(chan []byte, 256), closed: make(chan struct{}), rng: rng, drop: drop}
	b := &lossyConn{addr: "b", recv: make(chan []byte, 256), closed: make(chan struct{}), rng: rng, drop: drop}
	a.peer, b.peer = b, a
	return a, b
}

func (c *lossyConn) WriteTo(p []byte, _ net.Addr) (int, error) {
	buf := append([]byte(nil), p...)
	if c.rng.Float64() < c.drop {
		return len(p), nil // simulated loss
	}
	delay := time.Duration(c.rng.Intn(8)) * time.Millisecond
	go func() {
		time.Sleep(delay)
		select {
		case c.peer.recv <- buf:
		case <-c.peer.closed:
		}
	}()
	return len(p), nil
}

func (c *lossyConn) ReadFrom(p []byte) (int, net.Addr, error) {
	select {
	case buf := <-c.recv:
		n := copy(p, buf)
		return n, c.peer.addr, nil
	case <-c.closed:
		return 0, nil, io.EOF
	}
}

func (c *lossyConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
	return nil
}

func (c *lossyConn) LocalAddr() net.Addr             { return c.addr }
func (c *lossyConn) SetDeadline(time.Time) error     { return nil }
func (c *lossyConn) SetReadDeadline(time.Time) error { return nil }
func (c *lossyConn) SetWriteDeadline(time.Time) error { return nil }

func TestSessionDeliversInOrderDespiteLossAndReorder(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	connA, connB := newLossyPair(rng, 0.15)

	sessA := NewSession(connA, connB.addr, 1)
	sessB := NewSession(connB, connA.addr, 1)
	defer sessA.Close()
	defer sessB.Close()

	const chunks = 40
	payload := make([]byte, 0, chunks*chunkSize/4)
	for i := 0; i < chunks; i++ {
		line := make([]byte, 300)
		for j := range line {
			line[j] = byte('A' + (i % 26))
		}
		payload = append(payload, line...)
	}

	done := make(chan error, 1)
	go func() {
		_, err := sessA.Write(payload)
		done <- err
	}()

	type readResult struct {
		n   int
		err error
	}
	reads := make(chan readResult)

	got := make([]byte, 0, len(payload))
	deadline := time.After(10 * time.Second)
	for len(got) < len(payload) {
		buf := make([]byte, 4096)
		go func() {
			n, err := sessB.Read(buf)
			reads <- readResult{n, err}
		}()

		select {
		case r := <-reads:
			if r.err != nil {
				t.Fatalf("read: %v", r.err)
			}
			got = append(got, buf[:r.n]...)
		case <-deadline:
			t.Fatalf("timed out after receiving %d/%d bytes", len(got), len(payload))
		}
	}

	require.NoError(t, <-done)
	require.Equal(t, payload, got)
}
