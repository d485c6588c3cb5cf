// Package discovery resolves a camera UID to an established transport
// suitable for wrapping with the Baichuan wire codec, trying strategies
// in order: direct address (first, whenever one is configured), local
// broadcast, vendor-assisted remote lookup, vendor map
// (register-and-wait), and vendor relay.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/neolink-go/neolink/pkg/udprelay"
)

// Strategy names the method that produced a Binding.
type Strategy string

const (
	StrategyLocal    Strategy = "local"
	StrategyDirect   Strategy = "direct"
	StrategyRemote   Strategy = "remote"
	StrategyMap      Strategy = "map"
	StrategyRelay    Strategy = "relay"
	StrategyCellular Strategy = "cellular"
)

// ErrUnreachable is returned once every applicable strategy has been
// exhausted without producing a usable transport.
var ErrUnreachable = errors.New("discovery: camera unreachable")

// perStrategyTimeout bounds how long a single strategy is given before
// moving on to the next.
const perStrategyTimeout = 10 * time.Second

// mapWaitTimeout bounds how long the map strategy waits for the camera
// to dial back in after registration.
const mapWaitTimeout = 30 * time.Second

// vendorServers lists the well-known DNS names vendor clients contact
// for remote lookup, map registration, and relay. Exact host names are
// configuration constants, not secrets.
var vendorServers = []string{
	"p2p.reolink.com",
	"p2p1.reolink.com",
	"p2p2.reolink.com",
	"apios.reolink.com",
}

// Binding is a candidate, then promoted, transport endpoint for a UID.
type Binding struct {
	Strategy  Strategy
	LocalAddr *net.UDPAddr
	PeerAddr  *net.UDPAddr
	SID       uint32
	DeviceID  []byte
	Session   net.Conn
}

// Target is what the caller knows about a camera ahead of discovery.
type Target struct {
	UID       string
	Address   string // non-empty: direct is tried before Strategy's chain
	Strategy  Strategy
}

// Resolve runs the strategy chain for target and returns the first
// successful Binding. Soft per-strategy failures (timeout, not-found)
// fall through to the next strategy; the caller's ctx bounds the whole
// chain.
func Resolve(ctx context.Context, target Target) (*Binding, error) {
	var attempts []func(context.Context, Target) (*Binding, error)

	switch target.Strategy {
	case StrategyDirect:
		attempts = []func(context.Context, Target) (*Binding, error){direct}
	case StrategyCellular:
		attempts = []func(context.Context, Target) (*Binding, error){remote, mapRegister, relay}
	case StrategyLocal, "":
		attempts = []func(context.Context, Target) (*Binding, error){local, remote, mapRegister, relay}
	case StrategyRemote:
		attempts = []func(context.Context, Target) (*Binding, error){remote, mapRegister, relay}
	case StrategyMap:
		attempts = []func(context.Context, Target) (*Binding, error){mapRegister, relay}
	case StrategyRelay:
		attempts = []func(context.Context, Target) (*Binding, error){relay}
	default:
		return nil, fmt.Errorf("discovery: unknown strategy %q", target.Strategy)
	}

	if target.Address != "" {
		attempts = append([]func(context.Context, Target) (*Binding, error){direct}, attempts...)
	}

	var lastErr error
	for _, attempt := range attempts {
		attemptCtx, cancel := context.WithTimeout(ctx, perStrategyTimeout)
		b, err := attempt(attemptCtx, target)
		cancel()

		if err == nil {
			return b, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, lastErr)
	}
	return nil, ErrUnreachable
}

// openSession dials a fresh dedicated UDP socket to peer and promotes it
// to a udprelay.Session under the given session id.
func openSession(peer *net.UDPAddr, sid uint32) (*Binding, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, fmt.Errorf("discovery: listen: %w", err)
	}

	sess := udprelay.NewSession(conn, peer, sid)
	return &Binding{
		LocalAddr: conn.LocalAddr().(*net.UDPAddr),
		PeerAddr:  peer,
		SID:       sid,
		Session:   sess,
	}, nil
}
