package discovery

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/neolink-go/neolink/pkg/udprelay"
)

const (
	subKindRelayRequest byte = 30
	subKindRelayGranted byte = 31
)

// relay asks a vendor server to relay bytes between us and the camera,
// identified by device id rather than a directly reachable address.
// This is the last-resort strategy when the camera is behind a NAT that
// defeats both map registration and direct P2P.
func relay(ctx context.Context, target Target) (*Binding, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, fmt.Errorf("discovery: relay listen: %w", err)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(perStrategyTimeout)
	}
	_ = conn.SetReadDeadline(deadline)

	request := udprelay.Encode(udprelay.Datagram{
		Kind:    udprelay.KindDiscovery,
		SubKind: subKindRelayRequest,
		Payload: []byte(target.UID),
	})

	var lastErr error
	var relayAddr *net.UDPAddr
	for _, host := range vendorServers {
		addr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(host, fmt.Sprint(reolinkDiscoveryPort)))
		if err != nil {
			lastErr = err
			continue
		}
		if _, err := conn.WriteToUDP(request, addr); err != nil {
			lastErr = err
			continue
		}
		relayAddr = addr
	}
	if relayAddr == nil {
		conn.Close()
		return nil, fmt.Errorf("discovery: relay: no reachable vendor server: %w", lastErr)
	}

	buf := make([]byte, 512)
	for {
		n, peer, err := conn.ReadFromUDP(buf)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("discovery: relay: %w", err)
		}

		d, err := udprelay.Decode(buf[:n])
		if err != nil || d.Kind != udprelay.KindDiscovery || d.SubKind != subKindRelayGranted {
			continue
		}
		if len(d.Payload) < 4 {
			continue
		}

		sid := binary.BigEndian.Uint32(d.Payload[:4])
		sess := udprelay.NewSession(conn, peer, sid)
		return &Binding{
			Strategy:  StrategyRelay,
			LocalAddr: conn.LocalAddr().(*net.UDPAddr),
			PeerAddr:  peer,
			SID:       sid,
			DeviceID:  append([]byte(nil), d.Payload[4:]...),
			Session:   sess,
		}, nil
	}
}
