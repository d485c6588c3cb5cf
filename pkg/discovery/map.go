package discovery

import (
	"context"
	"fmt"
	"net"

	"github.com/neolink-go/neolink/pkg/udprelay"
)

const (
	subKindMapRegister byte = 20
	subKindMapDial     byte = 21
)

// mapRegister registers our public address with the vendor server and
// asks it to instruct the camera to dial back in, then waits up to
// mapWaitTimeout for an inbound session bearing this UID.
func mapRegister(ctx context.Context, target Target) (*Binding, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, fmt.Errorf("discovery: map listen: %w", err)
	}

	register := udprelay.Encode(udprelay.Datagram{
		Kind:    udprelay.KindDiscovery,
		SubKind: subKindMapRegister,
		Payload: []byte(target.UID),
	})

	var lastErr error
	for _, host := range vendorServers {
		addr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(host, fmt.Sprint(reolinkDiscoveryPort)))
		if err != nil {
			lastErr = err
			continue
		}
		if _, err := conn.WriteToUDP(register, addr); err != nil {
			lastErr = err
		}
	}

	waitCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, mapWaitTimeout)
		defer cancel()
	}

	deadline, _ := waitCtx.Deadline()
	_ = conn.SetReadDeadline(deadline)

	buf := make([]byte, 512)
	for {
		n, peer, err := conn.ReadFromUDP(buf)
		if err != nil {
			conn.Close()
			if lastErr != nil {
				return nil, fmt.Errorf("discovery: map: %w (register errors: %v)", err, lastErr)
			}
			return nil, fmt.Errorf("discovery: map: %w", err)
		}

		d, err := udprelay.Decode(buf[:n])
		if err != nil || d.Kind != udprelay.KindDiscovery || d.SubKind != subKindMapDial {
			continue
		}

		sess := udprelay.NewSession(conn, peer, d.SID)
		return &Binding{
			Strategy:  StrategyMap,
			LocalAddr: conn.LocalAddr().(*net.UDPAddr),
			PeerAddr:  peer,
			SID:       d.SID,
			DeviceID:  append([]byte(nil), d.Payload...),
			Session:   sess,
		}, nil
	}
}
