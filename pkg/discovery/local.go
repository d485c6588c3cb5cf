package discovery

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/neolink-go/neolink/pkg/udprelay"
)

// reolinkDiscoveryPort is the well-known UDP port vendor clients and
// cameras exchange discovery datagrams on.
const reolinkDiscoveryPort = 9999

const (
	subKindUIDQuery byte = 1
	subKindUIDReply byte = 2
)

// local broadcasts a UID-query datagram out every non-loopback IPv4
// interface and waits for the matching camera to answer with its
// session id, then opens a dedicated UDP reliability session to it.
func local(ctx context.Context, target Target) (*Binding, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: 0})
	if err != nil {
		return nil, fmt.Errorf("discovery: local listen: %w", err)
	}
	defer conn.Close()

	query := udprelay.Encode(udprelay.Datagram{
		Kind:    udprelay.KindDiscovery,
		SubKind: subKindUIDQuery,
		Payload: []byte(target.UID),
	})

	broadcasts := broadcastAddrs()
	if len(broadcasts) == 0 {
		return nil, fmt.Errorf("discovery: no broadcast-capable interfaces")
	}

	for _, addr := range broadcasts {
		dst := &net.UDPAddr{IP: addr, Port: reolinkDiscoveryPort}
		_, _ = conn.WriteToUDP(query, dst)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(perStrategyTimeout)
	}
	_ = conn.SetReadDeadline(deadline)

	buf := make([]byte, 512)
	for {
		n, peer, err := conn.ReadFromUDP(buf)
		if err != nil {
			return nil, fmt.Errorf("discovery: local: %w", err)
		}

		d, err := udprelay.Decode(buf[:n])
		if err != nil || d.Kind != udprelay.KindDiscovery || d.SubKind != subKindUIDReply {
			continue
		}
		if len(d.Payload) < 4 {
			continue
		}

		sid := binary.BigEndian.Uint32(d.Payload[:4])
		b, err := openSession(peer, sid)
		if err != nil {
			return nil, err
		}
		b.Strategy = StrategyLocal
		b.DeviceID = append([]byte(nil), d.Payload[4:]...)
		return b, nil
	}
}

// direct skips discovery entirely and opens a session straight to the
// configured address, on the assumption the caller already knows it.
func direct(ctx context.Context, target Target) (*Binding, error) {
	addr, err := net.ResolveUDPAddr("udp4", target.Address)
	if err != nil {
		return nil, fmt.Errorf("discovery: direct: resolve %q: %w", target.Address, err)
	}

	b, err := openSession(addr, 0)
	if err != nil {
		return nil, err
	}
	b.Strategy = StrategyDirect
	return b, nil
}

func broadcastAddrs() []net.IP {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}

	var out []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipNet.IP.To4()
			if ip4 == nil {
				continue
			}
			bcast := make(net.IP, 4)
			mask := ipNet.Mask
			for i := range ip4 {
				bcast[i] = ip4[i] | ^mask[i]
			}
			out = append(out, bcast)
		}
	}
	return out
}
