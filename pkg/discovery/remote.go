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
	subKindLookupQuery byte = 10
	subKindLookupReply byte = 11
)

// remote asks one of the well-known vendor discovery servers for the
// camera's current public/private address pair, then tries each in
// turn. A cryptographic or auth failure from the vendor server is
// reported but does not itself stop the caller's strategy chain.
func remote(ctx context.Context, target Target) (*Binding, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, fmt.Errorf("discovery: remote listen: %w", err)
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(perStrategyTimeout)
	}
	_ = conn.SetReadDeadline(deadline)

	query := udprelay.Encode(udprelay.Datagram{
		Kind:    udprelay.KindDiscovery,
		SubKind: subKindLookupQuery,
		Payload: []byte(target.UID),
	})

	var lastErr error
	for _, host := range vendorServers {
		addr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(host, fmt.Sprint(reolinkDiscoveryPort)))
		if err != nil {
			lastErr = err
			continue
		}
		if _, err := conn.WriteToUDP(query, addr); err != nil {
			lastErr = err
			continue
		}
	}

	buf := make([]byte, 512)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if lastErr != nil {
				return nil, fmt.Errorf("discovery: remote: %w (vendor dial errors: %v)", err, lastErr)
			}
			return nil, fmt.Errorf("discovery: remote: %w", err)
		}

		d, err := udprelay.Decode(buf[:n])
		if err != nil || d.Kind != udprelay.KindDiscovery || d.SubKind != subKindLookupReply {
			continue
		}
		// payload: 4-byte sid, 4-byte public ip, 2-byte public port,
		// 4-byte private ip, 2-byte private port, remainder device id.
		if len(d.Payload) < 16 {
			continue
		}

		sid := binary.BigEndian.Uint32(d.Payload[0:4])
		candidates := []net.UDPAddr{
			{IP: net.IP(d.Payload[4:8]), Port: int(binary.BigEndian.Uint16(d.Payload[8:10]))},
			{IP: net.IP(d.Payload[10:14]), Port: int(binary.BigEndian.Uint16(d.Payload[14:16]))},
		}

		for _, cand := range candidates {
			if cand.IP.IsUnspecified() || cand.Port == 0 {
				continue
			}
			b, err := openSession(&cand, sid)
			if err != nil {
				lastErr = err
				continue
			}
			b.Strategy = StrategyRemote
			if len(d.Payload) > 16 {
				b.DeviceID = append([]byte(nil), d.Payload[16:]...)
			}
			return b, nil
		}
	}
}
