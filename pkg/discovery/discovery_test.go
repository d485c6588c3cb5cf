package discovery

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDirectStrategy(t *testing.T) {
	listener, err := net.ListenUDP("udp4", &net.UDPAddr{})
	require.NoError(t, err)
	defer listener.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	b, err := Resolve(ctx, Target{
		UID:      "camera-1",
		Address:  listener.LocalAddr().String(),
		Strategy: StrategyDirect,
	})
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, StrategyDirect, b.Strategy)
	assert.NotNil(t, b.Session)
	_ = b.Session.Close()
}

func TestResolveUnknownStrategy(t *testing.T) {
	_, err := Resolve(context.Background(), Target{UID: "x", Strategy: "bogus"})
	assert.Error(t, err)
}

func TestBroadcastAddrsSkipsLoopback(t *testing.T) {
	addrs := broadcastAddrs()
	for _, a := range addrs {
		assert.False(t, a.IsLoopback())
	}
}
