package bcmedia

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemuxerFeedWholeChunk(t *testing.T) {
	raw := buildKeyframe("H264", []byte{1, 2, 3}, 0)

	var got []Frame
	var d Demuxer
	require.NoError(t, d.Feed(raw, true, func(f Frame) { got = append(got, f) }))

	require.Len(t, got, 1)
	assert.Equal(t, KindKeyframe, got[0].Kind)
}

func TestDemuxerFeedSplitAcrossMessages(t *testing.T) {
	raw := buildKeyframe("H264", []byte{1, 2, 3, 4, 5}, 0)
	half := len(raw) / 2

	var got []Frame
	var d Demuxer
	emit := func(f Frame) { got = append(got, f) }

	require.NoError(t, d.Feed(raw[:half], true, emit))
	assert.Empty(t, got, "incomplete chunk must not emit yet")

	require.NoError(t, d.Feed(raw[half:], false, emit))
	require.Len(t, got, 1)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, got[0].Data)
}

func TestDemuxerContinuationWithoutOpenChunk(t *testing.T) {
	var d Demuxer
	err := d.Feed([]byte{1, 2, 3}, false, func(Frame) {})
	assert.ErrorIs(t, err, ErrDesync)
}

func TestDemuxerResyncsPastGarbage(t *testing.T) {
	good := buildKeyframe("H264", []byte{9}, 0)
	raw := append([]byte{0xFF, 0xFF, 0xFF, 0xFF}, good...)

	var resyncs int
	var got []Frame
	d := Demuxer{OnResync: func() { resyncs++ }}
	require.NoError(t, d.Feed(raw, true, func(f Frame) { got = append(got, f) }))

	assert.Equal(t, 4, resyncs)
	require.Len(t, got, 1)
	assert.Equal(t, KindKeyframe, got[0].Kind)
}
