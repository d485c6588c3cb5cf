package bcmedia

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildKeyframe(codec string, data []byte, posixTime uint32) []byte {
	buf := make([]byte, 0, 32+len(data))
	buf = append(buf, '0', '0', 'd', 'c')
	buf = append(buf, []byte(codec)...)

	sizeBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(sizeBuf, uint32(len(data)))
	buf = append(buf, sizeBuf...)

	extra := make([]byte, 4)
	binary.LittleEndian.PutUint32(extra, posixTime)
	extraSizeBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(extraSizeBuf, uint32(len(extra)))
	buf = append(buf, extraSizeBuf...)

	msBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(msBuf, 12345)
	buf = append(buf, msBuf...)

	buf = append(buf, 0, 0, 0, 0) // unknown
	buf = append(buf, extra...)
	buf = append(buf, data...)
	return buf
}

func TestParseKeyframe(t *testing.T) {
	raw := buildKeyframe("H264", []byte{1, 2, 3, 4}, 1700000000)
	f, n, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, len(raw), n)
	assert.Equal(t, KindKeyframe, f.Kind)
	assert.Equal(t, uint8(0), f.Channel)
	assert.Equal(t, VideoH264, f.Video)
	assert.Equal(t, uint32(12345), f.Microseconds)
	assert.Equal(t, uint32(1700000000), f.Time)
	assert.Equal(t, []byte{1, 2, 3, 4}, f.Data)
}

func TestParseKeyframeShort(t *testing.T) {
	raw := buildKeyframe("H265", []byte{9, 9, 9}, 1)
	_, _, err := Parse(raw[:len(raw)-1])
	assert.ErrorIs(t, err, ErrShort)
}

func TestParseChannelDigit(t *testing.T) {
	raw := buildKeyframe("H264", []byte{0xAA}, 0)
	raw[0] = '3' // channel 3
	f, _, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, uint8(3), f.Channel)
}

func TestParseAAC(t *testing.T) {
	data := []byte{0xFF, 0xF1, 0x50, 0x80, 0x00, 0x1F, 0xFC}
	raw := []byte{'0', '5', 'w', 'b'}
	sizeBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(sizeBuf, uint16(len(data)))
	raw = append(raw, sizeBuf...)
	raw = append(raw, sizeBuf...)
	raw = append(raw, data...)

	f, n, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, len(raw), n)
	assert.Equal(t, KindAAC, f.Kind)
	assert.Equal(t, data, f.Data)
}

func TestParseADPCM(t *testing.T) {
	predictor := []byte{1, 2, 3, 4}
	samples := []byte{5, 6, 7, 8, 9, 10}
	data := append(append([]byte{}, predictor...), samples...)

	raw := []byte{'0', '1', 'w', 'b'}
	payloadSize := uint16(len(data) + 4)
	sizeBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(sizeBuf, payloadSize)
	raw = append(raw, sizeBuf...)
	raw = append(raw, sizeBuf...)
	raw = append(raw, 0x00, 0x01) // sub-magic 0x0100 little-endian
	blockSizeBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(blockSizeBuf, uint16(len(data)))
	raw = append(raw, blockSizeBuf...)
	raw = append(raw, data...)

	f, n, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, len(raw), n)
	assert.Equal(t, KindADPCM, f.Kind)
	assert.Equal(t, data, f.Data)
}

func TestParseUnknownMagic(t *testing.T) {
	_, _, err := Parse([]byte{'z', 'z', 'z', 'z', 0, 0, 0, 0})
	assert.ErrorIs(t, err, ErrMagic)
}
