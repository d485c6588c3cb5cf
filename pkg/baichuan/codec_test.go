package baichuan

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXORRoundtrip(t *testing.T) {
	plain := bytes.Repeat([]byte{0}, 256)
	encrypted := XOR(0, plain)
	decrypted := XOR(0, encrypted)
	assert.Equal(t, plain, decrypted)
	assert.NotEqual(t, plain, encrypted)
}

func TestAESRoundtrip(t *testing.T) {
	key := AESKey("0123456789abcdef", "secret")
	require.Len(t, key, 16)

	plain := []byte("<body><Preview/></body>")
	ciphertext, err := AESEncrypt(key, plain)
	require.NoError(t, err)

	decoded, err := AESDecrypt(key, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plain, decoded)
}

func TestHeaderRoundtrip20Byte(t *testing.T) {
	h := Header{
		Magic:      MagicLegacy,
		MessageID:  MsgLogin,
		BodyLength: 0,
		EncOffset:  BuildEncOffset(0, 0, 1),
		Status:     0xDC12,
		Class:      ClassLegacy20,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf, h))
	assert.Equal(t, 20, buf.Len())

	got, err := ReadHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, h.MessageID, got.MessageID)
	assert.Equal(t, h.Status, got.Status)
	assert.True(t, got.Legacy)
}

func TestHeaderRoundtrip24Byte(t *testing.T) {
	h := Header{
		Magic:         MagicModern,
		MessageID:     MsgVideo,
		EncOffset:     BuildEncOffset(0, 0, 1),
		Class:         ClassModern24,
		PayloadOffset: 120,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf, h))
	assert.Equal(t, 24, buf.Len())

	got, err := ReadHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(120), got.PayloadOffset)
	assert.False(t, got.Legacy)
}

func TestEncOffsetRoundtrip(t *testing.T) {
	off := BuildEncOffset(3, 1, 7)
	ch, st, hd := ParseEncOffset(off)
	assert.EqualValues(t, 3, ch)
	assert.EqualValues(t, 1, st)
	assert.EqualValues(t, 7, hd)
}

func TestCodecEncodeDecodeAES(t *testing.T) {
	var pipe bytes.Buffer
	codec := NewCodec(&pipe, 1)

	keys := Keys{Mode: ModeAES, AESKey: AESKey("abc", "pw")}

	msg := Message{
		Header: Header{
			Magic:     MagicModern,
			MessageID: MsgVideo,
			EncOffset: BuildEncOffset(0, 0, 1),
			Class:     ClassModern24,
		},
		Extension: []byte(`<Extension><binaryData>1</binaryData></Extension>`),
		Payload:   []byte("raw-media-bytes"),
	}

	require.NoError(t, codec.Encode(msg, keys))

	got, err := codec.Decode(keys)
	require.NoError(t, err)
	assert.Equal(t, msg.Payload, got.Payload)
	assert.Equal(t, msg.Extension, got.Extension)

	ext, err := DecodeExtension(got.Extension)
	require.NoError(t, err)
	require.NotNil(t, ext)
	assert.Equal(t, 1, ext.BinaryData)
}

func TestCatalogName(t *testing.T) {
	assert.Equal(t, "Preview", Name(MsgVideo))
	assert.Equal(t, "Net3g4gInfo", Name(MsgNet3g4gInfo))
	assert.Equal(t, "", Name(999999))
	assert.False(t, Known(999999))
}
