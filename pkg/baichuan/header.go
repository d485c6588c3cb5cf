// Package baichuan implements the wire codec for Reolink's proprietary
// "Baichuan" (BC) camera protocol: header framing, encryption, the XML
// control schema, and the message-id catalog. It has no knowledge of
// transports (TCP vs the UDP reliability layer) or of session state.
package baichuan

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Magic values. The byte order observed on the wire selects which magic
// constant matched: Legacy carries f0 de bc 0a, Modern carries 0a bc de f0.
const (
	MagicLegacy uint32 = 0x0ABCDEF0
	MagicModern uint32 = 0xF0DEBC0A
)

// Message classes determine header layout and are echoed back unchanged
// by a well-behaved camera.
const (
	ClassLegacy20 uint16 = 0x6514 // 20-byte header, legacy login/upgrade
	ClassModern20 uint16 = 0x6614 // 20-byte header, no payload offset
	ClassModern24 uint16 = 0x6414 // 24-byte header, has payload offset
	ClassModern00 uint16 = 0x0000 // 24-byte header, alternate modern marker
)

func hasPayloadOffset(class uint16) bool {
	return class == ClassModern24 || class == ClassModern00
}

// Header is the unified 20/24-byte BC header.
type Header struct {
	Magic         uint32
	MessageID     uint32
	BodyLength    uint32
	EncOffset     uint32
	Status        uint16
	Class         uint16
	PayloadOffset uint32 // valid only when hasPayloadOffset(Class)

	// Legacy records which magic value was observed; it never itself
	// changes integer byte order here since both magics are written in
	// fixed little-endian form on the wire, but callers use it to decide
	// whether a camera has fallen back to the pre-modern-XML dialect.
	Legacy bool
}

// EncOffset packs channel/stream/handle into the encryption-offset field.
func BuildEncOffset(channel, stream, handle uint8) uint32 {
	return uint32(channel) | uint32(stream)<<8 | uint32(handle)<<24
}

// ParseEncOffset unpacks channel/stream/handle from an encryption-offset
// field as produced by BuildEncOffset.
func ParseEncOffset(encOffset uint32) (channel, stream, handle uint8) {
	channel = uint8(encOffset)
	stream = uint8(encOffset >> 8)
	handle = uint8(encOffset >> 24)
	return
}

// WriteHeader serializes h to w in its on-wire layout.
func WriteHeader(w io.Writer, h Header) error {
	size := 20
	if hasPayloadOffset(h.Class) {
		size = 24
	}

	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.MessageID)
	binary.LittleEndian.PutUint32(buf[8:12], h.BodyLength)
	binary.LittleEndian.PutUint32(buf[12:16], h.EncOffset)
	binary.LittleEndian.PutUint16(buf[16:18], h.Status)
	binary.LittleEndian.PutUint16(buf[18:20], h.Class)
	if size == 24 {
		binary.LittleEndian.PutUint32(buf[20:24], h.PayloadOffset)
	}

	_, err := w.Write(buf)
	return err
}

// ReadHeader parses a Header from r, reading the extra 4-byte payload
// offset field only when the message class indicates it is present.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header

	buf := make([]byte, 20)
	if _, err := io.ReadFull(r, buf); err != nil {
		return h, fmt.Errorf("baichuan: read header: %w", err)
	}

	h.Magic = binary.LittleEndian.Uint32(buf[0:4])
	switch h.Magic {
	case MagicLegacy:
		h.Legacy = true
	case MagicModern:
		h.Legacy = false
	default:
		return h, fmt.Errorf("%w: magic %#x", ErrFrame, h.Magic)
	}

	h.MessageID = binary.LittleEndian.Uint32(buf[4:8])
	h.BodyLength = binary.LittleEndian.Uint32(buf[8:12])
	h.EncOffset = binary.LittleEndian.Uint32(buf[12:16])
	h.Status = binary.LittleEndian.Uint16(buf[16:18])
	h.Class = binary.LittleEndian.Uint16(buf[18:20])

	if hasPayloadOffset(h.Class) {
		poBuf := make([]byte, 4)
		if _, err := io.ReadFull(r, poBuf); err != nil {
			return h, fmt.Errorf("baichuan: read payload offset: %w", err)
		}
		h.PayloadOffset = binary.LittleEndian.Uint32(poBuf)
	}

	return h, nil
}
