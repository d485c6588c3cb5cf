package baichuan

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Message is a transient decoded BC message: header plus the two body
// regions. Extension is nil when the header carries no payload offset.
type Message struct {
	Header    Header
	Extension []byte
	Payload   []byte
}

// Keys holds the per-session material needed to encrypt/decrypt message
// bodies once a mode has been negotiated.
type Keys struct {
	Mode   Mode
	AESKey []byte
}

// Codec encodes and decodes BC messages against a single byte stream.
// It does not own the stream; callers supply an io.Reader/io.Writer
// (a net.Conn, or a udprelay.Session, both of which satisfy the same
// shape).
type Codec struct {
	r io.Reader
	w io.Writer

	handle uint8
}

// NewCodec wraps rw for Baichuan framing. handle seeds the value that
// NextHandle hands out; Encode does not insert it and writes each
// header's encryption-offset field exactly as given.
func NewCodec(rw io.ReadWriter, handle uint8) *Codec {
	return &Codec{r: rw, w: rw, handle: handle}
}

// Encode serializes msg to the underlying writer, applying keys' mode to
// the Extension+Payload region. msg.Header.BodyLength and PayloadOffset
// are computed here and need not be set by the caller.
func (c *Codec) Encode(msg Message, keys Keys) error {
	h := msg.Header

	body := msg.Payload
	ext := msg.Extension

	switch keys.Mode {
	case ModeXOR:
		body = XOR(h.EncOffset, body)
		ext = XOR(h.EncOffset, ext)
	case ModeAES:
		var err error
		if body, err = AESEncrypt(keys.AESKey, body); err != nil {
			return err
		}
		if len(ext) > 0 {
			if ext, err = AESEncrypt(keys.AESKey, ext); err != nil {
				return err
			}
		}
	}

	if len(ext) > 0 {
		h.PayloadOffset = uint32(len(ext))
		h.Class = ClassModern24
	}
	h.BodyLength = uint32(len(ext) + len(body))

	if err := WriteHeader(c.w, h); err != nil {
		return err
	}
	if len(ext) > 0 {
		if _, err := c.w.Write(ext); err != nil {
			return fmt.Errorf("baichuan: write extension: %w", err)
		}
	}
	if _, err := c.w.Write(body); err != nil {
		return fmt.Errorf("baichuan: write payload: %w", err)
	}
	return nil
}

// Decode reads the next full message from the underlying reader and
// decrypts its body per keys' mode.
func (c *Codec) Decode(keys Keys) (Message, error) {
	h, err := ReadHeader(c.r)
	if err != nil {
		return Message{}, err
	}

	raw := make([]byte, h.BodyLength)
	if h.BodyLength > 0 {
		if _, err := io.ReadFull(c.r, raw); err != nil {
			return Message{}, fmt.Errorf("baichuan: read body: %w", err)
		}
	}

	var extRaw, payloadRaw []byte
	if h.PayloadOffset > 0 && h.PayloadOffset <= uint32(len(raw)) {
		extRaw = raw[:h.PayloadOffset]
		payloadRaw = raw[h.PayloadOffset:]
	} else {
		payloadRaw = raw
	}

	switch keys.Mode {
	case ModeXOR:
		extRaw = XOR(h.EncOffset, extRaw)
		payloadRaw = XOR(h.EncOffset, payloadRaw)
	case ModeAES:
		if len(extRaw) > 0 {
			extRaw, err = AESDecrypt(keys.AESKey, extRaw)
			if err != nil {
				return Message{}, fmt.Errorf("%w: %v", ErrFrame, err)
			}
		}
		if len(payloadRaw) > 0 {
			payloadRaw, err = AESDecrypt(keys.AESKey, payloadRaw)
			if err != nil {
				return Message{}, fmt.Errorf("%w: %v", ErrFrame, err)
			}
		}
	}

	return Message{Header: h, Extension: extRaw, Payload: payloadRaw}, nil
}

// NextHandle returns c's configured handle byte, for building outgoing
// headers' encryption-offset field.
func (c *Codec) NextHandle() uint8 { return c.handle }

// DecodeExtension unmarshals msg's Extension region, if present.
func DecodeExtension(raw []byte) (*Extension, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var ext Extension
	if err := xml.Unmarshal(trimNull(raw), &ext); err != nil {
		return nil, &SchemaError{Raw: raw, Err: err}
	}
	return &ext, nil
}

// trimNull drops a trailing NUL the camera sometimes pads XML bodies
// with, which otherwise trips xml.Unmarshal's strict parser.
func trimNull(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}
