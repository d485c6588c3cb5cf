package bcmedia

import (
	"errors"
)

// Demuxer reassembles a sequence of Preview (message id 3) message
// payloads into BcMedia frames. A single BcMedia chunk can straddle
// several BC messages: the Extension.BinaryData flag marks the message
// that opens a chunk, and every following message with BinaryData unset
// contributes more bytes to the chunk in progress until it parses clean.
//
// Emits every parsed chunk as a typed Frame via a callback rather than
// blocking for one packet at a time.
type Demuxer struct {
	pending []byte

	// OnResync, if set, is called once per byte dropped while recovering
	// from a parse error, letting the caller log or count resyncs without
	// the demuxer itself taking a logging dependency.
	OnResync func()
}

// ErrDesync is returned by Feed when a payload marked BinaryData==0
// arrives with no chunk in progress to append to; the caller should
// drop the payload and keep consuming, since the camera will resync on
// its next BinaryData==1 message.
var ErrDesync = errors.New("bcmedia: continuation with no chunk in progress")

// Feed appends a single Preview message's decrypted payload to the
// demuxer, parses as many complete frames as are now available, and
// invokes emit for each in order. binaryData is the message's
// Extension.BinaryData field: true starts a new chunk, false continues
// the one in progress.
func (d *Demuxer) Feed(payload []byte, binaryData bool, emit func(Frame)) error {
	if binaryData {
		d.pending = append([]byte(nil), payload...)
	} else {
		if d.pending == nil {
			return ErrDesync
		}
		d.pending = append(d.pending, payload...)
	}

	for len(d.pending) > 0 {
		frame, n, err := Parse(d.pending)
		switch {
		case err == nil:
			emit(frame)
			d.pending = d.pending[n:]
		case errors.Is(err, ErrShort):
			// Not enough bytes yet; wait for the next continuation message.
			return nil
		default:
			// Unrecognized magic: drop the leading byte and resync rather
			// than wedge the stream on one bad chunk.
			d.pending = d.pending[1:]
			if d.OnResync != nil {
				d.OnResync()
			}
		}
	}
	return nil
}

// Reset discards any in-progress chunk, for use after a stream restart.
func (d *Demuxer) Reset() {
	d.pending = nil
}
