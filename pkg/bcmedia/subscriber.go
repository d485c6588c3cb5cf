package bcmedia

import (
	"errors"
	"sync"
)

const defaultQueueSize = 64

// ErrSlowConsumer is delivered to a subscriber (and then the queue is
// closed) when its bounded queue would overflow even after dropping
// every P-frame already queued — i.e. an I-frame would have to be
// dropped to make room.
var ErrSlowConsumer = errors.New("bcmedia: subscriber too slow, disconnected")

// Subscriber is a single bounded fan-out destination for a Hub's
// frames. Frames is closed, after one final ErrSlowConsumer send on
// Errors, if the subscriber falls far enough behind.
type Subscriber struct {
	Frames chan Frame
	Errors chan error

	mu          sync.Mutex
	queue       []Frame
	sawKeyframe bool
	closed      bool
}

// NewSubscriber allocates a subscriber with the default queue depth.
func NewSubscriber() *Subscriber {
	return &Subscriber{
		Frames: make(chan Frame, 1),
		Errors: make(chan error, 1),
	}
}

// Hub fans a single camera's decoded frames out to any number of
// Subscribers, enforcing the keyframe-first and bounded-queue-with-
// priority-drop policy per subscriber independently.
type Hub struct {
	mu           sync.Mutex
	subs         map[*Subscriber]struct{}
	queueSize    int
	lastKeyframe *Frame
}

// NewHub creates a Hub with the given per-subscriber queue depth (0
// selects the default of 64).
func NewHub(queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Hub{subs: make(map[*Subscriber]struct{}), queueSize: queueSize}
}

// Subscribe registers sub and, if a keyframe has already been seen,
// immediately primes its queue with it so the new subscriber's first
// frame is always a keyframe per invariant.
func (h *Hub) Subscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[sub] = struct{}{}
	if h.lastKeyframe != nil {
		sub.push(*h.lastKeyframe, h.queueSize)
		sub.sawKeyframe = true
	}
}

// Unsubscribe removes sub from the fan-out set; it does not close the
// subscriber's channels, since the caller may still be draining them.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, sub)
}

// Publish delivers frame to every current subscriber.
func (h *Hub) Publish(frame Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if frame.Kind == KindKeyframe {
		f := frame
		h.lastKeyframe = &f
	}

	for sub := range h.subs {
		if !sub.deliver(frame, h.queueSize) {
			delete(h.subs, sub)
		}
	}
}

// deliver applies the keyframe-first and priority-drop policy for a
// single subscriber. It returns false once the subscriber has been
// disconnected for being too slow.
func (sub *Subscriber) deliver(frame Frame, queueSize int) bool {
	sub.mu.Lock()
	defer sub.mu.Unlock()

	if sub.closed {
		return false
	}

	if !sub.sawKeyframe {
		if frame.Kind != KindKeyframe {
			return true // drop until a keyframe arrives
		}
		sub.sawKeyframe = true
	}

	return sub.push(frame, queueSize)
}

// push enqueues frame, evicting queued P-frames before the I-frame
// itself would have to be dropped, and disconnecting the subscriber
// with ErrSlowConsumer if even that is not enough room.
func (sub *Subscriber) push(frame Frame, queueSize int) bool {
	sub.queue = append(sub.queue, frame)
	for len(sub.queue) > queueSize {
		if !sub.dropOnePFrame() {
			sub.closed = true
			select {
			case sub.Errors <- ErrSlowConsumer:
			default:
			}
			sub.queue = nil
			select {
			case <-sub.Frames:
			default:
			}
			close(sub.Frames)
			return false
		}
	}
	sub.flushLocked()
	return true
}

// dropOnePFrame removes the oldest queued Deltaframe/audio frame,
// preferring to keep I-frames and Info headers in the queue. It returns
// false if nothing droppable remains.
func (sub *Subscriber) dropOnePFrame() bool {
	for i, f := range sub.queue {
		if f.Kind != KindKeyframe && f.Kind != KindInfo {
			sub.queue = append(sub.queue[:i], sub.queue[i+1:]...)
			return true
		}
	}
	return false
}

// flushLocked pushes as many queued frames as fit into the Frames
// channel (capacity 1) without blocking; frames that don't fit stay queued
// for the next push/flush.
func (sub *Subscriber) flushLocked() {
	for len(sub.queue) > 0 {
		select {
		case sub.Frames <- sub.queue[0]:
			sub.queue = sub.queue[1:]
		default:
			return
		}
	}
}

// Flush attempts to drain any frames queued but not yet delivered,
// useful after a slow consumer catches up and drains Frames.
func (sub *Subscriber) Flush() {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	sub.flushLocked()
}
