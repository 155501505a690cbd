package ws

import "sync"

// Outbox is a bounded queue of encoded messages for one connection.
// When it is full the oldest message is dropped, so a slow client never
// blocks the session that feeds it.
type Outbox struct {
	messages  chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewOutbox creates an outbox holding up to size messages.
func NewOutbox(size int) *Outbox {
	if size < 1 {
		size = 64 // Default buffer size
	}
	return &Outbox{
		messages: make(chan []byte, size),
		done:     make(chan struct{}),
	}
}

// Push queues a message without blocking.
func (o *Outbox) Push(msg []byte) {
	select {
	case <-o.done:
		return
	default:
	}

	select {
	case o.messages <- msg:
	default:
		// Full: drop the oldest and retry once
		select {
		case <-o.messages:
		default:
		}
		select {
		case o.messages <- msg:
		default:
		}
	}
}

// Messages returns the channel the write pump drains.
func (o *Outbox) Messages() <-chan []byte {
	return o.messages
}

// Done is closed once the outbox is closed.
func (o *Outbox) Done() <-chan struct{} {
	return o.done
}

// Close stops accepting messages. Safe to call multiple times.
func (o *Outbox) Close() {
	o.closeOnce.Do(func() {
		close(o.done)
	})
}
