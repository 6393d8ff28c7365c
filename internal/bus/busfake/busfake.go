// Package busfake implements an in-memory stand-in for the message bus,
// used by dispatcher tests to assert on outbound traffic without a real
// TCP connection.
package busfake

import (
	"sync"
	"time"

	"github.com/marmos91/dbss/internal/bus"
)

// Bus records every datagram sent through it and implements bus.Sender.
type Bus struct {
	mu  sync.Mutex
	out []*bus.Datagram
}

// New creates an empty fake bus.
func New() *Bus {
	return &Bus{}
}

// Send implements bus.Sender by recording the datagram.
func (b *Bus) Send(dg *bus.Datagram, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out = append(b.out, dg)
	return nil
}

// Sent returns every datagram sent so far, in send order.
func (b *Bus) Sent() []*bus.Datagram {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*bus.Datagram, len(b.out))
	copy(out, b.out)
	return out
}

// SentOfType returns every sent datagram matching msgType, in send order.
func (b *Bus) SentOfType(msgType bus.MessageType) []*bus.Datagram {
	var matches []*bus.Datagram
	for _, dg := range b.Sent() {
		if dg.MessageType() == msgType {
			matches = append(matches, dg)
		}
	}
	return matches
}

// CountOfType returns the number of sent datagrams matching msgType.
func (b *Bus) CountOfType(msgType bus.MessageType) int {
	return len(b.SentOfType(msgType))
}

// Reset clears the recorded history.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out = nil
}
