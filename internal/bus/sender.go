package bus

import "time"

// Sender is the outbound half of a bus connection. The dispatcher depends
// on this interface rather than *Client directly so tests can substitute
// busfake.Bus without a real TCP connection.
type Sender interface {
	Send(dg *Datagram, timeout time.Duration) error
}
