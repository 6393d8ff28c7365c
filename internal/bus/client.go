package bus

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// lengthTagSize is the width of the length prefix the message bus puts
// ahead of every framed datagram on the wire.
const lengthTagSize = 2

// maxDatagramSize is the largest datagram body the 2-byte length tag can
// express; Send rejects any larger outbound datagram.
const maxDatagramSize = 1<<16 - 1

// Client is a persistent TCP connection to the message bus. It is safe for
// one concurrent writer and one concurrent reader (the dispatch loop reads,
// handler code writes), matching the single-threaded dispatcher in §5.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader

	mu sync.Mutex // serializes writes only
}

// Dial establishes a fresh TCP connection to the message bus at addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bus: dial %s: %w", addr, err)
	}
	return &Client{conn: conn, reader: bufio.NewReader(conn)}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Send frames and writes a datagram. Per §5's non-blocking-sink
// requirement, a write deadline bounds how long a stalled bus connection
// can hold up the dispatcher.
func (c *Client) Send(dg *Datagram, timeout time.Duration) error {
	body, err := dg.Bytes()
	if err != nil {
		return err
	}
	if len(body) > maxDatagramSize {
		return fmt.Errorf("bus: outbound datagram of %d bytes exceeds max size %d", len(body), maxDatagramSize)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return fmt.Errorf("bus: set write deadline: %w", err)
		}
	}

	frame := make([]byte, lengthTagSize+len(body))
	binary.LittleEndian.PutUint16(frame, uint16(len(body)))
	copy(frame[lengthTagSize:], body)

	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("bus: write datagram: %w", err)
	}
	return nil
}

// Recv blocks until one full datagram has been read and parsed.
func (c *Client) Recv() (*DatagramIterator, error) {
	var lenBuf [lengthTagSize]byte
	if _, err := io.ReadFull(c.reader, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("bus: read length tag: %w", err)
	}
	size := binary.LittleEndian.Uint16(lenBuf[:])

	body := make([]byte, size)
	if _, err := io.ReadFull(c.reader, body); err != nil {
		return nil, fmt.Errorf("bus: read datagram body: %w", err)
	}

	return ParseDatagram(body)
}

// Subscribe issues the startup CONTROL_ADD_CHANNEL / CONTROL_ADD_RANGE pair
// that puts the caller's own channel and configured DOID range on the bus's
// routing table. Per §4.1 this is the Range Subscriber's entire startup
// responsibility.
func (c *Client) Subscribe(self Channel, min, max uint32, timeout time.Duration) error {
	addChannel := NewDatagram(nil, self, MsgControlAddChannel).AddChannel(self)
	if err := c.Send(addChannel, timeout); err != nil {
		return fmt.Errorf("bus: subscribe own channel: %w", err)
	}

	addRange := NewDatagram(nil, self, MsgControlAddRange).
		AddUint64(uint64(min)).
		AddUint64(uint64(max))
	if err := c.Send(addRange, timeout); err != nil {
		return fmt.Errorf("bus: subscribe doid range: %w", err)
	}

	return nil
}
