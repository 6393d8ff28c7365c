// Package bus implements the wire framing for the message bus transport:
// a length-prefixed datagram carrying a recipient list, a sender channel,
// a message type, and an opaque payload. This is the DBSS's only I/O
// surface; everything above this package speaks in terms of Datagram and
// DatagramIterator.
package bus

import (
	"encoding/binary"
	"fmt"
)

// Channel names either a single participant or, when constructed from a
// (parent, zone) pair, a location's broadcast group.
type Channel uint64

// LocationChannel returns the channel addressing every listener subscribed
// to broadcasts for the given (parent, zone) location.
func LocationChannel(parent, zone uint32) Channel {
	return Channel(uint64(parent)<<32 | uint64(zone))
}

// Datagram is an outbound message under construction: a recipient list, a
// sender, a message type, and a payload accumulated via the Add* methods.
//
// Wire shape (little-endian): recipient_count u8, (recipient_channel u64)*,
// sender_channel u64, msgtype u16, payload.
type Datagram struct {
	recipients []Channel
	sender     Channel
	msgType    MessageType
	payload    []byte
}

// NewDatagram starts a datagram addressed to recipients from sender, carrying msgType.
func NewDatagram(recipients []Channel, sender Channel, msgType MessageType) *Datagram {
	return &Datagram{
		recipients: recipients,
		sender:     sender,
		msgType:    msgType,
	}
}

// AddUint8 appends a single byte to the payload.
func (d *Datagram) AddUint8(v uint8) *Datagram {
	d.payload = append(d.payload, v)
	return d
}

// AddUint16 appends a little-endian u16 to the payload.
func (d *Datagram) AddUint16(v uint16) *Datagram {
	d.payload = binary.LittleEndian.AppendUint16(d.payload, v)
	return d
}

// AddUint32 appends a little-endian u32 to the payload.
func (d *Datagram) AddUint32(v uint32) *Datagram {
	d.payload = binary.LittleEndian.AppendUint32(d.payload, v)
	return d
}

// AddUint64 appends a little-endian u64 to the payload.
func (d *Datagram) AddUint64(v uint64) *Datagram {
	d.payload = binary.LittleEndian.AppendUint64(d.payload, v)
	return d
}

// AddChannel appends a channel as a little-endian u64.
func (d *Datagram) AddChannel(ch Channel) *Datagram {
	return d.AddUint64(uint64(ch))
}

// AddBlob appends raw, already-encoded field-value bytes verbatim. Field
// values are opaque to the bus layer; the DC schema owns their encoding.
func (d *Datagram) AddBlob(b []byte) *Datagram {
	d.payload = append(d.payload, b...)
	return d
}

// Recipients returns the datagram's recipient channels.
func (d *Datagram) Recipients() []Channel { return d.recipients }

// Sender returns the datagram's sender channel.
func (d *Datagram) Sender() Channel { return d.sender }

// MessageType returns the datagram's message type.
func (d *Datagram) MessageType() MessageType { return d.msgType }

// Bytes serializes the datagram to its wire form, without the outer
// length prefix (the transport layer in client.go adds that).
func (d *Datagram) Bytes() ([]byte, error) {
	if len(d.recipients) > 255 {
		return nil, fmt.Errorf("bus: datagram recipient count %d exceeds u8 range", len(d.recipients))
	}

	buf := make([]byte, 0, 1+8*len(d.recipients)+8+2+len(d.payload))
	buf = append(buf, uint8(len(d.recipients)))
	for _, r := range d.recipients {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(r))
	}
	buf = binary.LittleEndian.AppendUint64(buf, uint64(d.sender))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(d.msgType))
	buf = append(buf, d.payload...)
	return buf, nil
}
