package bus

import (
	"encoding/binary"
	"fmt"
)

// DatagramIterator parses an inbound datagram's wire bytes incrementally,
// mirroring the teacher's reader-based decode style rather than
// unmarshaling into a struct up front: dispatch only needs a handful of
// leading fields before deciding how to interpret the remaining payload.
type DatagramIterator struct {
	raw    []byte
	offset int

	recipients []Channel
	sender     Channel
	msgType    MessageType
}

// ParseDatagram reads the recipient list, sender, and message type from raw
// wire bytes, leaving the iterator positioned at the start of the payload.
func ParseDatagram(raw []byte) (*DatagramIterator, error) {
	it := &DatagramIterator{raw: raw}

	count, err := it.readUint8()
	if err != nil {
		return nil, fmt.Errorf("bus: reading recipient count: %w", err)
	}

	it.recipients = make([]Channel, count)
	for i := range it.recipients {
		ch, err := it.readUint64()
		if err != nil {
			return nil, fmt.Errorf("bus: reading recipient %d: %w", i, err)
		}
		it.recipients[i] = Channel(ch)
	}

	sender, err := it.readUint64()
	if err != nil {
		return nil, fmt.Errorf("bus: reading sender: %w", err)
	}
	it.sender = Channel(sender)

	msgType, err := it.readUint16()
	if err != nil {
		return nil, fmt.Errorf("bus: reading msgtype: %w", err)
	}
	it.msgType = MessageType(msgType)

	return it, nil
}

// Recipients returns the datagram's recipient channels.
func (it *DatagramIterator) Recipients() []Channel { return it.recipients }

// Sender returns the datagram's sender channel.
func (it *DatagramIterator) Sender() Channel { return it.sender }

// MessageType returns the datagram's message type.
func (it *DatagramIterator) MessageType() MessageType { return it.msgType }

// Remaining returns the number of unread payload bytes.
func (it *DatagramIterator) Remaining() int {
	return len(it.raw) - it.offset
}

func (it *DatagramIterator) readUint8() (uint8, error) {
	if it.Remaining() < 1 {
		return 0, fmt.Errorf("bus: truncated payload reading u8")
	}
	v := it.raw[it.offset]
	it.offset++
	return v, nil
}

func (it *DatagramIterator) readUint16() (uint16, error) {
	if it.Remaining() < 2 {
		return 0, fmt.Errorf("bus: truncated payload reading u16")
	}
	v := binary.LittleEndian.Uint16(it.raw[it.offset:])
	it.offset += 2
	return v, nil
}

func (it *DatagramIterator) readUint64() (uint64, error) {
	if it.Remaining() < 8 {
		return 0, fmt.Errorf("bus: truncated payload reading u64")
	}
	v := binary.LittleEndian.Uint64(it.raw[it.offset:])
	it.offset += 8
	return v, nil
}

// ReadUint8 reads a payload byte.
func (it *DatagramIterator) ReadUint8() (uint8, error) { return it.readUint8() }

// ReadUint16 reads a payload u16.
func (it *DatagramIterator) ReadUint16() (uint16, error) { return it.readUint16() }

// ReadUint32 reads a payload u32.
func (it *DatagramIterator) ReadUint32() (uint32, error) {
	if it.Remaining() < 4 {
		return 0, fmt.Errorf("bus: truncated payload reading u32")
	}
	v := binary.LittleEndian.Uint32(it.raw[it.offset:])
	it.offset += 4
	return v, nil
}

// ReadUint64 reads a payload u64.
func (it *DatagramIterator) ReadUint64() (uint64, error) { return it.readUint64() }

// ReadChannel reads a payload channel (u64).
func (it *DatagramIterator) ReadChannel() (Channel, error) {
	v, err := it.readUint64()
	return Channel(v), err
}

// ReadBlob reads n raw bytes verbatim, leaving their interpretation to the
// DC schema's field codec.
func (it *DatagramIterator) ReadBlob(n int) ([]byte, error) {
	if it.Remaining() < n {
		return nil, fmt.Errorf("bus: truncated payload reading %d-byte blob", n)
	}
	v := it.raw[it.offset : it.offset+n]
	it.offset += n
	return v, nil
}

// ReadRemainder returns every unread payload byte.
func (it *DatagramIterator) ReadRemainder() []byte {
	v := it.raw[it.offset:]
	it.offset = len(it.raw)
	return v
}
