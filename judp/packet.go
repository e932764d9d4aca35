// Package judp implements the JAUS-over-UDP transport: packet and payload
// framing, fragmentation and reassembly, sequence numbering, acknowledged
// delivery with retry, and multicast discovery on the JAUS group.
package judp

import (
	"fmt"

	"github.com/fhackett/gojaus/encoding"
	"github.com/fhackett/gojaus/messages"
)

// Transport constants.
const (
	// Port is the default JAUS UDP port.
	Port = 3794

	// MulticastGroup is the JAUS multicast discovery group.
	MulticastGroup = "224.3.29.71"

	// MaxPayloadSize bounds a datagram, version byte included.
	MaxPayloadSize = 512

	// TransportVersion is the only supported payload version byte.
	TransportVersion = 2

	// packetOverhead is the uncompressed packet header+trailer size.
	packetOverhead = 14

	// packetOverheadHC adds the two header-compression bytes.
	packetOverheadHC = 16

	// singlePacketOverhead also counts the payload version byte; it bounds
	// the contents a lone packet may carry inside one datagram.
	singlePacketOverhead = packetOverhead + 1
)

// maxContentsPerPacket is the fragmentation threshold.
const maxContentsPerPacket = MaxPayloadSize - singlePacketOverhead

// DataFlags positions a packet within a fragmented message.
type DataFlags uint8

const (
	SinglePacket DataFlags = 0
	FirstPacket  DataFlags = 1
	NormalPacket DataFlags = 2
	LastPacket   DataFlags = 3
)

// HCFlags is the header-compression mode.
type HCFlags uint8

const (
	HCNone       HCFlags = 0
	HCRequested  HCFlags = 1
	HCLength     HCFlags = 2
	HCCompressed HCFlags = 3
)

// Priority orders competing traffic.
type Priority uint8

const (
	PriorityLow      Priority = 0
	PriorityStandard Priority = 1
	PriorityHigh     Priority = 2
	PrioritySafety   Priority = 3
)

// BroadcastFlags selects unicast or multicast delivery.
type BroadcastFlags uint8

const (
	BroadcastNone   BroadcastFlags = 0
	BroadcastLocal  BroadcastFlags = 1
	BroadcastGlobal BroadcastFlags = 2
)

// AckNackFlags carries the reliability handshake.
type AckNackFlags uint8

const (
	NoResponseRequired AckNackFlags = 0
	ResponseRequired   AckNackFlags = 1
	Nack               AckNackFlags = 2
	Ack                AckNackFlags = 3
)

// Packet is one JUDP packet. DataSize is derived from Contents on encode and
// checked on decode rather than stored.
type Packet struct {
	HCFlags        HCFlags
	HCNumber       uint8
	HCLength       uint8
	Priority       Priority
	Broadcast      BroadcastFlags
	AckNack        AckNackFlags
	DataFlags      DataFlags
	DestinationID  messages.Id
	SourceID       messages.Id
	Contents       []byte
	SequenceNumber uint16
}

// overhead is the header+trailer size given the HC mode.
func (p *Packet) overhead() int {
	if p.HCFlags != HCNone {
		return packetOverheadHC
	}
	return packetOverhead
}

// DataSize is the total encoded packet length in bytes.
func (p *Packet) DataSize() int {
	return len(p.Contents) + p.overhead()
}

// MarshalJAUS writes the bit-exact packet layout: the header fields are
// packed low-bit-first within each byte.
func (p *Packet) MarshalJAUS(w *encoding.Writer) error {
	w.WriteBits(0, 6) // message_type, always zero
	w.WriteBits(uint64(p.HCFlags), 2)
	w.WriteUintLE(uint64(p.DataSize()), 2)
	if p.HCFlags != HCNone {
		w.WriteU8(p.HCNumber)
		w.WriteU8(p.HCLength)
	}
	w.WriteBits(uint64(p.Priority), 2)
	w.WriteBits(uint64(p.Broadcast), 2)
	w.WriteBits(uint64(p.AckNack), 2)
	w.WriteBits(uint64(p.DataFlags), 2)
	if err := encoding.MarshalTo(w, p.DestinationID); err != nil {
		return err
	}
	if err := encoding.MarshalTo(w, p.SourceID); err != nil {
		return err
	}
	w.WriteBytes(p.Contents)
	w.WriteUintLE(uint64(p.SequenceNumber), 2)
	return nil
}

// UnmarshalJAUS reads one packet, validating the reserved message-type field
// and the declared data size.
func (p *Packet) UnmarshalJAUS(r *encoding.Reader) error {
	messageType, err := r.ReadBits(6)
	if err != nil {
		return err
	}
	if messageType != 0 {
		return fmt.Errorf("judp: message_type %d: %w", messageType, encoding.ErrInvariantViolation)
	}
	hc, err := r.ReadBits(2)
	if err != nil {
		return err
	}
	p.HCFlags = HCFlags(hc)
	dataSize, err := r.ReadUintLE(2)
	if err != nil {
		return err
	}
	if p.HCFlags != HCNone {
		if p.HCNumber, err = r.ReadU8(); err != nil {
			return err
		}
		if p.HCLength, err = r.ReadU8(); err != nil {
			return err
		}
	}
	flags, err := r.ReadBits(8)
	if err != nil {
		return err
	}
	p.Priority = Priority(flags & 0x3)
	p.Broadcast = BroadcastFlags(flags >> 2 & 0x3)
	p.AckNack = AckNackFlags(flags >> 4 & 0x3)
	p.DataFlags = DataFlags(flags >> 6 & 0x3)
	if p.Broadcast > BroadcastGlobal {
		return fmt.Errorf("judp: broadcast flag %d: %w", p.Broadcast, encoding.ErrInvalidEnumValue)
	}
	if err := encoding.UnmarshalFrom(r, &p.DestinationID); err != nil {
		return err
	}
	if err := encoding.UnmarshalFrom(r, &p.SourceID); err != nil {
		return err
	}
	contentsLen := int(dataSize) - p.overhead()
	if contentsLen < 0 {
		return fmt.Errorf("judp: data_size %d below overhead: %w", dataSize, encoding.ErrInvariantViolation)
	}
	contents, err := r.ReadBytes(contentsLen)
	if err != nil {
		return err
	}
	p.Contents = append([]byte(nil), contents...)
	seq, err := r.ReadUintLE(2)
	if err != nil {
		return err
	}
	p.SequenceNumber = uint16(seq)
	return nil
}
