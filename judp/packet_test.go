package judp

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fhackett/gojaus/encoding"
	"github.com/fhackett/gojaus/messages"
)

var samplePayload = []byte{
	0x02,                   // transport version
	0x00,                   // message type + HC flags
	0x11, 0x00,             // data size = 17
	0x09,                   // priority STANDARD, broadcast GLOBAL
	0xFF, 0xFF, 0xFF, 0xFF, // destination 65535.255.255
	0x02, 0x01, 0xE8, 0x03, // source 1000.1.2
	0x00, 0x2B, 0x02, // contents: QueryIdentification
	0x04, 0x00, // sequence number
}

func TestPayloadDecode(t *testing.T) {
	var payload Payload
	if err := encoding.Unmarshal(samplePayload, &payload); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(payload.Packets) != 1 {
		t.Fatalf("got %d packets, want 1", len(payload.Packets))
	}
	p := payload.Packets[0]
	if p.DataSize() != 17 {
		t.Errorf("DataSize = %d, want 17", p.DataSize())
	}
	if p.DataFlags != SinglePacket {
		t.Errorf("DataFlags = %d, want SINGLE_PACKET", p.DataFlags)
	}
	if p.Priority != PriorityStandard {
		t.Errorf("Priority = %d, want STANDARD", p.Priority)
	}
	if p.Broadcast != BroadcastGlobal {
		t.Errorf("Broadcast = %d, want GLOBAL", p.Broadcast)
	}
	if p.AckNack != NoResponseRequired {
		t.Errorf("AckNack = %d, want NO_RESPONSE_REQUIRED", p.AckNack)
	}
	wantSrc := messages.Id{Subsystem: 1000, Node: 1, Component: 2}
	if p.SourceID != wantSrc {
		t.Errorf("SourceID = %+v, want %+v", p.SourceID, wantSrc)
	}
	if p.DestinationID != messages.BroadcastId {
		t.Errorf("DestinationID = %+v, want broadcast", p.DestinationID)
	}
	if !bytes.Equal(p.Contents, []byte{0x00, 0x2B, 0x02}) {
		t.Errorf("Contents = %x", p.Contents)
	}
	if p.SequenceNumber != 4 {
		t.Errorf("SequenceNumber = %d, want 4", p.SequenceNumber)
	}
}

func TestPayloadEncode(t *testing.T) {
	payload := Payload{Packets: []Packet{{
		Priority:       PriorityStandard,
		Broadcast:      BroadcastGlobal,
		DataFlags:      SinglePacket,
		DestinationID:  messages.BroadcastId,
		SourceID:       messages.Id{Subsystem: 1000, Node: 1, Component: 2},
		Contents:       []byte{0x00, 0x2B, 0x02},
		SequenceNumber: 4,
	}}}
	data, err := encoding.Marshal(&payload)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(data, samplePayload) {
		t.Fatalf("encoded = %x\nwant      %x", data, samplePayload)
	}
}

func TestPayloadBadVersion(t *testing.T) {
	data := append([]byte(nil), samplePayload...)
	data[0] = 0x01
	var payload Payload
	err := encoding.Unmarshal(data, &payload)
	if !errors.Is(err, encoding.ErrUnsupportedVersion) {
		t.Fatalf("err = %v, want ErrUnsupportedVersion", err)
	}
}

func TestPacketEmptyContents(t *testing.T) {
	ack := Packet{
		AckNack:        Ack,
		DataFlags:      SinglePacket,
		DestinationID:  messages.Id{Subsystem: 1, Node: 1, Component: 1},
		SourceID:       messages.Id{Subsystem: 1, Node: 1, Component: 2},
		SequenceNumber: 9,
	}
	w := encoding.NewWriter()
	if err := ack.MarshalJAUS(w); err != nil {
		t.Fatalf("MarshalJAUS: %v", err)
	}
	data := w.Bytes()
	if len(data) != packetOverhead {
		t.Fatalf("encoded %d bytes, want %d", len(data), packetOverhead)
	}
	var out Packet
	if err := out.UnmarshalJAUS(encoding.NewReader(data)); err != nil {
		t.Fatalf("UnmarshalJAUS: %v", err)
	}
	if out.AckNack != Ack || out.SequenceNumber != 9 || len(out.Contents) != 0 {
		t.Fatalf("round trip = %+v", out)
	}
}

func TestPacketTruncated(t *testing.T) {
	var p Packet
	err := p.UnmarshalJAUS(encoding.NewReader(samplePayload[1:8]))
	if !errors.Is(err, encoding.ErrTruncatedInput) {
		t.Fatalf("err = %v, want ErrTruncatedInput", err)
	}
}

func TestPacketBadMessageType(t *testing.T) {
	data := append([]byte(nil), samplePayload[1:]...)
	data[0] = 0x01 // message_type = 1
	var p Packet
	err := p.UnmarshalJAUS(encoding.NewReader(data))
	if !errors.Is(err, encoding.ErrInvariantViolation) {
		t.Fatalf("err = %v, want ErrInvariantViolation", err)
	}
}
