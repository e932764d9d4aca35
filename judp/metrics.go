package judp

import "sync/atomic"

// Metrics tracks transport counters. All fields are updated atomically from
// the transport's send and receive loops and may be read at any time.
type Metrics struct {
	PacketsSent     atomic.Uint64 // packets handed to the socket
	PacketsReceived atomic.Uint64 // packets decoded from inbound datagrams
	BytesSent       atomic.Uint64 // datagram bytes written
	BytesReceived   atomic.Uint64 // datagram bytes read

	MessagesDelivered atomic.Uint64 // reassembled messages handed to a connection
	MessagesDropped   atomic.Uint64 // messages with no local destination
	QueueDropped      atomic.Uint64 // messages evicted by a full receive queue

	DecodeErrors atomic.Uint64 // datagrams that failed payload decode
	AcksSent     atomic.Uint64 // ACKs synthesized for reliable senders
	AcksReceived atomic.Uint64 // ACK/NACK packets matched to a resolver
	Retries      atomic.Uint64 // reliable-send retransmissions
	SendFailures atomic.Uint64 // reliable sends that exhausted their retries
}

// Snapshot is a point-in-time copy of every counter.
type Snapshot struct {
	PacketsSent       uint64
	PacketsReceived   uint64
	BytesSent         uint64
	BytesReceived     uint64
	MessagesDelivered uint64
	MessagesDropped   uint64
	QueueDropped      uint64
	DecodeErrors      uint64
	AcksSent          uint64
	AcksReceived      uint64
	Retries           uint64
	SendFailures      uint64
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		PacketsSent:       m.PacketsSent.Load(),
		PacketsReceived:   m.PacketsReceived.Load(),
		BytesSent:         m.BytesSent.Load(),
		BytesReceived:     m.BytesReceived.Load(),
		MessagesDelivered: m.MessagesDelivered.Load(),
		MessagesDropped:   m.MessagesDropped.Load(),
		QueueDropped:      m.QueueDropped.Load(),
		DecodeErrors:      m.DecodeErrors.Load(),
		AcksSent:          m.AcksSent.Load(),
		AcksReceived:      m.AcksReceived.Load(),
		Retries:           m.Retries.Load(),
		SendFailures:      m.SendFailures.Load(),
	}
}
