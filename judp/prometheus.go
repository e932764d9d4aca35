package judp

import "github.com/prometheus/client_golang/prometheus"

// Collector exports transport Metrics as Prometheus counters.
type Collector struct {
	metrics *Metrics

	packetsSent       *prometheus.Desc
	packetsReceived   *prometheus.Desc
	bytesSent         *prometheus.Desc
	bytesReceived     *prometheus.Desc
	messagesDelivered *prometheus.Desc
	messagesDropped   *prometheus.Desc
	queueDropped      *prometheus.Desc
	decodeErrors      *prometheus.Desc
	acksSent          *prometheus.Desc
	acksReceived      *prometheus.Desc
	retries           *prometheus.Desc
	sendFailures      *prometheus.Desc
}

// NewCollector wraps m for registration with a Prometheus registry.
func NewCollector(m *Metrics) *Collector {
	return &Collector{
		metrics: m,
		packetsSent: prometheus.NewDesc(
			"judp_packets_sent_total", "Packets handed to the socket.", nil, nil),
		packetsReceived: prometheus.NewDesc(
			"judp_packets_received_total", "Packets decoded from inbound datagrams.", nil, nil),
		bytesSent: prometheus.NewDesc(
			"judp_bytes_sent_total", "Datagram bytes written.", nil, nil),
		bytesReceived: prometheus.NewDesc(
			"judp_bytes_received_total", "Datagram bytes read.", nil, nil),
		messagesDelivered: prometheus.NewDesc(
			"judp_messages_delivered_total", "Reassembled messages delivered to a connection.", nil, nil),
		messagesDropped: prometheus.NewDesc(
			"judp_messages_dropped_total", "Messages with no registered local destination.", nil, nil),
		queueDropped: prometheus.NewDesc(
			"judp_queue_dropped_total", "Messages evicted from full receive queues.", nil, nil),
		decodeErrors: prometheus.NewDesc(
			"judp_decode_errors_total", "Datagrams that failed payload decode.", nil, nil),
		acksSent: prometheus.NewDesc(
			"judp_acks_sent_total", "ACKs synthesized for reliable senders.", nil, nil),
		acksReceived: prometheus.NewDesc(
			"judp_acks_received_total", "ACK/NACK packets matched to a pending send.", nil, nil),
		retries: prometheus.NewDesc(
			"judp_retries_total", "Reliable-send retransmissions.", nil, nil),
		sendFailures: prometheus.NewDesc(
			"judp_send_failures_total", "Reliable sends that exhausted retries.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.packetsSent
	ch <- c.packetsReceived
	ch <- c.bytesSent
	ch <- c.bytesReceived
	ch <- c.messagesDelivered
	ch <- c.messagesDropped
	ch <- c.queueDropped
	ch <- c.decodeErrors
	ch <- c.acksSent
	ch <- c.acksReceived
	ch <- c.retries
	ch <- c.sendFailures
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.metrics.Snapshot()
	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	counter(c.packetsSent, s.PacketsSent)
	counter(c.packetsReceived, s.PacketsReceived)
	counter(c.bytesSent, s.BytesSent)
	counter(c.bytesReceived, s.BytesReceived)
	counter(c.messagesDelivered, s.MessagesDelivered)
	counter(c.messagesDropped, s.MessagesDropped)
	counter(c.queueDropped, s.QueueDropped)
	counter(c.decodeErrors, s.DecodeErrors)
	counter(c.acksSent, s.AcksSent)
	counter(c.acksReceived, s.AcksReceived)
	counter(c.retries, s.Retries)
	counter(c.sendFailures, s.SendFailures)
}
