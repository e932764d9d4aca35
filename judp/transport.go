package judp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fhackett/gojaus/encoding"
	"github.com/fhackett/gojaus/messages"
)

var log = logrus.WithField("pkg", "judp")

var (
	// ErrSendFailed means a reliable send exhausted its retry budget.
	ErrSendFailed = errors.New("judp: send failed")

	// ErrClosed means the transport was closed.
	ErrClosed = errors.New("judp: transport closed")
)

// Config tunes a Transport. The zero value selects the JAUS defaults.
type Config struct {
	// Port is the UDP port to bind and the multicast port. Default 3794.
	Port int

	// Group is the multicast group address. Default 224.3.29.71.
	Group string

	// SendInterval is the cadence of the batching send loop. Default 20ms.
	SendInterval time.Duration

	// AckTimeout bounds one wait for an ACK. Default 5s.
	AckTimeout time.Duration

	// AckRetries is how many retransmissions follow the first attempt.
	// Default 5.
	AckRetries int

	// QueueSize bounds each connection's receive queue; the oldest message
	// is dropped on overflow. Default 256.
	QueueSize int
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = Port
	}
	if c.Group == "" {
		c.Group = MulticastGroup
	}
	if c.SendInterval == 0 {
		c.SendInterval = 20 * time.Millisecond
	}
	if c.AckTimeout == 0 {
		c.AckTimeout = 5 * time.Second
	}
	if c.AckRetries == 0 {
		c.AckRetries = 5
	}
	if c.QueueSize == 0 {
		c.QueueSize = 256
	}
	return c
}

type idPair struct {
	src, dst messages.Id
}

type inbound struct {
	contents []byte
	source   messages.Id
}

// Transport multiplexes JUDP traffic for any number of local components over
// one UDP socket joined to the JAUS multicast group.
type Transport struct {
	cfg     Config
	conn    net.PacketConn
	group   net.Addr
	metrics Metrics

	mu           sync.Mutex
	routings     map[messages.Id]net.Addr
	accumulators map[messages.Id]map[uint16]*Packet
	resolvers    map[messages.Id]map[uint16]chan *Packet
	seqs         map[idPair]uint16
	queue        []*Packet
	conns        map[messages.Id]*Connection

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New binds the JAUS UDP port, joins the multicast group, and starts the
// transport's send and receive loops.
func New(cfg Config) (*Transport, error) {
	cfg = cfg.withDefaults()
	conn, group, err := newMulticastConn(cfg)
	if err != nil {
		return nil, fmt.Errorf("judp: bind: %w", err)
	}
	return NewWithConn(conn, group, cfg), nil
}

// NewWithConn runs a transport over an existing datagram socket. Tests use
// this with an in-memory link; production callers should prefer New.
func NewWithConn(conn net.PacketConn, group net.Addr, cfg Config) *Transport {
	t := &Transport{
		cfg:          cfg.withDefaults(),
		conn:         conn,
		group:        group,
		routings:     make(map[messages.Id]net.Addr),
		accumulators: make(map[messages.Id]map[uint16]*Packet),
		resolvers:    make(map[messages.Id]map[uint16]chan *Packet),
		seqs:         make(map[idPair]uint16),
		conns:        make(map[messages.Id]*Connection),
		closed:       make(chan struct{}),
	}
	t.wg.Add(2)
	go t.sendLoop()
	go t.receiveLoop()
	return t
}

// Metrics exposes the transport counters.
func (t *Transport) Metrics() *Metrics {
	return &t.metrics
}

// Connect registers a local component id and returns its connection facade.
// Reconnecting an id replaces the previous registration.
func (t *Transport) Connect(id messages.Id) *Connection {
	c := &Connection{
		transport: t,
		id:        id,
		queue:     make(chan inbound, t.cfg.QueueSize),
	}
	t.mu.Lock()
	t.conns[id] = c
	t.mu.Unlock()
	return c
}

// AddRoute seeds the routing table with a static entry. Routes are otherwise
// learned from received packets, which overwrite static entries.
func (t *Transport) AddRoute(id messages.Id, addr net.Addr) {
	t.mu.Lock()
	t.routings[id] = addr
	t.mu.Unlock()
}

// Close stops both loops, closes the socket, and fails every pending
// reliable send with ErrClosed.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		close(t.closed)
		t.conn.Close()
		t.wg.Wait()
		t.mu.Lock()
		for _, byseq := range t.resolvers {
			for _, ch := range byseq {
				close(ch)
			}
		}
		t.resolvers = make(map[messages.Id]map[uint16]chan *Packet)
		t.mu.Unlock()
	})
	return nil
}

// options holds per-send parameters.
type options struct {
	priority   Priority
	broadcast  BroadcastFlags
	requireAck bool
}

// SendOption customizes one send.
type SendOption func(*options)

// WithPriority overrides the STANDARD priority.
func WithPriority(p Priority) SendOption {
	return func(o *options) { o.priority = p }
}

// WithBroadcast routes the message to the multicast group.
func WithBroadcast(b BroadcastFlags) SendOption {
	return func(o *options) { o.broadcast = b }
}

// WithAck requests acknowledged delivery; Send blocks until every fragment
// is ACKed or the retry budget is exhausted.
func WithAck() SendOption {
	return func(o *options) { o.requireAck = true }
}

// Send fragments contents and queues the fragments for delivery. With
// WithAck it blocks until all fragments are acknowledged.
func (t *Transport) Send(ctx context.Context, contents []byte, src, dst messages.Id, opts ...SendOption) error {
	o := options{priority: PriorityStandard, broadcast: BroadcastNone}
	for _, opt := range opts {
		opt(&o)
	}
	packets := t.split(contents, src, dst, o)
	if !o.requireAck {
		t.mu.Lock()
		t.queue = append(t.queue, packets...)
		t.mu.Unlock()
		return nil
	}
	errc := make(chan error, len(packets))
	var wg sync.WaitGroup
	for _, p := range packets {
		wg.Add(1)
		go func(p *Packet) {
			defer wg.Done()
			errc <- t.sendReliable(ctx, p)
		}(p)
	}
	wg.Wait()
	close(errc)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

// split cuts contents into packets that each fit one datagram, stamping every
// fragment with a fresh per-(src,dst) sequence number.
func (t *Transport) split(contents []byte, src, dst messages.Id, o options) []*Packet {
	ackNack := NoResponseRequired
	if o.requireAck {
		ackNack = ResponseRequired
	}
	mk := func(part []byte, flags DataFlags) *Packet {
		return &Packet{
			Priority:       o.priority,
			Broadcast:      o.broadcast,
			AckNack:        ackNack,
			DataFlags:      flags,
			DestinationID:  dst,
			SourceID:       src,
			Contents:       part,
			SequenceNumber: t.nextSeq(src, dst),
		}
	}
	if len(contents) <= maxContentsPerPacket {
		return []*Packet{mk(contents, SinglePacket)}
	}
	var parts [][]byte
	for len(contents) > maxContentsPerPacket {
		parts = append(parts, contents[:maxContentsPerPacket])
		contents = contents[maxContentsPerPacket:]
	}
	if len(contents) > 0 {
		parts = append(parts, contents)
	}
	packets := make([]*Packet, len(parts))
	for i, part := range parts {
		flags := NormalPacket
		switch i {
		case 0:
			flags = FirstPacket
		case len(parts) - 1:
			flags = LastPacket
		}
		packets[i] = mk(part, flags)
	}
	return packets
}

func (t *Transport) nextSeq(src, dst messages.Id) uint16 {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := idPair{src, dst}
	n := t.seqs[key]
	t.seqs[key] = n + 1
	return n
}

// enqueueWithResolver queues p and registers a resolver for its ACK, keyed by
// the remote peer and sequence number.
func (t *Transport) enqueueWithResolver(p *Packet) chan *Packet {
	ch := make(chan *Packet, 1)
	t.mu.Lock()
	byseq := t.resolvers[p.DestinationID]
	if byseq == nil {
		byseq = make(map[uint16]chan *Packet)
		t.resolvers[p.DestinationID] = byseq
	}
	byseq[p.SequenceNumber] = ch
	t.queue = append(t.queue, p)
	t.mu.Unlock()
	return ch
}

func (t *Transport) removeResolver(p *Packet) {
	t.mu.Lock()
	if byseq := t.resolvers[p.DestinationID]; byseq != nil {
		delete(byseq, p.SequenceNumber)
	}
	t.mu.Unlock()
}

// sendReliable retransmits p until it is ACKed or the budget runs out.
func (t *Transport) sendReliable(ctx context.Context, p *Packet) error {
	attempts := t.cfg.AckRetries + 1
	for i := 0; i < attempts; i++ {
		if i > 0 {
			t.metrics.Retries.Add(1)
		}
		ch := t.enqueueWithResolver(p)
		timer := time.NewTimer(t.cfg.AckTimeout)
		select {
		case resp, ok := <-ch:
			timer.Stop()
			if !ok {
				return ErrClosed
			}
			if resp.AckNack == Ack {
				return nil
			}
			// NACK: fall through to retry
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			t.removeResolver(p)
			return ctx.Err()
		case <-t.closed:
			timer.Stop()
			return ErrClosed
		}
		t.removeResolver(p)
	}
	t.metrics.SendFailures.Add(1)
	return fmt.Errorf("judp: %d attempts to %v unacknowledged: %w", attempts, p.DestinationID, ErrSendFailed)
}

// sendLoop drains the queue at a fixed cadence, batching packets into
// payloads per destination address.
func (t *Transport) sendLoop() {
	defer t.wg.Done()
	ticker := time.NewTicker(t.cfg.SendInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.closed:
			return
		case <-ticker.C:
			t.flushQueue()
		}
	}
}

func (t *Transport) flushQueue() {
	t.mu.Lock()
	queue := t.queue
	t.queue = nil
	t.mu.Unlock()
	if len(queue) == 0 {
		return
	}

	type pending struct {
		addr    net.Addr
		payload *Payload
	}
	byAddr := make(map[string]*pending)
	var order []string
	emit := func(p *pending) {
		data, err := encoding.Marshal(p.payload)
		if err != nil {
			log.WithError(err).Error("payload encode failed")
			return
		}
		n, err := t.conn.WriteTo(data, p.addr)
		if err != nil {
			log.WithError(err).WithField("addr", p.addr).Warn("datagram send failed")
			return
		}
		t.metrics.BytesSent.Add(uint64(n))
		t.metrics.PacketsSent.Add(uint64(len(p.payload.Packets)))
	}
	for _, pkt := range queue {
		addr, ok := t.destinationAddr(pkt)
		if !ok {
			log.WithFields(logrus.Fields{
				"dst": pkt.DestinationID,
				"seq": pkt.SequenceNumber,
			}).Warn("no route to destination, dropping packet")
			continue
		}
		key := addr.String()
		p := byAddr[key]
		if p == nil {
			p = &pending{addr: addr, payload: &Payload{}}
			byAddr[key] = p
			order = append(order, key)
		}
		if p.payload.size()+pkt.DataSize() > MaxPayloadSize {
			emit(p)
			p.payload = &Payload{}
		}
		p.payload.Packets = append(p.payload.Packets, *pkt)
	}
	for _, key := range order {
		if p := byAddr[key]; len(p.payload.Packets) > 0 {
			emit(p)
		}
	}
}

// destinationAddr resolves where a packet goes: the multicast group for
// broadcasts, the learned route otherwise.
func (t *Transport) destinationAddr(p *Packet) (net.Addr, bool) {
	if p.Broadcast == BroadcastLocal || p.Broadcast == BroadcastGlobal {
		return t.group, t.group != nil
	}
	t.mu.Lock()
	addr, ok := t.routings[p.DestinationID]
	t.mu.Unlock()
	return addr, ok
}

// receiveLoop decodes datagrams into payloads and processes every packet.
func (t *Transport) receiveLoop() {
	defer t.wg.Done()
	buf := make([]byte, 65536)
	for {
		n, addr, err := t.conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-t.closed:
				return
			default:
			}
			log.WithError(err).Warn("datagram receive failed")
			continue
		}
		t.metrics.BytesReceived.Add(uint64(n))
		var payload Payload
		if err := encoding.Unmarshal(buf[:n], &payload); err != nil {
			t.metrics.DecodeErrors.Add(1)
			log.WithError(err).WithField("addr", addr).Warn("payload decode failed")
			continue
		}
		for i := range payload.Packets {
			t.handlePacket(&payload.Packets[i], addr)
		}
	}
}

func (t *Transport) handlePacket(p *Packet, addr net.Addr) {
	t.metrics.PacketsReceived.Add(1)
	t.mu.Lock()
	t.routings[p.SourceID] = addr

	if p.AckNack == Ack || p.AckNack == Nack {
		var ch chan *Packet
		if byseq := t.resolvers[p.SourceID]; byseq != nil {
			ch = byseq[p.SequenceNumber]
			delete(byseq, p.SequenceNumber)
		}
		t.mu.Unlock()
		if ch != nil {
			t.metrics.AcksReceived.Add(1)
			select {
			case ch <- p:
			default:
			}
		}
		return
	}

	if p.AckNack == ResponseRequired {
		ack := &Packet{
			Priority:       p.Priority,
			Broadcast:      BroadcastNone,
			AckNack:        Ack,
			DataFlags:      p.DataFlags,
			DestinationID:  p.SourceID,
			SourceID:       p.DestinationID,
			SequenceNumber: p.SequenceNumber,
		}
		t.queue = append(t.queue, ack)
		t.metrics.AcksSent.Add(1)
	}

	acc := t.accumulators[p.DestinationID]
	if acc == nil {
		acc = make(map[uint16]*Packet)
		t.accumulators[p.DestinationID] = acc
	}
	acc[p.SequenceNumber] = p
	msg := reconstruct(p, acc)
	var conn *Connection
	if msg != nil {
		conn = t.conns[p.DestinationID]
	}
	t.mu.Unlock()

	if msg == nil {
		return
	}
	if conn == nil {
		t.metrics.MessagesDropped.Add(1)
		log.WithFields(logrus.Fields{
			"dst": p.DestinationID,
			"src": p.SourceID,
		}).Warn("message for unregistered destination dropped")
		return
	}
	conn.push(inbound{contents: msg, source: p.SourceID}, &t.metrics)
	t.metrics.MessagesDelivered.Add(1)
}

// reconstruct hands back the full message bytes if p completes one, removing
// the consumed fragments from the accumulator. A SINGLE_PACKET completes
// immediately.
func reconstruct(p *Packet, acc map[uint16]*Packet) []byte {
	if p.DataFlags == SinglePacket {
		if p.Contents == nil {
			return []byte{}
		}
		return p.Contents
	}
	first := p
	for first != nil && first.DataFlags != FirstPacket {
		first = acc[first.SequenceNumber-1]
	}
	if first == nil {
		return nil
	}
	var run []*Packet
	cur := first
	for cur != nil && cur.DataFlags != LastPacket {
		run = append(run, cur)
		cur = acc[cur.SequenceNumber+1]
	}
	if cur == nil {
		return nil
	}
	run = append(run, cur)
	var total int
	for _, f := range run {
		total += len(f.Contents)
	}
	msg := make([]byte, 0, total)
	for _, f := range run {
		msg = append(msg, f.Contents...)
		delete(acc, f.SequenceNumber)
	}
	return msg
}

// Connection is the per-component facade over a shared transport.
type Connection struct {
	transport *Transport
	id        messages.Id
	queue     chan inbound
}

// LocalID returns the component id this connection is bound to.
func (c *Connection) LocalID() messages.Id {
	return c.id
}

// Listen blocks for the next reassembled message addressed to this
// connection, returning its bytes and the sender id.
func (c *Connection) Listen(ctx context.Context) ([]byte, messages.Id, error) {
	select {
	case in := <-c.queue:
		return in.contents, in.source, nil
	case <-ctx.Done():
		return nil, messages.Id{}, ctx.Err()
	case <-c.transport.closed:
		return nil, messages.Id{}, ErrClosed
	}
}

// Send transmits contents from this connection's id.
func (c *Connection) Send(ctx context.Context, contents []byte, dst messages.Id, opts ...SendOption) error {
	return c.transport.Send(ctx, contents, c.id, dst, opts...)
}

// push enqueues an inbound message, evicting the oldest on overflow.
func (c *Connection) push(in inbound, m *Metrics) {
	for {
		select {
		case c.queue <- in:
			return
		default:
		}
		select {
		case <-c.queue:
			m.QueueDropped.Add(1)
		default:
		}
	}
}
