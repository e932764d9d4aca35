package jaus

import (
	"net"
	"sync"
	"time"
)

// The in-memory datagram link used by the package tests and by downstream
// integration tests: two PipeConns form a bidirectional in-order UDP stand-in
// that loses datagrams only through its injectable drop hook (for exercising
// retry paths) or when the receiving inbox is full.

// PipeAddr is a fake net.Addr naming one pipe endpoint.
type PipeAddr string

// Network implements net.Addr.
func (a PipeAddr) Network() string { return "pipe" }

// String implements net.Addr.
func (a PipeAddr) String() string { return string(a) }

// PipeGroupAddr is the stand-in multicast group address for pipe links.
var PipeGroupAddr net.Addr = PipeAddr("group")

type pipePacket struct {
	data []byte
	from net.Addr
}

// PipeConn is one endpoint of an in-memory datagram link. It implements
// net.PacketConn; every WriteTo delivers to the linked peer regardless of the
// target address, mirroring a two-host network.
type PipeConn struct {
	addr   PipeAddr
	inbox  chan pipePacket
	closed chan struct{}
	once   sync.Once

	mu   sync.Mutex
	peer *PipeConn
	drop func(data []byte, to net.Addr) bool
}

// NewPacketPipe returns two linked endpoints.
func NewPacketPipe() (*PipeConn, *PipeConn) {
	a := newPipeConn("pipe-a")
	b := newPipeConn("pipe-b")
	a.peer = b
	b.peer = a
	return a, b
}

// NewLoopbackConn returns an endpoint linked to itself: every datagram it
// sends arrives on its own inbox, like a multicast socket with loopback.
func NewLoopbackConn() *PipeConn {
	c := newPipeConn("pipe-loop")
	c.peer = c
	return c
}

func newPipeConn(name string) *PipeConn {
	return &PipeConn{
		addr:   PipeAddr(name),
		inbox:  make(chan pipePacket, 1024),
		closed: make(chan struct{}),
	}
}

// SetDrop installs a hook consulted before each delivery; returning true
// discards the datagram.
func (c *PipeConn) SetDrop(fn func(data []byte, to net.Addr) bool) {
	c.mu.Lock()
	c.drop = fn
	c.mu.Unlock()
}

// ReadFrom implements net.PacketConn.
func (c *PipeConn) ReadFrom(p []byte) (int, net.Addr, error) {
	select {
	case pkt := <-c.inbox:
		n := copy(p, pkt.data)
		return n, pkt.from, nil
	case <-c.closed:
		return 0, nil, net.ErrClosed
	}
}

// WriteTo implements net.PacketConn.
func (c *PipeConn) WriteTo(p []byte, addr net.Addr) (int, error) {
	c.mu.Lock()
	drop := c.drop
	peer := c.peer
	c.mu.Unlock()
	if drop != nil && drop(p, addr) {
		return len(p), nil
	}
	data := append([]byte(nil), p...)
	select {
	case peer.inbox <- pipePacket{data: data, from: c.addr}:
	case <-peer.closed:
	default:
		// a full inbox drops like a congested network would
	}
	return len(p), nil
}

// Close implements net.PacketConn.
func (c *PipeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

// LocalAddr implements net.PacketConn.
func (c *PipeConn) LocalAddr() net.Addr { return c.addr }

// SetDeadline implements net.PacketConn.
func (c *PipeConn) SetDeadline(t time.Time) error { return nil }

// SetReadDeadline implements net.PacketConn.
func (c *PipeConn) SetReadDeadline(t time.Time) error { return nil }

// SetWriteDeadline implements net.PacketConn.
func (c *PipeConn) SetWriteDeadline(t time.Time) error { return nil }
