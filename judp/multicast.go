package judp

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"
)

// newMulticastConn binds the JAUS port on all interfaces, joins the
// multicast group, and enables loopback so co-hosted nodes hear each other.
func newMulticastConn(cfg Config) (net.PacketConn, *net.UDPAddr, error) {
	group := net.ParseIP(cfg.Group)
	if group == nil {
		return nil, nil, fmt.Errorf("judp: bad multicast group %q", cfg.Group)
	}
	groupAddr := &net.UDPAddr{IP: group, Port: cfg.Port}

	lc := net.ListenConfig{Control: reusePort}
	conn, err := lc.ListenPacket(context.Background(), "udp4", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return nil, nil, err
	}

	pc := ipv4.NewPacketConn(conn)
	if err := pc.JoinGroup(nil, &net.UDPAddr{IP: group}); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("join group %s: %w", group, err)
	}
	if err := pc.SetMulticastTTL(32); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("set multicast ttl: %w", err)
	}
	if err := pc.SetMulticastLoopback(true); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("set multicast loopback: %w", err)
	}
	return conn, groupAddr, nil
}

// reusePort lets several node processes share the JAUS port on one host.
func reusePort(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		if sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); sockErr != nil {
			return
		}
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
