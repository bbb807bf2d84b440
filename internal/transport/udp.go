// Package transport is the datagram endpoint of the controller: one
// socket for request/reply, one for outgoing position events. The
// protocol carries no request IDs; the client serializes requests.
package transport

import (
	"fmt"
	"net"
	"time"

	"github.com/cjeanneret/RotGo/internal/debug"
)

// bufSize matches the client's datagram buffer.
const bufSize = 128

// Conn is a UDP transport bound to the request address, sending
// events to a fixed per-deployment client address.
type Conn struct {
	req     *net.UDPConn
	evt     *net.UDPConn
	evtAddr *net.UDPAddr
	buf     [bufSize]byte
}

// Listen binds the request socket and resolves the event destination.
func Listen(requestAddr, eventAddr string) (*Conn, error) {
	laddr, err := net.ResolveUDPAddr("udp", requestAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve request addr: %w", err)
	}
	req, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", requestAddr, err)
	}

	eaddr, err := net.ResolveUDPAddr("udp", eventAddr)
	if err != nil {
		req.Close()
		return nil, fmt.Errorf("resolve event addr: %w", err)
	}
	evt, err := net.ListenUDP("udp", nil)
	if err != nil {
		req.Close()
		return nil, fmt.Errorf("open event socket: %w", err)
	}

	debug.Info("Transport: requests on %s, events to %s", req.LocalAddr(), eaddr)
	return &Conn{req: req, evt: evt, evtAddr: eaddr}, nil
}

// Poll waits up to timeout for one request datagram. A quiet interval
// returns an empty command and no error, so the caller's loop timing
// is bounded either way.
func (c *Conn) Poll(timeout time.Duration) (string, net.Addr, error) {
	if err := c.req.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", nil, err
	}
	n, addr, err := c.req.ReadFromUDP(c.buf[:])
	if err != nil {
		if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
			return "", nil, nil
		}
		return "", nil, err
	}
	return string(c.buf[:n]), addr, nil
}

// Reply sends the response for a request back to its source address.
func (c *Conn) Reply(addr net.Addr, payload string) error {
	_, err := c.req.WriteTo([]byte(payload), addr)
	return err
}

// SendEvent fires one event datagram at the configured client
// address. No acknowledgement is expected.
func (c *Conn) SendEvent(payload string) error {
	_, err := c.evt.WriteToUDP([]byte(payload), c.evtAddr)
	return err
}

func (c *Conn) Close() error {
	c.evt.Close()
	return c.req.Close()
}
