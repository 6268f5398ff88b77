// Package transport implements the TCP framing the Manager's
// connections ride on top of, per §6: a 4-byte choice+length header
// followed by that many bytes of body.
package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// ErrFrameTooLarge guards against a declared length that would exhaust
// memory on a corrupt or hostile peer.
var ErrFrameTooLarge = errors.New("transport: frame exceeds maximum size")

// MaxFrameSize bounds a single APDU's wire length (header + body).
const MaxFrameSize = 64 * 1024

// Conn wraps one TCP connection to a Agent, applying the choice+length
// framing and the socket tuning appropriate to a long-lived,
// low-latency association (Nagle disabled, keepalive on).
type Conn struct {
	nc net.Conn
}

// Dial opens a Manager-initiated connection to addr.
func Dial(addr string, timeout time.Duration) (*Conn, error) {
	nc, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	c := &Conn{nc: nc}
	c.tune()
	return c, nil
}

// Wrap adapts an already-accepted net.Conn (from a listener) into a Conn.
func Wrap(nc net.Conn) *Conn {
	c := &Conn{nc: nc}
	c.tune()
	return c
}

func (c *Conn) tune() {
	tc, ok := c.nc.(*net.TCPConn)
	if !ok {
		return
	}
	_ = tc.SetNoDelay(true)
	_ = tc.SetKeepAlive(true)
	_ = tc.SetKeepAlivePeriod(30 * time.Second)

	raw, err := tc.SyscallConn()
	if err != nil {
		return
	}
	_ = raw.Control(func(fd uintptr) {
		_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	})
}

// Send implements fsm.Transport: writes one complete APDU frame.
func (c *Conn) Send(frame []byte) error {
	if len(frame) > MaxFrameSize {
		return ErrFrameTooLarge
	}
	_, err := c.nc.Write(frame)
	return err
}

// ReadFrame blocks for exactly one framed APDU (header + body) and
// returns the full frame, including the 4-byte header, ready to hand
// to codec.DecodeAPDU.
func (c *Conn) ReadFrame() ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(c.nc, header[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint16(header[2:4])
	if int(length)+4 > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	frame := make([]byte, 4+int(length))
	copy(frame, header[:])
	if _, err := io.ReadFull(c.nc, frame[4:]); err != nil {
		return nil, fmt.Errorf("transport: reading body: %w", err)
	}
	return frame, nil
}

// Close shuts down the underlying socket.
func (c *Conn) Close() error {
	return c.nc.Close()
}

// RemoteAddr reports the peer address, used for logging and the
// association-events audit trail.
func (c *Conn) RemoteAddr() string {
	if c.nc == nil {
		return ""
	}
	return c.nc.RemoteAddr().String()
}
