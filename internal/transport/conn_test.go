package transport

import (
	"encoding/binary"
	"net"
	"testing"
)

func TestSendReadFrameRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := Wrap(client)
	s := Wrap(server)

	body := []byte{0xAA, 0xBB, 0xCC}
	frame := make([]byte, 4+len(body))
	binary.BigEndian.PutUint16(frame[0:2], 0xE200)
	binary.BigEndian.PutUint16(frame[2:4], uint16(len(body)))
	copy(frame[4:], body)

	errCh := make(chan error, 1)
	go func() { errCh <- c.Send(frame) }()

	got, err := s.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(got) != len(frame) {
		t.Fatalf("ReadFrame returned %d bytes, want %d", len(got), len(frame))
	}
	for i := range frame {
		if got[i] != frame[i] {
			t.Fatalf("byte %d = %#02x, want %#02x", i, got[i], frame[i])
		}
	}
}

func TestSendRejectsOversizeFrame(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()
	c := Wrap(client)

	oversize := make([]byte, MaxFrameSize+1)
	if err := c.Send(oversize); err != ErrFrameTooLarge {
		t.Fatalf("Send oversize: err = %v, want ErrFrameTooLarge", err)
	}
}

func TestReadFrameRejectsOversizeDeclaredLength(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()
	s := Wrap(server)

	header := make([]byte, 4)
	binary.BigEndian.PutUint16(header[0:2], 0xE200)
	binary.BigEndian.PutUint16(header[2:4], 0xFFFF)

	errCh := make(chan error, 1)
	go func() {
		_, err := client.Write(header)
		errCh <- err
	}()

	_, err := s.ReadFrame()
	if err != ErrFrameTooLarge {
		t.Fatalf("ReadFrame: err = %v, want ErrFrameTooLarge", err)
	}
	<-errCh
}
