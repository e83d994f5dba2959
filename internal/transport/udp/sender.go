// SPDX-License-Identifier: MIT
// Package udp sends spectrum frames as compact binary datagrams, for
// consumers that cannot afford a WebSocket/JSON round-trip per frame.
package udp

import (
	"fmt"
	"net"
	"sync"

	applog "spectra/internal/log"
)

// Sender owns a connected UDP socket toward a single target address.
type Sender struct {
	conn   *net.UDPConn
	mu     sync.Mutex
	closed bool
}

// NewSender dials target ("host:port").
func NewSender(target string) (*Sender, error) {
	addr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target %q: %w", target, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP target %q: %w", target, err)
	}

	applog.Infof("udp: sending to %s", conn.RemoteAddr())
	return &Sender{conn: conn}, nil
}

// Send transmits data as one datagram.
func (s *Sender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("udp sender is closed")
	}
	if _, err := s.conn.Write(data); err != nil {
		return fmt.Errorf("failed to send UDP packet: %w", err)
	}
	return nil
}

// Close closes the socket. Further Sends fail.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close UDP connection: %w", err)
	}
	return nil
}
