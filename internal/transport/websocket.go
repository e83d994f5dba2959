// SPDX-License-Identifier: MIT
package transport

import (
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	applog "spectra/internal/log"
	"spectra/spectrum"
)

// WebSocketTransport broadcasts spectrum frames as JSON to every
// connected WebSocket client. Frames are dropped, not queued, when the
// broadcast channel is full; a visualizer only ever wants the latest
// frame anyway.
type WebSocketTransport struct {
	listener  net.Listener
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]struct{}
	clientsMu sync.Mutex
	broadcast chan [][]spectrum.Frequency
	server    *http.Server
	done      chan struct{}
	closeOnce sync.Once
}

var _ Transport = (*WebSocketTransport)(nil)

// NewWebSocketTransport starts an HTTP server on addr serving the
// spectrum stream at /spectrum.
func NewWebSocketTransport(addr string) (*WebSocketTransport, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %q: %w", addr, err)
	}

	t := &WebSocketTransport{
		listener: listener,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]struct{}),
		broadcast: make(chan [][]spectrum.Frequency, 64),
		done:      make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/spectrum", t.handleUpgrade)
	t.server = &http.Server{Handler: mux}

	go func() {
		applog.Infof("websocket: listening on %s", listener.Addr())
		if err := t.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			applog.Errorf("websocket: server error: %v", err)
		}
	}()
	go t.broadcastLoop()

	return t, nil
}

// Addr returns the server's bound address, which differs from the
// configured one when the port was 0.
func (t *WebSocketTransport) Addr() string {
	return t.listener.Addr().String()
}

func (t *WebSocketTransport) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Errorf("websocket: upgrade failed: %v", err)
		return
	}

	t.clientsMu.Lock()
	t.clients[conn] = struct{}{}
	total := len(t.clients)
	t.clientsMu.Unlock()
	applog.Infof("websocket: client connected, total %d", total)

	// The stream is one-way; the read loop exists only to notice the
	// client going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		t.clientsMu.Lock()
		delete(t.clients, conn)
		total := len(t.clients)
		t.clientsMu.Unlock()
		conn.Close()
		applog.Infof("websocket: client disconnected, total %d", total)
	}()
}

func (t *WebSocketTransport) broadcastLoop() {
	for {
		select {
		case <-t.done:
			return
		case frame := <-t.broadcast:
			t.clientsMu.Lock()
			for conn := range t.clients {
				if err := conn.WriteJSON(frame); err != nil {
					applog.Errorf("websocket: write failed, dropping client: %v", err)
					conn.Close()
					delete(t.clients, conn)
				}
			}
			t.clientsMu.Unlock()
		}
	}
}

// Send queues a frame for broadcast. A full queue drops the frame rather
// than back-pressuring the publisher; after Close it is a no-op.
func (t *WebSocketTransport) Send(frame [][]spectrum.Frequency) error {
	select {
	case <-t.done:
		return nil
	case t.broadcast <- frame:
	default:
	}
	return nil
}

// Close disconnects all clients and shuts the server down. It is safe to
// call more than once and concurrently with Send.
func (t *WebSocketTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
	})

	t.clientsMu.Lock()
	for conn := range t.clients {
		conn.Close()
	}
	t.clients = make(map[*websocket.Conn]struct{})
	t.clientsMu.Unlock()

	return t.server.Close()
}
