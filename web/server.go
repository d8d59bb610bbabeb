// Package web pushes live framebuffer snapshots to connected browsers over
// a WebSocket connection, replacing the teacher's Server-Sent-Events tile
// polling with an explicit broadcast the render driver drives directly.
package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// FrameMessage is the JSON envelope sent over the socket ahead of a PNG
// frame: a small stats header followed by the image itself, base64-free
// since WebSocket frames carry binary payloads natively.
type FrameMessage struct {
	AverageSamples float64 `json:"averageSamples"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
}

// Server accepts WebSocket connections on /ws and broadcasts frames to every
// connected client; connections that error out (closed, slow, whatever) are
// dropped from the registry rather than blocking the broadcaster.
type Server struct {
	port     int
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewServer constructs a Server listening on port, accepting connections
// from any origin — this is a local rendering tool, not a multi-tenant
// service, so the teacher's localhost-only CheckOrigin isn't appropriate
// here.
func NewServer(port int) *Server {
	return &Server{
		port: port,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Start registers the HTTP handlers and blocks serving connections.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/health", s.handleHealth)

	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("web: listening on http://localhost%s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: upgrade failed: %v", err)
		return
	}

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	// The client never sends anything meaningful back; ReadMessage just
	// blocks until the connection closes, which is how we notice a
	// disconnect without a separate ping/pong loop.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast encodes img as PNG and sends it, preceded by a JSON stats
// message, to every connected client. Suitable as the publish callback
// passed to a render driver's Run method.
func (s *Server) Broadcast(img *image.RGBA, averageSamples float64) {
	header := FrameMessage{
		AverageSamples: averageSamples,
		Width:          img.Bounds().Dx(),
		Height:         img.Bounds().Dy(),
	}
	headerData, err := json.Marshal(header)
	if err != nil {
		log.Printf("web: marshal frame header: %v", err)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		log.Printf("web: encode frame: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		if err := conn.WriteMessage(websocket.TextMessage, headerData); err != nil {
			s.dropLocked(conn)
			continue
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, buf.Bytes()); err != nil {
			s.dropLocked(conn)
		}
	}
}

// dropLocked removes a connection from the registry; callers must hold s.mu.
func (s *Server) dropLocked(conn *websocket.Conn) {
	conn.Close()
	delete(s.conns, conn)
}
