// Package stream serves the swarm over websockets: one environment message
// per connection, then frame messages at a fixed interval.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/swarm/sim"
)

const (
	writeWait = 5 * time.Second
	// clients only ever send pings
	maxMessageSize = 512
)

// FrameSource provides frames to broadcast. *sim.Driver implements it.
type FrameSource interface {
	Frame() sim.Frame
}

// Server fans frames out to websocket clients. Each client has a bounded
// queue; a client whose queue is full when a frame is published is dropped.
type Server struct {
	src      FrameSource
	interval time.Duration
	queue    int
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	seq     uint64
}

// NewServer creates a server broadcasting every interval with a per-client
// queue of the given length.
func NewServer(src FrameSource, interval time.Duration, queue int) *Server {
	return &Server{
		src:      src,
		interval: interval,
		queue:    max(queue, 1),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:  make(map[*client]struct{}),
	}
}

// Handler returns the HTTP handler serving /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	hello, err := json.Marshal(environmentMessage(s.src.Frame()))
	if err != nil {
		slog.Error("encoding environment", "error", err)
		conn.Close()
		return
	}

	c := newClient(conn, s.queue)
	c.deliver(hello)
	s.add(c)
	slog.Info("stream client connected", "remote", r.RemoteAddr, "clients", s.Clients())

	go c.writeLoop()
	c.readLoop()

	s.remove(c)
	slog.Info("stream client disconnected", "remote", r.RemoteAddr, "clients", s.Clients())
}

func (s *Server) add(c *client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.close()
}

// Broadcast publishes one frame to every client without blocking.
func (s *Server) Broadcast(f sim.Frame) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	list := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		list = append(list, c)
	}
	s.mu.Unlock()

	if len(list) == 0 {
		return nil
	}

	data, err := json.Marshal(frameMessage(seq, f))
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	for _, c := range list {
		if !c.deliver(data) {
			slog.Warn("dropping slow stream client", "seq", seq)
			s.remove(c)
		}
	}
	return nil
}

// Run broadcasts a frame every interval until ctx is done, then closes all
// clients.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer s.closeAll()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Broadcast(s.src.Frame()); err != nil {
				return err
			}
		}
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	list := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		list = append(list, c)
	}
	s.mu.Unlock()
	for _, c := range list {
		s.remove(c)
	}
}

// ListenAndServe serves the feed on addr and broadcasts until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("stream listen: %w", err)
	}
	srv := &http.Server{Handler: s.Handler()}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	slog.Info("stream listening", "addr", ln.Addr().String())

	runErr := s.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("stream shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("stream serve: %w", err)
	}
	return runErr
}
