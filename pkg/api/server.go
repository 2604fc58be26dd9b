// Package api is the booth's local remote-control server: a small REST surface for
// triggering captures and browsing photos, plus a websocket stream of booth events.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/net/netutil"
	"golang.org/x/time/rate"

	"github.com/dixieflatline76/Cheese/pkg/booth"
	"github.com/dixieflatline76/Cheese/pkg/event"
	"github.com/dixieflatline76/Cheese/pkg/gallery"
	"github.com/dixieflatline76/Cheese/util/log"
)

// MaxConnections caps simultaneous connections to the server.
const MaxConnections = 16

// Booth is the capture session as seen by the API.
type Booth interface {
	Trigger() (string, error)
	State() booth.State
}

// Photos is the gallery as seen by the API.
type Photos interface {
	List(ctx context.Context) ([]gallery.Entry, error)
	Resolve(name string) (string, error)
	Thumbnail(name string, w, h int) (image.Image, error)
}

// Server represents the Local REST/WebSocket server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	upgrader   websocket.Upgrader

	// WebSocket management
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex

	booth   Booth
	photos  Photos
	limiter *rate.Limiter
}

// NewServer creates a new API server. A nil limiter allows one trigger per second.
func NewServer(b Booth, photos Photos, limiter *rate.Limiter) *Server {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(time.Second), 1)
	}
	s := &Server{
		mux: http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*websocket.Conn]bool),
		booth:   b,
		photos:  photos,
		limiter: limiter,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /health", s.enableCORS(s.handleHealth))
	s.mux.HandleFunc("/capture", s.enableCORS(s.handleCapture))
	s.mux.HandleFunc("GET /photos", s.enableCORS(s.handleListPhotos))
	s.mux.HandleFunc("GET /photos/{name}", s.enableCORS(s.handlePhoto))
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// enableCORS adds CORS headers to the handler.
func (s *Server) enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on addr and serves until Stop. It blocks.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln, limited to MaxConnections concurrent connections. It blocks.
func (s *Server) Serve(ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("API listening on %s", ln.Addr())
	err := s.httpServer.Serve(netutil.LimitListener(ln, MaxConnections))
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop stops the server and disconnects websocket clients.
func (s *Server) Stop() error {
	s.clientsMu.Lock()
	for c := range s.clients {
		c.Close()
		delete(s.clients, c)
	}
	s.clientsMu.Unlock()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// message is the websocket envelope.
type message struct {
	Type event.Kind `json:"type"`
	Data any        `json:"data"`
}

// Broadcast sends e to every connected websocket client. Clients that fail are dropped.
func (s *Server) Broadcast(e event.Event) {
	payload, err := json.Marshal(message{Type: e.Kind(), Data: e})
	if err != nil {
		log.Printf("Failed to encode %s event: %v", e.Kind(), err)
		return
	}

	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for client := range s.clients {
		_ = client.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := client.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("Failed to broadcast to client: %v", err)
			client.Close()
			delete(s.clients, client)
		}
	}
}

// Forward broadcasts every bus event until ctx is done.
func (s *Server) Forward(ctx context.Context, bus *event.Bus) {
	events, cancel := bus.Subscribe(event.DefaultBuffer)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			s.Broadcast(e)
		}
	}
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}
