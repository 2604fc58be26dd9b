package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dixieflatline76/Cheese/config"
	"github.com/dixieflatline76/Cheese/pkg/booth"
	"github.com/dixieflatline76/Cheese/util/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "running",
		"version": config.AppVersion,
	}
	if s.booth != nil {
		st := s.booth.State()
		resp["phase"] = st.Phase.String()
		if st.Phase == booth.CountingDown {
			resp["remaining"] = st.Remaining
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCapture starts a countdown, like pressing the capture button.
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.booth == nil {
		writeError(w, http.StatusServiceUnavailable, "capture is not available")
		return
	}
	if !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "too many capture requests")
		return
	}

	id, err := s.booth.Trigger()
	if errors.Is(err, booth.ErrBusy) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"session_id": id})
}

// handleWebSocket upgrades the connection to WebSocket and keeps it registered for
// broadcasts until the client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	s.clientsMu.Lock()
	s.clients[conn] = true
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
	}()

	// Clients only send keepalives; reading is what notices a closed socket.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
