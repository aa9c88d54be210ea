package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourusername/bracket-oracle/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The API is not browser-facing, skip origin checks
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamMessage is the envelope for WebSocket frames. Type is one of
// "progress", "result" or "error".
type streamMessage struct {
	Type     string                  `json:"type"`
	Progress *service.ProgressUpdate `json:"progress,omitempty"`
	Result   interface{}             `json:"result,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// handleSimulationStream runs a simulation and streams trial progress.
// The client sends a single simulation request frame, then receives
// progress frames followed by a result or error frame.
func (s *Server) handleSimulationStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithField("error", err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(30 * time.Second))

	var req service.SimulationRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.writeStreamError(conn, nil, "invalid request frame")
		return
	}
	if err := req.Validate(); err != nil {
		s.writeStreamError(conn, nil, err.Error())
		return
	}

	// Serialize writes: progress callbacks fire from the simulation
	// goroutine while ping frames may be written here.
	var writeMu sync.Mutex
	writeJSON := func(msg streamMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteJSON(msg)
	}

	sim, err := s.sims.RunSimulation(r.Context(), req, func(update service.ProgressUpdate) {
		if err := writeJSON(streamMessage{Type: "progress", Progress: &update}); err != nil {
			s.logger.WithField("error", err).Debug("Failed to write progress frame")
		}
	})
	if err != nil {
		s.writeStreamError(conn, &writeMu, err.Error())
		return
	}

	if err := writeJSON(streamMessage{Type: "result", Result: sim}); err != nil {
		s.logger.WithField("error", err).Warn("Failed to write result frame")
	}

	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

func (s *Server) writeStreamError(conn *websocket.Conn, mu *sync.Mutex, message string) {
	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(streamMessage{Type: "error", Error: message}); err != nil {
		s.logger.WithField("error", err).Debug("Failed to write error frame")
	}
}
