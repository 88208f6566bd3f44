package main

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"

	"scenario-visualizer/internal/log"
	"scenario-visualizer/internal/metrics"
	"scenario-visualizer/internal/playback"
)

//go:embed static
var staticFiles embed.FS

type server struct {
	ctrl  *playback.Controller
	board *board
	hub   *wsHub
}

func newServer(ctrl *playback.Controller, b *board, hub *wsHub) *server {
	return &server{ctrl: ctrl, board: b, hub: hub}
}

func (s *server) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/api/playback/{command:start|stop}", s.handleCommand).Methods(http.MethodPost)
	r.HandleFunc("/ws", s.handleWebSocket)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	r.PathPrefix("/").Handler(http.FileServer(http.FS(static)))
	r.Use(withLogging)
	return r
}

func (s *server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.board.snapshot())
}

type commandResponse struct {
	Command string          `json:"command"`
	Applied bool            `json:"applied"`
	Status  playback.Status `json:"status"`
}

func (s *server) handleCommand(w http.ResponseWriter, r *http.Request) {
	command := mux.Vars(r)["command"]
	applied := s.dispatch(clientMessage{Type: command})
	writeJSON(w, http.StatusOK, commandResponse{
		Command: command,
		Applied: applied,
		Status:  s.ctrl.Status(),
	})
}

func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error(err, "WebSocket upgrade failed")
		return
	}
	err = s.board.subscribe(func(snap boardSnapshot) error { return s.hub.add(conn, snap) })
	if err != nil {
		log.Error(err, "Failed to send initial board snapshot")
		_ = conn.Close()
		return
	}
	go s.hub.readPump(conn, func(msg clientMessage) { s.dispatch(msg) })
}

// dispatch applies one client message and reports whether it changed anything.
func (s *server) dispatch(msg clientMessage) bool {
	switch msg.Type {
	case "mount":
		return s.ctrl.MountBoard(msg.Width, msg.Height)
	case "start":
		return s.ctrl.Start()
	case "stop":
		s.ctrl.Stop()
		return true
	default:
		log.Debug("Unknown client message", "type", msg.Type)
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error(err, "Failed to write response")
	}
}

func withLogging(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug("HTTP request", "method", r.Method, "path", r.URL.Path)
		h.ServeHTTP(w, r)
	})
}
