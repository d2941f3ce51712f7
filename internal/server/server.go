// Package server implements serve mode: the generated report
// over a local HTTP API, rebuilt whenever the snapshot file
// changes.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"

	"github.com/runlab/unwrapped/internal/report"
)

// BuildFunc produces a fresh report from the current snapshot.
type BuildFunc func() (report.Report, error)

// Server serves the report JSON and rebuilds it on demand.
type Server struct {
	mu      sync.RWMutex
	current report.Report
	ready   bool

	build BuildFunc
	mux   *http.ServeMux
}

// New creates a Server around a build function and performs the
// initial build.
func New(build BuildFunc) (*Server, error) {
	s := &Server{
		build: build,
		mux:   http.NewServeMux(),
	}
	s.routes()
	if err := s.Rebuild(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/v1/report", s.handleReport)
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Rebuild regenerates the report. The previous report keeps
// serving when the rebuild fails (a half-written snapshot file
// is the common cause).
func (s *Server) Rebuild() error {
	rep, err := s.build()
	if err != nil {
		return fmt.Errorf("rebuilding report: %w", err)
	}
	s.mu.Lock()
	s.current = rep
	s.ready = true
	s.mu.Unlock()
	return nil
}

// OnSnapshotChange is the watcher callback: rebuild and log the
// outcome.
func (s *Server) OnSnapshotChange() {
	if err := s.Rebuild(); err != nil {
		log.Printf("snapshot changed but rebuild failed: %v", err)
		return
	}
	log.Println("snapshot changed, report rebuilt")
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	rep, ready := s.current, s.ready
	s.mu.RUnlock()

	if !ready {
		writeError(w, http.StatusServiceUnavailable, "report not built yet")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes v as JSON with the given HTTP status code.
// Logs a warning if JSON encoding fails.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON: encoding response: %v", err)
	}
}

// writeError writes a JSON error response with the given status
// and message.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// FindAvailablePort returns port if it is free, otherwise the
// next free port the OS hands out.
func FindAvailablePort(host string, port int) int {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err == nil {
		ln.Close()
		return port
	}
	ln, err = net.Listen("tcp", fmt.Sprintf("%s:0", host))
	if err != nil {
		return port
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}
