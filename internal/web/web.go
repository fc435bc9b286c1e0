// Package web serves the last render over HTTP in daemon mode: the PNG
// preview, the datastream fields and a health check.
package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"scrollcal/internal/config"
	"scrollcal/internal/datastream"
	appLog "scrollcal/internal/log"
)

// Result is one completed render.
type Result struct {
	RenderedAt time.Time
	PNG        []byte
	Elements   *datastream.Elements
	Stream     *datastream.Stream
	Days       int
	Events     int
}

// Server exposes the most recent Result. Renders publish into it; handlers
// only read.
type Server struct {
	cfg *config.Config
	mux *http.ServeMux

	// Refresh, when set, is called by POST /api/refresh.
	Refresh func(ctx context.Context) error

	mu      sync.RWMutex
	last    *Result
	lastErr error
	errAt   time.Time
}

func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg: cfg,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Publish replaces the served result.
func (s *Server) Publish(r *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = r
	s.lastErr = nil
}

// PublishError records a failed render. The previous result stays served.
func (s *Server) PublishError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	s.errAt = time.Now()
}

func (s *Server) snapshot() (*Result, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.errAt, s.lastErr
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="scrollcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// ListenAndServe serves on cfg.Listen until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/preview.png", s.handlePreview)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/datastream", s.handleDatastream)
	s.mux.HandleFunc("/api/refresh", s.handleRefresh)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	last, _, _ := s.snapshot()
	if last == nil {
		http.Error(w, "no render yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeContent(w, r, "preview.png", last.RenderedAt, bytes.NewReader(last.PNG))
}

type statusResponse struct {
	RenderedAt *time.Time `json:"rendered_at,omitempty"`
	Days       int        `json:"days"`
	Events     int        `json:"events"`
	LastError  string     `json:"last_error,omitempty"`
	ErrorAt    *time.Time `json:"error_at,omitempty"`
	Refresh    string     `json:"refresh"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	last, errAt, lastErr := s.snapshot()
	resp := statusResponse{Refresh: s.cfg.RefreshCron}
	if last != nil {
		resp.RenderedAt = &last.RenderedAt
		resp.Days = last.Days
		resp.Events = last.Events
	}
	if lastErr != nil {
		resp.LastError = lastErr.Error()
		resp.ErrorAt = &errAt
	}
	writeJSON(w, http.StatusOK, resp)
}

type offsetDTO struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

type datastreamResponse struct {
	RenderedAt time.Time            `json:"rendered_at"`
	Elements   *datastream.Elements `json:"elements"`
	Length     int                  `json:"length"`
	Offsets    []offsetDTO          `json:"offsets"`
}

// handleDatastream returns the encoded fields of the last render and where
// each starts in the stream.
func (s *Server) handleDatastream(w http.ResponseWriter, _ *http.Request) {
	last, _, _ := s.snapshot()
	if last == nil || last.Stream == nil {
		writeError(w, http.StatusServiceUnavailable, "no render yet")
		return
	}
	offsets := make([]offsetDTO, 0, len(last.Stream.Offsets))
	for _, off := range last.Stream.Offsets {
		offsets = append(offsets, offsetDTO{Name: off.Name, Index: off.Index})
	}
	writeJSON(w, http.StatusOK, datastreamResponse{
		RenderedAt: last.RenderedAt,
		Elements:   last.Elements,
		Length:     len(last.Stream.Pixels),
		Offsets:    offsets,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	if s.Refresh == nil {
		writeError(w, http.StatusNotImplemented, "refresh not available")
		return
	}
	if err := s.Refresh(r.Context()); err != nil {
		appLog.Error("manual refresh failed", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.handleStatus(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
