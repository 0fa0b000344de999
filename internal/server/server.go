// Package server exposes the dispatch service and the workspace files over
// HTTP, and serves the pre-built frontend bundle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/pddkit/pddserve/internal/clog"
	"github.com/pddkit/pddserve/internal/config"
	"github.com/pddkit/pddserve/internal/dispatch"
	"github.com/pddkit/pddserve/internal/metrics"
	"github.com/pddkit/pddserve/internal/registry"
	"github.com/pddkit/pddserve/internal/workspace"
)

// maxBodyBytes bounds request bodies. Prompts and saved files are text.
const maxBodyBytes = 16 << 20

// Dispatcher runs pdd commands. *dispatch.Service implements it.
type Dispatcher interface {
	Commands() []registry.CommandSpec
	Execute(ctx context.Context, req dispatch.Request) dispatch.Response
}

// FileStore reads and writes files under the server root.
// *workspace.Store implements it.
type FileStore interface {
	Read(path string) workspace.FileContent
	Write(path, content string) dispatch.Response
}

// Server is the pddserve HTTP server.
type Server struct {
	// Addr is the address to listen on (e.g., "0.0.0.0:8000").
	Addr string

	// CORSOrigins lists allowed origins. "*" allows any origin.
	CORSOrigins []string

	// StaticDir holds the frontend bundle. It is served only if it exists
	// when the handler is built.
	StaticDir string

	Dispatcher Dispatcher
	Files      FileStore

	server   *http.Server
	listener net.Listener
	serveErr chan error
	mu       sync.Mutex
	running  bool
}

// NewServer creates a server from the server configuration.
func NewServer(cfg config.ServerConfig, d Dispatcher, files FileStore) *Server {
	return &Server{
		Addr:        cfg.ListenAddr(),
		CORSOrigins: cfg.CORSOrigins,
		StaticDir:   cfg.StaticDir,
		Dispatcher:  d,
		Files:       files,
	}
}

// Handler builds the HTTP handler. API routes are registered before the
// static bundle so they take precedence.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(recoverer)
	r.Use(instrument)
	r.Use(cors.Handler(corsOptions(s.CORSOrigins)))

	r.Get("/api", s.handleRoot)
	r.Get("/commands", s.handleCommands)
	r.Post("/execute", s.handleExecute)
	r.Post("/files", s.handleSaveFile)
	r.Get("/files", s.handleGetFile)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	if s.StaticDir != "" {
		if info, err := os.Stat(s.StaticDir); err == nil && info.IsDir() {
			clog.Info("serving frontend from %s", s.StaticDir)
			r.Handle("/*", http.FileServer(http.Dir(s.StaticDir)))
		} else {
			clog.Warn("frontend dist directory not found: %s. Frontend will not be served.", s.StaticDir)
		}
	}

	return r
}

// corsOptions allows credentials for the configured origins. A lone "*"
// echoes the request origin, since browsers reject a literal "*" on
// credentialed responses.
func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
	}
	if slices.Contains(origins, "*") {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
	} else {
		opts.AllowedOrigins = origins
	}
	return opts
}

// Start begins accepting connections.
// Returns an error if the server is already running or fails to start.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}

	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr, err)
	}

	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 30 * time.Second,
		ErrorLog:          log.New(clog.Writer(clog.LevelWarn), "", 0),
	}
	s.running = true

	done := make(chan error, 1)
	s.serveErr = done
	srv := s.server
	go func() {
		err := srv.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if err != nil {
			clog.Error("http server: %v", err)
		}
		done <- err
		close(done)
	}()

	clog.Info("listening on %s", listener.Addr())
	clog.Info("CORS origins: %v", s.CORSOrigins)
	return nil
}

// Stop gracefully shuts down the server. Running pdd commands are allowed
// to finish until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false
	clog.Info("shutting down")
	return s.server.Shutdown(ctx)
}

// Wait blocks until the serve loop exits and returns its error. It returns
// nil after a clean Stop, and immediately if the server was never started.
func (s *Server) Wait() error {
	s.mu.Lock()
	done := s.serveErr
	s.mu.Unlock()

	if done == nil {
		return nil
	}
	return <-done
}

// ListenAddr returns the actual address the server is listening on.
// This is useful when the server was started with port 0 (random port).
// Returns empty string if the server is not running.
func (s *Server) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
