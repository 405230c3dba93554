// Package daemon exposes the control plane over HTTP/JSON.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"drover"
	"drover/api"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Controller is the interface the HTTP server needs from the control
// plane.
type Controller interface {
	Spawn(ctx context.Context, spec drover.SpawnSpec) (drover.NodeInfo, error)
	Init(ctx context.Context, handle string, cfg map[string]any) (drover.NodeInfo, error)
	Start(ctx context.Context, handle string) (drover.NodeInfo, error)
	Stop(ctx context.Context, handle string) error
	Cleanup(ctx context.Context, handle string) error
	PID(ctx context.Context, handle string) (int, error)
	Version(ctx context.Context, handle string) (string, error)
	Status(ctx context.Context, handle string) (drover.NodeInfo, error)
	List(ctx context.Context) []drover.NodeInfo
}

type Server struct {
	ctrl    Controller
	handler http.Handler
}

func NewServer(ctrl Controller) *Server {
	s := &Server{ctrl: ctrl}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/nodes", s.handleSpawn)
	mux.HandleFunc("GET /v1/nodes", s.handleList)
	mux.HandleFunc("GET /v1/nodes/{handle}", s.handleStatus)
	mux.HandleFunc("POST /v1/nodes/{handle}/init", s.handleInit)
	mux.HandleFunc("POST /v1/nodes/{handle}/start", s.handleStart)
	mux.HandleFunc("POST /v1/nodes/{handle}/stop", s.handleStop)
	mux.HandleFunc("DELETE /v1/nodes/{handle}", s.handleCleanup)
	mux.HandleFunc("GET /v1/nodes/{handle}/pid", s.handlePID)
	mux.HandleFunc("GET /v1/nodes/{handle}/version", s.handleVersion)

	s.handler = otelhttp.NewHandler(mux, "drover.daemon")
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves the API on addr until ctx is cancelled. An addr
// containing a path separator is a unix socket path, anything else is a
// TCP host:port.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	network := "tcp"
	if strings.ContainsRune(addr, os.PathSeparator) {
		network = "unix"
		// Remove stale socket from a previous run (may not exist).
		_ = os.Remove(addr)
		defer func() { _ = os.Remove(addr) }()
	}

	ln, err := net.Listen(network, addr)
	if err != nil {
		return fmt.Errorf("listen %s %s: %w", network, addr, err)
	}

	srv := &http.Server{Handler: s.handler, ReadHeaderTimeout: readHeaderTimeout}

	// Shut down when ctx is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Daemon API listening.", "network", network, "addr", addr)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func (s *Server) handleSpawn(w http.ResponseWriter, r *http.Request) {
	var spec drover.SpawnSpec
	if err := decodeJSON(r, &spec); err != nil {
		writeError(w, api.Error{Kind: api.KindBadRequest, Message: err.Error()}, http.StatusBadRequest)
		return
	}

	info, err := s.ctrl.Spawn(r.Context(), spec)
	if err != nil {
		s.writeCtrlError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	var cfg map[string]any
	if err := decodeJSON(r, &cfg); err != nil {
		writeError(w, api.Error{Kind: api.KindBadRequest, Message: err.Error()}, http.StatusBadRequest)
		return
	}

	info, err := s.ctrl.Init(r.Context(), r.PathValue("handle"), cfg)
	if err != nil {
		s.writeCtrlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	info, err := s.ctrl.Start(r.Context(), r.PathValue("handle"))
	if err != nil {
		s.writeCtrlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Stop(r.Context(), r.PathValue("handle")); err != nil {
		s.writeCtrlError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Cleanup(r.Context(), r.PathValue("handle")); err != nil {
		s.writeCtrlError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	info, err := s.ctrl.Status(r.Context(), r.PathValue("handle"))
	if err != nil {
		s.writeCtrlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handlePID(w http.ResponseWriter, r *http.Request) {
	pid, err := s.ctrl.PID(r.Context(), r.PathValue("handle"))
	if err != nil {
		s.writeCtrlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.PIDResponse{PID: pid})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	version, err := s.ctrl.Version(r.Context(), r.PathValue("handle"))
	if err != nil {
		s.writeCtrlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.VersionResponse{Version: version})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.ListResponse{Nodes: s.ctrl.List(r.Context())})
}

func (s *Server) writeCtrlError(w http.ResponseWriter, err error) {
	wireErr, status := api.FromErr(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Operation failed.", "kind", wireErr.Kind, "err", err)
	}
	writeError(w, wireErr, status)
}

// decodeJSON reads a JSON body into v. An empty body decodes as an
// empty document.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to write response.", "err", err)
	}
}

func writeError(w http.ResponseWriter, e api.Error, status int) {
	writeJSON(w, status, api.ErrorResponse{Error: e})
}
