package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/buildsync"
	"github.com/aretw0/buildsync/internal/logging"
	"github.com/aretw0/buildsync/pkg/boundary"
	"github.com/aretw0/buildsync/pkg/domain"
	"github.com/aretw0/buildsync/pkg/rpc"
	"github.com/aretw0/buildsync/pkg/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Session is the session surface served over HTTP.
type Session interface {
	rpc.Session
	Registry() *boundary.Registry
	Lifecycle() domain.Lifecycle
}

// Server exposes a session over HTTP and streams its output over SSE.
type Server struct {
	Session Session
	Streams *StreamManager
	// Builds is the sync target handed to the session at boot.
	Builds *store.Writable[boundary.Ref[*domain.Build]]

	dispatcher *rpc.Dispatcher
	logger     *slog.Logger

	mu   sync.RWMutex
	last *domain.Outputs
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStreams shares sm with the server, so that session hooks created
// before the server can broadcast on the same connections.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// NewServer creates a Server over sess. Boot the session with s.OnOutput and
// s.Builds, or through POST /rpc/boot.
func NewServer(sess Session, opts ...Option) *Server {
	s := &Server{
		Session: sess,
		Builds:  store.NewWritable[boundary.Ref[*domain.Build]](),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}
	s.dispatcher = rpc.NewDispatcher(sess,
		rpc.WithOutput(s.OnOutput),
		rpc.WithSyncTarget(s.Builds),
		rpc.WithProgress(s.OnProgress),
		rpc.WithLogger(s.logger),
	)
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/methods", s.ListMethods)
	r.Post("/rpc/{method}", s.Call)
	r.Get("/build", s.GetBuild)
	r.Get("/output", s.GetOutput)
	r.Get("/refs/{id}", s.GetRef)
	r.Get("/events", s.SubscribeEvents)

	return enableCORS(r)
}

// OnOutput records and broadcasts the output of a tick.
func (s *Server) OnOutput(out domain.Outputs) {
	data, err := json.Marshal(out)
	if err != nil {
		s.logger.Error("Output encode failed", "err", err)
		return
	}

	s.mu.Lock()
	s.last = &out
	s.mu.Unlock()

	s.Streams.Broadcast(Event{Name: "output", Data: string(data)})
}

// OnProgress broadcasts a data loading progress message.
func (s *Server) OnProgress(msg string) {
	data, _ := json.Marshal(map[string]string{"message": msg})
	s.Streams.Broadcast(Event{Name: "progress", Data: string(data)})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>buildsync API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := rpc.StatusCode(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "err", err)
	} else {
		s.logger.Warn("Request rejected", "err", err, "status", status)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: rpc.ErrorCode(err)})
}

// Call handles POST /rpc/{method}.
func (s *Server) Call(w http.ResponseWriter, r *http.Request) {
	method := chi.URLParam(r, "method")

	args := map[string]any{}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, fmt.Errorf("%w: invalid request body: %v", rpc.ErrInvalidArgs, err))
		return
	}

	result, err := s.dispatcher.Dispatch(r.Context(), method, args)
	if err != nil {
		s.writeError(w, err)
		return
	}

	payload, err := boundary.Marshal(result)
	if err != nil {
		s.writeError(w, fmt.Errorf("failed to encode result: %w", err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]json.RawMessage{"result": payload})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"lifecycle": s.Session.Lifecycle().String(),
	})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	resp := map[string]any{
		"app":         "buildsync-http",
		"version":     strings.TrimSpace(buildsync.Version),
		"api_version": apiVersion,
	}
	if info, err := s.Session.BuildInfo(r.Context()); err == nil {
		resp["data_version"] = info.DataVersion
		resp["lifecycle"] = info.Lifecycle
		resp["engine"] = info.Engine
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// ListMethods handles GET /methods.
func (s *Server) ListMethods(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dispatcher.Methods())
}

// GetBuild handles GET /build.
func (s *Server) GetBuild(w http.ResponseWriter, r *http.Request) {
	build, err := s.Session.CurrentBuild(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, build)
}

// GetOutput handles GET /output.
func (s *Server) GetOutput(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()

	if last == nil {
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no output computed yet", Code: "no_output"})
		return
	}
	s.writeJSON(w, http.StatusOK, last)
}

// GetRef handles GET /refs/{id}: it snapshots a live handle on the session goroutine.
func (s *Server) GetRef(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid handle id", Code: "invalid_args"})
		return
	}

	handle, ok := s.Session.Registry().Resolve(id)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "handle not found", Code: "ref_not_found"})
		return
	}

	data, err := handle.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// SubscribeEvents handles GET /events (SSE).
// Events: "sync" carries the build handle, "output" the tick output and
// "progress" data loading messages.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	watch := parseWatch(r.URL.Query().Get("watch"))

	events, cancelEvents := s.Streams.Subscribe()
	defer cancelEvents()
	builds, cancelBuilds := s.Builds.Subscribe()
	defer cancelBuilds()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE: Client subscribed", "watch", r.URL.Query().Get("watch"))

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected")
			return
		case ref, ok := <-builds:
			if !ok {
				return
			}
			if !watch.has("sync") {
				continue
			}
			data, err := boundary.Marshal(ref)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: sync\ndata: %s\n\n", data)
			flusher.Flush()
		case e, ok := <-events:
			if !ok {
				return
			}
			if !watch.has(e.Name) {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Name, e.Data)
			flusher.Flush()
		}
	}
}

type watchList map[string]bool

func parseWatch(raw string) watchList {
	if raw == "" {
		return nil
	}
	w := watchList{}
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			w[name] = true
		}
	}
	return w
}

// has reports whether name passes the filter. An empty filter passes everything.
func (w watchList) has(name string) bool {
	return len(w) == 0 || w[name]
}
