package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/buildsync"
	"github.com/aretw0/buildsync/internal/logging"
	"github.com/aretw0/buildsync/pkg/boundary"
	"github.com/aretw0/buildsync/pkg/domain"
	"github.com/aretw0/buildsync/pkg/rpc"
	"github.com/aretw0/buildsync/pkg/store"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	buildURI  = "buildsync://build"
	outputURI = "buildsync://output"
)

// Session is the session surface exposed as MCP tools.
type Session interface {
	rpc.Session
	Registry() *boundary.Registry
}

// Server exposes a build session as an MCP server. Every session method is a
// tool named after it; handles are read back through the read_ref tool.
type Server struct {
	session    Session
	dispatcher *rpc.Dispatcher
	mcpServer  *server.MCPServer
	logger     *slog.Logger

	// Builds receives the build handle on every sync.
	Builds *store.Writable[boundary.Ref[*domain.Build]]

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

// NewServer creates a new MCP Server instance.
func NewServer(sess Session, opts ...Option) *Server {
	s := &Server{
		session:   sess,
		mcpServer: server.NewMCPServer("buildsync-mcp", strings.TrimSpace(buildsync.Version)),
		logger:    logging.NewNop(),
		Builds:    store.NewWritable[boundary.Ref[*domain.Build]](),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.dispatcher = rpc.NewDispatcher(sess,
		rpc.WithOutput(s.OnOutput),
		rpc.WithSyncTarget(s.Builds),
		rpc.WithProgress(func(msg string) { s.logger.Info("Loading data", "progress", msg) }),
		rpc.WithLogger(s.logger),
	)
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx ends.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// OnOutput records the output of a tick for the output resource.
func (s *Server) OnOutput(out domain.Outputs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &out
	s.logger.Debug("MCP: output updated", "keys", len(out.Output))
}

// LastOutput returns the output of the last successful tick.
func (s *Server) LastOutput() (domain.Outputs, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return domain.Outputs{}, false
	}
	return *s.last, true
}

func (s *Server) registerTools() {
	for _, spec := range toolSpecs {
		s.mcpServer.AddTool(spec.tool(), s.callMethod(spec.method))
	}

	// TOOL: buildInfo
	s.mcpServer.AddTool(mcp.NewTool(rpc.MethodBuildInfo,
		mcp.WithDescription("Module version, data version, lifecycle and engine details."),
		mcp.WithOutputSchema[domain.BuildInfo](),
	), mcp.NewStructuredToolHandler(s.handleBuildInfo))

	// TOOL: read_ref
	s.mcpServer.AddTool(mcp.NewTool("read_ref",
		mcp.WithDescription("Read a JSON snapshot of a value returned as a {\"$ref\"} handle."),
		mcp.WithString("ref", mcp.Required(), mcp.Description("Handle id")),
	), s.handleReadRef)
}

// callMethod adapts one dispatcher method to a tool handler. Session errors
// become tool errors so that the model can see and correct them.
func (s *Server) callMethod(method string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := s.dispatcher.Dispatch(ctx, method, request.GetArguments())
		if err != nil {
			s.logger.Warn("MCP: tool failed", "tool", method, "err", err)
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", rpc.ErrorCode(err), err)), nil
		}

		payload, err := boundary.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s result: %w", method, err)
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}

func (s *Server) handleBuildInfo(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.BuildInfo, error) {
	info, err := s.session.BuildInfo(ctx)
	if err != nil {
		return domain.BuildInfo{}, fmt.Errorf("build info failed: %w", err)
	}
	return info, nil
}

func (s *Server) handleReadRef(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, _ := request.GetArguments()["ref"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid handle id %q", raw)), nil
	}

	handle, ok := s.session.Registry().Resolve(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("handle %s not found", id)), nil
	}

	data, err := handle.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: buildsync://build
	s.mcpServer.AddResource(mcp.NewResource(buildURI, "Current Build",
		mcp.WithResourceDescription("Copy of the build the session currently holds"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		build, err := s.session.CurrentBuild(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read build: %w", err)
		}
		return jsonResource(buildURI, build)
	})

	// EXPOSE: buildsync://output
	s.mcpServer.AddResource(mcp.NewResource(outputURI, "Last Output",
		mcp.WithResourceDescription("Output of the last successful tick"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		out, ok := s.LastOutput()
		if !ok {
			return nil, fmt.Errorf("no output computed yet")
		}
		return jsonResource(outputURI, out)
	})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
