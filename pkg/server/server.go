// Package server wires the tool system to MCP transports. Every inbound
// connection gets its own CRM client and tool registry scoped to the tenant
// recovered from its bearer token; there is no shared CRM session.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/leadline/crm-mcp/pkg/auth"
	"github.com/leadline/crm-mcp/pkg/config"
	"github.com/leadline/crm-mcp/pkg/crm"
	"github.com/leadline/crm-mcp/pkg/session"
	"github.com/leadline/crm-mcp/pkg/tools"
)

// Implementation metadata advertised to MCP clients.
const (
	serverName    = "crm-mcp"
	serverVersion = "0.3.0"
)

// Server serves MCP over streamable HTTP with per-connection tenant scoping.
type Server struct {
	cfg        *config.Config
	log        zerolog.Logger
	sessions   *session.Registry
	streamable *mcp.StreamableHTTPHandler
}

// New creates the HTTP-facing server.
func New(cfg *config.Config, log zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		log:      log.With().Str("component", "server").Logger(),
		sessions: session.NewRegistry(log),
	}
	s.streamable = mcp.NewStreamableHTTPHandler(s.newSessionServer, nil)
	return s
}

// Sessions exposes the session registry.
func (s *Server) Sessions() *session.Registry {
	return s.sessions
}

type tenantKey struct{}

// newSessionServer builds the per-connection MCP server for a new session.
// The tenant was placed in the request context by ServeHTTP.
func (s *Server) newSessionServer(req *http.Request) *mcp.Server {
	tenant, ok := req.Context().Value(tenantKey{}).(*auth.TenantContext)
	if !ok {
		return nil
	}
	return buildMCPServer(tenant, s.cfg, s.log)
}

// ServeHTTP authenticates the request, enforces session/tenant binding, and
// hands off to the streamable transport.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tenant, err := auth.ParseLocationToken(r.Header.Get("Authorization"))
	if err != nil {
		s.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("Rejecting unauthenticated request")
		http.Error(w, "unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	if sid := r.Header.Get("Mcp-Session-Id"); sid != "" {
		known, err := s.sessions.Get(sid)
		if err != nil {
			// Exact session key match or nothing. Unknown keys are not
			// recovered via recency or address heuristics; the client must
			// re-initialize.
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		}
		if known.LocationID != tenant.LocationID {
			s.log.Warn().
				Str("session_id", sid).
				Str("session_location", known.LocationID).
				Str("token_location", tenant.LocationID).
				Msg("Session/token tenant mismatch")
			http.Error(w, "session belongs to a different tenant", http.StatusForbidden)
			return
		}
		if r.Method == http.MethodDelete {
			defer s.sessions.Delete(sid)
		}
	}

	ctx := context.WithValue(r.Context(), tenantKey{}, tenant)
	rec := &sessionRecorder{ResponseWriter: w}
	s.streamable.ServeHTTP(rec, r.WithContext(ctx))

	// A new session id in the response means the transport just created a
	// session for this tenant; bind them in the registry.
	if sid := rec.Header().Get("Mcp-Session-Id"); sid != "" {
		if _, err := s.sessions.Get(sid); err != nil {
			s.sessions.Put(&session.Session{
				ID:         sid,
				LocationID: tenant.LocationID,
				StartedAt:  time.Now(),
			})
		}
	}
}

// sessionRecorder lets ServeHTTP read response headers after the transport
// has written them.
type sessionRecorder struct {
	http.ResponseWriter
}

// RunStdio serves a single-tenant MCP session over stdio, using the token
// from configuration instead of a connection header.
func RunStdio(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	tenant, err := auth.ParseLocationToken(cfg.Stdio.Token)
	if err != nil {
		return err
	}
	log.Info().
		Str("location_id", tenant.LocationID).
		Str("connection_id", xid.New().String()).
		Msg("Serving MCP on stdio")
	srv := buildMCPServer(tenant, cfg, log)
	return srv.Run(ctx, &mcp.StdioTransport{})
}

// buildMCPServer assembles the MCP server for one tenant connection: a
// fresh CRM client, the full tool registry over it, and an executor that
// enforces the read-only flag.
func buildMCPServer(tenant *auth.TenantContext, cfg *config.Config, log zerolog.Logger) *mcp.Server {
	connLog := log.With().
		Str("location_id", tenant.LocationID).
		Str("connection_id", xid.New().String()).
		Logger()
	client := crm.New(cfg.CRM.BaseURL, tenant.Token, tenant.LocationID, connLog)
	registry := tools.BuildRegistry(client, connLog)
	executor := tools.NewExecutor(registry, cfg.ReadOnly)

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)
	for _, tool := range executor.AllowedTools() {
		registerTool(srv, executor, tool)
	}
	connLog.Info().
		Int("tools", len(executor.AllowedTools())).
		Bool("read_only", cfg.ReadOnly).
		Msg("Connection tool set ready")
	return srv
}

// registerTool bridges one registry tool onto the SDK server.
func registerTool(srv *mcp.Server, executor *tools.Executor, tool *tools.Tool) {
	name := tool.Name
	mcp.AddTool(srv, &tool.Tool, func(ctx context.Context, _ *mcp.CallToolRequest, input map[string]any) (*mcp.CallToolResult, any, error) {
		result, err := executor.Execute(ctx, name, input)
		if err != nil {
			return nil, nil, err
		}
		return toCallToolResult(result), nil, nil
	})
}

// toCallToolResult converts a tool result into SDK content blocks.
func toCallToolResult(result *tools.Result) *mcp.CallToolResult {
	out := &mcp.CallToolResult{IsError: result.IsError()}
	for _, block := range result.Content {
		if block.Type == "text" {
			out.Content = append(out.Content, &mcp.TextContent{Text: block.Text})
		}
	}
	if len(out.Content) == 0 {
		out.Content = append(out.Content, &mcp.TextContent{Text: result.Text()})
	}
	return out
}
