// Package mcpserver exposes read-only table lookups as Model Context Protocol
// tools over stateless streamable HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	apptable "chip-ledger/internal/app/table"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "chip-ledger"
	serverVersion = "0.1.0"

	stateURIPrefix = "table://"
	stateURISuffix = "/state"
)

type Server struct {
	tables *apptable.Service

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(tables *apptable.Service) *Server {
	mcpSrv := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		tables:     tables,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerTableTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			stateURIPrefix+"{ref}"+stateURISuffix,
			"table_state",
			mcp.WithTemplateDescription("Live table state by table id or join code"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			raw := request.Params.URI
			if !strings.HasPrefix(raw, stateURIPrefix) || !strings.HasSuffix(raw, stateURISuffix) {
				return nil, nil
			}
			ref := strings.TrimSuffix(strings.TrimPrefix(raw, stateURIPrefix), stateURISuffix)
			if ref == "" {
				return nil, nil
			}
			view, err := s.tables.GetTable(ctx, ref)
			if err != nil {
				return nil, err
			}
			payload, err := json.Marshal(view)
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      raw,
					MIMEType: "application/json",
					Text:     string(payload),
				},
			}, nil
		},
	)
}
