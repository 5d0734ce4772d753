package mcpserver

import (
	"context"
	"strings"

	apptable "chip-ledger/internal/app/table"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTableTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_table",
			mcp.WithDescription("Get a table with its players, buy-ins and latest chip counts"),
			mcp.WithString("ref", mcp.Required(), mcp.Description("Table id or 4-letter join code")),
		),
		s.handleGetTable,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"join_table",
			mcp.WithDescription("Look up a live table by join code"),
			mcp.WithString("join_code", mcp.Required(), mcp.Description("4-letter join code, case-insensitive")),
		),
		s.handleJoinTable,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"reconcile_table",
			mcp.WithDescription("Compare total buy-ins with the value of recorded chip stacks"),
			mcp.WithString("ref", mcp.Required(), mcp.Description("Table id or 4-letter join code")),
		),
		s.handleReconcileTable,
	)
}

func (s *Server) handleGetTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := strings.TrimSpace(request.GetString("ref", ""))
	if ref == "" {
		return toolError("invalid_request", "ref is required"), nil
	}
	resp, err := s.tables.GetTable(ctx, ref)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleJoinTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.tables.JoinTable(ctx, apptable.JoinTableInput{JoinCode: request.GetString("join_code", "")})
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleReconcileTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := strings.TrimSpace(request.GetString("ref", ""))
	if ref == "" {
		return toolError("invalid_request", "ref is required"), nil
	}
	resp, err := s.tables.Reconcile(ctx, ref)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}
