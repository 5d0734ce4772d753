package mcpserver

import (
	"errors"
	"fmt"

	apptable "chip-ledger/internal/app/table"

	"github.com/mark3labs/mcp-go/mcp"
)

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	result := mcp.NewToolResultStructured(
		map[string]any{
			"error": map[string]any{
				"code":    code,
				"message": message,
			},
		},
		fmt.Sprintf("%s: %s", code, message),
	)
	result.IsError = true
	return result
}

var domainCodes = []error{
	apptable.ErrInvalidRequest,
	apptable.ErrTableNotFound,
	apptable.ErrTableEnded,
	apptable.ErrDenominationsNotSet,
}

func mapDomainError(err error) *mcp.CallToolResult {
	if err == nil {
		return toolError("internal_error", "unknown error")
	}
	for _, code := range domainCodes {
		if errors.Is(err, code) {
			return toolError(code.Error(), err.Error())
		}
	}
	return toolError("internal_error", err.Error())
}
