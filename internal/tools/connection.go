package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"opmcp/internal/format"
	"opmcp/internal/openproject"
)

// ConnectionTestTool handles the op_test_connection MCP tool.
// It verifies the configured URL and API key against the API root.
type ConnectionTestTool struct {
	client *openproject.Client
}

// NewConnectionTestTool creates a ConnectionTestTool.
func NewConnectionTestTool(client *openproject.Client) *ConnectionTestTool {
	return &ConnectionTestTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ConnectionTestTool) Definition() mcp.Tool {
	return mcp.NewTool("op_test_connection",
		mcp.WithDescription(
			"Test connectivity and authentication against the configured "+
				"OpenProject instance. Returns the instance name and version "+
				"on success, or a classified error with a remediation hint.",
		),
	)
}

// Handle processes the op_test_connection tool call.
func (t *ConnectionTestTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := t.client.TestConnection(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	name := info.InstanceName
	if name == "" {
		name = "OpenProject"
	}
	version := info.CoreVersion
	if version == "" {
		version = info.InstanceVersion
	}
	msg := fmt.Sprintf("✅ Connected to %s", name)
	if version != "" {
		msg = fmt.Sprintf("%s (version %s)", msg, version)
	}
	return mcp.NewToolResultText(msg), nil
}

// WhoAmITool handles the op_whoami MCP tool.
type WhoAmITool struct {
	client *openproject.Client
}

// NewWhoAmITool creates a WhoAmITool.
func NewWhoAmITool(client *openproject.Client) *WhoAmITool {
	return &WhoAmITool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *WhoAmITool) Definition() mcp.Tool {
	return mcp.NewTool("op_whoami",
		mcp.WithDescription("Show the user account the configured API key belongs to."),
	)
}

// Handle processes the op_whoami tool call.
func (t *WhoAmITool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, err := t.client.Me(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.UserDetail(user)), nil
}
