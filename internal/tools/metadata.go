package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"opmcp/internal/format"
	"opmcp/internal/openproject"
)

// Metadata tools expose the cached type, status and priority catalogs.
// Each takes a refresh flag that bypasses the cache for one call.

// ListTypesTool handles the op_list_types MCP tool.
type ListTypesTool struct {
	client *openproject.Client
}

// NewListTypesTool creates a ListTypesTool.
func NewListTypesTool(client *openproject.Client) *ListTypesTool {
	return &ListTypesTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListTypesTool) Definition() mcp.Tool {
	return mcp.NewTool("op_list_types",
		mcp.WithDescription(
			"List work package types (Task, Bug, Milestone...). Results are "+
				"cached; pass refresh to re-fetch. Scope to a project to see "+
				"only the types it enables.",
		),
		mcp.WithNumber("project_id",
			mcp.Description("Project to scope to. Project-scoped listings always hit the API."),
		),
		mcp.WithBoolean("refresh",
			mcp.Description("Bypass the cache for this call (default false)."),
		),
	)
}

// Handle processes the op_list_types tool call.
func (t *ListTypesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	col, err := t.client.Types(ctx, req.GetInt("project_id", 0), !req.GetBool("refresh", false))
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.TypeList(col.Elements())), nil
}

// ListStatusesTool handles the op_list_statuses MCP tool.
type ListStatusesTool struct {
	client *openproject.Client
}

// NewListStatusesTool creates a ListStatusesTool.
func NewListStatusesTool(client *openproject.Client) *ListStatusesTool {
	return &ListStatusesTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListStatusesTool) Definition() mcp.Tool {
	return mcp.NewTool("op_list_statuses",
		mcp.WithDescription("List work package statuses. Results are cached; pass refresh to re-fetch."),
		mcp.WithBoolean("refresh",
			mcp.Description("Bypass the cache for this call (default false)."),
		),
	)
}

// Handle processes the op_list_statuses tool call.
func (t *ListStatusesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	col, err := t.client.Statuses(ctx, !req.GetBool("refresh", false))
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.StatusList(col.Elements())), nil
}

// ListPrioritiesTool handles the op_list_priorities MCP tool.
type ListPrioritiesTool struct {
	client *openproject.Client
}

// NewListPrioritiesTool creates a ListPrioritiesTool.
func NewListPrioritiesTool(client *openproject.Client) *ListPrioritiesTool {
	return &ListPrioritiesTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListPrioritiesTool) Definition() mcp.Tool {
	return mcp.NewTool("op_list_priorities",
		mcp.WithDescription("List work package priorities. Results are cached; pass refresh to re-fetch."),
		mcp.WithBoolean("refresh",
			mcp.Description("Bypass the cache for this call (default false)."),
		),
	)
}

// Handle processes the op_list_priorities tool call.
func (t *ListPrioritiesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	col, err := t.client.Priorities(ctx, !req.GetBool("refresh", false))
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.PriorityList(col.Elements())), nil
}
