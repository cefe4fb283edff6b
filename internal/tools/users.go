package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"opmcp/internal/format"
	"opmcp/internal/openproject"
)

// ListUsersTool handles the op_list_users MCP tool.
type ListUsersTool struct {
	client *openproject.Client
}

// NewListUsersTool creates a ListUsersTool.
func NewListUsersTool(client *openproject.Client) *ListUsersTool {
	return &ListUsersTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListUsersTool) Definition() mcp.Tool {
	return mcp.NewTool("op_list_users",
		mcp.WithDescription(
			"List user accounts. Listing users requires admin permissions "+
				"on most instances.",
		),
	)
}

// Handle processes the op_list_users tool call.
func (t *ListUsersTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	col, err := t.client.ListUsers(ctx, nil)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.UserList(col.Elements())), nil
}

// GetUserTool handles the op_get_user MCP tool.
type GetUserTool struct {
	client *openproject.Client
}

// NewGetUserTool creates a GetUserTool.
func NewGetUserTool(client *openproject.Client) *GetUserTool {
	return &GetUserTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *GetUserTool) Definition() mcp.Tool {
	return mcp.NewTool("op_get_user",
		mcp.WithDescription("Show one user account in detail."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("User ID."),
		),
	)
}

// Handle processes the op_get_user tool call.
func (t *GetUserTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	u, err := t.client.GetUser(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.UserDetail(u)), nil
}

// ListRolesTool handles the op_list_roles MCP tool.
type ListRolesTool struct {
	client *openproject.Client
}

// NewListRolesTool creates a ListRolesTool.
func NewListRolesTool(client *openproject.Client) *ListRolesTool {
	return &ListRolesTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListRolesTool) Definition() mcp.Tool {
	return mcp.NewTool("op_list_roles",
		mcp.WithDescription("List the roles that can be granted through memberships."),
	)
}

// Handle processes the op_list_roles tool call.
func (t *ListRolesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	col, err := t.client.ListRoles(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.RoleList(col.Elements())), nil
}

// GetRoleTool handles the op_get_role MCP tool.
type GetRoleTool struct {
	client *openproject.Client
}

// NewGetRoleTool creates a GetRoleTool.
func NewGetRoleTool(client *openproject.Client) *GetRoleTool {
	return &GetRoleTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *GetRoleTool) Definition() mcp.Tool {
	return mcp.NewTool("op_get_role",
		mcp.WithDescription("Show one membership role."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Role ID."),
		),
	)
}

// Handle processes the op_get_role tool call.
func (t *GetRoleTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	r, err := t.client.GetRole(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("# %s (ID: %d)\n", r.Name, r.ID)), nil
}
