package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"opmcp/internal/format"
	"opmcp/internal/openproject"
)

// SetParentTool handles the op_set_parent MCP tool.
type SetParentTool struct {
	client *openproject.Client
}

// NewSetParentTool creates a SetParentTool.
func NewSetParentTool(client *openproject.Client) *SetParentTool {
	return &SetParentTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *SetParentTool) Definition() mcp.Tool {
	return mcp.NewTool("op_set_parent",
		mcp.WithDescription("Make one work package a child of another."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Child work package ID."),
		),
		mcp.WithNumber("parent_id",
			mcp.Required(),
			mcp.Description("Parent work package ID."),
		),
	)
}

// Handle processes the op_set_parent tool call.
func (t *SetParentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	parentID, errRes := requireID(req, "parent_id")
	if errRes != nil {
		return errRes, nil
	}
	if id == parentID {
		return mcp.NewToolResultError("a work package cannot be its own parent"), nil
	}

	wp, err := t.client.SetWorkPackageParent(ctx, id, parentID)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Work package #%d is now a child of #%d",
		wp.ID, parentID)), nil
}

// RemoveParentTool handles the op_remove_parent MCP tool.
type RemoveParentTool struct {
	client *openproject.Client
}

// NewRemoveParentTool creates a RemoveParentTool.
func NewRemoveParentTool(client *openproject.Client) *RemoveParentTool {
	return &RemoveParentTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *RemoveParentTool) Definition() mcp.Tool {
	return mcp.NewTool("op_remove_parent",
		mcp.WithDescription("Detach a work package from its parent, making it top-level."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Work package ID."),
		),
	)
}

// Handle processes the op_remove_parent tool call.
func (t *RemoveParentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	wp, err := t.client.RemoveWorkPackageParent(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Work package #%d is now top-level", wp.ID)), nil
}

// ListChildrenTool handles the op_list_children MCP tool.
type ListChildrenTool struct {
	client *openproject.Client
}

// NewListChildrenTool creates a ListChildrenTool.
func NewListChildrenTool(client *openproject.Client) *ListChildrenTool {
	return &ListChildrenTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListChildrenTool) Definition() mcp.Tool {
	return mcp.NewTool("op_list_children",
		mcp.WithDescription(
			"List the children of a work package. Set descendants to include "+
				"the whole subtree instead of direct children only.",
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Parent work package ID."),
		),
		mcp.WithBoolean("descendants",
			mcp.Description("Include the full subtree (default false)."),
		),
	)
}

// Handle processes the op_list_children tool call.
func (t *ListChildrenTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	col, err := t.client.ListWorkPackageChildren(ctx, id, req.GetBool("descendants", false))
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.WorkPackageList(col.Elements())), nil
}
