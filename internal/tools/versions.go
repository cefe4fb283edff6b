package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"opmcp/internal/format"
	"opmcp/internal/openproject"
)

// ListVersionsTool handles the op_list_versions MCP tool.
type ListVersionsTool struct {
	client *openproject.Client
}

// NewListVersionsTool creates a ListVersionsTool.
func NewListVersionsTool(client *openproject.Client) *ListVersionsTool {
	return &ListVersionsTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListVersionsTool) Definition() mcp.Tool {
	return mcp.NewTool("op_list_versions",
		mcp.WithDescription("List the versions/milestones of a project."),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project ID."),
		),
	)
}

// Handle processes the op_list_versions tool call.
func (t *ListVersionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, errRes := requireID(req, "project_id")
	if errRes != nil {
		return errRes, nil
	}
	col, err := t.client.ListVersions(ctx, projectID)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.VersionList(col.Elements())), nil
}

// GetVersionTool handles the op_get_version MCP tool.
type GetVersionTool struct {
	client *openproject.Client
}

// NewGetVersionTool creates a GetVersionTool.
func NewGetVersionTool(client *openproject.Client) *GetVersionTool {
	return &GetVersionTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *GetVersionTool) Definition() mcp.Tool {
	return mcp.NewTool("op_get_version",
		mcp.WithDescription("Show one version/milestone."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Version ID."),
		),
	)
}

// Handle processes the op_get_version tool call.
func (t *GetVersionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	v, err := t.client.GetVersion(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.VersionList([]openproject.ProjectVersion{*v})), nil
}

// CreateVersionTool handles the op_create_version MCP tool.
type CreateVersionTool struct {
	client *openproject.Client
}

// NewCreateVersionTool creates a CreateVersionTool.
func NewCreateVersionTool(client *openproject.Client) *CreateVersionTool {
	return &CreateVersionTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateVersionTool) Definition() mcp.Tool {
	return mcp.NewTool("op_create_version",
		mcp.WithDescription("Create a version/milestone in a project, e.g. a sprint or release."),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project the version belongs to."),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Version name, e.g. \"Sprint 12\" or \"v2.1\"."),
		),
		mcp.WithString("description",
			mcp.Description("Version description."),
		),
		mcp.WithString("start_date",
			mcp.Description("Start date, YYYY-MM-DD."),
		),
		mcp.WithString("end_date",
			mcp.Description("End date, YYYY-MM-DD."),
		),
		mcp.WithString("status",
			mcp.Description("Version status (default open)."),
			mcp.Enum(openproject.VersionOpen, openproject.VersionLocked, openproject.VersionClosed),
		),
	)
}

// Handle processes the op_create_version tool call.
func (t *CreateVersionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, errRes := requireID(req, "project_id")
	if errRes != nil {
		return errRes, nil
	}
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	v, err := t.client.CreateVersion(ctx, openproject.NewVersion{
		ProjectID:   projectID,
		Name:        name,
		Description: req.GetString("description", ""),
		StartDate:   req.GetString("start_date", ""),
		EndDate:     req.GetString("end_date", ""),
		Status:      req.GetString("status", ""),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Created version #%d (%s)", v.ID, v.Name)), nil
}

// UpdateVersionTool handles the op_update_version MCP tool.
type UpdateVersionTool struct {
	client *openproject.Client
}

// NewUpdateVersionTool creates an UpdateVersionTool.
func NewUpdateVersionTool(client *openproject.Client) *UpdateVersionTool {
	return &UpdateVersionTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateVersionTool) Definition() mcp.Tool {
	return mcp.NewTool("op_update_version",
		mcp.WithDescription("Update a version/milestone. Only the provided fields change."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Version ID."),
		),
		mcp.WithString("name",
			mcp.Description("New name."),
		),
		mcp.WithString("description",
			mcp.Description("New description."),
		),
		mcp.WithString("start_date",
			mcp.Description("New start date, YYYY-MM-DD."),
		),
		mcp.WithString("end_date",
			mcp.Description("New end date, YYYY-MM-DD."),
		),
		mcp.WithString("status",
			mcp.Description("New status."),
			mcp.Enum(openproject.VersionOpen, openproject.VersionLocked, openproject.VersionClosed),
		),
	)
}

// Handle processes the op_update_version tool call.
func (t *UpdateVersionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	v, err := t.client.UpdateVersion(ctx, id, openproject.VersionUpdate{
		Name:        req.GetString("name", ""),
		Description: req.GetString("description", ""),
		StartDate:   req.GetString("start_date", ""),
		EndDate:     req.GetString("end_date", ""),
		Status:      req.GetString("status", ""),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Updated version #%d (%s)", v.ID, v.Name)), nil
}

// DeleteVersionTool handles the op_delete_version MCP tool.
type DeleteVersionTool struct {
	client *openproject.Client
}

// NewDeleteVersionTool creates a DeleteVersionTool.
func NewDeleteVersionTool(client *openproject.Client) *DeleteVersionTool {
	return &DeleteVersionTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteVersionTool) Definition() mcp.Tool {
	return mcp.NewTool("op_delete_version",
		mcp.WithDescription("Delete a version/milestone."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Version ID."),
		),
	)
}

// Handle processes the op_delete_version tool call.
func (t *DeleteVersionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	if err := t.client.DeleteVersion(ctx, id); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("🗑️ Deleted version #%d", id)), nil
}
