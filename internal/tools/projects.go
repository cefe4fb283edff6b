package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"opmcp/internal/format"
	"opmcp/internal/openproject"
)

// ListProjectsTool handles the op_list_projects MCP tool.
type ListProjectsTool struct {
	client *openproject.Client
}

// NewListProjectsTool creates a ListProjectsTool.
func NewListProjectsTool(client *openproject.Client) *ListProjectsTool {
	return &ListProjectsTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListProjectsTool) Definition() mcp.Tool {
	return mcp.NewTool("op_list_projects",
		mcp.WithDescription("List all projects visible to the configured API key."),
	)
}

// Handle processes the op_list_projects tool call.
func (t *ListProjectsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	col, err := t.client.ListProjects(ctx, nil)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.ProjectList(col.Elements())), nil
}

// GetProjectTool handles the op_get_project MCP tool.
type GetProjectTool struct {
	client *openproject.Client
}

// NewGetProjectTool creates a GetProjectTool.
func NewGetProjectTool(client *openproject.Client) *GetProjectTool {
	return &GetProjectTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *GetProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("op_get_project",
		mcp.WithDescription("Show one project in detail."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Project ID."),
		),
	)
}

// Handle processes the op_get_project tool call.
func (t *GetProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	p, err := t.client.GetProject(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.ProjectDetail(p)), nil
}

// CreateProjectTool handles the op_create_project MCP tool.
type CreateProjectTool struct {
	client *openproject.Client
}

// NewCreateProjectTool creates a CreateProjectTool.
func NewCreateProjectTool(client *openproject.Client) *CreateProjectTool {
	return &CreateProjectTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("op_create_project",
		mcp.WithDescription(
			"Create a project. The identifier is derived by the server when "+
				"omitted. Set parent_id to create a subproject.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithString("identifier",
			mcp.Description("URL identifier (lowercase, hyphenated)."),
		),
		mcp.WithString("description",
			mcp.Description("Project description in markdown."),
		),
		mcp.WithBoolean("public",
			mcp.Description("Make the project publicly visible (default false)."),
		),
		mcp.WithNumber("parent_id",
			mcp.Description("Parent project for a subproject."),
		),
	)
}

// Handle processes the op_create_project tool call.
func (t *CreateProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	public := req.GetBool("public", false)
	p, err := t.client.CreateProject(ctx, openproject.NewProject{
		Name:        name,
		Identifier:  req.GetString("identifier", ""),
		Description: req.GetString("description", ""),
		Public:      &public,
		ParentID:    req.GetInt("parent_id", 0),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Created project #%d\n\n%s",
		p.ID, format.ProjectDetail(p))), nil
}

// UpdateProjectTool handles the op_update_project MCP tool.
type UpdateProjectTool struct {
	client *openproject.Client
}

// NewUpdateProjectTool creates an UpdateProjectTool.
func NewUpdateProjectTool(client *openproject.Client) *UpdateProjectTool {
	return &UpdateProjectTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("op_update_project",
		mcp.WithDescription("Update a project. Only the provided fields change."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Project ID."),
		),
		mcp.WithString("name",
			mcp.Description("New name."),
		),
		mcp.WithString("description",
			mcp.Description("New description in markdown."),
		),
		mcp.WithNumber("parent_id",
			mcp.Description("New parent project."),
		),
	)
}

// Handle processes the op_update_project tool call.
func (t *UpdateProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	p, err := t.client.UpdateProject(ctx, id, openproject.ProjectUpdate{
		Name:        req.GetString("name", ""),
		Description: req.GetString("description", ""),
		ParentID:    req.GetInt("parent_id", 0),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Updated project #%d\n\n%s",
		p.ID, format.ProjectDetail(p))), nil
}

// DeleteProjectTool handles the op_delete_project MCP tool.
type DeleteProjectTool struct {
	client *openproject.Client
}

// NewDeleteProjectTool creates a DeleteProjectTool.
func NewDeleteProjectTool(client *openproject.Client) *DeleteProjectTool {
	return &DeleteProjectTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("op_delete_project",
		mcp.WithDescription(
			"Permanently delete a project and everything in it. This cannot "+
				"be undone.",
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Project ID."),
		),
	)
}

// Handle processes the op_delete_project tool call.
func (t *DeleteProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	if err := t.client.DeleteProject(ctx, id); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("🗑️ Deleted project #%d", id)), nil
}

// ListSubprojectsTool handles the op_list_subprojects MCP tool.
type ListSubprojectsTool struct {
	client *openproject.Client
}

// NewListSubprojectsTool creates a ListSubprojectsTool.
func NewListSubprojectsTool(client *openproject.Client) *ListSubprojectsTool {
	return &ListSubprojectsTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListSubprojectsTool) Definition() mcp.Tool {
	return mcp.NewTool("op_list_subprojects",
		mcp.WithDescription("List the direct subprojects of a project."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Parent project ID."),
		),
	)
}

// Handle processes the op_list_subprojects tool call.
func (t *ListSubprojectsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	col, err := t.client.ListSubprojects(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.ProjectList(col.Elements())), nil
}
