package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"opmcp/internal/format"
	"opmcp/internal/openproject"
)

// ListNewsTool handles the op_list_news MCP tool.
type ListNewsTool struct {
	client *openproject.Client
}

// NewListNewsTool creates a ListNewsTool.
func NewListNewsTool(client *openproject.Client) *ListNewsTool {
	return &ListNewsTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListNewsTool) Definition() mcp.Tool {
	return mcp.NewTool("op_list_news",
		mcp.WithDescription("List news/announcements, optionally scoped to a project."),
		mcp.WithNumber("project_id",
			mcp.Description("Only news of this project."),
		),
	)
}

// Handle processes the op_list_news tool call.
func (t *ListNewsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	col, err := t.client.ListNews(ctx, req.GetInt("project_id", 0))
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.NewsList(col.Elements())), nil
}

// GetNewsTool handles the op_get_news MCP tool.
type GetNewsTool struct {
	client *openproject.Client
}

// NewGetNewsTool creates a GetNewsTool.
func NewGetNewsTool(client *openproject.Client) *GetNewsTool {
	return &GetNewsTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *GetNewsTool) Definition() mcp.Tool {
	return mcp.NewTool("op_get_news",
		mcp.WithDescription("Show one news item with its full description."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("News ID."),
		),
	)
}

// Handle processes the op_get_news tool call.
func (t *GetNewsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	n, err := t.client.GetNews(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}

	out := fmt.Sprintf("# %s\n", n.Title)
	if n.Summary != "" {
		out += "\n" + n.Summary + "\n"
	}
	if n.Description != nil && n.Description.Raw != "" {
		out += "\n" + n.Description.Raw + "\n"
	}
	return mcp.NewToolResultText(out), nil
}

// CreateNewsTool handles the op_create_news MCP tool.
type CreateNewsTool struct {
	client *openproject.Client
}

// NewCreateNewsTool creates a CreateNewsTool.
func NewCreateNewsTool(client *openproject.Client) *CreateNewsTool {
	return &CreateNewsTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateNewsTool) Definition() mcp.Tool {
	return mcp.NewTool("op_create_news",
		mcp.WithDescription("Publish a news item in a project."),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project to publish in."),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("News title."),
		),
		mcp.WithString("summary",
			mcp.Description("Short summary shown in listings."),
		),
		mcp.WithString("description",
			mcp.Description("Full text in markdown."),
		),
	)
}

// Handle processes the op_create_news tool call.
func (t *CreateNewsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, errRes := requireID(req, "project_id")
	if errRes != nil {
		return errRes, nil
	}
	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	n, err := t.client.CreateNews(ctx, openproject.NewNews{
		ProjectID:   projectID,
		Title:       title,
		Summary:     req.GetString("summary", ""),
		Description: req.GetString("description", ""),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("📰 Published news #%d: %s", n.ID, n.Title)), nil
}

// UpdateNewsTool handles the op_update_news MCP tool.
type UpdateNewsTool struct {
	client *openproject.Client
}

// NewUpdateNewsTool creates an UpdateNewsTool.
func NewUpdateNewsTool(client *openproject.Client) *UpdateNewsTool {
	return &UpdateNewsTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateNewsTool) Definition() mcp.Tool {
	return mcp.NewTool("op_update_news",
		mcp.WithDescription("Update a news item. Only the provided fields change."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("News ID."),
		),
		mcp.WithString("title",
			mcp.Description("New title."),
		),
		mcp.WithString("summary",
			mcp.Description("New summary."),
		),
		mcp.WithString("description",
			mcp.Description("New full text in markdown."),
		),
	)
}

// Handle processes the op_update_news tool call.
func (t *UpdateNewsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	n, err := t.client.UpdateNews(ctx, id,
		req.GetString("title", ""),
		req.GetString("summary", ""),
		req.GetString("description", ""))
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Updated news #%d: %s", n.ID, n.Title)), nil
}

// DeleteNewsTool handles the op_delete_news MCP tool.
type DeleteNewsTool struct {
	client *openproject.Client
}

// NewDeleteNewsTool creates a DeleteNewsTool.
func NewDeleteNewsTool(client *openproject.Client) *DeleteNewsTool {
	return &DeleteNewsTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteNewsTool) Definition() mcp.Tool {
	return mcp.NewTool("op_delete_news",
		mcp.WithDescription("Delete a news item."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("News ID."),
		),
	)
}

// Handle processes the op_delete_news tool call.
func (t *DeleteNewsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	if err := t.client.DeleteNews(ctx, id); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("🗑️ Deleted news #%d", id)), nil
}
