package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"opmcp/internal/format"
	"opmcp/internal/openproject"
)

// CreateRelationTool handles the op_create_relation MCP tool.
type CreateRelationTool struct {
	client *openproject.Client
}

// NewCreateRelationTool creates a CreateRelationTool.
func NewCreateRelationTool(client *openproject.Client) *CreateRelationTool {
	return &CreateRelationTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateRelationTool) Definition() mcp.Tool {
	return mcp.NewTool("op_create_relation",
		mcp.WithDescription(
			"Link two work packages with a typed relation, e.g. \"blocks\" "+
				"or \"follows\".",
		),
		mcp.WithNumber("from_id",
			mcp.Required(),
			mcp.Description("Source work package ID."),
		),
		mcp.WithNumber("to_id",
			mcp.Required(),
			mcp.Description("Target work package ID."),
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Relation type."),
			mcp.Enum(openproject.RelationTypes...),
		),
		mcp.WithNumber("lag",
			mcp.Description("Working days between predecessor and follower."),
		),
		mcp.WithString("description",
			mcp.Description("Free-text note on the relation."),
		),
	)
}

// Handle processes the op_create_relation tool call.
func (t *CreateRelationTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fromID, errRes := requireID(req, "from_id")
	if errRes != nil {
		return errRes, nil
	}
	toID, errRes := requireID(req, "to_id")
	if errRes != nil {
		return errRes, nil
	}

	r := openproject.NewRelation{
		FromID:      fromID,
		ToID:        toID,
		Type:        req.GetString("type", ""),
		Description: req.GetString("description", ""),
	}
	if lag := req.GetInt("lag", -1); lag >= 0 {
		r.Lag = &lag
	}

	rel, err := t.client.CreateRelation(ctx, r)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Created relation #%d: #%d %s #%d",
		rel.ID, fromID, rel.Type, toID)), nil
}

// ListRelationsTool handles the op_list_relations MCP tool.
type ListRelationsTool struct {
	client *openproject.Client
}

// NewListRelationsTool creates a ListRelationsTool.
func NewListRelationsTool(client *openproject.Client) *ListRelationsTool {
	return &ListRelationsTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListRelationsTool) Definition() mcp.Tool {
	return mcp.NewTool("op_list_relations",
		mcp.WithDescription("List relations involving a work package."),
		mcp.WithNumber("work_package_id",
			mcp.Required(),
			mcp.Description("Work package whose relations to list."),
		),
	)
}

// Handle processes the op_list_relations tool call.
func (t *ListRelationsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "work_package_id")
	if errRes != nil {
		return errRes, nil
	}
	col, err := t.client.ListRelations(ctx, []openproject.Filter{
		openproject.FilterEq("involved", id),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.RelationList(col.Elements())), nil
}

// GetRelationTool handles the op_get_relation MCP tool.
type GetRelationTool struct {
	client *openproject.Client
}

// NewGetRelationTool creates a GetRelationTool.
func NewGetRelationTool(client *openproject.Client) *GetRelationTool {
	return &GetRelationTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *GetRelationTool) Definition() mcp.Tool {
	return mcp.NewTool("op_get_relation",
		mcp.WithDescription("Show one relation."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Relation ID."),
		),
	)
}

// Handle processes the op_get_relation tool call.
func (t *GetRelationTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	rel, err := t.client.GetRelation(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.RelationList([]openproject.Relation{*rel})), nil
}

// UpdateRelationTool handles the op_update_relation MCP tool.
type UpdateRelationTool struct {
	client *openproject.Client
}

// NewUpdateRelationTool creates an UpdateRelationTool.
func NewUpdateRelationTool(client *openproject.Client) *UpdateRelationTool {
	return &UpdateRelationTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateRelationTool) Definition() mcp.Tool {
	return mcp.NewTool("op_update_relation",
		mcp.WithDescription("Change the type, lag or description of a relation."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Relation ID."),
		),
		mcp.WithString("type",
			mcp.Description("New relation type."),
			mcp.Enum(openproject.RelationTypes...),
		),
		mcp.WithNumber("lag",
			mcp.Description("New lag in working days."),
		),
		mcp.WithString("description",
			mcp.Description("New description."),
		),
	)
}

// Handle processes the op_update_relation tool call.
func (t *UpdateRelationTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}

	var lag *int
	if v := req.GetInt("lag", -1); v >= 0 {
		lag = &v
	}
	rel, err := t.client.UpdateRelation(ctx, id,
		req.GetString("type", ""), lag, req.GetString("description", ""))
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Updated relation #%d", rel.ID)), nil
}

// DeleteRelationTool handles the op_delete_relation MCP tool.
type DeleteRelationTool struct {
	client *openproject.Client
}

// NewDeleteRelationTool creates a DeleteRelationTool.
func NewDeleteRelationTool(client *openproject.Client) *DeleteRelationTool {
	return &DeleteRelationTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteRelationTool) Definition() mcp.Tool {
	return mcp.NewTool("op_delete_relation",
		mcp.WithDescription("Remove a relation between two work packages."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Relation ID."),
		),
	)
}

// Handle processes the op_delete_relation tool call.
func (t *DeleteRelationTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	if err := t.client.DeleteRelation(ctx, id); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("🗑️ Deleted relation #%d", id)), nil
}
