package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"opmcp/internal/format"
	"opmcp/internal/openproject"
)

// parseIDList splits a comma-separated list of positive integers.
func parseIDList(raw string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid ID %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ListMembershipsTool handles the op_list_memberships MCP tool.
type ListMembershipsTool struct {
	client *openproject.Client
}

// NewListMembershipsTool creates a ListMembershipsTool.
func NewListMembershipsTool(client *openproject.Client) *ListMembershipsTool {
	return &ListMembershipsTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListMembershipsTool) Definition() mcp.Tool {
	return mcp.NewTool("op_list_memberships",
		mcp.WithDescription(
			"List project memberships, filterable by project and/or user.",
		),
		mcp.WithNumber("project_id",
			mcp.Description("Only memberships of this project."),
		),
		mcp.WithNumber("user_id",
			mcp.Description("Only memberships of this user."),
		),
	)
}

// Handle processes the op_list_memberships tool call.
func (t *ListMembershipsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	col, err := t.client.ListMemberships(ctx, req.GetInt("project_id", 0), req.GetInt("user_id", 0))
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.MembershipList(col.Elements())), nil
}

// GetMembershipTool handles the op_get_membership MCP tool.
type GetMembershipTool struct {
	client *openproject.Client
}

// NewGetMembershipTool creates a GetMembershipTool.
func NewGetMembershipTool(client *openproject.Client) *GetMembershipTool {
	return &GetMembershipTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *GetMembershipTool) Definition() mcp.Tool {
	return mcp.NewTool("op_get_membership",
		mcp.WithDescription("Show one membership: the principal, project and granted roles."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Membership ID."),
		),
	)
}

// Handle processes the op_get_membership tool call.
func (t *GetMembershipTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	m, err := t.client.GetMembership(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.MembershipList([]openproject.Membership{*m})), nil
}

// CreateMembershipTool handles the op_create_membership MCP tool.
type CreateMembershipTool struct {
	client *openproject.Client
}

// NewCreateMembershipTool creates a CreateMembershipTool.
func NewCreateMembershipTool(client *openproject.Client) *CreateMembershipTool {
	return &CreateMembershipTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateMembershipTool) Definition() mcp.Tool {
	return mcp.NewTool("op_create_membership",
		mcp.WithDescription(
			"Add a user or group to a project with one or more roles. "+
				"Use op_list_roles to discover role IDs.",
		),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project to add the principal to."),
		),
		mcp.WithNumber("user_id",
			mcp.Description("User to add. Provide either user_id or group_id."),
		),
		mcp.WithNumber("group_id",
			mcp.Description("Group to add. Provide either user_id or group_id."),
		),
		mcp.WithString("role_ids",
			mcp.Required(),
			mcp.Description("Comma-separated role IDs, e.g. \"4,5\"."),
		),
		mcp.WithString("message",
			mcp.Description("Notification message sent to the new member."),
		),
	)
}

// Handle processes the op_create_membership tool call.
func (t *CreateMembershipTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, errRes := requireID(req, "project_id")
	if errRes != nil {
		return errRes, nil
	}
	roleIDs, err := parseIDList(req.GetString("role_ids", ""))
	if err != nil {
		return mcp.NewToolResultError("role_ids: " + err.Error()), nil
	}
	if len(roleIDs) == 0 {
		return mcp.NewToolResultError("role_ids is required"), nil
	}

	m, err := t.client.CreateMembership(ctx, openproject.NewMembership{
		ProjectID:           projectID,
		UserID:              req.GetInt("user_id", 0),
		GroupID:             req.GetInt("group_id", 0),
		RoleIDs:             roleIDs,
		NotificationMessage: req.GetString("message", ""),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Created membership #%d in project #%d",
		m.ID, projectID)), nil
}

// UpdateMembershipTool handles the op_update_membership MCP tool.
type UpdateMembershipTool struct {
	client *openproject.Client
}

// NewUpdateMembershipTool creates an UpdateMembershipTool.
func NewUpdateMembershipTool(client *openproject.Client) *UpdateMembershipTool {
	return &UpdateMembershipTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateMembershipTool) Definition() mcp.Tool {
	return mcp.NewTool("op_update_membership",
		mcp.WithDescription("Replace the roles of an existing membership."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Membership ID."),
		),
		mcp.WithString("role_ids",
			mcp.Required(),
			mcp.Description("Comma-separated role IDs that replace the current set."),
		),
		mcp.WithString("message",
			mcp.Description("Notification message sent to the member."),
		),
	)
}

// Handle processes the op_update_membership tool call.
func (t *UpdateMembershipTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	roleIDs, err := parseIDList(req.GetString("role_ids", ""))
	if err != nil {
		return mcp.NewToolResultError("role_ids: " + err.Error()), nil
	}
	if len(roleIDs) == 0 {
		return mcp.NewToolResultError("role_ids is required"), nil
	}

	m, err := t.client.UpdateMembership(ctx, id, roleIDs, req.GetString("message", ""))
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Updated membership #%d", m.ID)), nil
}

// DeleteMembershipTool handles the op_delete_membership MCP tool.
type DeleteMembershipTool struct {
	client *openproject.Client
}

// NewDeleteMembershipTool creates a DeleteMembershipTool.
func NewDeleteMembershipTool(client *openproject.Client) *DeleteMembershipTool {
	return &DeleteMembershipTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteMembershipTool) Definition() mcp.Tool {
	return mcp.NewTool("op_delete_membership",
		mcp.WithDescription("Remove a principal from a project by deleting the membership."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Membership ID."),
		),
	)
}

// Handle processes the op_delete_membership tool call.
func (t *DeleteMembershipTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	if err := t.client.DeleteMembership(ctx, id); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("🗑️ Deleted membership #%d", id)), nil
}
