package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"opmcp/internal/format"
	"opmcp/internal/openproject"
)

// ListWorkPackagesTool handles the op_list_work_packages MCP tool.
type ListWorkPackagesTool struct {
	client *openproject.Client
}

// NewListWorkPackagesTool creates a ListWorkPackagesTool.
func NewListWorkPackagesTool(client *openproject.Client) *ListWorkPackagesTool {
	return &ListWorkPackagesTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListWorkPackagesTool) Definition() mcp.Tool {
	return mcp.NewTool("op_list_work_packages",
		mcp.WithDescription(
			"List work packages, optionally scoped to a project. By default "+
				"only open work packages are returned; set all_statuses to "+
				"include closed ones. Supports offset/pageSize pagination.",
		),
		mcp.WithNumber("project_id",
			mcp.Description("Project to list from. Omit to list across all projects."),
		),
		mcp.WithBoolean("all_statuses",
			mcp.Description("Include closed work packages (default false)."),
		),
		mcp.WithNumber("assignee_id",
			mcp.Description("Only work packages assigned to this user."),
		),
		mcp.WithNumber("offset",
			mcp.Description("Pagination offset (default 0)."),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Results per page (server default when omitted)."),
		),
	)
}

// Handle processes the op_list_work_packages tool call.
func (t *ListWorkPackagesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := openproject.ListWorkPackagesOptions{
		ProjectID: req.GetInt("project_id", 0),
		Offset:    req.GetInt("offset", 0),
		PageSize:  req.GetInt("page_size", 0),
	}
	if !req.GetBool("all_statuses", false) {
		opts.Filters = append(opts.Filters, openproject.FilterOpenStatus())
	}
	if assignee := req.GetInt("assignee_id", 0); assignee > 0 {
		opts.Filters = append(opts.Filters, openproject.FilterEq("assignee", assignee))
	}

	col, err := t.client.ListWorkPackages(ctx, opts)
	if err != nil {
		return errorResult(err), nil
	}

	out := format.WorkPackageList(col.Elements())
	out += format.PaginationFooter(col.Offset, col.Count, col.Total, col.PageSize)
	return mcp.NewToolResultText(out), nil
}

// GetWorkPackageTool handles the op_get_work_package MCP tool.
type GetWorkPackageTool struct {
	client *openproject.Client
}

// NewGetWorkPackageTool creates a GetWorkPackageTool.
func NewGetWorkPackageTool(client *openproject.Client) *GetWorkPackageTool {
	return &GetWorkPackageTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *GetWorkPackageTool) Definition() mcp.Tool {
	return mcp.NewTool("op_get_work_package",
		mcp.WithDescription("Show one work package in full detail, including description and dates."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Work package ID."),
		),
	)
}

// Handle processes the op_get_work_package tool call.
func (t *GetWorkPackageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	wp, err := t.client.GetWorkPackage(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.WorkPackageDetail(wp)), nil
}

// CreateWorkPackageTool handles the op_create_work_package MCP tool.
type CreateWorkPackageTool struct {
	client *openproject.Client
}

// NewCreateWorkPackageTool creates a CreateWorkPackageTool.
func NewCreateWorkPackageTool(client *openproject.Client) *CreateWorkPackageTool {
	return &CreateWorkPackageTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateWorkPackageTool) Definition() mcp.Tool {
	return mcp.NewTool("op_create_work_package",
		mcp.WithDescription(
			"Create a work package in a project. Requires the project, a "+
				"subject and a type (use op_list_types to discover type IDs). "+
				"Optional fields: description, dates, assignee, status, "+
				"priority and version.",
		),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project to create in."),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Work package title."),
		),
		mcp.WithNumber("type_id",
			mcp.Required(),
			mcp.Description("Work package type ID (Task, Bug, ...)."),
		),
		mcp.WithString("description",
			mcp.Description("Description in markdown."),
		),
		mcp.WithString("start_date",
			mcp.Description("Start date, YYYY-MM-DD."),
		),
		mcp.WithString("due_date",
			mcp.Description("Due date, YYYY-MM-DD."),
		),
		mcp.WithNumber("assignee_id",
			mcp.Description("User to assign."),
		),
		mcp.WithNumber("status_id",
			mcp.Description("Initial status (server default when omitted)."),
		),
		mcp.WithNumber("priority_id",
			mcp.Description("Priority (server default when omitted)."),
		),
		mcp.WithNumber("version_id",
			mcp.Description("Version/milestone to target."),
		),
	)
}

// Handle processes the op_create_work_package tool call.
func (t *CreateWorkPackageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := openproject.NewWorkPackage{
		ProjectID:   req.GetInt("project_id", 0),
		Subject:     req.GetString("subject", ""),
		TypeID:      req.GetInt("type_id", 0),
		Description: req.GetString("description", ""),
		StartDate:   req.GetString("start_date", ""),
		DueDate:     req.GetString("due_date", ""),
		AssigneeID:  req.GetInt("assignee_id", 0),
		StatusID:    req.GetInt("status_id", 0),
		PriorityID:  req.GetInt("priority_id", 0),
		VersionID:   req.GetInt("version_id", 0),
	}

	wp, err := t.client.CreateWorkPackage(ctx, p)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Created work package #%d\n\n%s",
		wp.ID, format.WorkPackageDetail(wp))), nil
}

// UpdateWorkPackageTool handles the op_update_work_package MCP tool.
type UpdateWorkPackageTool struct {
	client *openproject.Client
}

// NewUpdateWorkPackageTool creates an UpdateWorkPackageTool.
func NewUpdateWorkPackageTool(client *openproject.Client) *UpdateWorkPackageTool {
	return &UpdateWorkPackageTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateWorkPackageTool) Definition() mcp.Tool {
	return mcp.NewTool("op_update_work_package",
		mcp.WithDescription(
			"Update fields of a work package. Only the provided fields "+
				"change; the current lock version is fetched automatically.",
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Work package ID."),
		),
		mcp.WithString("subject",
			mcp.Description("New title."),
		),
		mcp.WithString("description",
			mcp.Description("New description in markdown."),
		),
		mcp.WithNumber("type_id",
			mcp.Description("New type."),
		),
		mcp.WithNumber("status_id",
			mcp.Description("New status."),
		),
		mcp.WithNumber("priority_id",
			mcp.Description("New priority."),
		),
		mcp.WithNumber("assignee_id",
			mcp.Description("New assignee."),
		),
		mcp.WithString("start_date",
			mcp.Description("New start date, YYYY-MM-DD."),
		),
		mcp.WithString("due_date",
			mcp.Description("New due date, YYYY-MM-DD."),
		),
		mcp.WithNumber("percentage_done",
			mcp.Description("Progress percentage, 0-100."),
		),
	)
}

// Handle processes the op_update_work_package tool call.
func (t *UpdateWorkPackageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}

	u := openproject.WorkPackageUpdate{
		Subject:     req.GetString("subject", ""),
		Description: req.GetString("description", ""),
		TypeID:      req.GetInt("type_id", 0),
		StatusID:    req.GetInt("status_id", 0),
		PriorityID:  req.GetInt("priority_id", 0),
		AssigneeID:  req.GetInt("assignee_id", 0),
		StartDate:   req.GetString("start_date", ""),
		DueDate:     req.GetString("due_date", ""),
	}
	if pct := req.GetInt("percentage_done", -1); pct >= 0 {
		u.PercentageDone = &pct
	}

	wp, err := t.client.UpdateWorkPackage(ctx, id, u)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Updated work package #%d\n\n%s",
		wp.ID, format.WorkPackageDetail(wp))), nil
}

// DeleteWorkPackageTool handles the op_delete_work_package MCP tool.
type DeleteWorkPackageTool struct {
	client *openproject.Client
}

// NewDeleteWorkPackageTool creates a DeleteWorkPackageTool.
func NewDeleteWorkPackageTool(client *openproject.Client) *DeleteWorkPackageTool {
	return &DeleteWorkPackageTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteWorkPackageTool) Definition() mcp.Tool {
	return mcp.NewTool("op_delete_work_package",
		mcp.WithDescription("Permanently delete a work package. This cannot be undone."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Work package ID."),
		),
	)
}

// Handle processes the op_delete_work_package tool call.
func (t *DeleteWorkPackageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	if err := t.client.DeleteWorkPackage(ctx, id); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("🗑️ Deleted work package #%d", id)), nil
}

// AssignWorkPackageTool handles the op_assign_work_package MCP tool.
// An omitted user_id clears the current assignee.
type AssignWorkPackageTool struct {
	client *openproject.Client
}

// NewAssignWorkPackageTool creates an AssignWorkPackageTool.
func NewAssignWorkPackageTool(client *openproject.Client) *AssignWorkPackageTool {
	return &AssignWorkPackageTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *AssignWorkPackageTool) Definition() mcp.Tool {
	return mcp.NewTool("op_assign_work_package",
		mcp.WithDescription(
			"Assign a work package to a user, or clear the assignee when "+
				"user_id is omitted.",
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Work package ID."),
		),
		mcp.WithNumber("user_id",
			mcp.Description("User to assign. Omit to unassign."),
		),
	)
}

// Handle processes the op_assign_work_package tool call.
func (t *AssignWorkPackageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}

	userID := req.GetInt("user_id", 0)
	var (
		wp  *openproject.WorkPackage
		err error
	)
	if userID > 0 {
		wp, err = t.client.AssignWorkPackage(ctx, id, userID)
	} else {
		wp, err = t.client.UnassignWorkPackage(ctx, id)
	}
	if err != nil {
		return errorResult(err), nil
	}

	if userID > 0 {
		assignee := ""
		if wp.Links.Assignee != nil {
			assignee = wp.Links.Assignee.Title
		}
		return mcp.NewToolResultText(fmt.Sprintf("✅ Assigned work package #%d to %s", wp.ID, assignee)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Cleared assignee of work package #%d", wp.ID)), nil
}

// CommentWorkPackageTool handles the op_comment_work_package MCP tool.
type CommentWorkPackageTool struct {
	client *openproject.Client
}

// NewCommentWorkPackageTool creates a CommentWorkPackageTool.
func NewCommentWorkPackageTool(client *openproject.Client) *CommentWorkPackageTool {
	return &CommentWorkPackageTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *CommentWorkPackageTool) Definition() mcp.Tool {
	return mcp.NewTool("op_comment_work_package",
		mcp.WithDescription("Add a comment to a work package's activity stream."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Work package ID."),
		),
		mcp.WithString("comment",
			mcp.Required(),
			mcp.Description("Comment text in markdown."),
		),
	)
}

// Handle processes the op_comment_work_package tool call.
func (t *CommentWorkPackageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	comment := req.GetString("comment", "")
	if comment == "" {
		return mcp.NewToolResultError("comment is required"), nil
	}

	if _, err := t.client.AddWorkPackageComment(ctx, id, comment); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("💬 Comment added to work package #%d", id)), nil
}

// WorkPackageActivitiesTool handles the op_work_package_activities MCP
// tool.
type WorkPackageActivitiesTool struct {
	client *openproject.Client
}

// NewWorkPackageActivitiesTool creates a WorkPackageActivitiesTool.
func NewWorkPackageActivitiesTool(client *openproject.Client) *WorkPackageActivitiesTool {
	return &WorkPackageActivitiesTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *WorkPackageActivitiesTool) Definition() mcp.Tool {
	return mcp.NewTool("op_work_package_activities",
		mcp.WithDescription("Show the activity stream of a work package: comments and field changes."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Work package ID."),
		),
	)
}

// Handle processes the op_work_package_activities tool call.
func (t *WorkPackageActivitiesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	col, err := t.client.ListWorkPackageActivities(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.ActivityList(col.Elements())), nil
}
