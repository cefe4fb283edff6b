package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"opmcp/internal/format"
	"opmcp/internal/openproject"
)

// ListTimeEntriesTool handles the op_list_time_entries MCP tool.
type ListTimeEntriesTool struct {
	client *openproject.Client
}

// NewListTimeEntriesTool creates a ListTimeEntriesTool.
func NewListTimeEntriesTool(client *openproject.Client) *ListTimeEntriesTool {
	return &ListTimeEntriesTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListTimeEntriesTool) Definition() mcp.Tool {
	return mcp.NewTool("op_list_time_entries",
		mcp.WithDescription(
			"List time entries, filterable by project, work package, user "+
				"and a spent-on date window.",
		),
		mcp.WithNumber("project_id",
			mcp.Description("Only entries of this project."),
		),
		mcp.WithNumber("work_package_id",
			mcp.Description("Only entries on this work package."),
		),
		mcp.WithNumber("user_id",
			mcp.Description("Only entries logged by this user."),
		),
		mcp.WithString("from_date",
			mcp.Description("Window start, YYYY-MM-DD. Requires to_date."),
		),
		mcp.WithString("to_date",
			mcp.Description("Window end, YYYY-MM-DD. Requires from_date."),
		),
	)
}

// Handle processes the op_list_time_entries tool call.
func (t *ListTimeEntriesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var filters []openproject.Filter
	if id := req.GetInt("project_id", 0); id > 0 {
		filters = append(filters, openproject.FilterEq("project", id))
	}
	if id := req.GetInt("work_package_id", 0); id > 0 {
		filters = append(filters, openproject.FilterEq("workPackage", id))
	}
	if id := req.GetInt("user_id", 0); id > 0 {
		filters = append(filters, openproject.FilterEq("user", id))
	}
	from, to := req.GetString("from_date", ""), req.GetString("to_date", "")
	if (from == "") != (to == "") {
		return mcp.NewToolResultError("from_date and to_date must be provided together"), nil
	}
	if from != "" {
		filters = append(filters, openproject.FilterBetween("spentOn", from, to))
	}

	col, err := t.client.ListTimeEntries(ctx, filters)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.TimeEntryList(col.Elements())), nil
}

// LogTimeTool handles the op_log_time MCP tool.
type LogTimeTool struct {
	client *openproject.Client
}

// NewLogTimeTool creates a LogTimeTool.
func NewLogTimeTool(client *openproject.Client) *LogTimeTool {
	return &LogTimeTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *LogTimeTool) Definition() mcp.Tool {
	return mcp.NewTool("op_log_time",
		mcp.WithDescription(
			"Log hours against a work package. Use op_list_activities to "+
				"discover activity IDs.",
		),
		mcp.WithNumber("work_package_id",
			mcp.Required(),
			mcp.Description("Work package to log against."),
		),
		mcp.WithNumber("hours",
			mcp.Required(),
			mcp.Description("Hours spent, e.g. 1.5."),
		),
		mcp.WithString("spent_on",
			mcp.Description("Date the time was spent, YYYY-MM-DD (default today)."),
		),
		mcp.WithString("comment",
			mcp.Description("What the time was spent on."),
		),
		mcp.WithNumber("activity_id",
			mcp.Description("Time entry activity (server default when omitted)."),
		),
	)
}

// Handle processes the op_log_time tool call.
func (t *LogTimeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	wpID, errRes := requireID(req, "work_package_id")
	if errRes != nil {
		return errRes, nil
	}
	hours := req.GetFloat("hours", 0)
	if hours <= 0 {
		return mcp.NewToolResultError("hours must be a positive number"), nil
	}

	entry, err := t.client.CreateTimeEntry(ctx, openproject.NewTimeEntry{
		WorkPackageID: wpID,
		Hours:         hours,
		SpentOn:       req.GetString("spent_on", ""),
		Comment:       req.GetString("comment", ""),
		ActivityID:    req.GetInt("activity_id", 0),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("⏱️ Logged %s on work package #%d (entry #%d)",
		format.HoursLabel(entry.Hours), wpID, entry.ID)), nil
}

// UpdateTimeEntryTool handles the op_update_time_entry MCP tool.
type UpdateTimeEntryTool struct {
	client *openproject.Client
}

// NewUpdateTimeEntryTool creates an UpdateTimeEntryTool.
func NewUpdateTimeEntryTool(client *openproject.Client) *UpdateTimeEntryTool {
	return &UpdateTimeEntryTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateTimeEntryTool) Definition() mcp.Tool {
	return mcp.NewTool("op_update_time_entry",
		mcp.WithDescription("Update a time entry. Only the provided fields change."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Time entry ID."),
		),
		mcp.WithNumber("hours",
			mcp.Description("New hours."),
		),
		mcp.WithString("spent_on",
			mcp.Description("New date, YYYY-MM-DD."),
		),
		mcp.WithString("comment",
			mcp.Description("New comment."),
		),
		mcp.WithNumber("activity_id",
			mcp.Description("New activity."),
		),
	)
}

// Handle processes the op_update_time_entry tool call.
func (t *UpdateTimeEntryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}

	u := openproject.TimeEntryUpdate{
		SpentOn:    req.GetString("spent_on", ""),
		Comment:    req.GetString("comment", ""),
		ActivityID: req.GetInt("activity_id", 0),
	}
	if hours := req.GetFloat("hours", 0); hours > 0 {
		u.Hours = &hours
	}

	entry, err := t.client.UpdateTimeEntry(ctx, id, u)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ Updated time entry #%d", entry.ID)), nil
}

// DeleteTimeEntryTool handles the op_delete_time_entry MCP tool.
type DeleteTimeEntryTool struct {
	client *openproject.Client
}

// NewDeleteTimeEntryTool creates a DeleteTimeEntryTool.
func NewDeleteTimeEntryTool(client *openproject.Client) *DeleteTimeEntryTool {
	return &DeleteTimeEntryTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteTimeEntryTool) Definition() mcp.Tool {
	return mcp.NewTool("op_delete_time_entry",
		mcp.WithDescription("Delete a time entry."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Time entry ID."),
		),
	)
}

// Handle processes the op_delete_time_entry tool call.
func (t *DeleteTimeEntryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireID(req, "id")
	if errRes != nil {
		return errRes, nil
	}
	if err := t.client.DeleteTimeEntry(ctx, id); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("🗑️ Deleted time entry #%d", id)), nil
}

// ListActivitiesTool handles the op_list_activities MCP tool.
type ListActivitiesTool struct {
	client *openproject.Client
}

// NewListActivitiesTool creates a ListActivitiesTool.
func NewListActivitiesTool(client *openproject.Client) *ListActivitiesTool {
	return &ListActivitiesTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListActivitiesTool) Definition() mcp.Tool {
	return mcp.NewTool("op_list_activities",
		mcp.WithDescription("List the activities available for time logging (Development, Meeting...)."),
	)
}

// Handle processes the op_list_activities tool call.
func (t *ListActivitiesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	col, err := t.client.TimeEntryActivities(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(format.ActivityOptions(col.Elements())), nil
}
