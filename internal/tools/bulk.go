package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"opmcp/internal/bulk"
	"opmcp/internal/openproject"
)

// bulkSummary renders the outcome of a bulk run, including per-item
// failures and retry accounting.
func bulkSummary(verb string, r bulk.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d/%d work packages in %s (%.0f%% success)\n",
		verb, r.Succeeded, r.Total, r.Duration.Round(time.Millisecond), r.SuccessRate()*100)
	if r.TotalRetries > 0 {
		fmt.Fprintf(&b, "⚠️ %d transient failure(s) retried across %d item(s)\n",
			r.TotalRetries, r.ItemsWithRetries)
	}
	if r.Failed > 0 {
		b.WriteString("\nFailures:\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	return b.String()
}

// BulkUpdateTool handles the op_bulk_update_work_packages MCP tool.
type BulkUpdateTool struct {
	client *openproject.Client
}

// NewBulkUpdateTool creates a BulkUpdateTool.
func NewBulkUpdateTool(client *openproject.Client) *BulkUpdateTool {
	return &BulkUpdateTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *BulkUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("op_bulk_update_work_packages",
		mcp.WithDescription(
			"Apply the same field changes to up to 50 work packages at "+
				"once. Items are processed concurrently; transient failures "+
				"are retried and individual failures do not abort the rest.",
		),
		mcp.WithString("ids",
			mcp.Required(),
			mcp.Description("Comma-separated work package IDs, e.g. \"12,13,14\"."),
		),
		mcp.WithNumber("status_id",
			mcp.Description("New status for all items."),
		),
		mcp.WithNumber("priority_id",
			mcp.Description("New priority for all items."),
		),
		mcp.WithNumber("assignee_id",
			mcp.Description("New assignee for all items."),
		),
		mcp.WithNumber("type_id",
			mcp.Description("New type for all items."),
		),
		mcp.WithString("due_date",
			mcp.Description("New due date for all items, YYYY-MM-DD."),
		),
	)
}

// Handle processes the op_bulk_update_work_packages tool call.
func (t *BulkUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := parseIDList(req.GetString("ids", ""))
	if err != nil {
		return mcp.NewToolResultError("ids: " + err.Error()), nil
	}

	update := openproject.WorkPackageUpdate{
		StatusID:   req.GetInt("status_id", 0),
		PriorityID: req.GetInt("priority_id", 0),
		AssigneeID: req.GetInt("assignee_id", 0),
		TypeID:     req.GetInt("type_id", 0),
		DueDate:    req.GetString("due_date", ""),
	}
	if update == (openproject.WorkPackageUpdate{}) {
		return mcp.NewToolResultError("at least one field to update is required"), nil
	}

	result, err := bulk.UpdateWorkPackages(ctx, t.client, ids, update, bulk.Options{})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(bulkSummary("✅ Updated", result)), nil
}

// BulkCommentTool handles the op_bulk_comment_work_packages MCP tool.
type BulkCommentTool struct {
	client *openproject.Client
}

// NewBulkCommentTool creates a BulkCommentTool.
func NewBulkCommentTool(client *openproject.Client) *BulkCommentTool {
	return &BulkCommentTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *BulkCommentTool) Definition() mcp.Tool {
	return mcp.NewTool("op_bulk_comment_work_packages",
		mcp.WithDescription("Post the same comment on up to 50 work packages at once."),
		mcp.WithString("ids",
			mcp.Required(),
			mcp.Description("Comma-separated work package IDs."),
		),
		mcp.WithString("comment",
			mcp.Required(),
			mcp.Description("Comment text in markdown."),
		),
	)
}

// Handle processes the op_bulk_comment_work_packages tool call.
func (t *BulkCommentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := parseIDList(req.GetString("ids", ""))
	if err != nil {
		return mcp.NewToolResultError("ids: " + err.Error()), nil
	}
	comment := req.GetString("comment", "")
	if comment == "" {
		return mcp.NewToolResultError("comment is required"), nil
	}

	result, err := bulk.CommentWorkPackages(ctx, t.client, ids, comment, bulk.Options{})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(bulkSummary("💬 Commented on", result)), nil
}
