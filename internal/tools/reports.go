package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"opmcp/internal/openproject"
	"opmcp/internal/report"
)

// reportNow is swapped out in tests to pin the week windows.
var reportNow = time.Now

// WeeklyReportTool handles the op_weekly_report MCP tool. The window
// defaults to the current Monday..Sunday week; "period" selects last
// week instead, and explicit from/to dates win over both.
type WeeklyReportTool struct {
	client *openproject.Client
}

// NewWeeklyReportTool creates a WeeklyReportTool.
func NewWeeklyReportTool(client *openproject.Client) *WeeklyReportTool {
	return &WeeklyReportTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *WeeklyReportTool) Definition() mcp.Tool {
	return mcp.NewTool("op_weekly_report",
		mcp.WithDescription(
			"Generate a weekly progress report for a project as markdown: "+
				"delivery status, hours by activity, impediments and the "+
				"queue for next week. Defaults to the current week.",
		),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project to report on."),
		),
		mcp.WithString("period",
			mcp.Description("Which week to report on (default this_week)."),
			mcp.DefaultString("this_week"),
			mcp.Enum("this_week", "last_week"),
		),
		mcp.WithString("from_date",
			mcp.Description("Custom window start, YYYY-MM-DD. Overrides period; requires to_date."),
		),
		mcp.WithString("to_date",
			mcp.Description("Custom window end, YYYY-MM-DD. Overrides period; requires from_date."),
		),
		mcp.WithString("sprint_goal",
			mcp.Description("Sprint goal to include in the header."),
		),
		mcp.WithString("team_name",
			mcp.Description("Team name to include in the header."),
		),
	)
}

// Handle processes the op_weekly_report tool call.
func (t *WeeklyReportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, errRes := requireID(req, "project_id")
	if errRes != nil {
		return errRes, nil
	}

	from, to := req.GetString("from_date", ""), req.GetString("to_date", "")
	if (from == "") != (to == "") {
		return mcp.NewToolResultError("from_date and to_date must be provided together"), nil
	}
	if from == "" {
		switch req.GetString("period", "this_week") {
		case "last_week":
			from, to = report.LastWeek(reportNow())
		default:
			from, to = report.ThisWeek(reportNow())
		}
	}

	params := report.Params{
		ProjectID:  projectID,
		From:       from,
		To:         to,
		SprintGoal: req.GetString("sprint_goal", ""),
		TeamName:   req.GetString("team_name", ""),
	}
	data, err := report.Collect(ctx, t.client, params)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(report.Render(data, params)), nil
}
