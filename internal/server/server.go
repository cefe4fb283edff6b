// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it builds the OpenProject client and
// injects it into every tool. No business logic lives here, only
// wiring.
package server

import (
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"opmcp/internal/config"
	"opmcp/internal/openproject"
	"opmcp/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all OpenProject tools
// registered. The returned cleanup function closes the API client's
// connection pool and must be called on shutdown (typically via
// defer).
func New(cfg *config.Config, log zerolog.Logger) (*server.MCPServer, func(), error) {
	// --- Build the API client ---

	opts := []openproject.Option{
		openproject.WithLogger(log),
	}
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing proxy URL %q: %w", cfg.Proxy, err)
		}
		opts = append(opts, openproject.WithProxy(proxyURL))
	}
	if cfg.Timeout() > 0 {
		opts = append(opts, openproject.WithTimeout(cfg.Timeout()))
	}
	if cfg.CacheTTL() > 0 {
		opts = append(opts, openproject.WithCacheTTL(cfg.CacheTTL()))
	}
	client := openproject.New(cfg.BaseURL, cfg.APIKey, opts...)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"opmcp",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register connection tools ---

	connectionTool := tools.NewConnectionTestTool(client)
	s.AddTool(connectionTool.Definition(), connectionTool.Handle)

	whoamiTool := tools.NewWhoAmITool(client)
	s.AddTool(whoamiTool.Definition(), whoamiTool.Handle)

	// --- Register work package tools ---

	listWPs := tools.NewListWorkPackagesTool(client)
	s.AddTool(listWPs.Definition(), listWPs.Handle)

	getWP := tools.NewGetWorkPackageTool(client)
	s.AddTool(getWP.Definition(), getWP.Handle)

	createWP := tools.NewCreateWorkPackageTool(client)
	s.AddTool(createWP.Definition(), createWP.Handle)

	updateWP := tools.NewUpdateWorkPackageTool(client)
	s.AddTool(updateWP.Definition(), updateWP.Handle)

	deleteWP := tools.NewDeleteWorkPackageTool(client)
	s.AddTool(deleteWP.Definition(), deleteWP.Handle)

	assignWP := tools.NewAssignWorkPackageTool(client)
	s.AddTool(assignWP.Definition(), assignWP.Handle)

	commentWP := tools.NewCommentWorkPackageTool(client)
	s.AddTool(commentWP.Definition(), commentWP.Handle)

	wpActivities := tools.NewWorkPackageActivitiesTool(client)
	s.AddTool(wpActivities.Definition(), wpActivities.Handle)

	// --- Register hierarchy tools ---

	setParent := tools.NewSetParentTool(client)
	s.AddTool(setParent.Definition(), setParent.Handle)

	removeParent := tools.NewRemoveParentTool(client)
	s.AddTool(removeParent.Definition(), removeParent.Handle)

	listChildren := tools.NewListChildrenTool(client)
	s.AddTool(listChildren.Definition(), listChildren.Handle)

	// --- Register metadata tools ---

	listTypes := tools.NewListTypesTool(client)
	s.AddTool(listTypes.Definition(), listTypes.Handle)

	listStatuses := tools.NewListStatusesTool(client)
	s.AddTool(listStatuses.Definition(), listStatuses.Handle)

	listPriorities := tools.NewListPrioritiesTool(client)
	s.AddTool(listPriorities.Definition(), listPriorities.Handle)

	// --- Register bulk tools ---

	bulkUpdate := tools.NewBulkUpdateTool(client)
	s.AddTool(bulkUpdate.Definition(), bulkUpdate.Handle)

	bulkComment := tools.NewBulkCommentTool(client)
	s.AddTool(bulkComment.Definition(), bulkComment.Handle)

	// --- Register project tools ---

	listProjects := tools.NewListProjectsTool(client)
	s.AddTool(listProjects.Definition(), listProjects.Handle)

	getProject := tools.NewGetProjectTool(client)
	s.AddTool(getProject.Definition(), getProject.Handle)

	createProject := tools.NewCreateProjectTool(client)
	s.AddTool(createProject.Definition(), createProject.Handle)

	updateProject := tools.NewUpdateProjectTool(client)
	s.AddTool(updateProject.Definition(), updateProject.Handle)

	deleteProject := tools.NewDeleteProjectTool(client)
	s.AddTool(deleteProject.Definition(), deleteProject.Handle)

	listSubprojects := tools.NewListSubprojectsTool(client)
	s.AddTool(listSubprojects.Definition(), listSubprojects.Handle)

	// --- Register user and role tools ---

	listUsers := tools.NewListUsersTool(client)
	s.AddTool(listUsers.Definition(), listUsers.Handle)

	getUser := tools.NewGetUserTool(client)
	s.AddTool(getUser.Definition(), getUser.Handle)

	listRoles := tools.NewListRolesTool(client)
	s.AddTool(listRoles.Definition(), listRoles.Handle)

	getRole := tools.NewGetRoleTool(client)
	s.AddTool(getRole.Definition(), getRole.Handle)

	// --- Register membership tools ---

	listMemberships := tools.NewListMembershipsTool(client)
	s.AddTool(listMemberships.Definition(), listMemberships.Handle)

	getMembership := tools.NewGetMembershipTool(client)
	s.AddTool(getMembership.Definition(), getMembership.Handle)

	createMembership := tools.NewCreateMembershipTool(client)
	s.AddTool(createMembership.Definition(), createMembership.Handle)

	updateMembership := tools.NewUpdateMembershipTool(client)
	s.AddTool(updateMembership.Definition(), updateMembership.Handle)

	deleteMembership := tools.NewDeleteMembershipTool(client)
	s.AddTool(deleteMembership.Definition(), deleteMembership.Handle)

	// --- Register relation tools ---

	createRelation := tools.NewCreateRelationTool(client)
	s.AddTool(createRelation.Definition(), createRelation.Handle)

	listRelations := tools.NewListRelationsTool(client)
	s.AddTool(listRelations.Definition(), listRelations.Handle)

	getRelation := tools.NewGetRelationTool(client)
	s.AddTool(getRelation.Definition(), getRelation.Handle)

	updateRelation := tools.NewUpdateRelationTool(client)
	s.AddTool(updateRelation.Definition(), updateRelation.Handle)

	deleteRelation := tools.NewDeleteRelationTool(client)
	s.AddTool(deleteRelation.Definition(), deleteRelation.Handle)

	// --- Register time tracking tools ---

	listTimeEntries := tools.NewListTimeEntriesTool(client)
	s.AddTool(listTimeEntries.Definition(), listTimeEntries.Handle)

	logTime := tools.NewLogTimeTool(client)
	s.AddTool(logTime.Definition(), logTime.Handle)

	updateTimeEntry := tools.NewUpdateTimeEntryTool(client)
	s.AddTool(updateTimeEntry.Definition(), updateTimeEntry.Handle)

	deleteTimeEntry := tools.NewDeleteTimeEntryTool(client)
	s.AddTool(deleteTimeEntry.Definition(), deleteTimeEntry.Handle)

	listActivities := tools.NewListActivitiesTool(client)
	s.AddTool(listActivities.Definition(), listActivities.Handle)

	// --- Register version tools ---

	listVersions := tools.NewListVersionsTool(client)
	s.AddTool(listVersions.Definition(), listVersions.Handle)

	getVersion := tools.NewGetVersionTool(client)
	s.AddTool(getVersion.Definition(), getVersion.Handle)

	createVersion := tools.NewCreateVersionTool(client)
	s.AddTool(createVersion.Definition(), createVersion.Handle)

	updateVersion := tools.NewUpdateVersionTool(client)
	s.AddTool(updateVersion.Definition(), updateVersion.Handle)

	deleteVersion := tools.NewDeleteVersionTool(client)
	s.AddTool(deleteVersion.Definition(), deleteVersion.Handle)

	// --- Register news tools ---

	listNews := tools.NewListNewsTool(client)
	s.AddTool(listNews.Definition(), listNews.Handle)

	getNews := tools.NewGetNewsTool(client)
	s.AddTool(getNews.Definition(), getNews.Handle)

	createNews := tools.NewCreateNewsTool(client)
	s.AddTool(createNews.Definition(), createNews.Handle)

	updateNews := tools.NewUpdateNewsTool(client)
	s.AddTool(updateNews.Definition(), updateNews.Handle)

	deleteNews := tools.NewDeleteNewsTool(client)
	s.AddTool(deleteNews.Definition(), deleteNews.Handle)

	// --- Register report tools ---

	weeklyReport := tools.NewWeeklyReportTool(client)
	s.AddTool(weeklyReport.Definition(), weeklyReport.Handle)

	cleanup := func() {
		client.Close()
	}
	return s, cleanup, nil
}

func serverInstructions() string {
	return `This server exposes an OpenProject instance for project management.

Typical flows:
- Discover: op_list_projects, then op_list_work_packages with project_id.
- Create work: op_list_types for the type ID, then op_create_work_package.
- Track: op_log_time to record hours, op_weekly_report for a progress summary.
- Organize: op_set_parent for hierarchy, op_create_relation for dependencies.

IDs are numeric everywhere. Metadata listings (types, statuses,
priorities) are cached for five minutes; pass refresh=true after
changing them in OpenProject itself.`
}
