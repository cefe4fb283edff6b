// Package report builds weekly progress reports from OpenProject data:
// work packages touched in a date window, team membership and logged
// time, aggregated and rendered as Markdown.
package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"opmcp/internal/format"
	"opmcp/internal/openproject"
)

// reportPageSize fetches enough work packages for a full week in one
// page; a sprint touching more than this is beyond what a weekly
// report can usefully show anyway.
const reportPageSize = 200

// Params selects the reporting window.
type Params struct {
	ProjectID  int
	From       string // YYYY-MM-DD, inclusive
	To         string // YYYY-MM-DD, inclusive
	SprintGoal string
	TeamName   string
}

// Data is everything a report renders from, returned raw for callers
// that want JSON instead of Markdown.
type Data struct {
	Project      *openproject.Project
	WorkPackages []openproject.WorkPackage
	Members      []openproject.Membership
	TimeEntries  []openproject.TimeEntry
	Metrics      Metrics
}

// Metrics are the aggregate counts of a reporting window.
type Metrics struct {
	TotalWPs   int
	Done       int
	InProgress int
	Planned    int
	Blocked    int
	Bugs       int
	Features   int

	TotalHours      float64
	DevHours        float64
	QAHours         float64
	ManagementHours float64
}

func (p Params) validate() error {
	from, err := time.Parse("2006-01-02", p.From)
	if err != nil {
		return fmt.Errorf("invalid from date %q: use YYYY-MM-DD", p.From)
	}
	to, err := time.Parse("2006-01-02", p.To)
	if err != nil {
		return fmt.Errorf("invalid to date %q: use YYYY-MM-DD", p.To)
	}
	if from.After(to) {
		return fmt.Errorf("from date must not be after to date")
	}
	if p.ProjectID <= 0 {
		return fmt.Errorf("project is required")
	}
	return nil
}

// ThisWeek returns the Monday..Sunday window containing now.
func ThisWeek(now time.Time) (from, to string) {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week it ends
	}
	monday := now.AddDate(0, 0, 1-weekday)
	return monday.Format("2006-01-02"), monday.AddDate(0, 0, 6).Format("2006-01-02")
}

// LastWeek returns the Monday..Sunday window before the one containing
// now.
func LastWeek(now time.Time) (from, to string) {
	from, _ = ThisWeek(now)
	monday, _ := time.Parse("2006-01-02", from)
	prev := monday.AddDate(0, 0, -7)
	return prev.Format("2006-01-02"), prev.AddDate(0, 0, 6).Format("2006-01-02")
}

// Collect gathers all data for the window: the project record, work
// packages updated inside it, the project's members and the time
// logged. Calls are sequenced; the report path is not latency
// sensitive.
func Collect(ctx context.Context, client *openproject.Client, p Params) (*Data, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	project, err := client.GetProject(ctx, p.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("fetching project: %w", err)
	}

	wps, err := client.ListWorkPackages(ctx, openproject.ListWorkPackagesOptions{
		ProjectID: p.ProjectID,
		Filters:   []openproject.Filter{openproject.FilterBetween("updatedAt", p.From, p.To)},
		PageSize:  reportPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching work packages: %w", err)
	}

	members, err := client.ListMemberships(ctx, p.ProjectID, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching memberships: %w", err)
	}

	entries, err := client.ListTimeEntries(ctx, []openproject.Filter{
		openproject.FilterBetween("spentOn", p.From, p.To),
		openproject.FilterEq("project", p.ProjectID),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching time entries: %w", err)
	}

	data := &Data{
		Project:      project,
		WorkPackages: wps.Elements(),
		Members:      members.Elements(),
		TimeEntries:  entries.Elements(),
	}
	data.Metrics = computeMetrics(data.WorkPackages, data.TimeEntries)
	return data, nil
}

// Render produces the Markdown weekly report.
func Render(data *Data, p Params) string {
	m := data.Metrics
	groups := groupByStatus(data.WorkPackages)

	var b strings.Builder
	fmt.Fprintf(&b, "# Weekly Report: %s\n\n", data.Project.Name)

	b.WriteString("## A. General Information\n\n")
	fmt.Fprintf(&b, "- **Project**: %s (ID: %d)\n", data.Project.Name, data.Project.ID)
	fmt.Fprintf(&b, "- **Period**: %s to %s\n", p.From, p.To)
	if p.TeamName != "" {
		fmt.Fprintf(&b, "- **Team**: %s\n", p.TeamName)
	}
	if p.SprintGoal != "" {
		fmt.Fprintf(&b, "- **Sprint goal**: %s\n", p.SprintGoal)
	}
	fmt.Fprintf(&b, "- **Team size**: %d member(s)\n\n", len(data.Members))

	b.WriteString("## B. Executive Summary\n\n")
	fmt.Fprintf(&b, "- %d work package(s) touched: %d done, %d in progress, %d planned, %d blocked\n",
		m.TotalWPs, m.Done, m.InProgress, m.Planned, m.Blocked)
	fmt.Fprintf(&b, "- %s logged in total\n", hoursLabel(m.TotalHours))
	if m.Blocked > 0 {
		fmt.Fprintf(&b, "- ⚠️ %d item(s) currently blocked\n", m.Blocked)
	}
	b.WriteString("\n")

	b.WriteString("## C. Delivery & Backlog Movement\n\n")
	writeGroup(&b, "Done", groups.done)
	writeGroup(&b, "In Progress", groups.inProgress)
	writeGroup(&b, "Planned", groups.planned)
	writeGroup(&b, "De-scoped", groups.deScoped)

	b.WriteString("## D. Resources & Capacity\n\n")
	fmt.Fprintf(&b, "- **Total hours**: %s\n", hoursLabel(m.TotalHours))
	fmt.Fprintf(&b, "- **Development**: %s\n", hoursLabel(m.DevHours))
	fmt.Fprintf(&b, "- **QA/Testing**: %s\n", hoursLabel(m.QAHours))
	fmt.Fprintf(&b, "- **Management/Meetings**: %s\n\n", hoursLabel(m.ManagementHours))

	b.WriteString("## E. Impediments\n\n")
	if len(groups.blocked) == 0 {
		b.WriteString("No blocked work packages.\n\n")
	} else {
		for _, wp := range groups.blocked {
			fmt.Fprintf(&b, "- 🚫 #%d: %s\n", wp.ID, wp.Subject)
		}
		b.WriteString("\n")
	}

	b.WriteString("## F. Quality\n\n")
	fmt.Fprintf(&b, "- **Bugs/defects in window**: %d\n", m.Bugs)
	fmt.Fprintf(&b, "- **Features/tasks in window**: %d\n\n", m.Features)

	b.WriteString("## G. Next Week\n\n")
	if len(groups.planned) == 0 {
		b.WriteString("Nothing queued yet.\n")
	} else {
		for _, wp := range groups.planned {
			fmt.Fprintf(&b, "- 📋 #%d: %s\n", wp.ID, wp.Subject)
		}
	}
	return b.String()
}

type statusGroups struct {
	done       []openproject.WorkPackage
	inProgress []openproject.WorkPackage
	planned    []openproject.WorkPackage
	blocked    []openproject.WorkPackage
	deScoped   []openproject.WorkPackage
	other      []openproject.WorkPackage
}

func groupByStatus(wps []openproject.WorkPackage) statusGroups {
	var g statusGroups
	for _, wp := range wps {
		switch statusCategory(&wp) {
		case "done":
			g.done = append(g.done, wp)
		case "in_progress":
			g.inProgress = append(g.inProgress, wp)
		case "blocked":
			g.blocked = append(g.blocked, wp)
		case "de_scoped":
			g.deScoped = append(g.deScoped, wp)
		case "planned":
			g.planned = append(g.planned, wp)
		default:
			g.other = append(g.other, wp)
		}
	}
	return g
}

func statusCategory(wp *openproject.WorkPackage) string {
	name := wp.Links.Status.Title
	if wp.Embedded != nil && wp.Embedded.Status != nil {
		name = wp.Embedded.Status.Name
	}
	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, "closed", "done", "resolved"):
		return "done"
	case containsAny(lower, "progress", "development"):
		return "in_progress"
	case strings.Contains(lower, "blocked"):
		return "blocked"
	case containsAny(lower, "rejected", "cancelled"):
		return "de_scoped"
	case containsAny(lower, "new", "open", "specified"):
		return "planned"
	default:
		return "other"
	}
}

func computeMetrics(wps []openproject.WorkPackage, entries []openproject.TimeEntry) Metrics {
	var m Metrics
	m.TotalWPs = len(wps)

	for _, wp := range wps {
		switch statusCategory(&wp) {
		case "done":
			m.Done++
		case "in_progress":
			m.InProgress++
		case "blocked":
			m.Blocked++
		case "planned":
			m.Planned++
		}

		typeName := wp.Links.Type.Title
		if wp.Embedded != nil && wp.Embedded.Type != nil {
			typeName = wp.Embedded.Type.Name
		}
		lower := strings.ToLower(typeName)
		switch {
		case containsAny(lower, "bug", "defect"):
			m.Bugs++
		case containsAny(lower, "feature", "story", "task"):
			m.Features++
		}
	}

	for _, e := range entries {
		hours := ParseISOHours(e.Hours)
		m.TotalHours += hours

		activity := ""
		if e.Links.Activity != nil {
			activity = strings.ToLower(e.Links.Activity.Title)
		}
		switch {
		case containsAny(activity, "development", "implement"):
			m.DevHours += hours
		case containsAny(activity, "test", "qa"):
			m.QAHours += hours
		case containsAny(activity, "management", "meeting"):
			m.ManagementHours += hours
		}
	}
	return m
}

// ParseISOHours converts an ISO 8601 duration like "PT7.5H" or
// "PT1H30M" to decimal hours. Unparseable input counts as zero.
func ParseISOHours(iso string) float64 {
	s := strings.TrimPrefix(strings.ToUpper(iso), "PT")
	if s == iso {
		return 0
	}

	var hours float64
	if i := strings.Index(s, "H"); i >= 0 {
		if v, err := strconv.ParseFloat(s[:i], 64); err == nil {
			hours += v
		}
		s = s[i+1:]
	}
	if i := strings.Index(s, "M"); i >= 0 {
		if v, err := strconv.ParseFloat(s[:i], 64); err == nil {
			hours += v / 60
		}
	}
	return hours
}

func writeGroup(b *strings.Builder, title string, wps []openproject.WorkPackage) {
	if len(wps) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s (%d)\n\n", title, len(wps))
	for _, wp := range wps {
		assignee := ""
		if wp.Links.Assignee != nil && wp.Links.Assignee.Title != "" {
			assignee = " · " + wp.Links.Assignee.Title
		}
		fmt.Fprintf(b, "- #%d: %s%s\n", wp.ID, wp.Subject, assignee)
	}
	b.WriteString("\n")
}

func hoursLabel(hours float64) string {
	return format.HoursLabel("PT" + strconv.FormatFloat(hours, 'f', -1, 64) + "H")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
