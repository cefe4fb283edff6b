// Package format renders OpenProject entities as Markdown text for
// tool responses. All functions are pure: typed records in, text out.
package format

import (
	"fmt"
	"strings"

	"opmcp/internal/openproject"
)

// truncateAt bounds inline description excerpts in list views.
const truncateAt = 100

// WorkPackageList renders a work package listing with prominent status
// and priority markers.
func WorkPackageList(wps []openproject.WorkPackage) string {
	if len(wps) == 0 {
		return "No work packages found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Found %d work package(s):\n\n", len(wps))
	for _, wp := range wps {
		statusName, closed := workPackageStatus(&wp)
		fmt.Fprintf(&b, "### %s #%d: %s\n", statusEmoji(statusName, closed), wp.ID, wp.Subject)
		if closed {
			fmt.Fprintf(&b, "**Status**: %s (CLOSED)\n", statusName)
		} else {
			fmt.Fprintf(&b, "**Status**: %s\n", statusName)
		}

		if name := linkedName(wp.Links.Type.Title, embeddedTypeName(&wp)); name != "" {
			fmt.Fprintf(&b, "  Type: %s\n", name)
		}
		if name := linkedName(wp.Links.Priority.Title, embeddedPriorityName(&wp)); name != "" {
			fmt.Fprintf(&b, "  Priority: %s\n", priorityMarker(name))
		}
		if wp.Links.Assignee != nil && wp.Links.Assignee.Title != "" {
			fmt.Fprintf(&b, "  Assignee: %s\n", wp.Links.Assignee.Title)
		}
		if wp.StartDate != "" || wp.DueDate != "" {
			fmt.Fprintf(&b, "  Dates: %s → %s\n", orDash(wp.StartDate), orDash(wp.DueDate))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// WorkPackageDetail renders a single work package with all fields.
func WorkPackageDetail(wp *openproject.WorkPackage) string {
	statusName, closed := workPackageStatus(wp)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s #%d: %s\n\n", statusEmoji(statusName, closed), wp.ID, wp.Subject)
	fmt.Fprintf(&b, "**Status**: %s\n", statusName)
	if name := linkedName(wp.Links.Type.Title, embeddedTypeName(wp)); name != "" {
		fmt.Fprintf(&b, "**Type**: %s\n", name)
	}
	if name := linkedName(wp.Links.Priority.Title, embeddedPriorityName(wp)); name != "" {
		fmt.Fprintf(&b, "**Priority**: %s\n", priorityMarker(name))
	}
	if wp.Links.Project.Title != "" {
		fmt.Fprintf(&b, "**Project**: %s\n", wp.Links.Project.Title)
	}
	if wp.Links.Assignee != nil && wp.Links.Assignee.Title != "" {
		fmt.Fprintf(&b, "**Assignee**: %s\n", wp.Links.Assignee.Title)
	}
	if wp.Links.Parent != nil && wp.Links.Parent.Href != "" {
		fmt.Fprintf(&b, "**Parent**: #%d %s\n", openproject.IDFromHref(wp.Links.Parent.Href), wp.Links.Parent.Title)
	}
	if wp.StartDate != "" {
		fmt.Fprintf(&b, "**Start date**: %s\n", wp.StartDate)
	}
	if wp.DueDate != "" {
		fmt.Fprintf(&b, "**Due date**: %s\n", wp.DueDate)
	}
	if wp.PercentageDone != nil {
		fmt.Fprintf(&b, "**Progress**: %d%%\n", *wp.PercentageDone)
	}
	if wp.Description != nil && wp.Description.Raw != "" {
		fmt.Fprintf(&b, "\n## Description\n\n%s\n", wp.Description.Raw)
	}
	return b.String()
}

// ProjectList renders a project listing.
func ProjectList(projects []openproject.Project) string {
	if len(projects) == 0 {
		return "No projects found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Found %d project(s):\n\n", len(projects))
	for _, p := range projects {
		fmt.Fprintf(&b, "- **%s** (ID: %d)\n", p.Name, p.ID)
		fmt.Fprintf(&b, "  Status: %s\n", activeLabel(p.Active))
		if p.Identifier != "" {
			fmt.Fprintf(&b, "  Identifier: %s\n", p.Identifier)
		}
		if d := description(p.Description); d != "" {
			fmt.Fprintf(&b, "  Description: %s\n", d)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ProjectDetail renders a single project.
func ProjectDetail(p *openproject.Project) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (ID: %d)\n\n", p.Name, p.ID)
	fmt.Fprintf(&b, "**Identifier**: %s\n", p.Identifier)
	fmt.Fprintf(&b, "**Status**: %s\n", activeLabel(p.Active))
	fmt.Fprintf(&b, "**Public**: %s\n", yesNo(p.Public))
	if p.Links.Parent != nil && p.Links.Parent.Title != "" {
		fmt.Fprintf(&b, "**Parent**: %s\n", p.Links.Parent.Title)
	}
	if p.Description != nil && p.Description.Raw != "" {
		fmt.Fprintf(&b, "\n%s\n", p.Description.Raw)
	}
	return b.String()
}

// UserList renders a user listing.
func UserList(users []openproject.User) string {
	if len(users) == 0 {
		return "No users found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Found %d user(s):\n\n", len(users))
	for _, u := range users {
		fmt.Fprintf(&b, "- **%s** (ID: %d)\n", u.Name, u.ID)
		if u.Login != "" {
			fmt.Fprintf(&b, "  Login: %s\n", u.Login)
		}
		if u.Email != "" {
			fmt.Fprintf(&b, "  Email: %s\n", u.Email)
		}
		if u.Status != "" {
			fmt.Fprintf(&b, "  Status: %s\n", u.Status)
		}
	}
	return b.String()
}

// UserDetail renders one user including the admin flag.
func UserDetail(u *openproject.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (ID: %d)\n\n", u.Name, u.ID)
	if u.Login != "" {
		fmt.Fprintf(&b, "**Login**: %s\n", u.Login)
	}
	if u.Email != "" {
		fmt.Fprintf(&b, "**Email**: %s\n", u.Email)
	}
	if u.Status != "" {
		fmt.Fprintf(&b, "**Status**: %s\n", u.Status)
	}
	fmt.Fprintf(&b, "**Admin**: %s\n", yesNo(u.Admin))
	return b.String()
}

// TimeEntryList renders time entries with their work package and user.
func TimeEntryList(entries []openproject.TimeEntry) string {
	if len(entries) == 0 {
		return "No time entries found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Found %d time entr%s:\n\n", len(entries), plural(len(entries), "y", "ies"))
	for _, e := range entries {
		fmt.Fprintf(&b, "- **%s** on %s (ID: %d)\n", HoursLabel(e.Hours), e.SpentOn, e.ID)
		if e.Links.WorkPackage.Title != "" {
			fmt.Fprintf(&b, "  Work package: %s\n", e.Links.WorkPackage.Title)
		}
		if e.Links.User.Title != "" {
			fmt.Fprintf(&b, "  User: %s\n", e.Links.User.Title)
		}
		if e.Links.Activity != nil && e.Links.Activity.Title != "" {
			fmt.Fprintf(&b, "  Activity: %s\n", e.Links.Activity.Title)
		}
		if d := description(e.Comment); d != "" {
			fmt.Fprintf(&b, "  Comment: %s\n", d)
		}
	}
	return b.String()
}

// MembershipList renders memberships with principal and roles.
func MembershipList(memberships []openproject.Membership) string {
	if len(memberships) == 0 {
		return "No memberships found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Found %d membership(s):\n\n", len(memberships))
	for _, m := range memberships {
		fmt.Fprintf(&b, "- **%s** in %s (ID: %d)\n",
			m.Links.Principal.Title, m.Links.Project.Title, m.ID)
		if len(m.Links.Roles) > 0 {
			names := make([]string, len(m.Links.Roles))
			for i, r := range m.Links.Roles {
				names[i] = r.Title
			}
			fmt.Fprintf(&b, "  Roles: %s\n", strings.Join(names, ", "))
		}
	}
	return b.String()
}

// RelationList renders work package relations.
func RelationList(relations []openproject.Relation) string {
	if len(relations) == 0 {
		return "No relations found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Found %d relation(s):\n\n", len(relations))
	for _, r := range relations {
		fmt.Fprintf(&b, "- #%d **%s** #%d (ID: %d)\n",
			openproject.IDFromHref(r.Links.From.Href), r.Type,
			openproject.IDFromHref(r.Links.To.Href), r.ID)
		if r.Lag != nil {
			fmt.Fprintf(&b, "  Lag: %d working day(s)\n", *r.Lag)
		}
		if r.Description != "" {
			fmt.Fprintf(&b, "  Note: %s\n", r.Description)
		}
	}
	return b.String()
}

// VersionList renders project versions.
func VersionList(versions []openproject.ProjectVersion) string {
	if len(versions) == 0 {
		return "No versions found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Found %d version(s):\n\n", len(versions))
	for _, v := range versions {
		fmt.Fprintf(&b, "- **%s** (ID: %d, %s)\n", v.Name, v.ID, orDash(v.Status))
		if v.StartDate != "" || v.EndDate != "" {
			fmt.Fprintf(&b, "  Dates: %s → %s\n", orDash(v.StartDate), orDash(v.EndDate))
		}
		if v.Links.DefiningProject.Title != "" {
			fmt.Fprintf(&b, "  Project: %s\n", v.Links.DefiningProject.Title)
		}
	}
	return b.String()
}

// NewsList renders news items.
func NewsList(items []openproject.News) string {
	if len(items) == 0 {
		return "No news found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Found %d news item(s):\n\n", len(items))
	for _, n := range items {
		fmt.Fprintf(&b, "- **%s** (ID: %d)\n", n.Title, n.ID)
		if n.Links.Project.Title != "" {
			fmt.Fprintf(&b, "  Project: %s\n", n.Links.Project.Title)
		}
		if n.Links.Author != nil && n.Links.Author.Title != "" {
			fmt.Fprintf(&b, "  Author: %s\n", n.Links.Author.Title)
		}
		if n.Summary != "" {
			fmt.Fprintf(&b, "  %s\n", truncate(n.Summary))
		}
	}
	return b.String()
}

// ActivityList renders a work package journal.
func ActivityList(activities []openproject.WPActivity) string {
	if len(activities) == 0 {
		return "No activity found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Found %d journal entr%s:\n\n", len(activities), plural(len(activities), "y", "ies"))
	for _, a := range activities {
		author := "Unknown"
		if a.Links.User != nil && a.Links.User.Title != "" {
			author = a.Links.User.Title
		}
		fmt.Fprintf(&b, "- **%s** at %s\n", author, a.CreatedAt)
		if a.Comment != nil && a.Comment.Raw != "" {
			fmt.Fprintf(&b, "  %s\n", a.Comment.Raw)
		}
		for _, d := range a.Details {
			if d.Raw != "" {
				fmt.Fprintf(&b, "  · %s\n", d.Raw)
			}
		}
	}
	return b.String()
}

// PaginationFooter tells the caller how to page when results are
// capped.
func PaginationFooter(offset, shown, total, pageSize int) string {
	if total <= shown || pageSize <= 0 {
		return ""
	}
	return fmt.Sprintf("\n📄 Showing %d-%d of %d total. Use offset=%d for the next page.\n",
		offset+1, offset+shown, total, offset+pageSize)
}

// HoursLabel renders an ISO 8601 duration like "PT8H" as "8h". Unknown
// shapes pass through unchanged.
func HoursLabel(iso string) string {
	if strings.HasPrefix(iso, "PT") && strings.HasSuffix(iso, "H") {
		return strings.TrimSuffix(strings.TrimPrefix(iso, "PT"), "H") + "h"
	}
	return iso
}

// --- helpers ---

func workPackageStatus(wp *openproject.WorkPackage) (name string, closed bool) {
	if wp.Embedded != nil && wp.Embedded.Status != nil {
		return wp.Embedded.Status.Name, wp.Embedded.Status.IsClosed
	}
	name = wp.Links.Status.Title
	if name == "" {
		return "Unknown", false
	}
	lower := strings.ToLower(name)
	return name, strings.Contains(lower, "closed") || strings.Contains(lower, "done")
}

func embeddedTypeName(wp *openproject.WorkPackage) string {
	if wp.Embedded != nil && wp.Embedded.Type != nil {
		return wp.Embedded.Type.Name
	}
	return ""
}

func embeddedPriorityName(wp *openproject.WorkPackage) string {
	if wp.Embedded != nil && wp.Embedded.Priority != nil {
		return wp.Embedded.Priority.Name
	}
	return ""
}

// linkedName prefers the embedded name over the link title.
func linkedName(linkTitle, embeddedName string) string {
	if embeddedName != "" {
		return embeddedName
	}
	return linkTitle
}

func statusEmoji(name string, closed bool) string {
	lower := strings.ToLower(name)
	switch {
	case closed:
		return "✅"
	case strings.Contains(lower, "progress"):
		return "🔄"
	case strings.Contains(lower, "blocked"):
		return "🚫"
	case strings.Contains(lower, "new"), strings.Contains(lower, "open"):
		return "📋"
	default:
		return "⚪"
	}
}

func priorityMarker(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "immediate"), strings.Contains(lower, "urgent"):
		return "🔴 " + name
	case strings.Contains(lower, "high"):
		return "🟠 " + name
	case strings.Contains(lower, "low"):
		return "🟢 " + name
	default:
		return name
	}
}

func description(f *openproject.Formattable) string {
	if f == nil {
		return ""
	}
	return truncate(f.Raw)
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= truncateAt {
		return s
	}
	return string(runes[:truncateAt]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func activeLabel(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
