package format

import (
	"fmt"
	"strings"

	"opmcp/internal/openproject"
)

// TypeList renders work package types.
func TypeList(types []openproject.TypeMeta) string {
	if len(types) == 0 {
		return "No types found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Available work package types:\n\n")
	for _, tp := range types {
		fmt.Fprintf(&b, "- **%s** (ID: %d)", tp.Name, tp.ID)
		if tp.IsMilestone {
			b.WriteString(" · milestone")
		}
		if tp.IsDefault {
			b.WriteString(" · default")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// StatusList renders work package statuses.
func StatusList(statuses []openproject.Status) string {
	if len(statuses) == 0 {
		return "No statuses found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Available statuses:\n\n")
	for _, s := range statuses {
		fmt.Fprintf(&b, "- **%s** (ID: %d)", s.Name, s.ID)
		if s.IsClosed {
			b.WriteString(" · closed")
		}
		if s.IsDefault {
			b.WriteString(" · default")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// PriorityList renders work package priorities.
func PriorityList(priorities []openproject.Priority) string {
	if len(priorities) == 0 {
		return "No priorities found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Available priorities:\n\n")
	for _, p := range priorities {
		fmt.Fprintf(&b, "- **%s** (ID: %d)", priorityMarker(p.Name), p.ID)
		if p.IsDefault {
			b.WriteString(" · default")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RoleList renders membership roles.
func RoleList(roles []openproject.Role) string {
	if len(roles) == 0 {
		return "No roles found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Available roles:\n\n")
	for _, r := range roles {
		fmt.Fprintf(&b, "- **%s** (ID: %d)\n", r.Name, r.ID)
	}
	return b.String()
}

// ActivityOptions renders time entry activities.
func ActivityOptions(activities []openproject.Activity) string {
	if len(activities) == 0 {
		return "No activities found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Available time entry activities:\n\n")
	for _, a := range activities {
		fmt.Fprintf(&b, "- **%s** (ID: %d)", a.Name, a.ID)
		if a.Default {
			b.WriteString(" · default")
		}
		b.WriteString("\n")
	}
	return b.String()
}
