package openproject

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Filter is one OpenProject list filter: a field, an operator and its
// values. The API expects filters as a JSON-encoded array in the
// "filters" query parameter, e.g.
// [{"status":{"operator":"o","values":[]}}].
type Filter struct {
	Field    string
	Operator string
	Values   []string
}

// Common filter constructors.

// FilterOpenStatus matches work packages whose status is open.
func FilterOpenStatus() Filter {
	return Filter{Field: "status", Operator: "o", Values: []string{}}
}

// FilterEq matches a field equal to the given IDs.
func FilterEq(field string, ids ...int) Filter {
	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = strconv.Itoa(id)
	}
	return Filter{Field: field, Operator: "=", Values: values}
}

// FilterBetween matches a date field within [from, to] (ISO dates).
func FilterBetween(field, from, to string) Filter {
	return Filter{Field: field, Operator: "<>d", Values: []string{from, to}}
}

// encodeFilters renders filters as the JSON array format the API
// expects. Returns "" for an empty filter set.
func encodeFilters(filters []Filter) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}
	raw := make([]map[string]any, len(filters))
	for i, f := range filters {
		values := f.Values
		if values == nil {
			values = []string{}
		}
		raw[i] = map[string]any{
			f.Field: map[string]any{"operator": f.Operator, "values": values},
		}
	}
	// Plain encoding keeps operators like "<>d" readable in the query
	// string instead of < escapes.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(raw); err != nil {
		return "", fmt.Errorf("encoding filters: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// listQuery builds the query parameters for a list endpoint from
// filters and pagination. Zero pagination values are omitted so the
// server applies its defaults.
func listQuery(filters []Filter, offset, pageSize int) (url.Values, error) {
	q := url.Values{}
	encoded, err := encodeFilters(filters)
	if err != nil {
		return nil, err
	}
	if encoded != "" {
		q.Set("filters", encoded)
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
	return q, nil
}

// Resource href builders. Payload relations are expressed as _links
// entries pointing at API paths.

func projectHref(id int) string  { return fmt.Sprintf("%s/projects/%d", apiRoot, id) }
func typeHref(id int) string     { return fmt.Sprintf("%s/types/%d", apiRoot, id) }
func statusHref(id int) string   { return fmt.Sprintf("%s/statuses/%d", apiRoot, id) }
func priorityHref(id int) string { return fmt.Sprintf("%s/priorities/%d", apiRoot, id) }
func userHref(id int) string     { return fmt.Sprintf("%s/users/%d", apiRoot, id) }
func groupHref(id int) string    { return fmt.Sprintf("%s/groups/%d", apiRoot, id) }
func roleHref(id int) string     { return fmt.Sprintf("%s/roles/%d", apiRoot, id) }
func versionHref(id int) string  { return fmt.Sprintf("%s/versions/%d", apiRoot, id) }
func activityHref(id int) string {
	return fmt.Sprintf("%s/time_entries/activities/%d", apiRoot, id)
}
func workPackageHref(id int) string {
	return fmt.Sprintf("%s/work_packages/%d", apiRoot, id)
}

// IDFromHref extracts the numeric resource ID from a HAL href like
// "/api/v3/work_packages/42". Returns 0 when the href is empty or has
// no numeric tail.
func IDFromHref(href string) int {
	if href == "" {
		return 0
	}
	i := len(href)
	for i > 0 && href[i-1] >= '0' && href[i-1] <= '9' {
		i--
	}
	if i == len(href) {
		return 0
	}
	id, _ := strconv.Atoi(href[i:])
	return id
}
