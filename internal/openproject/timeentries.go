package openproject

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// NewTimeEntry logs hours against a work package. Hours is in decimal
// hours and is converted to an ISO 8601 duration on the wire.
type NewTimeEntry struct {
	WorkPackageID int
	Hours         float64
	SpentOn       string
	Comment       string
	ActivityID    int
}

// TimeEntryUpdate carries the fields of a partial time entry update.
// A nil Hours leaves the logged duration unchanged.
type TimeEntryUpdate struct {
	Hours      *float64
	SpentOn    string
	Comment    string
	ActivityID int
}

type timeEntryPayload struct {
	LockVersion *int           `json:"lockVersion,omitempty"`
	Hours       string         `json:"hours,omitempty"`
	SpentOn     string         `json:"spentOn,omitempty"`
	Comment     *Formattable   `json:"comment,omitempty"`
	Links       map[string]any `json:"_links,omitempty"`
}

// isoHours renders decimal hours as an ISO 8601 duration ("PT1.5H").
func isoHours(hours float64) string {
	return "PT" + strconv.FormatFloat(hours, 'f', -1, 64) + "H"
}

// ListTimeEntries lists time entries, optionally filtered (by project,
// user, work package or date window).
func (c *Client) ListTimeEntries(ctx context.Context, filters []Filter) (*Collection[TimeEntry], error) {
	query, err := listQuery(filters, 0, 0)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, http.MethodGet, "/time_entries", query, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[Collection[TimeEntry]](raw)
}

// CreateTimeEntry logs time against a work package.
func (c *Client) CreateTimeEntry(ctx context.Context, e NewTimeEntry) (*TimeEntry, error) {
	if e.WorkPackageID <= 0 {
		return nil, fmt.Errorf("work package is required")
	}
	if e.Hours <= 0 {
		return nil, fmt.Errorf("hours must be positive")
	}

	payload := timeEntryPayload{
		Hours:   isoHours(e.Hours),
		SpentOn: e.SpentOn,
		Links: map[string]any{
			"workPackage": Link{Href: workPackageHref(e.WorkPackageID)},
		},
	}
	if e.Comment != "" {
		payload.Comment = &Formattable{Raw: e.Comment}
	}
	if e.ActivityID > 0 {
		payload.Links["activity"] = Link{Href: activityHref(e.ActivityID)}
	}

	raw, err := c.do(ctx, http.MethodPost, "/time_entries", nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeInto[TimeEntry](raw)
}

// UpdateTimeEntry applies a partial update, fetching the current lock
// version first.
func (c *Client) UpdateTimeEntry(ctx context.Context, id int, u TimeEntryUpdate) (*TimeEntry, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/time_entries/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	current, err := decodeInto[TimeEntry](raw)
	if err != nil {
		return nil, err
	}

	lv := current.LockVersion
	payload := timeEntryPayload{LockVersion: &lv, SpentOn: u.SpentOn}
	if u.Hours != nil {
		payload.Hours = isoHours(*u.Hours)
	}
	if u.Comment != "" {
		payload.Comment = &Formattable{Raw: u.Comment}
	}
	if u.ActivityID > 0 {
		payload.Links = map[string]any{"activity": Link{Href: activityHref(u.ActivityID)}}
	}

	raw, err = c.do(ctx, http.MethodPatch, fmt.Sprintf("/time_entries/%d", id), nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeInto[TimeEntry](raw)
}

// DeleteTimeEntry removes a time entry.
func (c *Client) DeleteTimeEntry(ctx context.Context, id int) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/time_entries/%d", id), nil, nil)
	return err
}
