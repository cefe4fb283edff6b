package openproject

import (
	"context"
	"fmt"
	"net/http"
)

// NewMembership grants a principal (user or group) roles in a project.
// Exactly one of UserID/GroupID must be set.
type NewMembership struct {
	ProjectID           int
	UserID              int
	GroupID             int
	RoleIDs             []int
	NotificationMessage string
}

type membershipPayload struct {
	LockVersion         *int           `json:"lockVersion,omitempty"`
	NotificationMessage *Formattable   `json:"notificationMessage,omitempty"`
	Links               map[string]any `json:"_links,omitempty"`
}

// ListMemberships lists memberships, optionally narrowed to a project
// and/or a user. Filtering uses the filters parameter rather than
// nested paths, which behaves consistently across server versions.
func (c *Client) ListMemberships(ctx context.Context, projectID, userID int) (*Collection[Membership], error) {
	var filters []Filter
	if projectID > 0 {
		filters = append(filters, FilterEq("project", projectID))
	}
	if userID > 0 {
		filters = append(filters, FilterEq("user", userID))
	}
	query, err := listQuery(filters, 0, 0)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, http.MethodGet, "/memberships", query, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[Collection[Membership]](raw)
}

// GetMembership fetches one membership by ID.
func (c *Client) GetMembership(ctx context.Context, id int) (*Membership, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/memberships/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[Membership](raw)
}

// CreateMembership adds a principal to a project with the given roles.
func (c *Client) CreateMembership(ctx context.Context, m NewMembership) (*Membership, error) {
	if m.ProjectID <= 0 {
		return nil, fmt.Errorf("project is required")
	}
	if m.UserID <= 0 && m.GroupID <= 0 {
		return nil, fmt.Errorf("a user or group principal is required")
	}
	if len(m.RoleIDs) == 0 {
		return nil, fmt.Errorf("at least one role is required")
	}

	links := map[string]any{
		"project": Link{Href: projectHref(m.ProjectID)},
		"roles":   roleLinks(m.RoleIDs),
	}
	if m.UserID > 0 {
		links["principal"] = Link{Href: userHref(m.UserID)}
	} else {
		links["principal"] = Link{Href: groupHref(m.GroupID)}
	}

	payload := membershipPayload{Links: links}
	if m.NotificationMessage != "" {
		payload.NotificationMessage = &Formattable{Raw: m.NotificationMessage}
	}

	raw, err := c.do(ctx, http.MethodPost, "/memberships", nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeInto[Membership](raw)
}

// UpdateMembership replaces the membership's roles.
func (c *Client) UpdateMembership(ctx context.Context, id int, roleIDs []int, notification string) (*Membership, error) {
	if len(roleIDs) == 0 {
		return nil, fmt.Errorf("at least one role is required")
	}

	lv := 0
	if current, err := c.GetMembership(ctx, id); err == nil {
		lv = current.LockVersion
	}

	payload := membershipPayload{
		LockVersion: &lv,
		Links:       map[string]any{"roles": roleLinks(roleIDs)},
	}
	if notification != "" {
		payload.NotificationMessage = &Formattable{Raw: notification}
	}

	raw, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/memberships/%d", id), nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeInto[Membership](raw)
}

// DeleteMembership removes a principal from a project.
func (c *Client) DeleteMembership(ctx context.Context, id int) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/memberships/%d", id), nil, nil)
	return err
}

func roleLinks(ids []int) []Link {
	links := make([]Link, len(ids))
	for i, id := range ids {
		links[i] = Link{Href: roleHref(id)}
	}
	return links
}
