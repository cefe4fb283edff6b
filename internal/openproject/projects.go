package openproject

import (
	"context"
	"fmt"
	"net/http"
)

// NewProject carries the fields for a project creation. Name and
// Identifier are required by the API; the rest is optional.
type NewProject struct {
	Name        string
	Identifier  string
	Description string
	Public      *bool
	ParentID    int
}

// ProjectUpdate carries the fields of a partial project update.
type ProjectUpdate struct {
	Name        string
	Identifier  string
	Description string
	Public      *bool
	ParentID    int
}

type projectPayload struct {
	LockVersion *int           `json:"lockVersion,omitempty"`
	Name        string         `json:"name,omitempty"`
	Identifier  string         `json:"identifier,omitempty"`
	Description *Formattable   `json:"description,omitempty"`
	Public      *bool          `json:"public,omitempty"`
	Links       map[string]any `json:"_links,omitempty"`
}

// ListProjects lists projects visible to the authenticated user.
func (c *Client) ListProjects(ctx context.Context, filters []Filter) (*Collection[Project], error) {
	query, err := listQuery(filters, 0, 0)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, http.MethodGet, "/projects", query, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[Collection[Project]](raw)
}

// GetProject fetches one project by ID.
func (c *Client) GetProject(ctx context.Context, id int) (*Project, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[Project](raw)
}

// CreateProject creates a project. Set ParentID to create a
// subproject.
func (c *Client) CreateProject(ctx context.Context, p NewProject) (*Project, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	payload := projectPayload{
		Name:       p.Name,
		Identifier: p.Identifier,
		Public:     p.Public,
	}
	if p.Description != "" {
		payload.Description = &Formattable{Raw: p.Description}
	}
	if p.ParentID > 0 {
		payload.Links = map[string]any{"parent": Link{Href: projectHref(p.ParentID)}}
	}

	raw, err := c.do(ctx, http.MethodPost, "/projects", nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeInto[Project](raw)
}

// UpdateProject applies a partial update.
func (c *Client) UpdateProject(ctx context.Context, id int, u ProjectUpdate) (*Project, error) {
	payload := projectPayload{
		Name:       u.Name,
		Identifier: u.Identifier,
		Public:     u.Public,
	}
	if u.Description != "" {
		payload.Description = &Formattable{Raw: u.Description}
	}
	if u.ParentID > 0 {
		payload.Links = map[string]any{"parent": Link{Href: projectHref(u.ParentID)}}
	}

	raw, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/projects/%d", id), nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeInto[Project](raw)
}

// DeleteProject removes a project and everything in it.
func (c *Client) DeleteProject(ctx context.Context, id int) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/projects/%d", id), nil, nil)
	return err
}

// ListSubprojects lists the direct children of a project.
func (c *Client) ListSubprojects(ctx context.Context, parentID int) (*Collection[Project], error) {
	return c.ListProjects(ctx, []Filter{FilterEq("parent_id", parentID)})
}
