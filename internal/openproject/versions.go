package openproject

import (
	"context"
	"fmt"
	"net/http"
)

// NewVersion creates a version (milestone) in a project.
type NewVersion struct {
	ProjectID   int
	Name        string
	Description string
	StartDate   string
	EndDate     string
	Status      string // open, locked or closed
}

// VersionUpdate carries the fields of a partial version update.
type VersionUpdate struct {
	Name        string
	Description string
	StartDate   string
	EndDate     string
	Status      string
}

type versionPayload struct {
	LockVersion *int           `json:"lockVersion,omitempty"`
	Name        string         `json:"name,omitempty"`
	Description *Formattable   `json:"description,omitempty"`
	StartDate   string         `json:"startDate,omitempty"`
	EndDate     string         `json:"endDate,omitempty"`
	Status      string         `json:"status,omitempty"`
	Links       map[string]any `json:"_links,omitempty"`
}

// ListVersions lists versions, optionally scoped to a project.
func (c *Client) ListVersions(ctx context.Context, projectID int) (*Collection[ProjectVersion], error) {
	path := "/versions"
	if projectID > 0 {
		path = fmt.Sprintf("/projects/%d/versions", projectID)
	}
	raw, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[Collection[ProjectVersion]](raw)
}

// GetVersion fetches one version by ID.
func (c *Client) GetVersion(ctx context.Context, id int) (*ProjectVersion, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/versions/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[ProjectVersion](raw)
}

// CreateVersion creates a version owned by a project.
func (c *Client) CreateVersion(ctx context.Context, v NewVersion) (*ProjectVersion, error) {
	if v.ProjectID <= 0 {
		return nil, fmt.Errorf("project is required")
	}
	if v.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	payload := versionPayload{
		Name:      v.Name,
		StartDate: v.StartDate,
		EndDate:   v.EndDate,
		Status:    v.Status,
		Links: map[string]any{
			"definingProject": Link{Href: projectHref(v.ProjectID)},
		},
	}
	if v.Description != "" {
		payload.Description = &Formattable{Raw: v.Description}
	}

	raw, err := c.do(ctx, http.MethodPost, "/versions", nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeInto[ProjectVersion](raw)
}

// UpdateVersion applies a partial update.
func (c *Client) UpdateVersion(ctx context.Context, id int, u VersionUpdate) (*ProjectVersion, error) {
	payload := versionPayload{
		Name:      u.Name,
		StartDate: u.StartDate,
		EndDate:   u.EndDate,
		Status:    u.Status,
	}
	if u.Description != "" {
		payload.Description = &Formattable{Raw: u.Description}
	}

	raw, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/versions/%d", id), nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeInto[ProjectVersion](raw)
}

// DeleteVersion removes a version.
func (c *Client) DeleteVersion(ctx context.Context, id int) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/versions/%d", id), nil, nil)
	return err
}
