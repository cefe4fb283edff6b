package openproject

import (
	"context"
	"fmt"
	"net/http"
)

// NewNews creates a news item (announcement) in a project.
type NewNews struct {
	ProjectID   int
	Title       string
	Summary     string
	Description string
}

type newsPayload struct {
	Title       string         `json:"title,omitempty"`
	Summary     string         `json:"summary,omitempty"`
	Description *Formattable   `json:"description,omitempty"`
	Links       map[string]any `json:"_links,omitempty"`
}

// ListNews lists news items, optionally scoped to a project.
func (c *Client) ListNews(ctx context.Context, projectID int) (*Collection[News], error) {
	var filters []Filter
	if projectID > 0 {
		filters = append(filters, FilterEq("project_id", projectID))
	}
	query, err := listQuery(filters, 0, 0)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, http.MethodGet, "/news", query, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[Collection[News]](raw)
}

// GetNews fetches one news item by ID.
func (c *Client) GetNews(ctx context.Context, id int) (*News, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/news/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[News](raw)
}

// CreateNews publishes a news item in a project.
func (c *Client) CreateNews(ctx context.Context, n NewNews) (*News, error) {
	if n.ProjectID <= 0 {
		return nil, fmt.Errorf("project is required")
	}
	if n.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	payload := newsPayload{
		Title:   n.Title,
		Summary: n.Summary,
		Links: map[string]any{
			"project": Link{Href: projectHref(n.ProjectID)},
		},
	}
	if n.Description != "" {
		payload.Description = &Formattable{Raw: n.Description}
	}

	raw, err := c.do(ctx, http.MethodPost, "/news", nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeInto[News](raw)
}

// UpdateNews applies a partial update to a news item.
func (c *Client) UpdateNews(ctx context.Context, id int, title, summary, description string) (*News, error) {
	payload := newsPayload{Title: title, Summary: summary}
	if description != "" {
		payload.Description = &Formattable{Raw: description}
	}

	raw, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/news/%d", id), nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeInto[News](raw)
}

// DeleteNews removes a news item.
func (c *Client) DeleteNews(ctx context.Context, id int) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/news/%d", id), nil, nil)
	return err
}
