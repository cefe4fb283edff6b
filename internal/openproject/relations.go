package openproject

import (
	"context"
	"fmt"
	"net/http"
)

// Relation types accepted by the API.
var RelationTypes = []string{
	"relates", "duplicates", "duplicated", "blocks", "blocked",
	"precedes", "follows", "includes", "partof", "requires", "required",
}

// NewRelation describes a typed edge between two work packages. Lag is
// the number of working days between predecessor and follower; nil
// omits it.
type NewRelation struct {
	FromID      int
	ToID        int
	Type        string
	Lag         *int
	Description string
}

type relationPayload struct {
	Type        string         `json:"type,omitempty"`
	Lag         *int           `json:"lag,omitempty"`
	Description string         `json:"description,omitempty"`
	Links       map[string]any `json:"_links,omitempty"`
}

// CreateRelation links two work packages.
func (c *Client) CreateRelation(ctx context.Context, r NewRelation) (*Relation, error) {
	if r.FromID <= 0 || r.ToID <= 0 {
		return nil, fmt.Errorf("both work package IDs are required")
	}
	if r.Type == "" {
		return nil, fmt.Errorf("relation type is required")
	}

	payload := relationPayload{
		Type:        r.Type,
		Lag:         r.Lag,
		Description: r.Description,
		Links: map[string]any{
			"from": Link{Href: workPackageHref(r.FromID)},
			"to":   Link{Href: workPackageHref(r.ToID)},
		},
	}
	raw, err := c.do(ctx, http.MethodPost, "/relations", nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeInto[Relation](raw)
}

// ListRelations lists relations, optionally filtered (e.g. involving a
// given work package).
func (c *Client) ListRelations(ctx context.Context, filters []Filter) (*Collection[Relation], error) {
	query, err := listQuery(filters, 0, 0)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, http.MethodGet, "/relations", query, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[Collection[Relation]](raw)
}

// GetRelation fetches one relation by ID.
func (c *Client) GetRelation(ctx context.Context, id int) (*Relation, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/relations/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[Relation](raw)
}

// UpdateRelation changes the type, lag or description of a relation.
func (c *Client) UpdateRelation(ctx context.Context, id int, relType string, lag *int, description string) (*Relation, error) {
	payload := relationPayload{Type: relType, Lag: lag, Description: description}
	raw, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/relations/%d", id), nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeInto[Relation](raw)
}

// DeleteRelation removes a relation.
func (c *Client) DeleteRelation(ctx context.Context, id int) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/relations/%d", id), nil, nil)
	return err
}
