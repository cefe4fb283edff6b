package openproject

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Cached metadata lookups. Types, statuses and priorities are
// low-cardinality and change rarely; responses are served from the
// metadata cache inside the freshness window unless useCache is false,
// which always refreshes.

// Types lists the work package types. projectID scopes the listing to
// one project's enabled types (project-scoped listings bypass the
// cache, which holds only the global set).
func (c *Client) Types(ctx context.Context, projectID int, useCache bool) (*Collection[TypeMeta], error) {
	if projectID > 0 {
		raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/types", projectID), nil, nil)
		if err != nil {
			return nil, err
		}
		return decodeInto[Collection[TypeMeta]](raw)
	}
	return cachedCollection[TypeMeta](ctx, c, "types", "/types", useCache)
}

// Statuses lists the work package statuses.
func (c *Client) Statuses(ctx context.Context, useCache bool) (*Collection[Status], error) {
	return cachedCollection[Status](ctx, c, "statuses", "/statuses", useCache)
}

// Priorities lists the work package priorities.
func (c *Client) Priorities(ctx context.Context, useCache bool) (*Collection[Priority], error) {
	return cachedCollection[Priority](ctx, c, "priorities", "/priorities", useCache)
}

func cachedCollection[T any](ctx context.Context, c *Client, name, path string, useCache bool) (*Collection[T], error) {
	raw, err := c.meta.fetch(name, useCache, func() (json.RawMessage, error) {
		return c.do(ctx, http.MethodGet, path, nil, nil)
	})
	if err != nil {
		return nil, err
	}
	return decodeInto[Collection[T]](raw)
}

// TimeEntryActivities lists the available time entry activities. Not
// cached: the cache fronts exactly the three work-item metadata
// endpoints.
func (c *Client) TimeEntryActivities(ctx context.Context) (*Collection[Activity], error) {
	raw, err := c.do(ctx, http.MethodGet, "/time_entries/activities", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[Collection[Activity]](raw)
}
