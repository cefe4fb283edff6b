package openproject

import (
	"context"
	"fmt"
	"net/http"
)

// ListUsers lists users, optionally filtered (e.g. by status or name).
func (c *Client) ListUsers(ctx context.Context, filters []Filter) (*Collection[User], error) {
	query, err := listQuery(filters, 0, 0)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, http.MethodGet, "/users", query, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[Collection[User]](raw)
}

// GetUser fetches one user by ID.
func (c *Client) GetUser(ctx context.Context, id int) (*User, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[User](raw)
}

// Me fetches the authenticated user, including the admin flag. Useful
// for permission debugging.
func (c *Client) Me(ctx context.Context) (*User, error) {
	raw, err := c.do(ctx, http.MethodGet, "/users/me", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[User](raw)
}

// ListRoles lists the roles available for memberships.
func (c *Client) ListRoles(ctx context.Context) (*Collection[Role], error) {
	raw, err := c.do(ctx, http.MethodGet, "/roles", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[Collection[Role]](raw)
}

// GetRole fetches one role by ID.
func (c *Client) GetRole(ctx context.Context, id int) (*Role, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/roles/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[Role](raw)
}

// TestConnection fetches the API root document, validating both
// connectivity and the credential.
func (c *Client) TestConnection(ctx context.Context) (*RootInfo, error) {
	raw, err := c.do(ctx, http.MethodGet, "", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[RootInfo](raw)
}
