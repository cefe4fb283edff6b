package openproject

import (
	"context"
	"fmt"
	"net/http"
)

// NewWorkPackage carries the caller-supplied fields for a creation.
// ProjectID, Subject and TypeID are required; everything else is
// omitted from the payload when unset.
type NewWorkPackage struct {
	ProjectID int
	Subject   string
	TypeID    int

	Description string
	StartDate   string
	DueDate     string
	AssigneeID  int
	StatusID    int
	PriorityID  int
	VersionID   int
}

func (p NewWorkPackage) validate() error {
	if p.ProjectID <= 0 {
		return fmt.Errorf("project is required")
	}
	if p.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if p.TypeID <= 0 {
		return fmt.Errorf("type is required")
	}
	return nil
}

// WorkPackageUpdate carries the fields of a partial update. Nil/zero
// fields are left untouched on the server.
type WorkPackageUpdate struct {
	Subject        string
	Description    string
	TypeID         int
	StatusID       int
	PriorityID     int
	AssigneeID     int
	StartDate      string
	DueDate        string
	PercentageDone *int
}

// wpPayload is the wire shape of work package writes. Optional fields
// are omitted, not null, matching the API's partial-update semantics.
type wpPayload struct {
	LockVersion    *int           `json:"lockVersion,omitempty"`
	Subject        string         `json:"subject,omitempty"`
	Description    *Formattable   `json:"description,omitempty"`
	StartDate      string         `json:"startDate,omitempty"`
	DueDate        string         `json:"dueDate,omitempty"`
	PercentageDone *int           `json:"percentageDone,omitempty"`
	Links          map[string]any `json:"_links,omitempty"`
}

func (p *wpPayload) link(name, href string) {
	if p.Links == nil {
		p.Links = map[string]any{}
	}
	p.Links[name] = Link{Href: href}
}

// ListWorkPackagesOptions scopes and paginates a work package listing.
type ListWorkPackagesOptions struct {
	ProjectID int // 0 = all projects
	Filters   []Filter
	Offset    int
	PageSize  int
}

// ListWorkPackages lists work packages, optionally scoped to a project.
func (c *Client) ListWorkPackages(ctx context.Context, opts ListWorkPackagesOptions) (*Collection[WorkPackage], error) {
	path := "/work_packages"
	if opts.ProjectID > 0 {
		path = fmt.Sprintf("/projects/%d/work_packages", opts.ProjectID)
	}
	query, err := listQuery(opts.Filters, opts.Offset, opts.PageSize)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[Collection[WorkPackage]](raw)
}

// GetWorkPackage fetches one work package by ID.
func (c *Client) GetWorkPackage(ctx context.Context, id int) (*WorkPackage, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/work_packages/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[WorkPackage](raw)
}

// CreateWorkPackage creates a work package using the fast path: a
// single POST with a fixed lockVersion marker, skipping the
// preparatory form round trip. When the fast call fails for any
// reason, it transparently falls back to the validated two-step path
// once; if that also fails, the validated path's classified error is
// surfaced. Exactly one request on success, no retries beyond the
// single fallback.
func (c *Client) CreateWorkPackage(ctx context.Context, p NewWorkPackage) (*WorkPackage, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	wp, fastErr := c.createWorkPackageFast(ctx, p)
	if fastErr == nil {
		return wp, nil
	}
	c.log.Debug().Err(fastErr).Msg("fast-path creation failed, falling back to validated path")
	return c.CreateWorkPackageValidated(ctx, p)
}

// createWorkPackageFast builds the payload directly and submits it in
// one request. lockVersion 0 marks a fresh resource.
func (c *Client) createWorkPackageFast(ctx context.Context, p NewWorkPackage) (*WorkPackage, error) {
	zero := 0
	payload := wpPayload{LockVersion: &zero, Subject: p.Subject}
	payload.link("project", projectHref(p.ProjectID))
	payload.link("type", typeHref(p.TypeID))
	applyOptionalFields(&payload, p)

	raw, err := c.do(ctx, http.MethodPost, "/work_packages", nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeInto[WorkPackage](raw)
}

// wpForm is the server's creation-form response: a validated,
// normalized payload plus the lock version to commit with.
type wpForm struct {
	LockVersion int        `json:"lockVersion"`
	Payload     *wpPayload `json:"payload"`
}

// CreateWorkPackageValidated creates a work package via the two-step
// path: a form request lets the server validate and normalize the
// payload, then the actual creation commits it. Two round trips;
// server-side validation feedback arrives before the commit.
func (c *Client) CreateWorkPackageValidated(ctx context.Context, p NewWorkPackage) (*WorkPackage, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	base := wpPayload{Subject: p.Subject}
	base.link("project", projectHref(p.ProjectID))
	base.link("type", typeHref(p.TypeID))

	rawForm, err := c.do(ctx, http.MethodPost, "/work_packages/form", nil, base)
	if err != nil {
		return nil, err
	}
	form, err := decodeInto[wpForm](rawForm)
	if err != nil {
		return nil, err
	}

	payload := base
	if form.Payload != nil {
		payload = *form.Payload
	}
	lv := form.LockVersion
	payload.LockVersion = &lv
	applyOptionalFields(&payload, p)

	raw, err := c.do(ctx, http.MethodPost, "/work_packages", nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeInto[WorkPackage](raw)
}

func applyOptionalFields(payload *wpPayload, p NewWorkPackage) {
	if p.Description != "" {
		payload.Description = &Formattable{Raw: p.Description}
	}
	if p.StartDate != "" {
		payload.StartDate = p.StartDate
	}
	if p.DueDate != "" {
		payload.DueDate = p.DueDate
	}
	if p.AssigneeID > 0 {
		payload.link("assignee", userHref(p.AssigneeID))
	}
	if p.StatusID > 0 {
		payload.link("status", statusHref(p.StatusID))
	}
	if p.PriorityID > 0 {
		payload.link("priority", priorityHref(p.PriorityID))
	}
	if p.VersionID > 0 {
		payload.link("version", versionHref(p.VersionID))
	}
}

// UpdateWorkPackage applies a partial update. The current lock version
// is fetched first so the PATCH carries the server's concurrency
// token.
func (c *Client) UpdateWorkPackage(ctx context.Context, id int, u WorkPackageUpdate) (*WorkPackage, error) {
	current, err := c.GetWorkPackage(ctx, id)
	if err != nil {
		return nil, err
	}

	lv := current.LockVersion
	payload := wpPayload{LockVersion: &lv}
	if u.Subject != "" {
		payload.Subject = u.Subject
	}
	if u.Description != "" {
		payload.Description = &Formattable{Raw: u.Description}
	}
	if u.TypeID > 0 {
		payload.link("type", typeHref(u.TypeID))
	}
	if u.StatusID > 0 {
		payload.link("status", statusHref(u.StatusID))
	}
	if u.PriorityID > 0 {
		payload.link("priority", priorityHref(u.PriorityID))
	}
	if u.AssigneeID > 0 {
		payload.link("assignee", userHref(u.AssigneeID))
	}
	if u.StartDate != "" {
		payload.StartDate = u.StartDate
	}
	if u.DueDate != "" {
		payload.DueDate = u.DueDate
	}
	if u.PercentageDone != nil {
		payload.PercentageDone = u.PercentageDone
	}

	raw, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/work_packages/%d", id), nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeInto[WorkPackage](raw)
}

// DeleteWorkPackage removes a work package.
func (c *Client) DeleteWorkPackage(ctx context.Context, id int) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/work_packages/%d", id), nil, nil)
	return err
}

// AssignWorkPackage sets the assignee; UnassignWorkPackage clears it.
func (c *Client) AssignWorkPackage(ctx context.Context, id, userID int) (*WorkPackage, error) {
	return c.patchLink(ctx, id, "assignee", Link{Href: userHref(userID)})
}

func (c *Client) UnassignWorkPackage(ctx context.Context, id int) (*WorkPackage, error) {
	return c.patchLink(ctx, id, "assignee", nil)
}

// SetWorkPackageParent makes parentID the parent of id.
func (c *Client) SetWorkPackageParent(ctx context.Context, id, parentID int) (*WorkPackage, error) {
	return c.patchLink(ctx, id, "parent", Link{Href: workPackageHref(parentID)})
}

// RemoveWorkPackageParent detaches id from its parent, making it
// top-level. The API expects an explicit null parent link.
func (c *Client) RemoveWorkPackageParent(ctx context.Context, id int) (*WorkPackage, error) {
	return c.patchLink(ctx, id, "parent", nil)
}

// patchLink PATCHes a single _links entry with a fresh lock version.
// A nil value clears the relation (serialized as JSON null).
func (c *Client) patchLink(ctx context.Context, id int, name string, value any) (*WorkPackage, error) {
	current, err := c.GetWorkPackage(ctx, id)
	if err != nil {
		return nil, err
	}
	lv := current.LockVersion
	payload := wpPayload{LockVersion: &lv, Links: map[string]any{name: value}}

	raw, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/work_packages/%d", id), nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeInto[WorkPackage](raw)
}

// ListWorkPackageChildren lists the children of a parent work package.
// With includeDescendants, grandchildren and below are included.
func (c *Client) ListWorkPackageChildren(ctx context.Context, parentID int, includeDescendants bool) (*Collection[WorkPackage], error) {
	field := "parent"
	if includeDescendants {
		field = "descendantsOf"
	}
	return c.ListWorkPackages(ctx, ListWorkPackagesOptions{
		Filters: []Filter{FilterEq(field, parentID)},
	})
}

// ListWorkPackageActivities lists the journal (comments and field
// changes) of a work package.
func (c *Client) ListWorkPackageActivities(ctx context.Context, id int) (*Collection[WPActivity], error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/work_packages/%d/activities", id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[Collection[WPActivity]](raw)
}

// AddWorkPackageComment appends a comment to a work package's journal.
func (c *Client) AddWorkPackageComment(ctx context.Context, id int, comment string) (*WPActivity, error) {
	if comment == "" {
		return nil, fmt.Errorf("comment is required")
	}
	body := map[string]any{"comment": Formattable{Raw: comment}}
	raw, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/work_packages/%d/activities", id), nil, body)
	if err != nil {
		return nil, err
	}
	return decodeInto[WPActivity](raw)
}
