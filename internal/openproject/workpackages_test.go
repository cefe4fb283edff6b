package openproject

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

// wpBackend is a scripted OpenProject backend for creation tests. It
// records every request it sees.
type wpBackend struct {
	t            *testing.T
	rejectDirect bool // 422 on direct POST /work_packages without a form pass
	requests     []string
	sawForm      bool
}

func (b *wpBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.requests = append(b.requests, r.Method+" "+r.URL.Path)

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/v3/work_packages/form":
		b.sawForm = true
		w.Write([]byte(`{"lockVersion":0,"payload":{"subject":"Test","_links":{"project":{"href":"/api/v3/projects/5"},"type":{"href":"/api/v3/types/1"}}}}`))

	case r.Method == http.MethodPost && r.URL.Path == "/api/v3/work_packages":
		if b.rejectDirect && !b.sawForm {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"_type":"Error","message":"invalid payload"}`))
			return
		}
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			b.t.Errorf("invalid creation body: %v", err)
		}
		if _, ok := payload["lockVersion"]; !ok {
			b.t.Error("creation payload missing lockVersion")
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":42,"lockVersion":0,"subject":"Test","_links":{"self":{"href":"/api/v3/work_packages/42"},"project":{"href":"/api/v3/projects/5"},"type":{"href":"/api/v3/types/1","title":"Task"},"status":{"href":"/api/v3/statuses/1","title":"New"},"priority":{"href":"/api/v3/priorities/8"}}}`))

	default:
		http.NotFound(w, r)
	}
}

func TestCreateWorkPackage_FastPathSingleRequest(t *testing.T) {
	backend := &wpBackend{t: t}
	c, _ := newTestClient(t, backend)

	wp, err := c.CreateWorkPackage(context.Background(), NewWorkPackage{
		ProjectID: 5, Subject: "Test", TypeID: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if wp.ID != 42 {
		t.Errorf("ID = %d, want 42", wp.ID)
	}
	if len(backend.requests) != 1 {
		t.Errorf("requests = %v, want exactly one", backend.requests)
	}
	if backend.sawForm {
		t.Error("validated path must not run when the fast path succeeds")
	}
}

func TestCreateWorkPackage_FallsBackToValidatedPath(t *testing.T) {
	backend := &wpBackend{t: t, rejectDirect: true}
	c, _ := newTestClient(t, backend)

	wp, err := c.CreateWorkPackage(context.Background(), NewWorkPackage{
		ProjectID: 5, Subject: "Test", TypeID: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if wp.ID != 42 {
		t.Errorf("ID = %d, want 42", wp.ID)
	}

	want := []string{
		"POST /api/v3/work_packages",      // fast attempt, rejected
		"POST /api/v3/work_packages/form", // validated: form pass
		"POST /api/v3/work_packages",      // validated: commit
	}
	if len(backend.requests) != len(want) {
		t.Fatalf("requests = %v, want %v", backend.requests, want)
	}
	for i := range want {
		if backend.requests[i] != want[i] {
			t.Errorf("request[%d] = %s, want %s", i, backend.requests[i], want[i])
		}
	}
}

func TestCreateWorkPackage_BothPathsFail_ValidatedErrorSurfaced(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/form") {
			http.Error(w, "no permission", http.StatusForbidden)
			return
		}
		http.Error(w, "invalid", http.StatusUnprocessableEntity)
	}))

	_, err := c.CreateWorkPackage(context.Background(), NewWorkPackage{
		ProjectID: 5, Subject: "Test", TypeID: 1,
	})
	// The fast path saw a 422, the validated form pass a 403: the
	// validated path's classification wins.
	if KindOf(err) != KindAuthorization {
		t.Errorf("kind = %q, want %q (err: %v)", KindOf(err), KindAuthorization, err)
	}
}

func TestCreateWorkPackage_RequiredFields(t *testing.T) {
	c := New("http://localhost:1", "key")
	defer c.Close()

	tests := []struct {
		name  string
		input NewWorkPackage
	}{
		{"missing project", NewWorkPackage{Subject: "x", TypeID: 1}},
		{"missing subject", NewWorkPackage{ProjectID: 5, TypeID: 1}},
		{"missing type", NewWorkPackage{ProjectID: 5, Subject: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.CreateWorkPackage(context.Background(), tt.input); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCreatePayload_OmitsUnsetOptionalFields(t *testing.T) {
	var body map[string]any
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &body)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1,"subject":"x","_links":{"self":{"href":""},"project":{"href":""},"type":{"href":""},"status":{"href":""},"priority":{"href":""}}}`))
	}))

	_, err := c.CreateWorkPackage(context.Background(), NewWorkPackage{
		ProjectID: 5, Subject: "x", TypeID: 1,
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, field := range []string{"description", "startDate", "dueDate", "percentageDone"} {
		if v, present := body[field]; present {
			t.Errorf("unset field %q serialized as %v (must be omitted, not null)", field, v)
		}
	}
	links := body["_links"].(map[string]any)
	for _, rel := range []string{"assignee", "priority", "status", "version"} {
		if _, present := links[rel]; present {
			t.Errorf("unset relation %q must be omitted", rel)
		}
	}
}

func TestCreatePayload_IncludesOptionalFieldsWhenSet(t *testing.T) {
	var body map[string]any
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &body)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1,"subject":"x","_links":{"self":{"href":""},"project":{"href":""},"type":{"href":""},"status":{"href":""},"priority":{"href":""}}}`))
	}))

	_, err := c.CreateWorkPackage(context.Background(), NewWorkPackage{
		ProjectID: 5, Subject: "x", TypeID: 1,
		Description: "details", DueDate: "2025-03-01", AssigneeID: 7, PriorityID: 3,
	})
	if err != nil {
		t.Fatal(err)
	}

	desc := body["description"].(map[string]any)
	if desc["raw"] != "details" {
		t.Errorf("description.raw = %v, want details", desc["raw"])
	}
	if body["dueDate"] != "2025-03-01" {
		t.Errorf("dueDate = %v", body["dueDate"])
	}
	links := body["_links"].(map[string]any)
	assignee := links["assignee"].(map[string]any)
	if assignee["href"] != "/api/v3/users/7" {
		t.Errorf("assignee href = %v", assignee["href"])
	}
	priority := links["priority"].(map[string]any)
	if priority["href"] != "/api/v3/priorities/3" {
		t.Errorf("priority href = %v", priority["href"])
	}
}

func TestUpdateWorkPackage_UsesCurrentLockVersion(t *testing.T) {
	var patched map[string]any
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"id":9,"lockVersion":4,"subject":"old","_links":{"self":{"href":""},"project":{"href":""},"type":{"href":""},"status":{"href":""},"priority":{"href":""}}}`))
		case http.MethodPatch:
			data, _ := io.ReadAll(r.Body)
			json.Unmarshal(data, &patched)
			w.Write([]byte(`{"id":9,"lockVersion":5,"subject":"new","_links":{"self":{"href":""},"project":{"href":""},"type":{"href":""},"status":{"href":""},"priority":{"href":""}}}`))
		}
	}))

	wp, err := c.UpdateWorkPackage(context.Background(), 9, WorkPackageUpdate{Subject: "new"})
	if err != nil {
		t.Fatal(err)
	}
	if patched["lockVersion"] != float64(4) {
		t.Errorf("lockVersion = %v, want 4", patched["lockVersion"])
	}
	if wp.Subject != "new" {
		t.Errorf("subject = %s, want new", wp.Subject)
	}
}

func TestRemoveWorkPackageParent_SendsNullLink(t *testing.T) {
	var patched []byte
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"id":9,"lockVersion":2,"subject":"child","_links":{"self":{"href":""},"project":{"href":""},"type":{"href":""},"status":{"href":""},"priority":{"href":""}}}`))
		case http.MethodPatch:
			patched, _ = io.ReadAll(r.Body)
			w.Write([]byte(`{"id":9,"lockVersion":3,"subject":"child","_links":{"self":{"href":""},"project":{"href":""},"type":{"href":""},"status":{"href":""},"priority":{"href":""}}}`))
		}
	}))

	if _, err := c.RemoveWorkPackageParent(context.Background(), 9); err != nil {
		t.Fatal(err)
	}

	var body struct {
		Links map[string]json.RawMessage `json:"_links"`
	}
	if err := json.Unmarshal(patched, &body); err != nil {
		t.Fatal(err)
	}
	raw, ok := body.Links["parent"]
	if !ok {
		t.Fatal("parent link missing from payload")
	}
	if string(raw) != "null" {
		t.Errorf("parent = %s, want explicit null", raw)
	}
}

func TestListWorkPackages_ProjectScopeAndPagination(t *testing.T) {
	var gotPath, gotQuery string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"total":0,"count":0,"_embedded":{"elements":[]}}`))
	}))

	_, err := c.ListWorkPackages(context.Background(), ListWorkPackagesOptions{
		ProjectID: 3, Offset: 20, PageSize: 10,
		Filters: []Filter{FilterOpenStatus()},
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/api/v3/projects/3/work_packages" {
		t.Errorf("path = %s", gotPath)
	}
	for _, want := range []string{"offset=20", "pageSize=10", "filters="} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}
