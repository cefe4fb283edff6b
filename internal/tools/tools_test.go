package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"opmcp/internal/openproject"
)

// callReq builds a CallToolRequest with the given arguments.
func callReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content of a tool result.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatalf("no text content in result")
	return ""
}

func newToolClient(t *testing.T, handler http.Handler) *openproject.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	client := openproject.New(srv.URL, "secret")
	t.Cleanup(func() {
		client.Close()
		srv.Close()
	})
	return client
}

func TestConnectionTestTool_Success(t *testing.T) {
	client := newToolClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3" && r.URL.Path != "/api/v3/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"instanceName": "Acme PM", "coreVersion": "14.2.0",
		})
	}))

	tool := NewConnectionTestTool(client)
	res, err := tool.Handle(context.Background(), callReq(nil))
	if err != nil {
		t.Fatal(err)
	}
	out := resultText(t, res)
	if !strings.Contains(out, "Acme PM") || !strings.Contains(out, "14.2.0") {
		t.Errorf("output = %q", out)
	}
}

func TestConnectionTestTool_AuthFailureIsToolError(t *testing.T) {
	client := newToolClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid key"}`, http.StatusUnauthorized)
	}))

	tool := NewConnectionTestTool(client)
	res, err := tool.Handle(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("API failures must be tool results, got Go error %v", err)
	}
	if !res.IsError {
		t.Fatal("expected error result")
	}
	out := resultText(t, res)
	if !strings.Contains(out, "authentication") || !strings.Contains(out, "API key") {
		t.Errorf("output = %q, want kind and hint", out)
	}
}

func TestListWorkPackagesTool_DefaultsToOpenOnly(t *testing.T) {
	var gotFilters string
	client := newToolClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFilters = r.URL.Query().Get("filters")
		json.NewEncoder(w).Encode(map[string]any{
			"total": 1, "count": 1,
			"_embedded": map[string]any{"elements": []map[string]any{
				{"id": 7, "subject": "Fix login", "_links": map[string]any{
					"status": map[string]any{"href": "/api/v3/statuses/1", "title": "New"},
				}},
			}},
		})
	}))

	tool := NewListWorkPackagesTool(client)
	res, err := tool.Handle(context.Background(), callReq(map[string]any{"project_id": 3}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gotFilters, `"operator":"o"`) {
		t.Errorf("filters = %q, want open status filter", gotFilters)
	}
	if out := resultText(t, res); !strings.Contains(out, "Fix login") {
		t.Errorf("output = %q", out)
	}
}

func TestListWorkPackagesTool_AllStatusesSkipsFilter(t *testing.T) {
	var gotFilters string
	client := newToolClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFilters = r.URL.Query().Get("filters")
		json.NewEncoder(w).Encode(map[string]any{
			"_embedded": map[string]any{"elements": []map[string]any{}},
		})
	}))

	tool := NewListWorkPackagesTool(client)
	if _, err := tool.Handle(context.Background(), callReq(map[string]any{
		"project_id": 3, "all_statuses": true,
	})); err != nil {
		t.Fatal(err)
	}
	if gotFilters != "" {
		t.Errorf("filters = %q, want none", gotFilters)
	}
}

func TestGetWorkPackageTool_RequiresID(t *testing.T) {
	tool := NewGetWorkPackageTool(nil)
	res, err := tool.Handle(context.Background(), callReq(nil))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected error result for missing id")
	}
}

func TestCreateWorkPackageTool(t *testing.T) {
	client := newToolClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["subject"] != "New feature" {
			t.Errorf("subject = %v", payload["subject"])
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"id": 99, "subject": "New feature", "_links": map[string]any{},
		})
	}))

	tool := NewCreateWorkPackageTool(client)
	res, err := tool.Handle(context.Background(), callReq(map[string]any{
		"project_id": 3, "subject": "New feature", "type_id": 1,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if out := resultText(t, res); !strings.Contains(out, "#99") {
		t.Errorf("output = %q", out)
	}
}

func TestListTypesTool_RefreshBypassesCache(t *testing.T) {
	hits := 0
	client := newToolClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		json.NewEncoder(w).Encode(map[string]any{
			"_embedded": map[string]any{"elements": []map[string]any{
				{"id": 1, "name": "Task"},
			}},
		})
	}))

	tool := NewListTypesTool(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := tool.Handle(ctx, callReq(nil)); err != nil {
			t.Fatal(err)
		}
	}
	if hits != 1 {
		t.Fatalf("hits = %d after cached calls, want 1", hits)
	}

	if _, err := tool.Handle(ctx, callReq(map[string]any{"refresh": true})); err != nil {
		t.Fatal(err)
	}
	if hits != 2 {
		t.Fatalf("hits = %d after refresh, want 2", hits)
	}
}

func TestBulkUpdateTool_RejectsEmptyUpdate(t *testing.T) {
	tool := NewBulkUpdateTool(nil)
	res, err := tool.Handle(context.Background(), callReq(map[string]any{"ids": "1,2"}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected error result")
	}
}

func TestBulkUpdateTool_RejectsBadIDs(t *testing.T) {
	tool := NewBulkUpdateTool(nil)
	res, err := tool.Handle(context.Background(), callReq(map[string]any{
		"ids": "1,x,3", "status_id": 2,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected error result")
	}
}

func TestCreateMembershipTool_RequiresRoles(t *testing.T) {
	tool := NewCreateMembershipTool(nil)
	res, err := tool.Handle(context.Background(), callReq(map[string]any{
		"project_id": 3, "user_id": 5,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected error result")
	}
	if out := resultText(t, res); !strings.Contains(out, "role_ids") {
		t.Errorf("output = %q", out)
	}
}

func TestSetParentTool_RejectsSelfParent(t *testing.T) {
	tool := NewSetParentTool(nil)
	res, err := tool.Handle(context.Background(), callReq(map[string]any{
		"id": 5, "parent_id": 5,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected error result")
	}
}

func TestWeeklyReportTool_DefaultWindow(t *testing.T) {
	orig := reportNow
	reportNow = func() time.Time {
		return time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)
	}
	t.Cleanup(func() { reportNow = orig })

	var wpFilters string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/projects/3", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": 3, "identifier": "p", "name": "Proj"})
	})
	mux.HandleFunc("/api/v3/projects/3/work_packages", func(w http.ResponseWriter, r *http.Request) {
		wpFilters = r.URL.Query().Get("filters")
		json.NewEncoder(w).Encode(map[string]any{"_embedded": map[string]any{"elements": []map[string]any{}}})
	})
	mux.HandleFunc("/api/v3/memberships", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"_embedded": map[string]any{"elements": []map[string]any{}}})
	})
	mux.HandleFunc("/api/v3/time_entries", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"_embedded": map[string]any{"elements": []map[string]any{}}})
	})

	tool := NewWeeklyReportTool(newToolClient(t, mux))
	res, err := tool.Handle(context.Background(), callReq(map[string]any{"project_id": 3}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(wpFilters, "2025-01-06") || !strings.Contains(wpFilters, "2025-01-12") {
		t.Errorf("filters = %q, want current week window", wpFilters)
	}
	if out := resultText(t, res); !strings.Contains(out, "Weekly Report: Proj") {
		t.Errorf("output = %q", out)
	}
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		raw     string
		want    []int
		wantErr bool
	}{
		{"1,2,3", []int{1, 2, 3}, false},
		{" 4 , 5 ", []int{4, 5}, false},
		{"", nil, false},
		{"1,x", nil, true},
		{"0", nil, true},
		{"-3", nil, true},
	}
	for _, tt := range tests {
		got, err := parseIDList(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseIDList(%q): expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseIDList(%q): %v", tt.raw, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("parseIDList(%q) = %v, want %v", tt.raw, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseIDList(%q) = %v, want %v", tt.raw, got, tt.want)
				break
			}
		}
	}
}
