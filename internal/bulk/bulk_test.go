package bulk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"opmcp/internal/openproject"
)

// noSleep makes retries instantaneous in tests.
func noSleep(ctx context.Context, d time.Duration) error { return nil }

// wpHandler serves a minimal work package GET/PATCH backend.
type wpHandler struct {
	mu       sync.Mutex
	patches  int
	fails    map[string]int // path -> remaining 503s before success
	rejected map[string]bool
}

func (h *wpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fails[r.URL.Path] > 0 && r.Method == http.MethodPatch {
		h.fails[r.URL.Path]--
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
		return
	}
	if h.rejected[r.URL.Path] {
		http.Error(w, "gone", http.StatusNotFound)
		return
	}

	if r.Method == http.MethodPatch {
		h.patches++
	}
	json.NewEncoder(w).Encode(map[string]any{
		"id": 1, "lockVersion": 0, "subject": "x",
		"_links": map[string]any{
			"self": map[string]string{"href": ""}, "project": map[string]string{"href": ""},
			"type": map[string]string{"href": ""}, "status": map[string]string{"href": ""},
			"priority": map[string]string{"href": ""},
		},
	})
}

func newBulkClient(t *testing.T, h http.Handler) *openproject.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	c := openproject.New(srv.URL, "key")
	t.Cleanup(func() {
		c.Close()
		srv.Close()
	})
	return c
}

func TestUpdateWorkPackages_AllSucceed(t *testing.T) {
	h := &wpHandler{}
	c := newBulkClient(t, h)

	result, err := UpdateWorkPackages(context.Background(), c, []int{1, 2, 3, 4, 5},
		openproject.WorkPackageUpdate{StatusID: 2}, Options{Sleep: noSleep})
	if err != nil {
		t.Fatal(err)
	}
	if result.Succeeded != 5 || result.Failed != 0 {
		t.Errorf("succeeded=%d failed=%d, want 5/0", result.Succeeded, result.Failed)
	}
	if result.SuccessRate() != 100 {
		t.Errorf("success rate = %v, want 100", result.SuccessRate())
	}
}

func TestUpdateWorkPackages_PartialFailure(t *testing.T) {
	h := &wpHandler{rejected: map[string]bool{"/api/v3/work_packages/2": true}}
	c := newBulkClient(t, h)

	result, err := UpdateWorkPackages(context.Background(), c, []int{1, 2, 3},
		openproject.WorkPackageUpdate{StatusID: 2}, Options{Sleep: noSleep})
	if err != nil {
		t.Fatal(err)
	}
	if result.Succeeded != 2 || result.Failed != 1 {
		t.Errorf("succeeded=%d failed=%d, want 2/1", result.Succeeded, result.Failed)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "#2") {
		t.Errorf("errors = %v, want one entry for #2", result.Errors)
	}
}

func TestUpdateWorkPackages_RetriesTransientFailures(t *testing.T) {
	h := &wpHandler{fails: map[string]int{"/api/v3/work_packages/1": 2}}
	c := newBulkClient(t, h)

	result, err := UpdateWorkPackages(context.Background(), c, []int{1},
		openproject.WorkPackageUpdate{StatusID: 2}, Options{Sleep: noSleep})
	if err != nil {
		t.Fatal(err)
	}
	if result.Succeeded != 1 {
		t.Errorf("succeeded = %d, want 1 (after retries); errors: %v", result.Succeeded, result.Errors)
	}
	if result.TotalRetries != 2 {
		t.Errorf("retries = %d, want 2", result.TotalRetries)
	}
	if result.ItemsWithRetries != 1 {
		t.Errorf("items with retries = %d, want 1", result.ItemsWithRetries)
	}
}

func TestBulk_NoRetryOnClientError(t *testing.T) {
	h := &wpHandler{rejected: map[string]bool{"/api/v3/work_packages/1": true}}
	c := newBulkClient(t, h)

	result, err := UpdateWorkPackages(context.Background(), c, []int{1},
		openproject.WorkPackageUpdate{StatusID: 2}, Options{Sleep: noSleep})
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalRetries != 0 {
		t.Errorf("retries = %d, want 0 (404 is not transient)", result.TotalRetries)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
}

func TestBulk_RejectsEmptyAndOversized(t *testing.T) {
	c := newBulkClient(t, &wpHandler{})

	if _, err := UpdateWorkPackages(context.Background(), c, nil, openproject.WorkPackageUpdate{}, Options{}); err == nil {
		t.Error("empty ID list should be rejected")
	}

	ids := make([]int, MaxItems+1)
	for i := range ids {
		ids[i] = i + 1
	}
	if _, err := UpdateWorkPackages(context.Background(), c, ids, openproject.WorkPackageUpdate{}, Options{}); err == nil {
		t.Error("oversized ID list should be rejected")
	}
}

func TestCommentWorkPackages(t *testing.T) {
	var mu sync.Mutex
	comments := 0
	c := newBulkClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/activities") {
			mu.Lock()
			comments++
			mu.Unlock()
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":1,"comment":{"raw":"hi"},"_links":{"self":{"href":""}}}`))
			return
		}
		http.NotFound(w, r)
	}))

	result, err := CommentWorkPackages(context.Background(), c, []int{1, 2, 3}, "hi", Options{Sleep: noSleep})
	if err != nil {
		t.Fatal(err)
	}
	if result.Succeeded != 3 {
		t.Errorf("succeeded = %d, want 3; errors: %v", result.Succeeded, result.Errors)
	}
	if comments != 3 {
		t.Errorf("comment posts = %d, want 3", comments)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		kind openproject.Kind
		want bool
	}{
		{openproject.KindConnectivity, true},
		{openproject.KindServer, true},
		{openproject.KindNotFound, false},
		{openproject.KindAuthentication, false},
		{openproject.KindAPI, false},
	}
	for _, tt := range tests {
		err := kindError(tt.kind)
		if got := retryable(err); got != tt.want {
			t.Errorf("retryable(%s) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

// kindError builds a classified error of the given kind through a
// canned response, since openproject.Error fields are set by the
// client itself.
func kindError(kind openproject.Kind) error {
	status := map[openproject.Kind]int{
		openproject.KindServer:         500,
		openproject.KindNotFound:       404,
		openproject.KindAuthentication: 401,
		openproject.KindAPI:            418,
	}[kind]

	if kind == openproject.KindConnectivity {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		c := openproject.New(url, "k")
		defer c.Close()
		_, err := c.TestConnection(context.Background())
		return err
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "x", status)
	}))
	defer srv.Close()
	c := openproject.New(srv.URL, "k")
	defer c.Close()
	_, err := c.TestConnection(context.Background())
	return err
}
