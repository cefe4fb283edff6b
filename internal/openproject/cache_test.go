package openproject

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

func TestCache_FreshEntrySkipsFetch(t *testing.T) {
	cache := newMetadataCache(300 * time.Second)
	now := time.Unix(1000, 0)
	cache.now = func() time.Time { return now }

	calls := 0
	fetch := func() (json.RawMessage, error) {
		calls++
		return json.RawMessage(`{"total":3}`), nil
	}

	if _, err := cache.fetch("statuses", true, fetch); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}

	// t=100s: still fresh, no new fetch.
	now = now.Add(100 * time.Second)
	if _, err := cache.fetch("statuses", true, fetch); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("calls after fresh hit = %d, want 1", calls)
	}

	// t=400s: stale, exactly one new fetch.
	now = now.Add(300 * time.Second)
	if _, err := cache.fetch("statuses", true, fetch); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("calls after expiry = %d, want 2", calls)
	}
}

func TestCache_BypassAlwaysFetches(t *testing.T) {
	cache := newMetadataCache(300 * time.Second)

	calls := 0
	fetch := func() (json.RawMessage, error) {
		calls++
		return json.RawMessage(`{}`), nil
	}

	for i := 0; i < 3; i++ {
		if _, err := cache.fetch("types", false, fetch); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (bypass must always fetch)", calls)
	}
}

func TestCache_RoundTripBytesIdentical(t *testing.T) {
	cache := newMetadataCache(300 * time.Second)
	payload := json.RawMessage(`{"_embedded":{"elements":[{"id":1,"name":"New"}]},"total":1}`)

	fetched, err := cache.fetch("statuses", false, func() (json.RawMessage, error) {
		return payload, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(fetched, payload) {
		t.Error("forced refresh altered the payload")
	}

	cached, err := cache.fetch("statuses", true, func() (json.RawMessage, error) {
		t.Fatal("fetch must not be called for a fresh entry")
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(cached, payload) {
		t.Error("cached payload differs from just-fetched payload")
	}
}

func TestCache_FailedFetchKeepsOldEntry(t *testing.T) {
	cache := newMetadataCache(time.Nanosecond) // everything immediately stale

	if _, err := cache.fetch("priorities", false, func() (json.RawMessage, error) {
		return json.RawMessage(`{"total":1}`), nil
	}); err != nil {
		t.Fatal(err)
	}

	_, err := cache.fetch("priorities", true, func() (json.RawMessage, error) {
		return nil, context.DeadlineExceeded
	})
	if err == nil {
		t.Fatal("expected fetch error to propagate")
	}

	cache.mu.RLock()
	entry, ok := cache.entries["priorities"]
	cache.mu.RUnlock()
	if !ok || string(entry.payload) != `{"total":1}` {
		t.Error("failed refresh should leave the previous entry untouched")
	}
}

// --- Metadata endpoints through the client ---

func TestMetadata_CachedAcrossCalls(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v3/statuses" {
			hits.Add(1)
		}
		w.Write([]byte(`{"total":2,"count":2,"_embedded":{"elements":[{"id":1,"name":"New","isClosed":false},{"id":2,"name":"Closed","isClosed":true}]}}`))
	}))

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		statuses, err := c.Statuses(ctx, true)
		if err != nil {
			t.Fatal(err)
		}
		if len(statuses.Elements()) != 2 {
			t.Fatalf("elements = %d, want 2", len(statuses.Elements()))
		}
	}
	if hits.Load() != 1 {
		t.Errorf("network hits = %d, want 1", hits.Load())
	}

	// Bypass forces one more hit.
	if _, err := c.Statuses(ctx, false); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Errorf("network hits after bypass = %d, want 2", hits.Load())
	}
}

func TestTypes_ProjectScopedBypassesCache(t *testing.T) {
	var global, scoped atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/types":
			global.Add(1)
		case "/api/v3/projects/5/types":
			scoped.Add(1)
		}
		w.Write([]byte(`{"total":1,"count":1,"_embedded":{"elements":[{"id":1,"name":"Task"}]}}`))
	}))

	ctx := context.Background()
	if _, err := c.Types(ctx, 5, true); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Types(ctx, 5, true); err != nil {
		t.Fatal(err)
	}
	if scoped.Load() != 2 {
		t.Errorf("project-scoped hits = %d, want 2 (never cached)", scoped.Load())
	}
	if global.Load() != 0 {
		t.Errorf("global hits = %d, want 0", global.Load())
	}
}
