package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nbmusic/remote/internal/models"
)

type fakeSource struct {
	mu          sync.Mutex
	entries     []models.CatalogEntry
	searchErr   error
	searchCalls int
}

func (f *fakeSource) Search(_ context.Context, _ string, _ int) ([]models.CatalogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	out := make([]models.CatalogEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeSource) ResolveMediaURLs(_ context.Context, _ string) (MediaURLs, error) {
	return MediaURLs{}, errors.New("not implemented")
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchCalls
}

func (f *fakeSource) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchErr = err
}

type eventRecorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *eventRecorder) Broadcast(eventType string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, models.Event{Type: eventType, Data: data})
}

func (r *eventRecorder) byType(eventType string) []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Event
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func entries(ids ...string) []models.CatalogEntry {
	out := make([]models.CatalogEntry, len(ids))
	for i, id := range ids {
		out[i] = models.CatalogEntry{ID: id, Title: "Song " + id, PlayCount: 100}
	}
	return out
}

func TestGetWithinTTLFetchesOnce(t *testing.T) {
	src := &fakeSource{entries: entries("a", "b")}
	h := NewHotList(src, time.Hour, "popular", nil)

	if _, err := h.Get(context.Background(), 20, 1, ""); err != nil {
		t.Fatalf("first Get: %v", err)
	}
	if _, err := h.Get(context.Background(), 20, 1, ""); err != nil {
		t.Fatalf("second Get: %v", err)
	}

	if src.calls() != 1 {
		t.Errorf("upstream fetches = %d, want 1", src.calls())
	}
}

func TestGetAfterTTLExpiryRefreshes(t *testing.T) {
	src := &fakeSource{entries: entries("a")}
	h := NewHotList(src, 10*time.Millisecond, "popular", nil)

	h.Get(context.Background(), 20, 1, "")
	time.Sleep(20 * time.Millisecond)
	h.Get(context.Background(), 20, 1, "")

	if src.calls() != 2 {
		t.Errorf("upstream fetches = %d, want 2", src.calls())
	}
}

func TestKeywordOverrideForcesRefresh(t *testing.T) {
	src := &fakeSource{entries: entries("a")}
	h := NewHotList(src, time.Hour, "popular", nil)

	h.Get(context.Background(), 20, 1, "")
	h.Get(context.Background(), 20, 1, "jazz")

	if src.calls() != 2 {
		t.Errorf("upstream fetches = %d, want 2", src.calls())
	}
}

func TestStaleServeOnRefreshFailure(t *testing.T) {
	src := &fakeSource{entries: entries("a", "b")}
	h := NewHotList(src, 10*time.Millisecond, "popular", nil)

	got, err := h.Get(context.Background(), 20, 1, "")
	if err != nil || len(got) != 2 {
		t.Fatalf("initial Get = %v entries, err %v", len(got), err)
	}

	src.fail(errors.New("upstream down"))
	time.Sleep(20 * time.Millisecond)

	got, err = h.Get(context.Background(), 20, 1, "")
	if err != nil {
		t.Fatalf("stale Get returned error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("stale Get = %d entries, want prior 2", len(got))
	}
}

func TestKeywordOverrideFailureServesStale(t *testing.T) {
	src := &fakeSource{entries: entries("a", "b")}
	h := NewHotList(src, time.Hour, "popular", nil)

	if _, err := h.Get(context.Background(), 20, 1, ""); err != nil {
		t.Fatalf("initial Get: %v", err)
	}

	src.fail(errors.New("upstream down"))

	got, err := h.Get(context.Background(), 20, 1, "jazz")
	if err != nil {
		t.Fatalf("override Get returned error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("override Get = %d entries, want prior 2", len(got))
	}
}

func TestErrorWhenNeverLoaded(t *testing.T) {
	src := &fakeSource{searchErr: errors.New("upstream down")}
	h := NewHotList(src, time.Hour, "popular", nil)

	if _, err := h.Get(context.Background(), 20, 1, ""); err == nil {
		t.Fatal("expected error when no prior successful fetch exists")
	}
}

func TestSortedByPlayCountStable(t *testing.T) {
	src := &fakeSource{entries: []models.CatalogEntry{
		{ID: "low", PlayCount: 10},
		{ID: "tie1", PlayCount: 50},
		{ID: "high", PlayCount: 90},
		{ID: "tie2", PlayCount: 50},
	}}
	h := NewHotList(src, time.Hour, "popular", nil)

	got, err := h.Get(context.Background(), 20, 1, "")
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"high", "tie1", "tie2", "low"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("entry %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestPagination(t *testing.T) {
	src := &fakeSource{entries: entries("a", "b", "c", "d", "e")}
	h := NewHotList(src, time.Hour, "popular", nil)

	page2, err := h.Get(context.Background(), 2, 2, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(page2) != 2 || page2[0].ID != "c" || page2[1].ID != "d" {
		t.Errorf("page 2 = %+v", page2)
	}

	beyond, err := h.Get(context.Background(), 2, 10, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(beyond) != 0 {
		t.Errorf("out-of-range page returned %d entries", len(beyond))
	}
}

func TestRefreshBroadcastsUpdate(t *testing.T) {
	src := &fakeSource{entries: entries("a", "b", "c")}
	rec := &eventRecorder{}
	h := NewHotList(src, time.Hour, "popular", rec)

	if err := h.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	got := rec.byType(models.EventHotSongsUpdated)
	if len(got) != 1 {
		t.Fatalf("hotSongsUpdated events = %d, want 1", len(got))
	}
	update, ok := got[0].Data.(models.HotSongsUpdate)
	if !ok {
		t.Fatalf("unexpected payload type %T", got[0].Data)
	}
	if update.Count != 3 {
		t.Errorf("Count = %d, want 3", update.Count)
	}
}

func TestFailedRefreshDoesNotBroadcast(t *testing.T) {
	src := &fakeSource{searchErr: errors.New("down")}
	rec := &eventRecorder{}
	h := NewHotList(src, time.Hour, "popular", rec)

	h.Refresh(context.Background())

	if len(rec.byType(models.EventHotSongsUpdated)) != 0 {
		t.Error("failed refresh must not announce an update")
	}
}
