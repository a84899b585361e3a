package watcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nbmusic/remote/internal/models"
	"github.com/nbmusic/remote/internal/player"
)

type eventRecorder struct {
	events chan models.Event
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{events: make(chan models.Event, 16)}
}

func (r *eventRecorder) Broadcast(eventType string, data any) {
	r.events <- models.Event{Type: eventType, Data: data}
}

func (r *eventRecorder) wait(t *testing.T) models.Event {
	t.Helper()
	select {
	case ev := <-r.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return models.Event{}
	}
}

// plainPlaylist is a Playlist without change notifications, forcing the
// watcher onto its polling fallback.
type plainPlaylist struct {
	mu    sync.Mutex
	songs []models.Song
}

func (p *plainPlaylist) Songs() []models.Song {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Song, len(p.songs))
	copy(out, p.songs)
	return out
}

func (p *plainPlaylist) Find(id string) (models.Song, int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, s := range p.songs {
		if s.ID == id {
			return s, i, true
		}
	}
	return models.Song{}, -1, false
}

func (p *plainPlaylist) Append(song models.Song) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.songs = append(p.songs, song)
	return len(p.songs) - 1, true
}

func (p *plainPlaylist) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.songs)
}

func (p *plainPlaylist) Index() int { return -1 }

func TestNotifiedWatcherEmitsPlaylistUpdate(t *testing.T) {
	provider := player.NewLocal()
	rec := newEventRecorder()
	w := New(provider, rec, time.Hour) // interval unused on the notified path

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	provider.Append(models.Song{ID: "abc", Title: "Song A"})

	ev := rec.wait(t)
	if ev.Type != models.EventPlaylistUpdated {
		t.Fatalf("event = %q, want playlistUpdated", ev.Type)
	}
	update := ev.Data.(models.PlaylistUpdate)
	if len(update.Playlist) != 1 || update.Playlist[0].ID != "abc" {
		t.Errorf("update = %+v", update)
	}
}

func TestPollingWatcherDetectsLengthChange(t *testing.T) {
	playlist := &plainPlaylist{}
	rec := newEventRecorder()
	w := New(playlist, rec, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	playlist.Append(models.Song{ID: "abc"})

	ev := rec.wait(t)
	if ev.Type != models.EventPlaylistUpdated {
		t.Fatalf("event = %q, want playlistUpdated", ev.Type)
	}
}

func TestWatcherQuietWhenLengthStable(t *testing.T) {
	playlist := &plainPlaylist{}
	playlist.Append(models.Song{ID: "abc"})
	rec := newEventRecorder()
	w := New(playlist, rec, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	select {
	case ev := <-rec.events:
		t.Fatalf("unexpected event %q for unchanged playlist", ev.Type)
	case <-time.After(100 * time.Millisecond):
		// success
	}
}

func TestWatcherEmitsOncePerChange(t *testing.T) {
	playlist := &plainPlaylist{}
	rec := newEventRecorder()
	w := New(playlist, rec, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	playlist.Append(models.Song{ID: "abc"})
	rec.wait(t)

	// Watermark updated; no further events until the next change.
	select {
	case ev := <-rec.events:
		t.Fatalf("unexpected second event %q", ev.Type)
	case <-time.After(100 * time.Millisecond):
		// success
	}

	playlist.Append(models.Song{ID: "def"})
	ev := rec.wait(t)
	update := ev.Data.(models.PlaylistUpdate)
	if len(update.Playlist) != 2 {
		t.Errorf("playlist length in update = %d, want 2", len(update.Playlist))
	}
}
