// Package watcher detects playlist mutations the core cannot observe through
// its own command path. Providers that announce changes are consumed
// directly; everything else falls back to fixed-interval sampling of the
// playlist length.
package watcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/nbmusic/remote/internal/models"
	"github.com/nbmusic/remote/internal/player"
)

// Broadcaster publishes an event to every registered push connection.
type Broadcaster interface {
	Broadcast(eventType string, data any)
}

// Watcher emits playlistUpdated events when the playlist length moves past
// its last-observed watermark.
type Watcher struct {
	playlist player.Playlist
	events   Broadcaster
	interval time.Duration
	lastLen  int
}

// New creates a Watcher sampling at the given interval when the provider has
// no change notifications.
func New(playlist player.Playlist, events Broadcaster, interval time.Duration) *Watcher {
	return &Watcher{
		playlist: playlist,
		events:   events,
		interval: interval,
		lastLen:  playlist.Len(),
	}
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	if notifier, ok := w.playlist.(player.Notifier); ok {
		slog.Info("playlist watcher using change notifications")
		w.runNotified(ctx, notifier.Changes())
		return
	}

	slog.Info("playlist watcher polling", slog.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *Watcher) runNotified(ctx context.Context, changes <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			w.check()
		}
	}
}

// check compares the playlist length against the watermark and broadcasts the
// new projection when it moved.
func (w *Watcher) check() {
	length := w.playlist.Len()
	if length == w.lastLen {
		return
	}
	w.lastLen = length

	songs := w.playlist.Songs()
	w.events.Broadcast(models.EventPlaylistUpdated, models.PlaylistUpdate{
		Playlist:     lo.Map(songs, func(s models.Song, _ int) models.SongSummary { return s.Summary() }),
		CurrentIndex: w.playlist.Index(),
	})
}
