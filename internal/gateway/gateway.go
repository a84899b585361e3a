// Package gateway validates inbound commands from both transports, applies
// them to the playback provider, and funnels the resulting state into
// broadcasts. All mutations are serialized through a single dispatch lock.
package gateway

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/nbmusic/remote/internal/catalog"
	"github.com/nbmusic/remote/internal/models"
	"github.com/nbmusic/remote/internal/player"
	"github.com/nbmusic/remote/internal/status"
)

// Broadcaster publishes an event to every registered push connection.
type Broadcaster interface {
	Broadcast(eventType string, data any)
}

// Gateway dispatches commands to the playback provider.
type Gateway struct {
	controls player.Controls
	playlist player.Playlist
	source   catalog.Source
	events   Broadcaster
	probe    *http.Client

	// dispatchMu serializes mutations so there is exactly one active
	// mutator of playlist/playback state at a time.
	dispatchMu sync.Mutex

	// inflight holds one marker per identifier currently being resolved,
	// preventing duplicate appends from concurrent requests.
	inflightMu sync.Mutex
	inflight   map[string]chan struct{}
}

// New creates a Gateway. probeTimeout bounds the media-URL reachability probe.
func New(controls player.Controls, playlist player.Playlist, source catalog.Source, events Broadcaster, probeTimeout time.Duration) *Gateway {
	return &Gateway{
		controls: controls,
		playlist: playlist,
		source:   source,
		events:   events,
		probe:    &http.Client{Timeout: probeTimeout},
		inflight: make(map[string]chan struct{}),
	}
}

// Status builds a fresh snapshot of the current playback state.
func (g *Gateway) Status() models.StatusSnapshot {
	return g.playbackSnapshot()
}

// PlaylistUpdate builds the playlist projection broadcast on list changes.
func (g *Gateway) PlaylistUpdate() models.PlaylistUpdate {
	songs := g.playlist.Songs()
	return models.PlaylistUpdate{
		Playlist:     lo.Map(songs, func(s models.Song, _ int) models.SongSummary { return s.Summary() }),
		CurrentIndex: g.playlist.Index(),
	}
}

// Dispatch validates and executes one command, returning the result for the
// direct caller. Successful mutations also broadcast to every registered
// connection; client errors cause neither state change nor broadcast.
func (g *Gateway) Dispatch(ctx context.Context, cmd models.Command) (any, error) {
	switch cmd.Kind {
	case models.CmdPlay, models.CmdPause, models.CmdNext, models.CmdPrev,
		models.CmdPlayByIndex, models.CmdPlayByIdentifier,
		models.CmdSetVolume, models.CmdSeek:
		return g.dispatchControl(cmd)
	case models.CmdRemotePlay:
		return g.remotePlay(ctx, cmd)
	case models.CmdAddToPlaylist:
		return g.addToPlaylist(ctx, cmd)
	default:
		return nil, clientErrorf("unknown command kind: %q", cmd.Kind)
	}
}

// dispatchControl applies a playback-control command and broadcasts the
// resulting snapshot. Out-of-range and not-found selectors are no-ops that
// still succeed.
func (g *Gateway) dispatchControl(cmd models.Command) (models.StatusSnapshot, error) {
	g.dispatchMu.Lock()
	defer g.dispatchMu.Unlock()

	switch cmd.Kind {
	case models.CmdPlay, models.CmdPause:
		// The player exposes a single toggle primitive; pause is an alias.
		g.controls.PlayPause()
	case models.CmdNext:
		g.controls.Next()
	case models.CmdPrev:
		g.controls.Prev()
	case models.CmdPlayByIndex:
		if cmd.Index == nil {
			return models.StatusSnapshot{}, clientErrorf("missing required parameter: index")
		}
		g.controls.SetIndex(*cmd.Index)
	case models.CmdPlayByIdentifier:
		if cmd.Identifier == "" {
			return models.StatusSnapshot{}, clientErrorf("missing required parameter: bvid")
		}
		if _, idx, ok := g.playlist.Find(cmd.Identifier); ok {
			g.controls.SetIndex(idx)
		}
	case models.CmdSetVolume:
		if cmd.Value == nil {
			return models.StatusSnapshot{}, clientErrorf("missing required parameter: value")
		}
		g.controls.SetVolume(lo.Clamp(int(*cmd.Value), 0, 100))
	case models.CmdSeek:
		if cmd.Value == nil {
			return models.StatusSnapshot{}, clientErrorf("missing required parameter: value")
		}
		g.seek(*cmd.Value)
	}

	snap := g.playbackSnapshot()
	g.events.Broadcast(models.EventPlaybackStateChange, snap)
	return snap, nil
}

// seek converts a 0-100 fraction into an absolute position. Unknown or NaN
// duration makes it a no-op.
func (g *Gateway) seek(fraction float64) {
	duration := g.controls.State().Duration
	if math.IsNaN(duration) || duration <= 0 {
		return
	}
	fraction = lo.Clamp(fraction, 0, 100)
	g.controls.SeekTo(fraction / 100 * duration)
}

// remotePlay resolves-or-reuses a song and optionally selects and plays it.
func (g *Gateway) remotePlay(ctx context.Context, cmd models.Command) (models.PlayResult, error) {
	if cmd.Identifier == "" {
		return models.PlayResult{}, clientErrorf("missing required parameter: bvid")
	}

	song, idx, _, err := g.resolveOrReuse(ctx, cmd)
	if err != nil {
		return models.PlayResult{}, err
	}

	g.dispatchMu.Lock()
	if cmd.PlayNow {
		g.controls.SetIndex(idx)
		if !g.controls.State().Playing {
			g.controls.PlayPause()
		}
	}
	result := models.PlayResult{
		Song:           song,
		SongIndex:      idx,
		PlaylistLength: g.playlist.Len(),
		Played:         cmd.PlayNow,
	}
	g.dispatchMu.Unlock()

	slog.Info("remote play",
		slog.String("bvid", song.ID),
		slog.String("title", song.Title),
		slog.Bool("playNow", cmd.PlayNow))

	g.events.Broadcast(models.EventRemotePlayStarted, models.RemotePlayStarted{
		Song:       song,
		FromRemote: true,
		Timestamp:  time.Now().UTC(),
	})
	return result, nil
}

// addToPlaylist resolves-or-reuses a song and appends it without moving the
// current-song pointer. Reusing an existing entry broadcasts nothing.
func (g *Gateway) addToPlaylist(ctx context.Context, cmd models.Command) (models.PlayResult, error) {
	if cmd.Identifier == "" {
		return models.PlayResult{}, clientErrorf("missing required parameter: bvid")
	}

	song, idx, appended, err := g.resolveOrReuse(ctx, cmd)
	if err != nil {
		return models.PlayResult{}, err
	}

	result := models.PlayResult{
		Song:           song,
		SongIndex:      idx,
		PlaylistLength: g.playlist.Len(),
	}

	if appended {
		g.events.Broadcast(models.EventPlaylistUpdated, g.PlaylistUpdate())
	}
	return result, nil
}

// playbackSnapshot builds the canonical snapshot via the snapshot builder.
func (g *Gateway) playbackSnapshot() models.StatusSnapshot {
	return status.Build(g.controls, g.playlist)
}
