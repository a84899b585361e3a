package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nbmusic/remote/internal/models"
)

// resolveOrReuse locates an existing song by identifier or resolves a new one
// and appends it. The returned appended flag is false on the reuse path. A
// per-identifier in-flight marker guarantees that two concurrent requests for
// the same unseen identifier produce exactly one playlist entry: the second
// caller waits for the first and then re-checks.
func (g *Gateway) resolveOrReuse(ctx context.Context, cmd models.Command) (models.Song, int, bool, error) {
	id := cmd.Identifier

	for {
		if song, idx, ok := g.playlist.Find(id); ok {
			return song, idx, false, nil
		}

		g.inflightMu.Lock()
		if pending, ok := g.inflight[id]; ok {
			g.inflightMu.Unlock()
			select {
			case <-pending:
				// The winner finished; loop to pick up its result, or
				// take over if it failed.
				continue
			case <-ctx.Done():
				return models.Song{}, -1, false, ctx.Err()
			}
		}
		marker := make(chan struct{})
		g.inflight[id] = marker
		g.inflightMu.Unlock()

		song, idx, appended, err := g.resolveAndAppend(ctx, cmd)

		g.inflightMu.Lock()
		delete(g.inflight, id)
		g.inflightMu.Unlock()
		close(marker)

		return song, idx, appended, err
	}
}

// resolveAndAppend fetches media URLs for a new identifier, probes the
// primary, and appends the constructed song.
func (g *Gateway) resolveAndAppend(ctx context.Context, cmd models.Command) (models.Song, int, bool, error) {
	urls, err := g.source.ResolveMediaURLs(ctx, cmd.Identifier)
	if err != nil {
		return models.Song{}, -1, false, &ResolutionError{ID: cmd.Identifier, Err: err}
	}

	song := models.Song{
		ID:          cmd.Identifier,
		Title:       cmd.Title,
		Artist:      cmd.Artist,
		ArtworkURL:  cmd.ArtworkURL,
		AudioURL:    g.probeAudioURL(ctx, urls.Primary, urls.Fallback),
		AuxStreamID: urls.AuxStreamID,
		FromRemote:  true,
		AddedAt:     time.Now().UTC(),
	}
	if song.Title == "" {
		song.Title = fmt.Sprintf("Video %s", cmd.Identifier)
	}
	if song.Artist == "" {
		song.Artist = "Unknown Artist"
	}

	idx, appended := g.playlist.Append(song)
	return song, idx, appended, nil
}

// probeAudioURL checks the primary URL's reachability and falls back to the
// secondary on an access-denied response or a probe error. The probe error
// itself is never surfaced to the caller.
func (g *Gateway) probeAudioURL(ctx context.Context, primary, fallback string) string {
	req, err := http.NewRequestWithContext(ctx, "GET", primary, nil)
	if err != nil {
		return fallback
	}

	resp, err := g.probe.Do(req)
	if err != nil {
		slog.Debug("primary audio URL probe failed, using fallback", slog.Any("error", err))
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
		return fallback
	}
	return primary
}
