// Package status builds client-facing snapshots of the live playback state.
package status

import (
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/nbmusic/remote/internal/models"
	"github.com/nbmusic/remote/internal/player"
)

// Build projects the provider state into an immutable StatusSnapshot. It is a
// total function: any unavailable field maps to its documented default
// (currentSong nil, duration 0) rather than an error.
func Build(c player.Controls, p player.Playlist) models.StatusSnapshot {
	st := c.State()

	snap := models.StatusSnapshot{
		IsPlaying:      st.Playing,
		CurrentTime:    sanitize(st.Position),
		Duration:       sanitize(st.Duration),
		Volume:         lo.Clamp(st.Volume, 0, 100),
		PlaylistLength: p.Len(),
		CurrentIndex:   p.Index(),
		PlayMode:       st.Mode,
		ServerTime:     time.Now().UTC(),
	}
	if snap.PlayMode == "" {
		snap.PlayMode = models.PlayModeSequential
	}

	if songs := p.Songs(); snap.CurrentIndex >= 0 && snap.CurrentIndex < len(songs) {
		summary := songs[snap.CurrentIndex].Summary()
		snap.CurrentSong = &summary
	}

	return snap
}

// sanitize maps NaN/Inf/negative readings from the media element to 0.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
