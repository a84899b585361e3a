// Package player defines the collaborator interfaces through which the core
// observes and drives the host playback engine, plus an in-memory reference
// implementation used by the server binary and the tests.
package player

import "github.com/nbmusic/remote/internal/models"

// State is the raw playback state read from the provider. Duration may be NaN
// while the media element has not reported one yet.
type State struct {
	Playing  bool
	Position float64
	Duration float64
	Volume   int
	Mode     models.PlayMode
}

// Controls is the playback-control surface of the host player. All mutations
// go through this interface; nothing in the core touches player state directly.
type Controls interface {
	State() State
	SetVolume(v int)
	SeekTo(seconds float64)
	// PlayPause toggles playback. The underlying player exposes a single
	// toggle primitive; there is no separate force-pause.
	PlayPause()
	Next()
	Prev()
	SetIndex(i int)
}

// Playlist is the ordered song list owned by the host player. Append dedupes
// by song identifier: appending a song whose ID is already present returns the
// existing entry's index and false without inserting.
type Playlist interface {
	Songs() []models.Song
	Find(id string) (models.Song, int, bool)
	Append(song models.Song) (int, bool)
	Len() int
	// Index returns the current-song pointer, or -1 when the playlist is empty.
	Index() int
}

// Notifier is implemented by providers that can announce playlist mutations.
// When available the watcher consumes it instead of polling.
type Notifier interface {
	Changes() <-chan struct{}
}
