package player

import (
	"math"
	"sync"

	"github.com/samber/lo"

	"github.com/nbmusic/remote/internal/models"
)

// Local is an in-memory playback provider. It tracks state without driving a
// real audio pipeline and implements Controls, Playlist and Notifier.
type Local struct {
	mu       sync.Mutex
	playing  bool
	position float64
	duration float64
	volume   int
	mode     models.PlayMode
	songs    []models.Song
	index    int

	changes chan struct{}
}

// NewLocal creates an empty Local provider with volume 100 and sequential mode.
func NewLocal() *Local {
	return &Local{
		volume:   100,
		duration: math.NaN(),
		mode:     models.PlayModeSequential,
		index:    -1,
		changes:  make(chan struct{}, 1),
	}
}

// State returns a copy of the current playback state.
func (l *Local) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return State{
		Playing:  l.playing,
		Position: l.position,
		Duration: l.duration,
		Volume:   l.volume,
		Mode:     l.mode,
	}
}

func (l *Local) SetVolume(v int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.volume = lo.Clamp(v, 0, 100)
}

func (l *Local) SeekTo(seconds float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if math.IsNaN(l.duration) {
		return
	}
	l.position = lo.Clamp(seconds, 0, l.duration)
}

func (l *Local) PlayPause() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.index < 0 {
		return
	}
	l.playing = !l.playing
}

func (l *Local) Next() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.step(1)
}

func (l *Local) Prev() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.step(-1)
}

// step advances the pointer, wrapping at the playlist ends. No-op when empty;
// with no current selection the pointer lands on the first song regardless of
// mode.
func (l *Local) step(delta int) {
	if len(l.songs) == 0 {
		return
	}
	if l.index < 0 {
		l.index = 0
	} else if l.mode != models.PlayModeRepeatOne {
		l.index = (l.index + delta + len(l.songs)) % len(l.songs)
	}
	l.startCurrent()
}

func (l *Local) SetIndex(i int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.songs) {
		return
	}
	l.index = i
	l.startCurrent()
}

// startCurrent resets position/duration for the song under the pointer.
func (l *Local) startCurrent() {
	l.position = 0
	if d := l.songs[l.index].DurationSeconds; d > 0 {
		l.duration = float64(d)
	} else {
		l.duration = math.NaN()
	}
}

// SetMode switches the play mode.
func (l *Local) SetMode(m models.PlayMode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mode = m
}

// Songs returns a copy of the playlist.
func (l *Local) Songs() []models.Song {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Song, len(l.songs))
	copy(out, l.songs)
	return out
}

// Find locates a song by identifier.
func (l *Local) Find(id string) (models.Song, int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, s := range l.songs {
		if s.ID == id {
			return s, i, true
		}
	}
	return models.Song{}, -1, false
}

// Append adds a song unless one with the same identifier already exists, in
// which case the existing index is returned unchanged with appended false.
func (l *Local) Append(song models.Song) (int, bool) {
	l.mu.Lock()
	for i, s := range l.songs {
		if s.ID == song.ID {
			l.mu.Unlock()
			return i, false
		}
	}
	l.songs = append(l.songs, song)
	idx := len(l.songs) - 1
	l.mu.Unlock()

	l.notify()
	return idx, true
}

func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.songs)
}

func (l *Local) Index() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.index
}

// Changes returns a buffered(1) channel signaled on playlist mutation, so
// rapid mutations coalesce into a single notification.
func (l *Local) Changes() <-chan struct{} {
	return l.changes
}

func (l *Local) notify() {
	select {
	case l.changes <- struct{}{}:
	default:
	}
}
