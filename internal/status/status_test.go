package status

import (
	"testing"

	"github.com/nbmusic/remote/internal/models"
	"github.com/nbmusic/remote/internal/player"
)

func TestBuildEmptyProvider(t *testing.T) {
	l := player.NewLocal()

	snap := Build(l, l)

	if snap.CurrentSong != nil {
		t.Errorf("CurrentSong = %+v, want nil", snap.CurrentSong)
	}
	if snap.Duration != 0 {
		t.Errorf("Duration = %v, want 0 for unknown duration", snap.Duration)
	}
	if snap.IsPlaying {
		t.Error("IsPlaying = true, want false")
	}
	if snap.CurrentIndex != -1 {
		t.Errorf("CurrentIndex = %d, want -1", snap.CurrentIndex)
	}
	if snap.PlaylistLength != 0 {
		t.Errorf("PlaylistLength = %d, want 0", snap.PlaylistLength)
	}
	if snap.PlayMode != models.PlayModeSequential {
		t.Errorf("PlayMode = %q, want sequential", snap.PlayMode)
	}
	if snap.ServerTime.IsZero() {
		t.Error("ServerTime should be set")
	}
}

func TestBuildWithCurrentSong(t *testing.T) {
	l := player.NewLocal()
	l.Append(models.Song{
		ID:              "abc",
		Title:           "Song A",
		Artist:          "Artist A",
		ArtworkURL:      "https://example.com/a.jpg",
		AudioURL:        "https://example.com/a.m4a",
		DurationSeconds: 240,
	})
	l.SetIndex(0)

	snap := Build(l, l)

	if snap.CurrentSong == nil {
		t.Fatal("CurrentSong is nil")
	}
	if snap.CurrentSong.Title != "Song A" || snap.CurrentSong.ID != "abc" {
		t.Errorf("CurrentSong = %+v", snap.CurrentSong)
	}
	if snap.Duration != 240 {
		t.Errorf("Duration = %v, want 240", snap.Duration)
	}
	if snap.PlaylistLength != 1 || snap.CurrentIndex != 0 {
		t.Errorf("PlaylistLength = %d, CurrentIndex = %d", snap.PlaylistLength, snap.CurrentIndex)
	}
}

func TestBuildProjectsOnlySummaryFields(t *testing.T) {
	l := player.NewLocal()
	l.Append(models.Song{ID: "abc", Title: "Song A", Artist: "A", AudioURL: "https://example.com/a.m4a", DurationSeconds: 60})
	l.SetIndex(0)

	snap := Build(l, l)

	// The snapshot projection carries metadata only, never the media URL.
	if snap.CurrentSong.ID != "abc" || snap.CurrentSong.Title != "Song A" {
		t.Errorf("unexpected projection: %+v", snap.CurrentSong)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"negative", -5, 0},
		{"zero", 0, 0},
		{"positive", 42.5, 42.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitize(tt.in); got != tt.want {
				t.Errorf("sanitize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
