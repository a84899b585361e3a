// Package models defines the wire types shared by the request channel,
// the push channel and the internal components.
package models

import "time"

// PlayMode describes how the playlist advances after a song ends.
type PlayMode string

const (
	PlayModeSequential PlayMode = "sequential"
	PlayModeRepeatOne  PlayMode = "repeat-one"
	PlayModeShuffle    PlayMode = "shuffle"
)

// Song is a fully resolved playlist entry. Immutable once built.
type Song struct {
	ID              string    `json:"bvid"`
	Title           string    `json:"title"`
	Artist          string    `json:"artist"`
	ArtworkURL      string    `json:"poster"`
	DurationSeconds int       `json:"duration,omitempty"`
	AudioURL        string    `json:"audio,omitempty"`
	AuxStreamID     string    `json:"cid,omitempty"`
	FromRemote      bool      `json:"fromRemote,omitempty"`
	AddedAt         time.Time `json:"addedAt,omitempty"`
}

// SongSummary is the trimmed projection of a Song used in snapshots and
// playlist broadcasts.
type SongSummary struct {
	ID         string `json:"bvid"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	ArtworkURL string `json:"poster"`
}

// Summary returns the client-facing projection of the song.
func (s Song) Summary() SongSummary {
	return SongSummary{ID: s.ID, Title: s.Title, Artist: s.Artist, ArtworkURL: s.ArtworkURL}
}

// CatalogEntry is a search or hot-list result from the upstream catalog.
type CatalogEntry struct {
	ID              string `json:"bvid"`
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	ArtworkURL      string `json:"poster"`
	DurationSeconds int    `json:"duration"`
	PlayCount       int64  `json:"playCount"`
	Description     string `json:"description,omitempty"`
}

// StatusSnapshot is a point-in-time projection of the playback state.
// It is constructed fresh for every request or broadcast and never mutated.
type StatusSnapshot struct {
	IsPlaying      bool         `json:"isPlaying"`
	CurrentTime    float64      `json:"currentTime"`
	Duration       float64      `json:"duration"`
	Volume         int          `json:"volume"`
	CurrentSong    *SongSummary `json:"currentSong"`
	PlaylistLength int          `json:"playlistLength"`
	CurrentIndex   int          `json:"currentIndex"`
	PlayMode       PlayMode     `json:"playMode"`
	ServerTime     time.Time    `json:"serverTime"`
}

// Command kinds accepted by the gateway, from either transport.
const (
	CmdPlay             = "play"
	CmdPause            = "pause"
	CmdNext             = "next"
	CmdPrev             = "prev"
	CmdPlayByIndex      = "playByIndex"
	CmdPlayByIdentifier = "playByIdentifier"
	CmdSetVolume        = "setVolume"
	CmdSeek             = "seek"
	CmdRemotePlay       = "remotePlay"
	CmdAddToPlaylist    = "addToPlaylist"
)

// Command is a gateway command record. Parameters that a given kind does not
// use are left at their zero values.
type Command struct {
	Kind       string   `json:"kind"`
	Index      *int     `json:"index,omitempty"`
	Identifier string   `json:"bvid,omitempty"`
	Value      *float64 `json:"value,omitempty"`
	Title      string   `json:"title,omitempty"`
	Artist     string   `json:"artist,omitempty"`
	ArtworkURL string   `json:"poster,omitempty"`
	PlayNow    bool     `json:"playNow,omitempty"`
}

// PlayResult is returned by remotePlay and addToPlaylist.
type PlayResult struct {
	Song           Song `json:"song"`
	SongIndex      int  `json:"songIndex"`
	PlaylistLength int  `json:"playlistLength"`
	Played         bool `json:"played"`
}

// Event is the envelope pushed to every registered connection.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Push event types.
const (
	EventWelcome             = "welcome"
	EventCurrentStatus       = "currentStatus"
	EventStatusResponse      = "statusResponse"
	EventRemotePlayStarted   = "remotePlayStarted"
	EventPlaylistUpdated     = "playlistUpdated"
	EventPlaybackStateChange = "playbackStateChanged"
	EventHotSongsUpdated     = "hotSongsUpdated"
	EventSearchResults       = "searchResults"
	EventError               = "error"
)

// WelcomeData is sent once per connection when the push channel opens.
type WelcomeData struct {
	Message    string    `json:"message"`
	ServerTime time.Time `json:"serverTime"`
}

// PlaylistUpdate is the payload of a playlistUpdated event.
type PlaylistUpdate struct {
	Playlist     []SongSummary `json:"playlist"`
	CurrentIndex int           `json:"currentIndex"`
}

// HotSongsUpdate announces a successful hot-list refresh. It deliberately
// carries only the count and timestamp, not the full list.
type HotSongsUpdate struct {
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RemotePlayStarted is the payload of a remotePlayStarted event.
type RemotePlayStarted struct {
	Song       Song      `json:"song"`
	FromRemote bool      `json:"fromRemote"`
	Timestamp  time.Time `json:"timestamp"`
}

// ErrorData is the only error shape push-channel clients ever see.
type ErrorData struct {
	Message string `json:"message"`
}

// APIResponse is the request-channel response envelope.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Message string    `json:"message,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError carries a failure code and a human-readable message.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
