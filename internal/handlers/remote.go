package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/nbmusic/remote/internal/catalog"
	"github.com/nbmusic/remote/internal/gateway"
	"github.com/nbmusic/remote/internal/hub"
	"github.com/nbmusic/remote/internal/models"
)

// serverVersion is reported by the server-status endpoint.
const serverVersion = "1.0.0"

// RemoteHandler serves the request channel: playback control, status,
// catalog search and playlist mutation.
type RemoteHandler struct {
	gateway   *gateway.Gateway
	hotList   *catalog.HotList
	source    catalog.Source
	hub       *hub.Hub
	startedAt time.Time
}

// NewRemoteHandler wires the request-channel handler.
func NewRemoteHandler(gw *gateway.Gateway, hotList *catalog.HotList, source catalog.Source, h *hub.Hub) *RemoteHandler {
	return &RemoteHandler{
		gateway:   gw,
		hotList:   hotList,
		source:    source,
		hub:       h,
		startedAt: time.Now().UTC(),
	}
}

// controlRequest is the body of POST /api/player/control.
type controlRequest struct {
	Action string   `json:"action"`
	Value  *float64 `json:"value,omitempty"`
	Index  *int     `json:"index,omitempty"`
	BVID   string   `json:"bvid,omitempty"`
}

// toCommand maps the transport-level control action onto a gateway command.
// Unknown actions pass through so the gateway rejects them uniformly.
func (c controlRequest) toCommand() models.Command {
	cmd := models.Command{Kind: c.Action, Index: c.Index, Identifier: c.BVID, Value: c.Value}
	switch c.Action {
	case "playSong":
		if c.Index != nil {
			cmd.Kind = models.CmdPlayByIndex
		} else {
			cmd.Kind = models.CmdPlayByIdentifier
		}
	case "volume":
		cmd.Kind = models.CmdSetVolume
	case "setProgress":
		cmd.Kind = models.CmdSeek
	}
	return cmd
}

// playRequest is the body of POST /api/remote/play and /api/playlist/add.
type playRequest struct {
	BVID    string `json:"bvid"`
	Title   string `json:"title,omitempty"`
	Artist  string `json:"artist,omitempty"`
	Poster  string `json:"poster,omitempty"`
	PlayNow *bool  `json:"playNow,omitempty"`
}

// Control executes a playback-control action.
func (h *RemoteHandler) Control(w http.ResponseWriter, r *http.Request) {
	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Action == "" {
		writeFailure(w, http.StatusBadRequest, "missing required parameter: action")
		return
	}

	result, err := h.gateway.Dispatch(r.Context(), req.toCommand())
	if err != nil {
		writeCommandError(r.Context(), w, err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

// Status returns the current playback snapshot.
func (h *RemoteHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.gateway.Status())
}

// RemotePlay resolves a song and starts playing it (unless playNow is false).
func (h *RemoteHandler) RemotePlay(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePlayRequest(w, r)
	if !ok {
		return
	}

	playNow := true
	if req.PlayNow != nil {
		playNow = *req.PlayNow
	}

	result, err := h.gateway.Dispatch(r.Context(), models.Command{
		Kind:       models.CmdRemotePlay,
		Identifier: req.BVID,
		Title:      req.Title,
		Artist:     req.Artist,
		ArtworkURL: req.Poster,
		PlayNow:    playNow,
	})
	if err != nil {
		writeCommandError(r.Context(), w, err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

// AddToPlaylist resolves a song and appends it without changing the pointer.
func (h *RemoteHandler) AddToPlaylist(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePlayRequest(w, r)
	if !ok {
		return
	}

	result, err := h.gateway.Dispatch(r.Context(), models.Command{
		Kind:       models.CmdAddToPlaylist,
		Identifier: req.BVID,
		Title:      req.Title,
		Artist:     req.Artist,
		ArtworkURL: req.Poster,
	})
	if err != nil {
		writeCommandError(r.Context(), w, err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func decodePlayRequest(w http.ResponseWriter, r *http.Request) (playRequest, bool) {
	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return playRequest{}, false
	}
	if req.BVID == "" {
		writeFailure(w, http.StatusBadRequest, "missing required parameter: bvid")
		return playRequest{}, false
	}
	return req, true
}

// Search queries the upstream catalog by keyword.
func (h *RemoteHandler) Search(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		writeFailure(w, http.StatusBadRequest, "missing required parameter: keyword")
		return
	}
	page := queryInt(r, "page", 1)

	entries, err := h.source.Search(r.Context(), keyword, page)
	if err != nil {
		writeFailureWithCause(r.Context(), w, http.StatusBadGateway, "search failed", err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"songs":   entries,
		"keyword": keyword,
		"page":    page,
		"total":   len(entries),
	})
}

// HotSongs serves a page of the TTL-cached hot list.
func (h *RemoteHandler) HotSongs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	page := queryInt(r, "page", 1)
	keyword := r.URL.Query().Get("keyword")

	entries, err := h.hotList.Get(r.Context(), limit, page, keyword)
	if err != nil {
		writeFailureWithCause(r.Context(), w, http.StatusBadGateway, "failed to fetch hot songs", err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"songs": entries,
		"total": len(entries),
		"page":  page,
		"limit": limit,
	})
}

// ServerStatus reports server health and connection/cache counters.
func (h *RemoteHandler) ServerStatus(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]any{
		"status":           "running",
		"version":          serverVersion,
		"startedAt":        h.startedAt,
		"connectedClients": h.hub.Count(),
		"cacheSize":        h.hotList.Count(),
		"lastCacheUpdate":  h.hotList.LastRefresh().UTC(),
	})
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	if value := r.URL.Query().Get(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
