package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nbmusic/remote/internal/catalog"
	"github.com/nbmusic/remote/internal/gateway"
	"github.com/nbmusic/remote/internal/hub"
	"github.com/nbmusic/remote/internal/models"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	// Remote controllers connect from companion apps and local UIs; access
	// control is out of scope for this server.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler serves the push channel. Every connection receives a welcome
// event and an initial snapshot, then may issue the same commands as the
// request channel plus per-connection status and search queries.
type WSHandler struct {
	hub     *hub.Hub
	gateway *gateway.Gateway
	source  catalog.Source
}

// NewWSHandler wires the push-channel handler.
func NewWSHandler(h *hub.Hub, gw *gateway.Gateway, source catalog.Source) *WSHandler {
	return &WSHandler{hub: h, gateway: gw, source: source}
}

// wsMessage is an inbound push-channel frame.
type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type wsControlPayload struct {
	Action string   `json:"action"`
	Value  *float64 `json:"value,omitempty"`
	Index  *int     `json:"index,omitempty"`
	BVID   string   `json:"bvid,omitempty"`
}

type wsPlayPayload struct {
	BVID   string `json:"bvid"`
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Poster string `json:"poster,omitempty"`
}

type wsSearchPayload struct {
	Keyword string `json:"keyword"`
	Page    int    `json:"page,omitempty"`
}

// Serve upgrades the request and runs the connection's read loop until the
// client disconnects.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := h.hub.Register(hub.NewWebsocketConn(conn, wsWriteTimeout))
	defer h.hub.Unregister(client)

	client.Send(models.EventWelcome, models.WelcomeData{
		Message:    "Connected to NB Music remote control",
		ServerTime: time.Now().UTC(),
	})
	client.Send(models.EventCurrentStatus, h.gateway.Status())

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			client.Send(models.EventError, models.ErrorData{Message: "invalid message"})
			continue
		}

		h.handleMessage(r, client, msg)
	}
}

func (h *WSHandler) handleMessage(r *http.Request, client *hub.Client, msg wsMessage) {
	switch msg.Type {
	case "play":
		var p wsPlayPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.BVID == "" {
			client.Send(models.EventError, models.ErrorData{Message: "play requires a bvid"})
			return
		}
		_, err := h.gateway.Dispatch(r.Context(), models.Command{
			Kind:       models.CmdRemotePlay,
			Identifier: p.BVID,
			Title:      p.Title,
			Artist:     p.Artist,
			ArtworkURL: p.Poster,
			PlayNow:    true,
		})
		if err != nil {
			client.Send(models.EventError, models.ErrorData{Message: commandErrorMessage(err)})
		}

	case "control":
		var p wsControlPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.Action == "" {
			client.Send(models.EventError, models.ErrorData{Message: "control requires an action"})
			return
		}
		req := controlRequest{Action: p.Action, Value: p.Value, Index: p.Index, BVID: p.BVID}
		if _, err := h.gateway.Dispatch(r.Context(), req.toCommand()); err != nil {
			client.Send(models.EventError, models.ErrorData{Message: commandErrorMessage(err)})
		}

	case "status":
		// Replies only to the requesting connection.
		client.Send(models.EventStatusResponse, h.gateway.Status())

	case "search":
		var p wsSearchPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.Keyword == "" {
			client.Send(models.EventError, models.ErrorData{Message: "search requires a keyword"})
			return
		}
		entries, err := h.source.Search(r.Context(), p.Keyword, p.Page)
		if err != nil {
			slog.Warn("push-channel search failed",
				slog.String("keyword", p.Keyword),
				slog.Any("error", err))
			client.Send(models.EventError, models.ErrorData{Message: "search failed"})
			return
		}
		client.Send(models.EventSearchResults, map[string]any{
			"keyword": p.Keyword,
			"page":    p.Page,
			"results": entries,
		})

	default:
		client.Send(models.EventError, models.ErrorData{Message: "unknown message type: " + msg.Type})
	}
}

// commandErrorMessage strips internals from dispatch errors before they reach
// a push client.
func commandErrorMessage(err error) string {
	if gateway.IsClientError(err) {
		return err.Error()
	}
	return "command failed"
}
