package websocket

import "github.com/Dhrubajit-says/FormForge/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventReady Event = "ready"
	EventFeed  Event = "feed"
	EventError Event = "error"
	EventPong  Event = "pong"
)

// ReadyResponse confirms the subscription to a template's feed.
type ReadyResponse struct {
	Event      Event  `json:"event"`
	TemplateID string `json:"template_id"`
}

// FeedResponse relays one submission, grading or deletion.
type FeedResponse struct {
	Event Event           `json:"event"`
	Data  model.FeedEvent `json:"data"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
