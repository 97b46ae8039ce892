package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/relaycore/relay-server/internal/core"
	"github.com/relaycore/relay-server/internal/store"
)

// APIHandlers provides the REST endpoints next to the WebSocket relay.
type APIHandlers struct {
	registry     *core.Registry
	store        store.MessageStore
	log          *zerolog.Logger
	historyLimit int
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(registry *core.Registry, st store.MessageStore, logger *zerolog.Logger, historyLimit int) *APIHandlers {
	return &APIHandlers{
		registry:     registry,
		store:        st,
		log:          logger,
		historyLimit: historyLimit,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UsersResponse lists the currently connected usernames.
type UsersResponse struct {
	Users []string `json:"users"`
}

// HistoryMessage is one stored message in a history response.
type HistoryMessage struct {
	MessageID int64  `json:"message_id"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
	TS        int64  `json:"ts"`
}

// HistoryResponse is the stored conversation between two users, oldest first.
type HistoryResponse struct {
	Messages []HistoryMessage `json:"messages"`
}

// Users handles GET /api/users.
func (h *APIHandlers) Users(c *gin.Context) {
	c.JSON(http.StatusOK, UsersResponse{Users: h.registry.Snapshot()})
}

// History handles GET /api/history?user=A&peer=B&limit=N. Used by clients to
// backfill a conversation after (re)connecting; the relay never replays
// stored messages on its own.
func (h *APIHandlers) History(c *gin.Context) {
	user := c.Query("user")
	peer := c.Query("peer")
	if user == "" || peer == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user and peer are required"})
		return
	}

	limit := h.historyLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	messages, err := h.store.History(c.Request.Context(), user, peer, limit)
	if err != nil {
		h.log.Error().Err(err).Str("user", user).Str("peer", peer).Msg("history query failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "history unavailable"})
		return
	}

	out := make([]HistoryMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, HistoryMessage{
			MessageID: m.ID,
			Sender:    m.Sender,
			Recipient: m.Recipient,
			Message:   m.Body,
			TS:        m.CreatedAt.Unix(),
		})
	}
	c.JSON(http.StatusOK, HistoryResponse{Messages: out})
}

// Health handles GET /health.
func (h *APIHandlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
