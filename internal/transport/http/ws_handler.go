package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/relaycore/relay-server/internal/core"
	"github.com/relaycore/relay-server/internal/proto"
	"github.com/relaycore/relay-server/internal/store"
)

// wsPathPrefix is the route the session handler is mounted on. The claimed
// username is the remainder of the path.
const wsPathPrefix = "/ws/"

// WSHandler upgrades HTTP connections and binds each one to a registry slot
// for the lifetime of the session. It is a plain net/http handler: WebSocket
// upgrades hijack the connection, which wrapped response writers refuse.
type WSHandler struct {
	registry    *core.Registry
	broadcaster *core.Broadcaster
	store       store.MessageStore
	log         *zerolog.Logger
	buffer      int
	frameLimit  int
}

// NewWSHandler builds a new WebSocket session handler.
func NewWSHandler(registry *core.Registry, broadcaster *core.Broadcaster, st store.MessageStore, logger *zerolog.Logger, buffer, frameLimit int) *WSHandler {
	return &WSHandler{
		registry:    registry,
		broadcaster: broadcaster,
		store:       st,
		log:         logger,
		buffer:      buffer,
		frameLimit:  frameLimit,
	}
}

// ServeHTTP serves GET /ws/{username}.
func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	// An empty remainder still goes through Register so the client sees the
	// invalid-identity close code rather than a bare 404.
	username := strings.TrimPrefix(r.URL.Path, wsPathPrefix)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	session := core.NewSession(username, h.buffer)
	if err := h.registry.Register(session); err != nil {
		code, reason := rejectStatus(err)
		h.log.Info().Str("username", username).Int("code", int(code)).Msg("connection rejected")
		conn.Close(code, reason)
		return
	}

	logger := h.log.With().
		Str("username", session.Username).
		Str("conn_id", uuid.NewString()).
		Logger()

	// Release the slot exactly once, on every exit path.
	defer func() {
		h.registry.Unregister(session.Username)
		h.broadcaster.Announce()
		logger.Info().Msg("session closed")
	}()

	logger.Info().Msg("session opened")
	h.broadcaster.Announce()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	router := core.NewRouter(session, h.registry, h.store, logger)

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, router, logger)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, session, logger)
	}()

	err = <-errCh
	cancel() // stop the other loop
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			logger.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func rejectStatus(err error) (websocket.StatusCode, string) {
	switch {
	case errors.Is(err, core.ErrDuplicateIdentity):
		return websocket.StatusCode(core.CloseCodeDuplicateIdentity), "username already connected"
	case errors.Is(err, core.ErrInvalidIdentity):
		return websocket.StatusCode(core.CloseCodeInvalidIdentity), "username must not be empty"
	default:
		return websocket.StatusInternalError, "registration failed"
	}
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, router *core.Router, logger zerolog.Logger) error {
	limiter := newRateLimiter(h.frameLimit)
	stop := make(chan struct{})
	defer close(stop)
	limiter.startReset(stop)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if !limiter.allow() {
			logger.Warn().Msg("inbound frame rate limit exceeded, dropped")
			continue
		}

		var inbound proto.Inbound
		if err := json.Unmarshal(data, &inbound); err != nil {
			logger.Warn().Err(err).Msg("malformed frame dropped")
			continue
		}
		dispatch(ctx, router, inbound, logger)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, session *core.Session, logger zerolog.Logger) error {
	for {
		select {
		case ev := <-session.Events:
			if err := wsjson.Write(ctx, conn, outboundFromEvent(ev)); err != nil {
				logger.Error().Err(err).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
