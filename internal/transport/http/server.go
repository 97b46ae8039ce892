package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/relaycore/relay-server/internal/config"
	"github.com/relaycore/relay-server/internal/core"
	"github.com/relaycore/relay-server/internal/store"
)

// NewServer builds the HTTP server carrying the WebSocket relay and the REST
// endpoints. The WebSocket handler is mounted on the stdlib mux: gin's
// response writer blocks the hijack the upgrade needs, so only the REST
// surface goes through gin.
func NewServer(cfg config.Config, registry *core.Registry, broadcaster *core.Broadcaster, st store.MessageStore, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	api := NewAPIHandlers(registry, st, logger, cfg.HistoryLimit)
	router.GET("/health", api.Health)
	router.GET("/api/users", api.Users)
	router.GET("/api/history", api.History)

	mux := stdhttp.NewServeMux()
	mux.Handle(wsPathPrefix, NewWSHandler(registry, broadcaster, st, logger, cfg.SessionBuffer, cfg.FrameLimit))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
