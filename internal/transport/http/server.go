package http

import (
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ubet123/OrgFlow-sub000/internal/auth"
	"github.com/ubet123/OrgFlow-sub000/internal/chat"
	"github.com/ubet123/OrgFlow-sub000/internal/config"
	"github.com/ubet123/OrgFlow-sub000/internal/core"
)

// NewServer builds the HTTP server: REST message endpoints, the
// websocket presence/delivery channel and a health probe.
func NewServer(registry *core.Registry, service *chat.Service, jwtConfig *auth.JWTConfig, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	handlers := NewMessageHandlers(service, logger)
	limiter := newRateLimiter(cfg.SendRateLimit, time.Minute)
	api := router.Group("/message", AuthMiddleware(jwtConfig, logger))
	api.POST("/send/:counterpartId", RateLimitMiddleware(limiter, logger), handlers.Send)
	api.GET("/get/:counterpartId", handlers.Get)

	router.GET("/ws", gin.WrapH(NewWSHandler(registry, jwtConfig, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
