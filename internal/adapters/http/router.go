package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/avask/pulse/internal/adapters/signal"
	"github.com/avask/pulse/internal/app"
	"github.com/avask/pulse/internal/config"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware issues the opaque per-connection id. The cookie
// survives reloads so a browser keeps its id across reconnects.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// SetupRouter wires the WS endpoint and the read-only inspection API over
// the coordinator state.
func SetupRouter(ctx context.Context, cfg *config.Config, coord *app.Coordinator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("PulseSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	api.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"online_users": coord.Registry.OnlineCount()})
	})

	// GET /api/rooms — live broadcast scopes with member counts
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": coord.Rooms.List()})
	})

	// GET /api/voice/channels — active calls
	api.GET("/voice/channels", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"calls": coord.Voice.ActiveCalls()})
	})

	// GET /api/voice/channels/:id/users — one channel's roster
	api.GET("/voice/channels/:id/users", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"users": coord.Voice.Roster(c.Param("id"))})
	})

	ctl := signal.NewController(cfg, coord)
	api.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws endpoint hit")
		ctl.HandleSignal(ctx, c)
	})

	return r
}
