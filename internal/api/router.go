package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/tubehub/api/docs"
	"github.com/tubehub/api/internal/api/handler"
	"github.com/tubehub/api/internal/api/middleware"
	"github.com/tubehub/api/internal/core/ports"
)

// Deps is everything the router needs to serve requests.
type Deps struct {
	Log        zerolog.Logger
	Production bool
	CORSOrigin string

	Auth     ports.AuthService
	Accounts ports.AccountService
	Videos   ports.VideoService
	Verifier ports.TokenVerifier
	Users    ports.PublicUserFinder

	// Readiness maps dependency names to their ping checks.
	Readiness map[string]handler.PingFunc
	// Registry receives the HTTP metrics. A fresh registry is used when nil.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log, d.Production)

	registry := d.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.BodyLimit("16K"))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{corsOrigin(d.CORSOrigin)},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "tubehub",
		Subsystem:  "http",
		Registerer: registry,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, handler.CookieConfig{Secure: d.Production}, d.Log)
	userHandler := handler.NewUserHandler(d.Accounts)
	channelHandler := handler.NewChannelHandler(d.Accounts)
	adminHandler := handler.NewAdminHandler(d.Auth)
	videoHandler := handler.NewVideoHandler(d.Videos)

	session := middleware.Session(d.Verifier, d.Users)

	v1 := e.Group("/api/v1")

	users := v1.Group("/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.POST("/refresh-token", authHandler.RefreshToken)
	users.POST("/logout", authHandler.Logout, middleware.LenientSession(d.Verifier))
	users.GET("/current-user", userHandler.CurrentUser, session)
	users.PUT("/update-account", userHandler.UpdateAccount, session)
	users.PATCH("/change-password", authHandler.ChangePassword, session)

	channels := v1.Group("/channels")
	channels.PATCH("/update", channelHandler.UpdateChannel, session)
	channels.PATCH("/notification-settings", channelHandler.UpdateNotificationSettings, session)
	channels.GET("/:username", channelHandler.GetChannel)
	channels.GET("/:username/share", channelHandler.ShareLink)
	channels.GET("/:username/videos", videoHandler.ChannelVideos, middleware.OptionalSession(d.Verifier, d.Users))

	videos := v1.Group("/videos")
	videos.GET("", videoHandler.List)
	videos.POST("", videoHandler.Publish, session)
	videos.GET("/:videoId/share", videoHandler.Share)
	videos.GET("/:videoId", videoHandler.Watch, session)
	videos.PATCH("/:videoId", videoHandler.Update, session)
	videos.DELETE("/:videoId", videoHandler.Delete, session)
	videos.PATCH("/toggle-publish/:videoId", videoHandler.TogglePublish, session)

	admin := v1.Group("/admin", session, middleware.RequireAdmin())
	admin.DELETE("/users/:id/sessions", adminHandler.RevokeSessions)

	// --- Health checks (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Readiness).Readiness)

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{registry, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func corsOrigin(origin string) string {
	if origin == "" {
		return "*"
	}
	return origin
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
