package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/incognito-chat/backend/internal/service"
	"github.com/incognito-chat/backend/internal/token"
)

type RouterConfig struct {
	Auth           *service.AuthService
	Tokens         *token.Issuer
	Store          Pinger
	Logger         *slog.Logger
	AllowedOrigins []string
	ServiceName    string
	Version        string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestLogger(cfg.Logger),
		CORSMiddleware(cfg.AllowedOrigins, false),
	)

	auth := NewAuthHandler(cfg.Auth)
	health := NewHealthHandler(cfg.Store, cfg.ServiceName, cfg.Version)

	router.GET("/ping", Ping)
	router.GET("/health", health.Health)
	router.GET("/openapi.json", OpenAPIDoc)

	router.POST("/signup", auth.Signup)
	router.POST("/login", auth.Login)

	v1 := router.Group("/api/v1/auth")
	v1.POST("/signup", auth.Signup)
	v1.POST("/login", auth.Login)
	v1.GET("/me", AuthMiddleware(cfg.Tokens), auth.Me)

	return router
}
