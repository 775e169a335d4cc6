package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"artforge/internal/config"
	"artforge/internal/inspiration"
	"artforge/internal/middleware"
	"artforge/internal/service"
)

type authService interface {
	middleware.Authenticator
	Register(ctx context.Context, input service.RegisterInput) (service.AuthResult, error)
	Login(ctx context.Context, input service.LoginInput) (service.AuthResult, error)
	Refresh(ctx context.Context, input service.RefreshInput) (service.AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
}

type generationService interface {
	Generate(ctx context.Context, input service.GenerateInput) (service.GenerateResult, error)
}

type galleryService interface {
	List(ctx context.Context, ownerID string) ([]service.GalleryItem, error)
	Get(ctx context.Context, id, ownerID string) (service.GalleryItem, error)
	Delete(ctx context.Context, id, ownerID string) error
	Count(ctx context.Context, ownerID string) (int, error)
	Limit() int
}

type inspirationSource interface {
	Quotes(ctx context.Context, n int) []inspiration.Quote
	Backgrounds(n, width, height int) []inspiration.Background
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Services are the dependencies behind the HTTP surface. Cache may be nil.
type Services struct {
	Auth        authService
	Generation  generationService
	Gallery     galleryService
	Inspiration inspirationSource
	DB          pinger
	Cache       *redis.Client
}

type HandlerSet struct {
	log         zerolog.Logger
	cfg         *config.AppConfig
	auth        authService
	generation  generationService
	gallery     galleryService
	inspiration inspirationSource
	db          pinger
	cache       *redis.Client
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, svc Services) HandlerSet {
	return HandlerSet{
		log:         log,
		cfg:         cfg,
		auth:        svc.Auth,
		generation:  svc.Generation,
		gallery:     svc.Gallery,
		inspiration: svc.Inspiration,
		db:          svc.DB,
		cache:       svc.Cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)

		v1.GET("/styles", h.Styles)
	}

	protected := v1.Group("")
	protected.Use(middleware.Auth(h.auth))
	{
		protected.POST("/auth/logout", h.Logout)
		protected.GET("/auth/me", h.Me)

		protected.GET("/inspiration", h.Inspiration)

		images := protected.Group("/images")
		images.POST("", h.CreateImage)
		images.GET("", h.ListImages)
		images.GET("/count", h.CountImages)
		images.GET("/:id", h.GetImage)
		images.DELETE("/:id", h.DeleteImage)
	}
}
