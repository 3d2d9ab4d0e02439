package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cuong200111/baitap-sub001/internal/auth"
	"github.com/cuong200111/baitap-sub001/internal/cartsvc"
)

type EngineConfig struct {
	Production     bool
	AllowedOrigins []string
	RateRPS        float64
	RateBurst      int
}

type Dependencies struct {
	Service   *cartsvc.Service
	JWT       *auth.JWTManager
	Customers auth.CustomerRepository
	// HealthChecks are pinged by GET /api/health, keyed by component name.
	HealthChecks map[string]func(context.Context) error
}

// New builds the storefront API engine with all routes mounted.
func New(cfg EngineConfig, deps Dependencies) *gin.Engine {
	r := InitEngine(cfg)
	h := NewHandler(deps)
	InitializeRoutes(r, h, NewRateLimiter(cfg.RateRPS, cfg.RateBurst))
	return r
}

func InitEngine(cfg EngineConfig) *gin.Engine {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	r := gin.Default()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	return r
}

func InitializeRoutes(r *gin.Engine, h *Handler, limiter *RateLimiter) {
	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		authGroup := api.Group("/auth")
		authGroup.Use(limiter.Middleware())
		{
			authGroup.POST("/login", h.Login)
		}

		cart := api.Group("/cart")
		cart.Use(limiter.Middleware())
		{
			cart.GET("", h.GetCart)
			cart.POST("", h.AddToCart)
			cart.DELETE("", h.ClearCart)
			cart.GET("/count", h.GetCartCount)
			cart.POST("/migrate", h.MigrateCart)
			cart.PUT("/:id", h.UpdateCartItem)
			cart.DELETE("/:id", h.RemoveCartItem)
		}

		buyNow := api.Group("/buy-now")
		buyNow.Use(limiter.Middleware())
		{
			buyNow.POST("", h.CreateBuyNowSession)
			buyNow.GET("/:id", h.GetBuyNowSession)
		}
	}
}
