package api

import (
	"fmt"
	"time"

	cocktailHandler "mixologist/internal/api/handlers/cocktail"
	favoritesHandler "mixologist/internal/api/handlers/favorites"
	"mixologist/internal/api/handlers/health"
	"mixologist/internal/api/middleware"
	"mixologist/internal/app"
	"mixologist/internal/infrastructure/config"
	"mixologist/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// 請求體大小限制 (1MB)
const maxBodySize = 1 << 20

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, services *app.Services) (*gin.Engine, error) {
	if services == nil || services.Aggregator == nil || services.Favorites == nil {
		return nil, fmt.Errorf("services are not initialized")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID))) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 健康檢查路由
	var (
		queue health.QueueReporter
		stats health.CacheReporter
	)
	if services.Queue != nil {
		queue = services.Queue
	}
	if services.AI != nil {
		stats = services.AI
	}
	healthHandler := health.NewHandler(cfg.App.Version, services.Favorites, queue, stats)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	cocktails := cocktailHandler.NewHandler(services.Aggregator, services.Images)
	favorites := favoritesHandler.NewHandler(services.Favorites)
	dedup := middleware.NewDeduplicator(cfg.DedupWindow)

	// API 路由組
	api := router.Group("/api/v1")
	api.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	{
		cocktailGroup := api.Group("/cocktails")
		{
			cocktailGroup.GET("/search", cocktails.HandleSearch)
			cocktailGroup.GET("/search/stream", cocktails.HandleSearchStream)
			cocktailGroup.POST("/image", cocktails.HandleImage)
		}

		favoriteGroup := api.Group("/favorites")
		{
			favoriteGroup.GET("", favorites.HandleList)
			favoriteGroup.GET("/:name", favorites.HandleGet)
			favoriteGroup.GET("/:name/exists", favorites.HandleExists)
			favoriteGroup.PUT("", favorites.HandlePut)
			favoriteGroup.DELETE("/:name", favorites.HandleDelete)
			// 連點會讓收藏狀態來回切換
			favoriteGroup.POST("/toggle", dedup.Middleware(), favorites.HandleToggle)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("generative_enabled", services.AI != nil),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
