package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/3Eeeecho/memoryshare/docs"
	"github.com/3Eeeecho/memoryshare/internal/config"
	"github.com/3Eeeecho/memoryshare/internal/handlers"
	"github.com/3Eeeecho/memoryshare/internal/middlewares"
	"github.com/3Eeeecho/memoryshare/internal/pkg/metrics"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
	"github.com/3Eeeecho/memoryshare/internal/services/account"
	"github.com/3Eeeecho/memoryshare/internal/services/gallery"
)

// Services 路由需要的全部服务
type Services struct {
	Spaces    gallery.SpaceService
	Admission gallery.AdmissionService
	Media     gallery.MediaService
	Users     account.UserService
	Payments  account.PaymentService
}

func InitRouter(cfg *config.Config, svc Services) *gin.Engine {
	// 设置 Gin 模式，开发环境为 DebugMode，生产环境为 ReleaseMode
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middlewares.Cors(cfg.Server.AllowedOrigins))

	// Health Check 路由
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireAuth := middlewares.AuthMiddleware(&cfg.JWT)
	optionalAuth := middlewares.OptionalAuth(&cfg.JWT)
	uploadLimiter := middlewares.NewIPRateLimiter(&cfg.RateLimit)

	api := router.Group("/api")

	spaces := api.Group("/spaces")
	{
		spaces.POST("", requireAuth, handlers.CreateSpace(svc.Spaces))
		spaces.GET("/user/:userId/spaceId", handlers.GetSpaceIDByUser(svc.Spaces))
		spaces.GET("/slug/:urlSlug", handlers.GetSpaceBySlug(svc.Spaces))
		spaces.GET("/id/:spaceId", handlers.GetSpaceByID(svc.Spaces))
		spaces.GET("/check-slug/:urlSlug", handlers.CheckSlug(svc.Spaces))
		spaces.PATCH("/:spaceId/mode", requireAuth, handlers.UpdateSpaceMode(svc.Spaces))
		spaces.GET("/:spaceId/usage", handlers.GetSpaceUsage(svc.Spaces))

		// 媒体
		spaces.POST("/:spaceId/media", uploadLimiter.Middleware(), limitBody(cfg.Server.MaxUploadMB), handlers.UploadMedia(svc.Admission))
		spaces.GET("/:spaceId/media", optionalAuth, handlers.ListMedia(svc.Media))
		spaces.GET("/:spaceId/media/archive", requireAuth, handlers.DownloadArchive(svc.Media))
		spaces.DELETE("/:spaceId/media", requireAuth, handlers.DeleteMediaBatch(svc.Media))
		spaces.DELETE("/:spaceId/media/:mediaId", requireAuth, handlers.DeleteMedia(svc.Media))

		// 支付
		spaces.POST("/paystack/initialize", handlers.InitializePayment(svc.Payments))
		spaces.POST("/paystack/webhook", handlers.PaystackWebhook(svc.Payments))
		spaces.POST("/verify-payment", handlers.VerifyPayment(svc.Payments))
	}

	userHandler := handlers.NewUserHandler(svc.Users)
	userGroup := api.Group("/user")
	{
		userGroup.GET("/:uid/exists", userHandler.UserExists)
		userGroup.POST("", requireAuth, userHandler.SaveUser)
	}

	router.NoRoute(func(c *gin.Context) {
		xerr.Error(c, http.StatusNotFound, xerr.NotFoundCode, "Route not found")
	})

	return router
}

// limitBody 限制上传请求体大小，单位 MB
func limitBody(maxMB int64) gin.HandlerFunc {
	if maxMB <= 0 {
		maxMB = 100
	}
	limit := maxMB << 20
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
