package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/3Eeeecho/memoryshare/internal/config"
	"github.com/3Eeeecho/memoryshare/internal/pkg/cache"
	"github.com/3Eeeecho/memoryshare/internal/pkg/lock"
	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
	"github.com/3Eeeecho/memoryshare/internal/pkg/metrics"
	"github.com/3Eeeecho/memoryshare/internal/pkg/payment"
	"github.com/3Eeeecho/memoryshare/internal/pkg/quota"
	"github.com/3Eeeecho/memoryshare/internal/repositories"
	"github.com/3Eeeecho/memoryshare/internal/router"
	"github.com/3Eeeecho/memoryshare/internal/services/account"
	"github.com/3Eeeecho/memoryshare/internal/services/gallery"
	"github.com/3Eeeecho/memoryshare/internal/setup"
)

type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redis.Client
}

// NewServer 负责构建所有依赖
func NewServer(cfg *config.Config) (*Server, error) {
	metrics.Init()

	// 初始化数据库连接
	mysqlDB, err := setup.InitMySQL(&cfg.MySQL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MySQL: %w", err)
	}

	// 初始化 Redis 连接
	redisClient, err := setup.InitRedis(context.Background(), &cfg.Redis)
	if err != nil {
		setup.CloseMySQLDB(mysqlDB)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	store, err := setup.InitStorage(cfg)
	if err != nil {
		setup.CloseMySQLDB(mysqlDB)
		setup.CloseRedis(redisClient)
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	locker, err := lock.New(cfg.Quota.Lock, redisClient, cfg.Quota.LockTTL)
	if err != nil {
		setup.CloseMySQLDB(mysqlDB)
		setup.CloseRedis(redisClient)
		return nil, fmt.Errorf("failed to initialize quota lock: %w", err)
	}

	//  初始化 Repositories
	redisCache := cache.NewRedisCache(redisClient)
	spaceRepo := repositories.NewCachedSpaceRepository(repositories.NewDBSpaceRepository(mysqlDB), redisCache)
	mediaRepo := repositories.NewMediaRepository(mysqlDB)
	userRepo := repositories.NewUserRepository(mysqlDB)
	paymentRepo := repositories.NewPaymentRepository(mysqlDB)

	//  初始化 Services
	tm := gallery.NewTransactionManager(mysqlDB)
	services := router.Services{
		Spaces:    gallery.NewSpaceService(spaceRepo, mediaRepo),
		Admission: gallery.NewAdmissionService(tm, spaceRepo, mediaRepo, store, gallery.AdmissionDeps{
			Locker:     locker,
			LockWait:   cfg.Quota.LockWait,
			RootFolder: cfg.Storage.RootFolder,
		}),
		Media: gallery.NewMediaService(spaceRepo, mediaRepo, store),
		Users: account.NewUserService(tm, userRepo, paymentRepo, account.UserPolicy{
			AllowEmailReassignment: cfg.Users.AllowEmailReassignment,
		}),
		Payments: account.NewPaymentService(tm, payment.NewPaystackClient(&cfg.Paystack),
			userRepo, spaceRepo, paymentRepo, cfg.Paystack.SecretKey,
			quota.NewPricing(cfg.Quota.Currency, cfg.Quota.Prices)),
	}

	// 初始化 Gin 引擎和注册路由
	engine := router.InitRouter(cfg, services)

	addr := ":" + cfg.Server.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		router:      engine,
		httpServer:  httpServer,
		db:          mysqlDB,
		redisClient: redisClient,
	}, nil
}

// Run 启动服务器，并处理优雅关机
func (s *Server) Run(ctx context.Context, stopChan chan os.Signal) {
	// 确保在应用关闭时，所有连接都被释放
	defer setup.CloseMySQLDB(s.db)
	defer setup.CloseRedis(s.redisClient)

	// 启动 HTTP 服务器
	go func() {
		logger.Info("Server is running", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// 等待停止信号
	select {
	case <-stopChan:
	case <-ctx.Done():
	}
	logger.Info("Shutting down server...")

	// 优雅关机，正在进行的上传有 5 秒时间完成
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	logger.Info("Server exited gracefully")
}
