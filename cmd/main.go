package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/3Eeeecho/memoryshare/cmd/server"
	"github.com/3Eeeecho/memoryshare/internal/config"
	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
)

// @title memoryshare API
// @version 1.0
// @description 活动照片/视频收集服务：空间、媒体上传、套餐配额与 Paystack 支付
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("加载配置出错", zap.Error(err))
	}

	//初始化日志系统
	if dir := filepath.Dir(cfg.Log.OutputPath); dir != "." && dir != "" {
		if err = os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("初始化日志系统失败", zap.Error(err))
		}
	}
	logger.InitLogger(cfg.Log.OutputPath, cfg.Log.ErrorPath, cfg.Log.Level)
	defer logger.Sync() // 确保在应用退出时刷新所有缓冲的日志条目

	logger.Info("启动 memoryshare 服务...", zap.String("storage", cfg.Storage.Type))

	// 创建并构建应用服务器实例
	srv, err := server.NewServer(cfg)
	if err != nil {
		logger.Fatal("无法启动应用程序", zap.Error(err))
	}

	// 创建一个通道用于接收停止信号
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	srv.Run(context.Background(), stopChan)

	logger.Info("memoryshare 服务已退出。")
}
