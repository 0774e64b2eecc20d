package setup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/3Eeeecho/memoryshare/internal/config"
	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
	"github.com/3Eeeecho/memoryshare/internal/pkg/storage"
)

// InitStorage 按配置创建对象存储，基于存储桶的实现会确保桶存在
func InitStorage(cfg *config.Config) (storage.ObjectStore, error) {
	store, err := storage.NewObjectStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("初始化存储服务失败: %w", err)
	}
	logger.Info("存储服务已选择并初始化", zap.String("type", store.Name()))

	bm, ok := store.(storage.BucketManager)
	if !ok {
		return store, nil
	}

	bucketName := bucketOf(cfg)
	// 为外部调用使用带超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := EnsureBucket(ctx, bm, bucketName); err != nil {
		return nil, err
	}
	return store, nil
}

// EnsureBucket 检查存储桶是否存在，不存在时创建
func EnsureBucket(ctx context.Context, bm storage.BucketManager, bucketName string) error {
	exists, err := bm.IsBucketExist(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶存在性失败: %w", err)
	}
	if exists {
		logger.Info("存储桶已存在", zap.String("bucketName", bucketName))
		return nil
	}

	logger.Info("存储桶不存在，尝试创建...", zap.String("bucketName", bucketName))
	if err := bm.MakeBucket(ctx, bucketName); err != nil {
		return fmt.Errorf("创建存储桶失败: %w", err)
	}
	logger.Info("存储桶创建成功", zap.String("bucketName", bucketName))
	return nil
}

func bucketOf(cfg *config.Config) string {
	switch cfg.Storage.Type {
	case "aliyun_oss":
		return cfg.AliyunOSS.BucketName
	default:
		return cfg.MinIO.BucketName
	}
}
