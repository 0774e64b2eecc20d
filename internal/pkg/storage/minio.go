package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/3Eeeecho/memoryshare/internal/config"
	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
)

type MinIOStore struct {
	client *minio.Client
	cfg    *config.MinIOConfig // MinIO的配置信息
	base   string              // 对外访问前缀: <public_url 或 endpoint>/<bucket>/
}

// NewMinIOStore 创建并返回一个 MinIOStore 实例
func NewMinIOStore(cfg *config.MinIOConfig, _ string) (*MinIOStore, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL, // 根据配置决定是否使用 HTTPS
	})
	if err != nil {
		logger.Error("初始化 MinIO 客户端失败", zap.Error(err))
		return nil, fmt.Errorf("无法初始化 MinIO 客户端: %w", err)
	}

	logger.Info("MinIO 客户端初始化成功", zap.String("endpoint", cfg.Endpoint))
	return &MinIOStore{
		client: minioClient,
		cfg:    cfg,
		base:   bucketBaseURL(cfg.PublicURL, cfg.Endpoint, cfg.UseSSL, cfg.BucketName),
	}, nil
}

// bucketBaseURL 确保前缀带有 http:// 或 https://，并以 / 结尾
func bucketBaseURL(publicURL, endpoint string, useSSL bool, bucket string) string {
	base := strings.TrimRight(publicURL, "/")
	if base == "" {
		base = endpoint
		if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
			scheme := "http://"
			if useSSL {
				scheme = "https://"
			}
			base = scheme + base
		}
		base = strings.TrimRight(base, "/")
	}
	return base + "/" + bucket + "/"
}

func (s *MinIOStore) Name() string { return "minio" }

func (s *MinIOStore) Upload(ctx context.Context, in UploadInput) (*Object, error) {
	key := objectKey(in.Folder, in.FileName)
	info, err := s.client.PutObject(ctx, s.cfg.BucketName, key, in.Reader, in.Size, minio.PutObjectOptions{
		ContentType: in.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("MinIO 上传文件失败: %w", err)
	}
	return &Object{
		Key:         info.Key,
		URL:         s.base + info.Key,
		Kind:        KindOf(in.ContentType),
		Size:        info.Size,
		ContentType: in.ContentType,
	}, nil
}

func (s *MinIOStore) Delete(ctx context.Context, ref ObjectRef) error {
	key, err := resolveKey(s, ref)
	if err != nil {
		return err
	}
	opts := minio.RemoveObjectOptions{
		GovernanceBypass: true, // 如果需要，可以绕过保留策略
	}
	if err := s.client.RemoveObject(ctx, s.cfg.BucketName, key, opts); err != nil {
		return fmt.Errorf("MinIO 删除文件失败: %w", err)
	}
	return nil
}

func (s *MinIOStore) Open(ctx context.Context, ref ObjectRef) (io.ReadCloser, error) {
	key, err := resolveKey(s, ref)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.cfg.BucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("MinIO 获取文件失败: %w", err)
	}
	return obj, nil
}

func (s *MinIOStore) KeyFromURL(rawURL string) (string, bool) {
	return keyAfterPrefix(s.base, rawURL)
}

func (s *MinIOStore) IsBucketExist(ctx context.Context, bucketName string) (bool, error) {
	found, err := s.client.BucketExists(ctx, bucketName)
	if err != nil {
		return false, fmt.Errorf("检查 MinIO 存储桶存在性失败: %w", err)
	}
	return found, nil
}

func (s *MinIOStore) MakeBucket(ctx context.Context, bucketName string) error {
	err := s.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
	if err != nil {
		// 如果桶已存在，通常不是错误
		exists, errBucketExists := s.client.BucketExists(ctx, bucketName)
		if errBucketExists == nil && exists {
			logger.Info("MinIO 存储桶已存在，无需创建", zap.String("bucket", bucketName))
			return nil
		}
		return fmt.Errorf("创建 MinIO 存储桶失败: %w", err)
	}
	logger.Info("MinIO 存储桶创建成功", zap.String("bucket", bucketName))
	return nil
}

// keyAfterPrefix 去掉访问前缀得到对象 key，URL 中的转义字符会被还原
func keyAfterPrefix(base, rawURL string) (string, bool) {
	if !strings.HasPrefix(rawURL, base) {
		return "", false
	}
	key := strings.TrimPrefix(rawURL, base)
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}
	return key, key != ""
}
