package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"go.uber.org/zap"

	"github.com/3Eeeecho/memoryshare/internal/config"
	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
)

type AliyunOSSStore struct {
	client *oss.Client
	cfg    *config.AliyunOSSConfig // 阿里云OSS的配置信息
	base   string                  // https://<bucket>.<endpoint>/
}

// NewAliyunOSSStore 创建并返回一个 AliyunOSSStore 实例
func NewAliyunOSSStore(cfg *config.AliyunOSSConfig, _ string) (*AliyunOSSStore, error) {
	ossClient, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		logger.Error("初始化阿里云OSS客户端失败", zap.Error(err))
		return nil, fmt.Errorf("无法初始化阿里云OSS客户端: %w", err)
	}
	logger.Info("阿里云OSS客户端初始化成功", zap.String("endpoint", cfg.Endpoint))
	return &AliyunOSSStore{
		client: ossClient,
		cfg:    cfg,
		base:   ossBaseURL(cfg.Endpoint, cfg.BucketName, cfg.UseSSL),
	}, nil
}

// ossBaseURL 虚拟主机风格的访问地址
func ossBaseURL(endpoint, bucket string, useSSL bool) string {
	host := strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	scheme := "http://"
	if useSSL {
		scheme = "https://"
	}
	return scheme + bucket + "." + strings.TrimRight(host, "/") + "/"
}

func (s *AliyunOSSStore) Name() string { return "aliyun_oss" }

func (s *AliyunOSSStore) bucket() (*oss.Bucket, error) {
	b, err := s.client.Bucket(s.cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("获取OSS存储桶失败: %w", err)
	}
	return b, nil
}

func (s *AliyunOSSStore) Upload(ctx context.Context, in UploadInput) (*Object, error) {
	b, err := s.bucket()
	if err != nil {
		return nil, err
	}
	key := objectKey(in.Folder, in.FileName)
	if err := b.PutObject(key, in.Reader, oss.ContentType(in.ContentType), oss.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("阿里云OSS上传文件失败: %w", err)
	}
	// PutObject 不返回大小，这里使用传入的尺寸
	return &Object{
		Key:         key,
		URL:         s.base + key,
		Kind:        KindOf(in.ContentType),
		Size:        in.Size,
		ContentType: in.ContentType,
	}, nil
}

func (s *AliyunOSSStore) Delete(ctx context.Context, ref ObjectRef) error {
	key, err := resolveKey(s, ref)
	if err != nil {
		return err
	}
	b, err := s.bucket()
	if err != nil {
		return err
	}
	if err := b.DeleteObject(key, oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("阿里云OSS删除文件失败: %w", err)
	}
	return nil
}

func (s *AliyunOSSStore) Open(ctx context.Context, ref ObjectRef) (io.ReadCloser, error) {
	key, err := resolveKey(s, ref)
	if err != nil {
		return nil, err
	}
	b, err := s.bucket()
	if err != nil {
		return nil, err
	}
	reader, err := b.GetObject(key, oss.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("阿里云OSS获取文件失败: %w", err)
	}
	return reader, nil
}

func (s *AliyunOSSStore) KeyFromURL(rawURL string) (string, bool) {
	return keyAfterPrefix(s.base, rawURL)
}

func (s *AliyunOSSStore) IsBucketExist(_ context.Context, bucketName string) (bool, error) {
	found, err := s.client.IsBucketExist(bucketName)
	if err != nil {
		return false, fmt.Errorf("检查阿里云OSS存储桶存在性失败: %w", err)
	}
	return found, nil
}

func (s *AliyunOSSStore) MakeBucket(_ context.Context, bucketName string) error {
	if err := s.client.CreateBucket(bucketName, oss.ACL(oss.ACLPublicRead)); err != nil {
		return fmt.Errorf("创建阿里云OSS存储桶失败: %w", err)
	}
	logger.Info("阿里云OSS存储桶创建成功", zap.String("bucket", bucketName))
	return nil
}
