package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/3Eeeecho/memoryshare/internal/config"
	"github.com/3Eeeecho/memoryshare/internal/models"
)

// ObjectStore 定义了准入事务和媒体管理依赖的对象存储操作
type ObjectStore interface {
	// 上传文件到 folder 下，返回可长期访问的 URL 和资源类型
	Upload(ctx context.Context, in UploadInput) (*Object, error)
	// 删除对象，ref.Key 为空时由实现尝试从 ref.URL 解析
	Delete(ctx context.Context, ref ObjectRef) error
	// 读取对象内容，调用方负责关闭
	Open(ctx context.Context, ref ObjectRef) (io.ReadCloser, error)
	// 从访问 URL 中解析对象 key，旧数据没有保存 key 时使用
	KeyFromURL(rawURL string) (string, bool)
	// 存储类型，用于日志
	Name() string
}

// BucketManager 基于存储桶的实现 (MinIO / OSS) 额外提供的能力，启动时确保桶存在
type BucketManager interface {
	IsBucketExist(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string) error
}

// UploadInput 上传参数
type UploadInput struct {
	Folder      string
	FileName    string // 原始文件名，仅用于推导扩展名
	Reader      io.Reader
	Size        int64
	ContentType string
}

// Object 上传成功后的对象信息
type Object struct {
	Key         string
	URL         string
	Kind        string // image / video / raw
	Size        int64
	ContentType string
}

// ObjectRef 定位一个已存在的对象
type ObjectRef struct {
	Key  string
	URL  string
	Kind string
}

// RefFromMedia 从媒体记录构造对象引用
func RefFromMedia(m *models.Media) ObjectRef {
	return ObjectRef{Key: m.StorageKey, URL: m.FileURL, Kind: m.FileType}
}

// KindOf 由 MIME 类型推导资源类型
func KindOf(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(ct, "image/"):
		return models.MediaKindImage
	case strings.HasPrefix(ct, "video/"), strings.HasPrefix(ct, "audio/"):
		return models.MediaKindVideo
	default:
		return models.MediaKindRaw
	}
}

// SpaceFolder 空间在对象存储中的目录，例如 memoryshare/<spaceID>
func SpaceFolder(root, spaceID string) string {
	root = strings.Trim(root, "/")
	if root == "" {
		return spaceID
	}
	return root + "/" + spaceID
}

// objectKey 为桶式存储生成不重复的对象名，保留原始扩展名
func objectKey(folder, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	if len(ext) > 10 {
		ext = ""
	}
	return fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), uuid.NewString(), ext)
}

// resolveKey 优先使用保存的 key，否则从 URL 解析
func resolveKey(s ObjectStore, ref ObjectRef) (string, error) {
	if ref.Key != "" {
		return ref.Key, nil
	}
	if key, ok := s.KeyFromURL(ref.URL); ok {
		return key, nil
	}
	return "", fmt.Errorf("无法从 URL 解析对象 key: %q", ref.URL)
}

// NewObjectStore 按配置创建对象存储实现
func NewObjectStore(cfg *config.Config) (ObjectStore, error) {
	switch cfg.Storage.Type {
	case "", "cloudinary":
		return NewCloudinaryStore(&cfg.Cloudinary, cfg.Storage.RootFolder)
	case "minio":
		return NewMinIOStore(&cfg.MinIO, cfg.Storage.RootFolder)
	case "aliyun_oss":
		return NewAliyunOSSStore(&cfg.AliyunOSS, cfg.Storage.RootFolder)
	default:
		return nil, fmt.Errorf("未知的存储服务类型: %s", cfg.Storage.Type)
	}
}
