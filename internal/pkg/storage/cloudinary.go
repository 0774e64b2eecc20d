package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"github.com/3Eeeecho/memoryshare/internal/config"
	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
	"github.com/3Eeeecho/memoryshare/internal/models"
)

// cloudinaryUploader 是 SDK 中实际用到的两个方法，测试时可以替换
type cloudinaryUploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type CloudinaryStore struct {
	api        cloudinaryUploader
	httpClient *http.Client
	publicID   *regexp.Regexp // 从 secure_url 中提取 public id
}

// NewCloudinaryStore 创建并返回一个 CloudinaryStore 实例
func NewCloudinaryStore(cfg *config.CloudinaryConfig, rootFolder string) (*CloudinaryStore, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("cloudinary 凭证不完整: 需要 cloud_name / api_key / api_secret")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		logger.Error("初始化 Cloudinary 客户端失败", zap.Error(err))
		return nil, fmt.Errorf("无法初始化 Cloudinary 客户端: %w", err)
	}
	logger.Info("Cloudinary 客户端初始化成功", zap.String("cloud", cfg.CloudName))
	return newCloudinaryStore(&cld.Upload, rootFolder), nil
}

func newCloudinaryStore(api cloudinaryUploader, rootFolder string) *CloudinaryStore {
	root := regexp.QuoteMeta(strings.Trim(rootFolder, "/"))
	return &CloudinaryStore{
		api:        api,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		publicID:   regexp.MustCompile(`(` + root + `/[^/]+/[^./?#]+)`),
	}
}

func (s *CloudinaryStore) Name() string { return "cloudinary" }

// Upload 以 resource_type=auto 上传，资源类型以 Cloudinary 的判断为准
func (s *CloudinaryStore) Upload(ctx context.Context, in UploadInput) (*Object, error) {
	res, err := s.api.Upload(ctx, in.Reader, uploader.UploadParams{
		Folder:       in.Folder,
		ResourceType: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary 上传文件失败: %w", err)
	}
	if res == nil {
		return nil, errors.New("cloudinary 上传文件失败: 空响应")
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary 上传文件失败: %s", res.Error.Message)
	}

	size := int64(res.Bytes)
	if size == 0 {
		size = in.Size
	}
	return &Object{
		Key:         res.PublicID,
		URL:         res.SecureURL,
		Kind:        normalizeCloudinaryKind(res.ResourceType, in.ContentType),
		Size:        size,
		ContentType: in.ContentType,
	}, nil
}

func normalizeCloudinaryKind(resourceType, contentType string) string {
	switch resourceType {
	case models.MediaKindImage, models.MediaKindVideo, models.MediaKindRaw:
		return resourceType
	default:
		return KindOf(contentType)
	}
}

// Delete 删除时必须带上正确的 resource_type，否则 Cloudinary 返回 not found
func (s *CloudinaryStore) Delete(ctx context.Context, ref ObjectRef) error {
	key, err := resolveKey(s, ref)
	if err != nil {
		return err
	}
	kind := ref.Kind
	if kind == "" {
		kind = models.MediaKindImage
	}
	res, err := s.api.Destroy(ctx, uploader.DestroyParams{
		PublicID:     key,
		ResourceType: kind,
	})
	if err != nil {
		return fmt.Errorf("cloudinary 删除文件失败: %w", err)
	}
	if res != nil && res.Error.Message != "" {
		return fmt.Errorf("cloudinary 删除文件失败: %s", res.Error.Message)
	}
	if res != nil && res.Result != "" && res.Result != "ok" {
		return fmt.Errorf("cloudinary 删除文件失败: result=%s", res.Result)
	}
	return nil
}

// Open 通过 secure_url 读取文件
func (s *CloudinaryStore) Open(ctx context.Context, ref ObjectRef) (io.ReadCloser, error) {
	if ref.URL == "" {
		return nil, errors.New("cloudinary 读取文件失败: 缺少 URL")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("cloudinary 读取文件失败: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudinary 读取文件失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("cloudinary 读取文件失败: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// KeyFromURL 例如 https://res.cloudinary.com/demo/image/upload/v1/memoryshare/<space>/abc.jpg -> memoryshare/<space>/abc
func (s *CloudinaryStore) KeyFromURL(rawURL string) (string, bool) {
	m := s.publicID.FindStringSubmatch(rawURL)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}
