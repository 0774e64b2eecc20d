package gallery

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/3Eeeecho/memoryshare/internal/models"
	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
	"github.com/3Eeeecho/memoryshare/internal/pkg/storage"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
)

func (s *mediaService) ArchiveSpace(ctx context.Context, userID, spaceID string) (string, io.ReadCloser, error) {
	space, err := s.ownedSpace(ctx, userID, spaceID)
	if err != nil {
		return "", nil, err
	}
	media, err := s.mediaRepo.ListBySpace(ctx, spaceID)
	if err != nil {
		return "", nil, fmt.Errorf("media service: %w: %w", xerr.ErrDatabaseError, err)
	}

	// 使用 pipe 流式压缩，不在内存或磁盘上落地整个压缩包
	pr, pw := io.Pipe()
	go func() {
		zw := zip.NewWriter(pw)
		names := make(map[string]int, len(media))
		for i := range media {
			if err := s.addToArchive(ctx, zw, &media[i], uniqueEntryName(names, media[i].FileName)); err != nil {
				logger.Error("ArchiveSpace: 写入压缩包失败", zap.String("spaceID", spaceID), zap.String("mediaID", media[i].ID), zap.Error(err))
				_ = zw.Close()
				pw.CloseWithError(err)
				return
			}
		}
		if err := zw.Close(); err != nil {
			pw.CloseWithError(fmt.Errorf("关闭 ZIP 写入器失败: %w", err))
			return
		}
		logger.Info("ArchiveSpace: ZIP creation finished", zap.String("spaceID", spaceID), zap.Int("files", len(media)))
		pw.Close()
	}()

	return space.URLSlug + ".zip", pr, nil
}

func (s *mediaService) addToArchive(ctx context.Context, zw *zip.Writer, media *models.Media, name string) error {
	rc, err := s.store.Open(ctx, storage.RefFromMedia(media))
	if err != nil {
		return fmt.Errorf("读取对象 %s 失败: %w", media.ID, err)
	}
	defer rc.Close()

	// 图片和视频本身已压缩，直接存储
	method := zip.Store
	if media.FileType == models.MediaKindRaw {
		method = zip.Deflate
	}
	header := &zip.FileHeader{
		Name:     name,
		Method:   method,
		Modified: media.UploadedAt,
	}
	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("为 %s 创建 ZIP 头失败: %w", name, err)
	}
	if _, err := io.Copy(w, rc); err != nil {
		return fmt.Errorf("复制 %s 内容到 ZIP 失败: %w", name, err)
	}
	return nil
}

// uniqueEntryName 同名文件追加 (1)、(2) 后缀
func uniqueEntryName(seen map[string]int, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	n, exists := seen[name]
	seen[name] = n + 1
	if !exists {
		return name
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if _, taken := seen[candidate]; !taken {
			seen[candidate] = 1
			return candidate
		}
		n++
		seen[name] = n + 1
	}
}
