package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/3Eeeecho/memoryshare/internal/models"
	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
	"github.com/3Eeeecho/memoryshare/internal/pkg/metrics"
	"github.com/3Eeeecho/memoryshare/internal/pkg/storage"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
	"github.com/3Eeeecho/memoryshare/internal/repositories"
)

type MediaService interface {
	// ListMedia 按上传时间倒序。私密空间只对所有者可见，viewerID 为空表示匿名访客
	ListMedia(ctx context.Context, viewerID, spaceID string) ([]models.Media, error)
	DeleteMedia(ctx context.Context, userID, spaceID, mediaID string) error
	DeleteMediaBatch(ctx context.Context, userID, spaceID string, mediaIDs []string) (*models.DeleteMediaBatchResult, error)
	// ArchiveSpace 以 zip 流的形式打包空间内所有媒体，调用方负责关闭返回的 reader
	ArchiveSpace(ctx context.Context, userID, spaceID string) (string, io.ReadCloser, error)
}

type mediaService struct {
	spaceRepo repositories.SpaceRepository
	mediaRepo repositories.MediaRepository
	store     storage.ObjectStore
}

func NewMediaService(spaceRepo repositories.SpaceRepository, mediaRepo repositories.MediaRepository, store storage.ObjectStore) MediaService {
	return &mediaService{spaceRepo: spaceRepo, mediaRepo: mediaRepo, store: store}
}

func (s *mediaService) ListMedia(ctx context.Context, viewerID, spaceID string) ([]models.Media, error) {
	space, err := s.spaceRepo.FindByID(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if !space.IsPublic && space.UserID != viewerID {
		return nil, fmt.Errorf("media service: %w", xerr.ErrSpacePrivate)
	}
	media, err := s.mediaRepo.ListBySpace(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("media service: %w: %w", xerr.ErrDatabaseError, err)
	}
	return media, nil
}

// ownedSpace 校验空间存在且属于 userID
func (s *mediaService) ownedSpace(ctx context.Context, userID, spaceID string) (*models.Space, error) {
	space, err := s.spaceRepo.FindByID(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if space.UserID != userID {
		logger.Warn("Media access denied", zap.String("spaceID", spaceID), zap.String("userID", userID), zap.String("ownerID", space.UserID))
		return nil, fmt.Errorf("media service: %w", xerr.ErrPermissionDenied)
	}
	return space, nil
}

func (s *mediaService) DeleteMedia(ctx context.Context, userID, spaceID, mediaID string) error {
	if _, err := s.ownedSpace(ctx, userID, spaceID); err != nil {
		return err
	}
	media, err := s.mediaRepo.FindByIDInSpace(ctx, spaceID, mediaID)
	if err != nil {
		return err
	}
	return s.deleteOne(ctx, media)
}

func (s *mediaService) DeleteMediaBatch(ctx context.Context, userID, spaceID string, mediaIDs []string) (*models.DeleteMediaBatchResult, error) {
	if len(mediaIDs) == 0 {
		return nil, fmt.Errorf("media service: %w", xerr.ErrInvalidParams)
	}
	if _, err := s.ownedSpace(ctx, userID, spaceID); err != nil {
		return nil, err
	}
	found, err := s.mediaRepo.FindByIDsInSpace(ctx, spaceID, mediaIDs)
	if err != nil {
		return nil, fmt.Errorf("media service: %w: %w", xerr.ErrDatabaseError, err)
	}
	byID := make(map[string]*models.Media, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	result := &models.DeleteMediaBatchResult{Deleted: []string{}, NotFound: []string{}}
	seen := make(map[string]struct{}, len(mediaIDs))
	for _, id := range mediaIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		media, ok := byID[id]
		if !ok {
			result.NotFound = append(result.NotFound, id)
			continue
		}
		if err := s.deleteOne(ctx, media); err != nil {
			if errors.Is(err, xerr.ErrMediaNotFound) {
				result.NotFound = append(result.NotFound, id)
				continue
			}
			return nil, err
		}
		result.Deleted = append(result.Deleted, id)
	}
	logger.Info("DeleteMediaBatch: 批量删除完成",
		zap.String("spaceID", spaceID),
		zap.Int("deleted", len(result.Deleted)),
		zap.Int("notFound", len(result.NotFound)))
	return result, nil
}

// deleteOne 先删对象再删记录。对象删除失败不阻塞记录删除
func (s *mediaService) deleteOne(ctx context.Context, media *models.Media) error {
	if err := s.store.Delete(ctx, storage.RefFromMedia(media)); err != nil {
		metrics.OrphanedObjects.Inc()
		logger.Error("deleteOne: 删除对象失败，继续删除记录",
			zap.String("mediaID", media.ID),
			zap.String("key", media.StorageKey),
			zap.String("url", media.FileURL),
			zap.Error(err))
	}
	if err := s.mediaRepo.Delete(ctx, media.ID); err != nil {
		if errors.Is(err, xerr.ErrMediaNotFound) {
			return err
		}
		return fmt.Errorf("media service: %w: %w", xerr.ErrDatabaseError, err)
	}
	return nil
}
