package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/3Eeeecho/memoryshare/internal/models"
	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
)

// MediaRepository defines the interface for media data access.
type MediaRepository interface {
	Create(ctx context.Context, media *models.Media) error
	CountBySpace(ctx context.Context, spaceID string) (int64, error)
	SumSizeBySpace(ctx context.Context, spaceID string) (int64, error)
	ListBySpace(ctx context.Context, spaceID string) ([]models.Media, error)
	FindByIDInSpace(ctx context.Context, spaceID, mediaID string) (*models.Media, error)
	FindByIDsInSpace(ctx context.Context, spaceID string, mediaIDs []string) ([]models.Media, error)
	Delete(ctx context.Context, mediaID string) error
	WithTx(tx *gorm.DB) MediaRepository
}

type mediaRepository struct {
	db *gorm.DB
}

var _ MediaRepository = (*mediaRepository)(nil)

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) WithTx(tx *gorm.DB) MediaRepository {
	return &mediaRepository{db: tx}
}

func (r *mediaRepository) Create(ctx context.Context, media *models.Media) error {
	if err := r.db.WithContext(ctx).Create(media).Error; err != nil {
		logger.Error("Create: Failed to create media record",
			zap.String("spaceID", media.SpaceID),
			zap.String("fileName", media.FileName),
			zap.Error(err))
		return fmt.Errorf("failed to create media: %w", err)
	}
	return nil
}

func (r *mediaRepository) CountBySpace(ctx context.Context, spaceID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Media{}).Where("space_id = ?", spaceID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count media: %w", err)
	}
	return count, nil
}

func (r *mediaRepository) SumSizeBySpace(ctx context.Context, spaceID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Media{}).
		Select("COALESCE(SUM(file_size), 0)").
		Where("space_id = ?", spaceID).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum media size: %w", err)
	}
	return total, nil
}

// ListBySpace 按上传时间倒序，时间相同时按 id 保证顺序稳定
func (r *mediaRepository) ListBySpace(ctx context.Context, spaceID string) ([]models.Media, error) {
	media := make([]models.Media, 0)
	err := r.db.WithContext(ctx).
		Where("space_id = ?", spaceID).
		Order("uploaded_at DESC").Order("id DESC").
		Find(&media).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return media, nil
}

func (r *mediaRepository) FindByIDInSpace(ctx context.Context, spaceID, mediaID string) (*models.Media, error) {
	var media models.Media
	err := r.db.WithContext(ctx).Where("id = ? AND space_id = ?", mediaID, spaceID).First(&media).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.ErrMediaNotFound
		}
		return nil, fmt.Errorf("failed to find media: %w", err)
	}
	return &media, nil
}

func (r *mediaRepository) FindByIDsInSpace(ctx context.Context, spaceID string, mediaIDs []string) ([]models.Media, error) {
	media := make([]models.Media, 0, len(mediaIDs))
	if len(mediaIDs) == 0 {
		return media, nil
	}
	err := r.db.WithContext(ctx).Where("space_id = ? AND id IN ?", spaceID, mediaIDs).Find(&media).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find media: %w", err)
	}
	return media, nil
}

func (r *mediaRepository) Delete(ctx context.Context, mediaID string) error {
	res := r.db.WithContext(ctx).Where("id = ?", mediaID).Delete(&models.Media{})
	if res.Error != nil {
		logger.Error("Delete: Failed to delete media record", zap.String("mediaID", mediaID), zap.Error(res.Error))
		return fmt.Errorf("failed to delete media: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return xerr.ErrMediaNotFound
	}
	return nil
}
