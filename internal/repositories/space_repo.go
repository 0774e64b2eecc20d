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

// SpaceRepository defines the interface for space data access.
type SpaceRepository interface {
	Create(ctx context.Context, space *models.Space) error
	FindByID(ctx context.Context, id string) (*models.Space, error)
	FindBySlug(ctx context.Context, urlSlug string) (*models.Space, error)
	FindByUserID(ctx context.Context, userID string) (*models.Space, error)
	SlugExists(ctx context.Context, urlSlug string) (bool, error)
	UpdateVisibility(ctx context.Context, id string, isPublic bool) (*models.Space, error)
	// UpgradePlanByUserID 只修改当前套餐在 from 中的空间，返回被修改的空间
	UpgradePlanByUserID(ctx context.Context, userID, plan string, from []string) ([]models.Space, error)
	// Evict 使缓存失效，在事务提交之后调用
	Evict(ctx context.Context, spaces ...models.Space)
	// WithTx 返回绑定到事务的仓库，事务内的读写绕过缓存
	WithTx(tx *gorm.DB) SpaceRepository
}

type dbSpaceRepository struct {
	db *gorm.DB
}

var _ SpaceRepository = (*dbSpaceRepository)(nil)

// NewDBSpaceRepository creates a repository that talks to the database directly.
func NewDBSpaceRepository(db *gorm.DB) SpaceRepository {
	return &dbSpaceRepository{db: db}
}

func (r *dbSpaceRepository) WithTx(tx *gorm.DB) SpaceRepository {
	return &dbSpaceRepository{db: tx}
}

func (r *dbSpaceRepository) Create(ctx context.Context, space *models.Space) error {
	err := r.db.WithContext(ctx).Create(space).Error
	if err != nil {
		if IsDuplicateKey(err) {
			return fmt.Errorf("create space %q: %w", space.URLSlug, xerr.ErrSlugTaken)
		}
		logger.Error("Create: Failed to create space in DB", zap.String("urlSlug", space.URLSlug), zap.Error(err))
		return fmt.Errorf("failed to create space: %w", err)
	}
	return nil
}

func (r *dbSpaceRepository) findOne(ctx context.Context, query string, arg any) (*models.Space, error) {
	var space models.Space
	err := r.db.WithContext(ctx).Where(query, arg).Order("created_at DESC").First(&space).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.ErrSpaceNotFound
		}
		return nil, fmt.Errorf("failed to find space: %w", err)
	}
	return &space, nil
}

func (r *dbSpaceRepository) FindByID(ctx context.Context, id string) (*models.Space, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *dbSpaceRepository) FindBySlug(ctx context.Context, urlSlug string) (*models.Space, error) {
	return r.findOne(ctx, "url_slug = ?", urlSlug)
}

// FindByUserID 一个用户有多个空间时返回最新创建的
func (r *dbSpaceRepository) FindByUserID(ctx context.Context, userID string) (*models.Space, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

func (r *dbSpaceRepository) SlugExists(ctx context.Context, urlSlug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Space{}).Where("url_slug = ?", urlSlug).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return count > 0, nil
}

func (r *dbSpaceRepository) UpdateVisibility(ctx context.Context, id string, isPublic bool) (*models.Space, error) {
	res := r.db.WithContext(ctx).Model(&models.Space{}).Where("id = ?", id).Update("is_public", isPublic)
	if res.Error != nil {
		logger.Error("UpdateVisibility: Failed to update space", zap.String("spaceID", id), zap.Error(res.Error))
		return nil, fmt.Errorf("failed to update visibility: %w", res.Error)
	}
	// RowsAffected 在值未变化时 MySQL 返回 0，因此重新读取判断是否存在
	return r.FindByID(ctx, id)
}

func (r *dbSpaceRepository) UpgradePlanByUserID(ctx context.Context, userID, plan string, from []string) ([]models.Space, error) {
	spaces := make([]models.Space, 0)
	if len(from) == 0 {
		return spaces, nil
	}
	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ? AND plan IN ?", userID, from).Find(&spaces).Error; err != nil {
		return nil, fmt.Errorf("failed to find spaces: %w", err)
	}
	if len(spaces) == 0 {
		return spaces, nil
	}
	ids := make([]string, len(spaces))
	for i := range spaces {
		ids[i] = spaces[i].ID
		spaces[i].Plan = plan
	}
	if err := db.Model(&models.Space{}).Where("id IN ?", ids).Update("plan", plan).Error; err != nil {
		logger.Error("UpgradePlanByUserID: Failed to update plan", zap.String("userID", userID), zap.String("plan", plan), zap.Error(err))
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	return spaces, nil
}

func (r *dbSpaceRepository) Evict(context.Context, ...models.Space) {}
