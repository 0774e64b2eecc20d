package repositories

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/3Eeeecho/memoryshare/internal/models"
	"github.com/3Eeeecho/memoryshare/internal/pkg/cache"
	"github.com/3Eeeecho/memoryshare/internal/pkg/logger"
	"github.com/3Eeeecho/memoryshare/internal/pkg/mapper"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
)

// cachedSpaceRepository 在数据库仓库前加一层 Redis 哈希缓存，按 id 和 slug 两个键缓存同一份数据
type cachedSpaceRepository struct {
	next  SpaceRepository
	cache cache.Cache
}

var _ SpaceRepository = (*cachedSpaceRepository)(nil)

// NewCachedSpaceRepository creates a new cachedSpaceRepository instance.
func NewCachedSpaceRepository(next SpaceRepository, c cache.Cache) SpaceRepository {
	return &cachedSpaceRepository{next: next, cache: c}
}

// WithTx 事务里需要读到最新的套餐，直接返回数据库仓库
func (r *cachedSpaceRepository) WithTx(tx *gorm.DB) SpaceRepository {
	return r.next.WithTx(tx)
}

func (r *cachedSpaceRepository) Create(ctx context.Context, space *models.Space) error {
	if err := r.next.Create(ctx, space); err != nil {
		return err
	}
	// 清掉可能存在的"不存在"占位
	r.Evict(ctx, *space)
	r.store(ctx, space)
	return nil
}

func (r *cachedSpaceRepository) FindByID(ctx context.Context, id string) (*models.Space, error) {
	return r.lookup(ctx, cache.SpaceByIDKey(id), func() (*models.Space, error) {
		return r.next.FindByID(ctx, id)
	})
}

func (r *cachedSpaceRepository) FindBySlug(ctx context.Context, urlSlug string) (*models.Space, error) {
	return r.lookup(ctx, cache.SpaceBySlugKey(urlSlug), func() (*models.Space, error) {
		return r.next.FindBySlug(ctx, urlSlug)
	})
}

// FindByUserID 缓存 uid 到空间 id 的映射，空间数据复用按 id 的哈希缓存
func (r *cachedSpaceRepository) FindByUserID(ctx context.Context, userID string) (*models.Space, error) {
	key := cache.SpaceByUserKey(userID)
	var spaceID string
	err := r.cache.Get(ctx, key, &spaceID)
	if err == nil {
		space, findErr := r.FindByID(ctx, spaceID)
		if findErr == nil && space.UserID == userID {
			return space, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Error("FindByUserID: Error getting space id from cache", zap.String("key", key), zap.Error(err))
	}

	space, err := r.next.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, space.ID, cache.JitteredTTL()); err != nil {
		logger.Warn("FindByUserID: Failed to cache space id", zap.String("key", key), zap.Error(err))
	}
	return space, nil
}

func (r *cachedSpaceRepository) SlugExists(ctx context.Context, urlSlug string) (bool, error) {
	return r.next.SlugExists(ctx, urlSlug)
}

func (r *cachedSpaceRepository) UpdateVisibility(ctx context.Context, id string, isPublic bool) (*models.Space, error) {
	space, err := r.next.UpdateVisibility(ctx, id, isPublic)
	if err != nil {
		return nil, err
	}
	r.Evict(ctx, *space)
	return space, nil
}

func (r *cachedSpaceRepository) UpgradePlanByUserID(ctx context.Context, userID, plan string, from []string) ([]models.Space, error) {
	spaces, err := r.next.UpgradePlanByUserID(ctx, userID, plan, from)
	if err != nil {
		return nil, err
	}
	r.Evict(ctx, spaces...)
	return spaces, nil
}

func (r *cachedSpaceRepository) Evict(ctx context.Context, spaces ...models.Space) {
	if len(spaces) == 0 {
		return
	}
	keys := make([]string, 0, len(spaces)*3)
	for _, s := range spaces {
		keys = append(keys, cache.SpaceByIDKey(s.ID), cache.SpaceBySlugKey(s.URLSlug), cache.SpaceByUserKey(s.UserID))
	}
	if err := r.cache.Del(ctx, keys...); err != nil {
		logger.Error("Evict: Failed to delete space cache", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (r *cachedSpaceRepository) lookup(ctx context.Context, key string, load func() (*models.Space, error)) (*models.Space, error) {
	resultMap, err := r.cache.HGetAll(ctx, key)
	if err == nil {
		if _, ok := resultMap[cache.NotFoundMarker]; ok {
			return nil, xerr.ErrSpaceNotFound
		}
		space, mapErr := mapper.MapToSpace(resultMap)
		if mapErr == nil {
			return space, nil
		}
		logger.Error("lookup: Failed to map cached hash to models.Space", zap.String("key", key), zap.Error(mapErr))
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Error("lookup: Error getting space hash from cache", zap.String("key", key), zap.Error(err))
	}

	space, err := load()
	if err != nil {
		if errors.Is(err, xerr.ErrSpaceNotFound) {
			pipe := r.cache.TxPipeline()
			pipe.HSet(ctx, key, cache.NotFoundMarker, "1")
			pipe.Expire(ctx, key, cache.NegativeTTL)
			if _, execErr := pipe.Exec(ctx); execErr != nil {
				logger.Warn("lookup: Failed to cache missing space", zap.String("key", key), zap.Error(execErr))
			}
		}
		return nil, err
	}
	r.store(ctx, space)
	return space, nil
}

func (r *cachedSpaceRepository) store(ctx context.Context, space *models.Space) {
	fields := mapper.SpaceToMap(space)
	ttl := cache.JitteredTTL()
	pipe := r.cache.TxPipeline()
	for _, key := range []string{cache.SpaceByIDKey(space.ID), cache.SpaceBySlugKey(space.URLSlug)} {
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("store: Failed to cache space", zap.String("spaceID", space.ID), zap.Error(err))
	}
}
