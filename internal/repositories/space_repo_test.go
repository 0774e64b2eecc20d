package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3Eeeecho/memoryshare/internal/models"
	"github.com/3Eeeecho/memoryshare/internal/pkg/cache"
	"github.com/3Eeeecho/memoryshare/internal/pkg/dbtest"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
)

func newSpace(slug, userID string) *models.Space {
	return &models.Space{
		ID:        uuid.NewString(),
		URLSlug:   slug,
		UserID:    userID,
		FirstName: "Ama",
		LastName:  "Mensah",
		EventDate: time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		IsPublic:  true,
		Plan:      "basic",
	}
}

func TestSpaceRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDBSpaceRepository(dbtest.Open(t))

	s := newSpace("ama-kofi-2025", "uid-1")
	require.NoError(t, repo.Create(ctx, s))

	t.Run("duplicate slug", func(t *testing.T) {
		err := repo.Create(ctx, newSpace("ama-kofi-2025", "uid-2"))
		assert.ErrorIs(t, err, xerr.ErrSlugTaken)
	})

	t.Run("find", func(t *testing.T) {
		got, err := repo.FindByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, "ama-kofi-2025", got.URLSlug)

		got, err = repo.FindBySlug(ctx, "ama-kofi-2025")
		require.NoError(t, err)
		assert.Equal(t, s.ID, got.ID)

		got, err = repo.FindByUserID(ctx, "uid-1")
		require.NoError(t, err)
		assert.Equal(t, s.ID, got.ID)

		_, err = repo.FindBySlug(ctx, "missing")
		assert.ErrorIs(t, err, xerr.ErrSpaceNotFound)
	})

	t.Run("slug exists", func(t *testing.T) {
		ok, err := repo.SlugExists(ctx, "ama-kofi-2025")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = repo.SlugExists(ctx, "free")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("visibility", func(t *testing.T) {
		got, err := repo.UpdateVisibility(ctx, s.ID, false)
		require.NoError(t, err)
		assert.False(t, got.IsPublic)

		_, err = repo.UpdateVisibility(ctx, "nope", true)
		assert.ErrorIs(t, err, xerr.ErrSpaceNotFound)
	})

	t.Run("plan by user", func(t *testing.T) {
		spaces, err := repo.UpgradePlanByUserID(ctx, "uid-1", "premium", []string{"basic"})
		require.NoError(t, err)
		require.Len(t, spaces, 1)
		assert.Equal(t, "premium", spaces[0].Plan)

		// 已经是 premium，不在 from 中，不会被改动
		spaces, err = repo.UpgradePlanByUserID(ctx, "uid-1", "basic", nil)
		require.NoError(t, err)
		assert.Empty(t, spaces)
		got, err := repo.FindByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, "premium", got.Plan)

		spaces, err = repo.UpgradePlanByUserID(ctx, "nobody", "premium", []string{"basic"})
		require.NoError(t, err)
		assert.Empty(t, spaces)
	})
}

func newCachedRepo(t *testing.T) (SpaceRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCachedSpaceRepository(NewDBSpaceRepository(dbtest.Open(t)), cache.NewRedisCache(client)), mr
}

func TestCachedSpaceRepository(t *testing.T) {
	ctx := context.Background()
	repo, mr := newCachedRepo(t)

	s := newSpace("wedding", "uid-1")
	require.NoError(t, repo.Create(ctx, s))
	assert.True(t, mr.Exists(cache.SpaceByIDKey(s.ID)))
	assert.True(t, mr.Exists(cache.SpaceBySlugKey("wedding")))

	got, err := repo.FindBySlug(ctx, "wedding")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.True(t, got.IsPublic)

	// 修改可见性后缓存被清掉，再次读取拿到新值
	_, err = repo.UpdateVisibility(ctx, s.ID, false)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.SpaceByIDKey(s.ID)))
	got, err = repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPublic)

	_, err = repo.UpgradePlanByUserID(ctx, "uid-1", "forever", []string{"basic", "premium"})
	require.NoError(t, err)
	got, err = repo.FindBySlug(ctx, "wedding")
	require.NoError(t, err)
	assert.Equal(t, "forever", got.Plan)
}

func TestCachedSpaceRepositoryNegativeCache(t *testing.T) {
	ctx := context.Background()
	repo, mr := newCachedRepo(t)

	_, err := repo.FindBySlug(ctx, "later")
	require.ErrorIs(t, err, xerr.ErrSpaceNotFound)
	assert.Equal(t, "1", mr.HGet(cache.SpaceBySlugKey("later"), cache.NotFoundMarker))
	assert.Equal(t, cache.NegativeTTL, mr.TTL(cache.SpaceBySlugKey("later")))

	// 创建后占位被替换
	s := newSpace("later", "uid-9")
	require.NoError(t, repo.Create(ctx, s))
	got, err := repo.FindBySlug(ctx, "later")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
}

func TestCachedSpaceRepositoryFindByUserID(t *testing.T) {
	ctx := context.Background()
	repo, mr := newCachedRepo(t)

	_, err := repo.FindByUserID(ctx, "uid-3")
	require.ErrorIs(t, err, xerr.ErrSpaceNotFound)
	assert.False(t, mr.Exists(cache.SpaceByUserKey("uid-3")))

	first := newSpace("first", "uid-3")
	first.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, first))

	got, err := repo.FindByUserID(ctx, "uid-3")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.True(t, mr.Exists(cache.SpaceByUserKey("uid-3")))

	// 新空间创建后映射失效，返回最新的空间
	second := newSpace("second", "uid-3")
	require.NoError(t, repo.Create(ctx, second))
	assert.False(t, mr.Exists(cache.SpaceByUserKey("uid-3")))

	got, err = repo.FindByUserID(ctx, "uid-3")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}
