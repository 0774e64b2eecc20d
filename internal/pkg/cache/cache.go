package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// 缓存通用接口
type Cache interface {
	// Set在缓存中设置一个值，并指定过期时间。
	// value应该是一个可以被JSON封送的结构体或指向结构体的指针。
	Set(ctx context.Context, key string, value any, expiration time.Duration) error

	// Get从缓存中检索一个值，并将其解编组到目标接口。
	// target应该是一个指针，指向希望解编组成的类型。
	Get(ctx context.Context, key string, target any) error

	// 删除一个或多个key
	Del(ctx context.Context, keys ...string) error

	HGetAll(ctx context.Context, key string) (map[string]string, error)

	Expire(ctx context.Context, key string, expiration time.Duration) error
	TxPipeline() redis.Pipeliner
}

// NotFoundMarker 写入空间哈希的占位字段，防止不存在的 slug 反复穿透到数据库
const NotFoundMarker = "__NOT_FOUND__"

func SpaceByIDKey(spaceID string) string {
	return fmt.Sprintf("space:id:%s", spaceID)
}

func SpaceBySlugKey(urlSlug string) string {
	return fmt.Sprintf("space:slug:%s", urlSlug)
}

// SpaceByUserKey 保存用户最新空间的 id，数据本身仍从 SpaceByIDKey 读取
func SpaceByUserKey(userID string) string {
	return fmt.Sprintf("space:user:%s", userID)
}
