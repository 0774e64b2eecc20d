// Package lock 提供按 key 互斥的锁，用于把同一空间的“读配额-检查-写入”串行化
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrLockTimeout = errors.New("获取锁超时")

// Unlock 释放锁，重复调用无副作用
type Unlock func()

// Locker 按 key 互斥。Lock 会阻塞直到获得锁或 ctx 结束
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// SpaceKey 空间配额锁的 key
func SpaceKey(spaceID string) string {
	return "lock:space:quota:" + spaceID
}

// New 按配置选择实现：redis 为跨实例的分布式锁，local 只在单进程内有效
func New(kind string, client *redis.Client, ttl time.Duration) (Locker, error) {
	switch kind {
	case "", "redis":
		if client == nil {
			return nil, errors.New("redis 锁需要 redis 客户端")
		}
		return NewRedisLocker(client, ttl), nil
	case "local":
		return NewLocalLocker(), nil
	default:
		return nil, fmt.Errorf("未知的锁类型: %s", kind)
	}
}
