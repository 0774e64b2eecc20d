package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLocker(t *testing.T, ttl time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, ttl), mr
}

// exerciseMutualExclusion 多个 goroutine 对同一 key 加锁，临界区内不允许并发
func exerciseMutualExclusion(t *testing.T, l Locker) {
	t.Helper()
	var (
		inside  atomic.Int32
		maxSeen atomic.Int32
		counter int
		wg      sync.WaitGroup
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			unlock, err := l.Lock(ctx, SpaceKey("s-1"))
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			counter++
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen.Load())
	assert.Equal(t, 16, counter)
}

func TestLocalLockerMutualExclusion(t *testing.T) {
	exerciseMutualExclusion(t, NewLocalLocker())
}

func TestRedisLockerMutualExclusion(t *testing.T) {
	l, _ := newRedisLocker(t, time.Minute)
	exerciseMutualExclusion(t, l)
}

func TestLocalLockerTimeoutAndCleanup(t *testing.T) {
	l := NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "k")
	require.ErrorIs(t, err, ErrLockTimeout)

	unlock()
	unlock()
	l.mu.Lock()
	assert.Empty(t, l.entries)
	l.mu.Unlock()

	// 不同 key 互不影响
	u1, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	u2, err := l.Lock(context.Background(), "b")
	require.NoError(t, err)
	u1()
	u2()
}

func TestRedisLockerReleaseOnlyOwnToken(t *testing.T) {
	l, mr := newRedisLocker(t, time.Second)
	key := SpaceKey("s-2")

	unlock, err := l.Lock(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, mr.Exists(key))

	// TTL 过期后被其他持有者抢到
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set(key, "someone-else"))

	unlock()
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRedisLockerTimeout(t *testing.T) {
	l, mr := newRedisLocker(t, time.Minute)
	key := SpaceKey("s-3")
	require.NoError(t, mr.Set(key, "held"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := l.Lock(ctx, key)
	require.ErrorIs(t, err, ErrLockTimeout)
}

func TestNewSelectsImplementation(t *testing.T) {
	l, err := New("local", nil, 0)
	require.NoError(t, err)
	assert.IsType(t, &LocalLocker{}, l)

	_, err = New("redis", nil, 0)
	require.Error(t, err)

	_, err = New("zookeeper", nil, 0)
	require.Error(t, err)
}
