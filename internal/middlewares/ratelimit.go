package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/3Eeeecho/memoryshare/internal/config"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter 按客户端 IP 限流，长时间不活跃的条目会被清理
type IPRateLimiter struct {
	visitors sync.Map
	limit    rate.Limit
	burst    int
	idle     time.Duration
	mu       sync.Mutex
	lastGC   time.Time
}

func NewIPRateLimiter(cfg *config.RateLimitConfig) *IPRateLimiter {
	perMinute := cfg.UploadsPerMinute
	if perMinute <= 0 {
		perMinute = 120
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 20
	}
	return &IPRateLimiter{
		limit:  rate.Limit(float64(perMinute) / 60),
		burst:  burst,
		idle:   10 * time.Minute,
		lastGC: time.Now(),
	}
}

func (l *IPRateLimiter) get(ip string) *rate.Limiter {
	now := time.Now()
	v, _ := l.visitors.LoadOrStore(ip, &visitor{limiter: rate.NewLimiter(l.limit, l.burst), lastSeen: now})
	vis := v.(*visitor)
	l.mu.Lock()
	vis.lastSeen = now
	if now.Sub(l.lastGC) > l.idle {
		l.lastGC = now
		l.visitors.Range(func(key, value any) bool {
			if now.Sub(value.(*visitor).lastSeen) > l.idle {
				l.visitors.Delete(key)
			}
			return true
		})
	}
	l.mu.Unlock()
	return vis.limiter
}

// Middleware 超出速率时返回 429
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.get(c.ClientIP()).Allow() {
			c.Header("Retry-After", "60")
			xerr.AbortWithError(c, http.StatusTooManyRequests, xerr.TooManyRequestsCode, xerr.ErrTooManyRequests.Error())
			return
		}
		c.Next()
	}
}
