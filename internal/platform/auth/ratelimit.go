package auth

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maypok86/otter"
	realclientip "github.com/realclientip/realclientip-go"
)

const maxLimiterKeys = 100_000

type window struct {
	start time.Time
	count int
}

// RateLimiter: クライアントIP単位の固定ウィンドウ。ログイン/サインアップ専用
type RateLimiter struct {
	mu       sync.Mutex
	limit    int
	period   time.Duration
	windows  otter.Cache[string, *window]
	strategy realclientip.Strategy
	now      func() time.Time
}

// NewRateLimiter: header が空なら X-Forwarded-For の右端非プライベート → RemoteAddr
func NewRateLimiter(limit int, period time.Duration, header string) (*RateLimiter, error) {
	cache, err := otter.MustBuilder[string, *window](maxLimiterKeys).
		WithTTL(period).
		Build()
	if err != nil {
		return nil, err
	}

	var strategy realclientip.Strategy
	if len(header) > 0 {
		strategy = realclientip.Must(realclientip.NewSingleIPHeaderStrategy(header))
	} else {
		strategy = realclientip.NewChainStrategy(
			realclientip.Must(realclientip.NewRightmostNonPrivateStrategy("X-Forwarded-For")),
			realclientip.RemoteAddrStrategy{})
	}

	return &RateLimiter{
		limit:    limit,
		period:   period,
		windows:  cache,
		strategy: strategy,
		now:      time.Now,
	}, nil
}

// Allow reports whether key may proceed, and if not, how long until its window resets.
func (l *RateLimiter) Allow(key string) (bool, time.Duration) {
	if l.limit <= 0 {
		return true, 0
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows.Get(key)
	if !ok || now.Sub(w.start) >= l.period {
		l.windows.Set(key, &window{start: now, count: 1})
		return true, 0
	}
	if w.count >= l.limit {
		return false, l.period - now.Sub(w.start)
	}
	w.count++
	return true, 0
}

func (l *RateLimiter) ClientIP(r *http.Request) string {
	return l.strategy.ClientIP(r.Header, r.RemoteAddr)
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retry := l.Allow(l.ClientIP(c.Request))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(retry.Round(time.Second).Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				errorBody("RATE_LIMITED", "too many login/signup attempts, please try again later"))
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) Close() { l.windows.Close() }
