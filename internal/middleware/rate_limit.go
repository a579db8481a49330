package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/biyonik/ticketbox-core/internal/http/request"
	"github.com/biyonik/ticketbox-core/internal/http/response"
	"github.com/biyonik/ticketbox-core/pkg/auth"
)

// -----------------------------------------------------------------------------
// Rate Limiting Middleware
// -----------------------------------------------------------------------------
// İstemci başına bir token bucket (golang.org/x/time/rate). Oturum açmış
// isteklerde anahtar kullanıcı ID'si, diğerlerinde IP adresidir. Uzun süre
// kullanılmayan bucket'lar arka planda temizlenir; Stop ile goroutine durur.
// -----------------------------------------------------------------------------

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var (
	limiterRegistry   = make(map[*RateLimiter]bool)
	limiterRegistryMu sync.Mutex
)

// NewRateLimiter, saniyede rps istek ve burst kadar ani yüke izin verir.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	ctx, cancel := context.WithCancel(context.Background())

	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
	}

	limiterRegistryMu.Lock()
	limiterRegistry[rl] = true
	limiterRegistryMu.Unlock()

	rl.wg.Add(1)
	go rl.cleanupLoop()

	return rl
}

func (rl *RateLimiter) cleanupLoop() {
	defer rl.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.ctx.Done():
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, c := range rl.clients {
		if now.Sub(c.lastSeen) > rl.idleTTL {
			delete(rl.clients, key)
		}
	}
}

// Stop, temizlik goroutine'ini durdurur.
func (rl *RateLimiter) Stop() {
	limiterRegistryMu.Lock()
	delete(limiterRegistry, rl)
	limiterRegistryMu.Unlock()

	rl.cancel()
	rl.wg.Wait()
}

// StopAllLimiters, shutdown sırasında main'den çağrılır.
func StopAllLimiters() {
	limiterRegistryMu.Lock()
	limiters := make([]*RateLimiter, 0, len(limiterRegistry))
	for l := range limiterRegistry {
		limiters = append(limiters, l)
	}
	limiterRegistryMu.Unlock()

	for _, l := range limiters {
		l.Stop()
	}
}

// Allow, key için bir token harcar. İzin yoksa bir sonraki token'a kalan
// süreyi döndürür.
func (rl *RateLimiter) Allow(key string) (bool, int, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now

	if c.limiter.AllowN(now, 1) {
		return true, int(math.Floor(c.limiter.TokensAt(now))), 0
	}

	r := c.limiter.ReserveN(now, 1)
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return false, 0, wait
}

// RateLimit, istemci başına hız sınırı uygular.
func RateLimit(limiter *RateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + request.New(r).GetIP()
			if identity, ok := auth.UserFromContext(r.Context()); ok {
				key = "user:" + strconv.FormatInt(identity.ID, 10)
			}

			allowed, remaining, retryAfter := limiter.Allow(key)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				response.TooManyRequests(w, fmt.Sprintf("Rate limit aşıldı. %d saniye sonra tekrar deneyin.", seconds))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
