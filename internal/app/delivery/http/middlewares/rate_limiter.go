package middlewares

import (
	"intake-service/internal/pkg/constvars"
	"intake-service/internal/pkg/exceptions"
	"intake-service/internal/pkg/utils"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter      *rate.Limiter
	blockedUntil time.Time
	lastSeen     time.Time
}

// RateLimiter is a per-IP token bucket. An IP that runs dry is refused until
// blockTime has passed. Visitors idle for longer than per+blockTime are swept.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	requests  int
	per       time.Duration
	blockTime time.Duration
	now       func() time.Time
	log       *zap.Logger
}

func NewRateLimiter(requests int, per, blockTime time.Duration, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		visitors:  make(map[string]*visitor),
		requests:  requests,
		per:       per,
		blockTime: blockTime,
		now:       time.Now,
		log:       logger,
	}
}

func (r *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ip, _, err := net.SplitHostPort(req.RemoteAddr)
		if err != nil {
			ip = req.RemoteAddr
		}

		if !r.allow(ip) {
			r.log.Warn("RateLimiter.Limit throttled",
				zap.String(constvars.LoggingRemoteAddrKey, ip),
				zap.String(constvars.LoggingEndpointKey, req.URL.Path),
			)
			utils.BuildErrorResponse(r.log, w, exceptions.ErrTooManyRequests(nil))
			return
		}

		next.ServeHTTP(w, req)
	})
}

func (r *RateLimiter) allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweepLocked(now)

	v, ok := r.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(r.per/time.Duration(r.requests)), r.requests)}
		r.visitors[ip] = v
	}
	v.lastSeen = now

	if now.Before(v.blockedUntil) {
		return false
	}
	if !v.limiter.AllowN(now, 1) {
		v.blockedUntil = now.Add(r.blockTime)
		return false
	}
	return true
}

func (r *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(r.lastSweep) < r.per {
		return
	}
	r.lastSweep = now

	idle := r.per + r.blockTime
	for ip, v := range r.visitors {
		if now.Sub(v.lastSeen) > idle {
			delete(r.visitors, ip)
		}
	}
}

func (r *RateLimiter) visitorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}

// NewUploadRateLimiter builds the limiter guarding image uploads from the
// per-minute budget in config. A throttled IP is blocked for one minute.
func (m *Middlewares) NewUploadRateLimiter() *RateLimiter {
	requests := m.InternalConfig.Minio.ImageUploadMaxRequestsPerMinute
	if requests <= 0 {
		requests = 1
	}
	return NewRateLimiter(requests, time.Minute, time.Minute, m.Log)
}
