package middleware

import (
	"internship-portal/models"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// visitorTTL is how long an idle client's bucket is kept
const visitorTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginLimiter throttles credential endpoints per client IP with a token bucket
type LoginLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	recorder  SecurityRecorder
}

func NewLoginLimiter(perMinute, burst int, recorder SecurityRecorder) *LoginLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &LoginLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     burst,
		lastSweep: time.Now(),
		recorder:  recorder,
	}
}

// Allow takes a token from the client's bucket
func (l *LoginLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) > visitorTTL {
		l.sweep(now)
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.Allow()
}

// sweep drops idle buckets; callers hold mu
func (l *LoginLimiter) sweep(now time.Time) {
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, ip)
		}
	}
	l.lastSweep = now
}

func (l *LoginLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l.Allow(c.IP()) {
			return c.Next()
		}

		l.recorder.SecurityEvent(c.UserContext(), models.SecurityEvent{
			Event:    models.EventLoginRateLimited,
			Severity: models.SeverityWarning,
			IP:       c.IP(),
			Path:     c.Path(),
		})
		c.Set(fiber.HeaderRetryAfter, "60")
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Too many attempts, please try again later",
		})
	}
}

// RateLimited answers requests rejected by the fiber limiter and records them
func RateLimited(recorder SecurityRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recorder.SecurityEvent(c.UserContext(), models.SecurityEvent{
			Event:    models.EventRateLimited,
			Severity: models.SeverityInfo,
			UserID:   GetUserID(c),
			IP:       c.IP(),
			Path:     c.Path(),
		})
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Too many requests",
		})
	}
}
