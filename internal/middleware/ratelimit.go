package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Tier is one fixed-window bound: at most Max requests per Window for a
// given scope.  A route may carry several tiers (e.g. chat is bounded per
// minute and per hour at once) and a request must pass all of them.
type Tier struct {
	Scope  string
	Window time.Duration
	Max    int
}

// counterScript increments the window bucket and sets its TTL on first hit.
// The window start is baked into the key, so the counter resets at fixed
// boundaries; EXPIRE only garbage-collects finished buckets.
var counterScript = redis.NewScript(`
	local current = redis.call('INCR', KEYS[1])
	if current == 1 then
		redis.call('EXPIRE', KEYS[1], ARGV[1])
	end
	return current
`)

// RateLimit returns a fixed-window limiter over the given tiers, keyed by
// subject (phone, user id or client IP).  On any Redis error the request is
// allowed through: failing open keeps a limiter outage from blocking
// legitimate logins, at the price of unmetered traffic during the outage.
func RateLimit(rdb *redis.Client, prefix string, subject func(echo.Context) string, tiers ...Tier) echo.MiddlewareFunc {
	if rdb == nil || len(tiers) == 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := time.Now()
			subj := subject(c)
			ctx := c.Request().Context()
			for _, t := range tiers {
				windowStart := now.Truncate(t.Window)
				key := prefix + ":" + t.Scope + ":" + subj + ":" + strconv.FormatInt(windowStart.Unix(), 10)
				ttl := int64((t.Window + time.Second) / time.Second)

				n, err := counterScript.Run(ctx, rdb, []string{key}, ttl).Int64()
				if err != nil {
					c.Logger().Warnf("ratelimit: redis error for key=%s: %v", key, err)
					continue // fail open
				}
				if n > int64(t.Max) {
					retry := int(windowStart.Add(t.Window).Sub(now).Seconds()) + 1
					c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
					return c.JSON(http.StatusTooManyRequests, echo.Map{
						"error":       "too many requests",
						"retry_after": retry,
					})
				}
			}
			return next(c)
		}
	}
}

// SubjectByIP keys the limiter on the client address, for unauthenticated
// routes.
func SubjectByIP(c echo.Context) string {
	if ip := c.RealIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// SubjectByUser keys the limiter on the authenticated user, falling back to
// the client address when the gate did not run.
func SubjectByUser(c echo.Context) string {
	if ident := CurrentIdentity(c); ident != nil {
		return strconv.FormatUint(ident.ID, 10)
	}
	return SubjectByIP(c)
}
