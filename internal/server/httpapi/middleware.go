package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/dmitrijs2005/recipeshare/internal/server/auth"
	"github.com/dmitrijs2005/recipeshare/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
	callerKey    = "caller"
)

// requestID reuses a client supplied X-Request-ID when it is a UUID and
// generates one otherwise.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// accessLog logs one line per request and feeds the HTTP metrics.
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()
		s.metrics.Observe(route, c.Request.Method, status, elapsed)

		args := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"latency_ms", elapsed.Milliseconds(),
			"request_id", c.GetString(requestIDKey),
		}
		if err := c.Errors.Last(); err != nil {
			args = append(args, "error", err.Err)
		}

		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			s.logger.Error(ctx, "request failed", args...)
		case status >= http.StatusBadRequest:
			s.logger.Warn(ctx, "request rejected", args...)
		default:
			s.logger.Info(ctx, "request served", args...)
		}
	}
}

// recovery answers a panicking handler with 500 Error desconocido.
func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		s.logger.Error(c.Request.Context(), "panic recovered", "panic", rec, "request_id", c.GetString(requestIDKey))
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: common.MsgUnknown})
	})
}

// authenticate resolves the bearer token into a services.Caller. When
// required is false a missing header leaves the caller anonymous, but a
// header that does not verify is still rejected.
func (s *Server) authenticate(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				abortWithError(c, common.NewError(common.ErrorUnauthorized, common.MsgUnauthorized))
				return
			}
			c.Next()
			return
		}

		caller, err := s.resolveCaller(c.Request.Context(), header)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

func (s *Server) resolveCaller(ctx context.Context, header string) (services.Caller, error) {
	token, err := auth.BearerToken(header)
	if err != nil {
		return services.Caller{}, common.NewError(common.ErrInvalidToken, common.MsgUnauthorized)
	}

	identity, err := auth.ParseIdentity(token, s.secretKey)
	if err != nil {
		s.logger.Debug(ctx, "token rejected", "error", err)
		kind := common.ErrInvalidToken
		if errors.Is(err, common.ErrTokenExpired) {
			kind = common.ErrTokenExpired
		}
		return services.Caller{}, common.NewError(kind, common.MsgUnauthorized)
	}

	profileID, err := s.services.Profiles.Resolve(ctx, identity)
	if err != nil {
		return services.Caller{}, err
	}
	return services.Caller{ProfileID: profileID}, nil
}

func callerFrom(c *gin.Context) services.Caller {
	v, _ := c.Get(callerKey)
	caller, _ := v.(services.Caller)
	return caller
}

const (
	limiterPoolSize = 10000
	limiterTTL      = 10 * time.Minute
)

// limiterPool hands out one token bucket per key. A bucket is dropped
// limiterTTL after it was created. A nil pool allows everything.
type limiterPool struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters *expirable.LRU[string, *rate.Limiter]
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &limiterPool{
		limit:    rate.Limit(rps),
		burst:    burst,
		limiters: expirable.NewLRU[string, *rate.Limiter](limiterPoolSize, nil, limiterTTL),
	}
}

func (p *limiterPool) allow(key string) bool {
	if p == nil {
		return true
	}
	p.mu.Lock()
	l, ok := p.limiters.Get(key)
	if !ok {
		l = rate.NewLimiter(p.limit, p.burst)
		p.limiters.Add(key, l)
	}
	p.mu.Unlock()
	return l.Allow()
}

// rateLimit throttles mutating routes per caller, falling back to the client
// address for anonymous requests.
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := callerFrom(c).ProfileID
		if key == "" {
			key = c.ClientIP()
		}
		if !s.limiter.allow(key) {
			abortWithError(c, common.NewError(common.ErrorRateLimited, common.MsgTooManyRequests))
			return
		}
		c.Next()
	}
}
