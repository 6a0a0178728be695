package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"engagehub/pkg/config"
	"engagehub/pkg/logger"
	"engagehub/pkg/models"
)

const (
	actorKey     = "actor"
	requestIDKey = "request_id"

	headerUserID     = "X-User-ID"
	headerUserName   = "X-User-Name"
	headerUserAvatar = "X-User-Avatar"
	headerRequestID  = "X-Request-ID"
)

// identityClaims are the bearer token claims issued by the identity provider
type identityClaims struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	jwt.RegisteredClaims
}

// IdentityMiddleware resolves the caller into a models.Actor. With a JWT
// secret configured the bearer token is authoritative and identity headers
// are ignored. A request without identity passes through anonymous.
func IdentityMiddleware(cfg config.IdentityConfig) gin.HandlerFunc {
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		if len(secret) == 0 {
			if id := strings.TrimSpace(c.GetHeader(headerUserID)); id != "" {
				c.Set(actorKey, models.Actor{
					ID:          id,
					DisplayName: strings.TrimSpace(c.GetHeader(headerUserName)),
					AvatarURL:   strings.TrimSpace(c.GetHeader(headerUserAvatar)),
				})
			}
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithError(c, models.NewHTTPError(models.ErrCodeUnauthorized, "invalid authorization format", http.StatusUnauthorized))
			return
		}

		actor, err := parseIdentityToken(parts[1], secret, cfg.Issuer)
		if err != nil {
			logger.WithRequestID(c.Request.Context()).WithField("error", err.Error()).Warn("rejected bearer token")
			abortWithError(c, models.NewHTTPError(models.ErrCodeUnauthorized, "unauthorized", http.StatusUnauthorized))
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

func parseIdentityToken(tokenString string, secret []byte, issuer string) (models.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &identityClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return models.Actor{}, err
	}

	claims, ok := token.Claims.(*identityClaims)
	if !ok || !token.Valid {
		return models.Actor{}, models.ErrUnauthorized
	}
	if issuer != "" && !claims.VerifyIssuer(issuer, true) {
		return models.Actor{}, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return models.Actor{}, fmt.Errorf("token has no subject")
	}

	return models.Actor{
		ID:          claims.Subject,
		DisplayName: claims.Name,
		AvatarURL:   claims.Avatar,
	}, nil
}

// RequireActor rejects anonymous requests
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetActor(c); !ok {
			abortWithError(c, models.NewHTTPError(models.ErrCodeUnauthorized, "missing caller identity", http.StatusUnauthorized))
			return
		}
		c.Next()
	}
}

// GetActor extracts the caller identity from gin context
func GetActor(c *gin.Context) (models.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}

// defaultMaxClients bounds the limiter cache when MaxClients is unset
const defaultMaxClients = 10000

// clientLimiters keeps one token bucket per client in a bounded LRU
type clientLimiters struct {
	cache *lru.Cache[string, *rate.Limiter]
	limit rate.Limit
	burst int
}

func newClientLimiters(cfg config.RateLimitConfig) *clientLimiters {
	size := cfg.MaxClients
	if size <= 0 {
		size = defaultMaxClients
	}
	cache, err := lru.New[string, *rate.Limiter](size)
	if err != nil {
		// only reachable with a non-positive size
		panic(err)
	}
	return &clientLimiters{
		cache: cache,
		limit: rate.Limit(cfg.RequestsPerSecond),
		burst: max(cfg.Burst, 1),
	}
}

func (l *clientLimiters) get(key string) *rate.Limiter {
	if limiter, ok := l.cache.Get(key); ok {
		return limiter
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	if prev, ok, _ := l.cache.PeekOrAdd(key, limiter); ok {
		return prev
	}
	return limiter
}

// RateLimitMiddleware applies a token bucket per client IP. A non-positive
// rate disables limiting.
func RateLimitMiddleware(cfg config.RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiters := newClientLimiters(cfg)
	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			abortWithError(c, models.NewHTTPError(models.ErrCodeRateLimited, "too many requests", http.StatusTooManyRequests))
			return
		}
		c.Next()
	}
}

// requestIDMiddleware propagates or assigns X-Request-ID
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(headerRequestID, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// requestLogger replaces gin.Logger with structured access logs
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.HTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), int(time.Since(start).Milliseconds()))
	}
}
