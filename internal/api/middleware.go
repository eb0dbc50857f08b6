package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"emarket/internal/models"
	"emarket/internal/session"
	"emarket/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	ctxIdentity = "identity"
	ctxSession  = "session"
	ctxToken    = "token"
)

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

// requestLogger logs every request through zap
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// authenticate resolves the bearer token to an identity and its session
func (h *Handler) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Please sign in to continue."})
			return
		}

		id, err := h.tokens.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Your session has expired. Please sign in again."})
			return
		}

		c.Set(ctxIdentity, id)
		c.Set(ctxToken, raw)
		c.Set(ctxSession, h.sessions.Get(c.Request.Context(), id))
		c.Next()
	}
}

// requireSeller restricts a route to identities that chose the seller role
func requireSeller() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := currentSession(c).Role(c.Request.Context())
		if !ok {
			abortWithError(c, models.ErrRoleRequired)
			return
		}
		if role != models.RoleSeller {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Only sellers can do this."})
			return
		}
		c.Next()
	}
}

// rateLimit throttles requests per client IP
func (h *Handler) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.authLimiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts. Please try again later."})
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(ctxSession).(*session.Session)
}

func currentIdentity(c *gin.Context) models.Identity {
	return c.MustGet(ctxIdentity).(models.Identity)
}

// Idle clients are forgotten after clientIdleTTL; the map is swept at most
// once per clientSweepEvery.
const (
	clientIdleTTL    = 3 * time.Minute
	clientSweepEvery = time.Minute
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client IP
type ipRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	limit     rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

func newIPRateLimiter(perSecond float64, burst int) *ipRateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &ipRateLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		burst:   burst,
		now:     time.Now,
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastSweep) >= clientSweepEvery {
		for key, c := range l.clients {
			if now.Sub(c.lastSeen) > clientIdleTTL {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	l.mu.Unlock()
	return c.limiter.AllowN(now, 1)
}

// size reports how many clients are tracked
func (l *ipRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// abortWithError maps domain errors to HTTP responses
func abortWithError(c *gin.Context, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, models.ErrBookNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Book not found"})
	case errors.Is(err, models.ErrNoCheckout):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "No checkout in progress"})
	case errors.Is(err, models.ErrNotOwned):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Purchase this book first"})
	case errors.Is(err, models.ErrRoleRequired):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Choose a role first"})
	case errors.Is(err, models.ErrAlreadyOwned):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "You already own this book"})
	case errors.Is(err, models.ErrInvalidTransition):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Checkout step not allowed", "details": err.Error()})
	case errors.Is(err, models.ErrProofRequired):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Please upload the payment screenshot."})
	case errors.Is(err, models.ErrInvalidRole):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Role must be buyer or seller"})
	default:
		util.GetLogger().Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
