package api

import (
	"context"
	"net/http"
	"time"

	"emarket/internal/identity"
	"emarket/internal/service"
	"emarket/internal/session"
	"emarket/internal/storage"
	"emarket/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// DefaultMaxUploadBytes caps uploaded files
const DefaultMaxUploadBytes = 150 << 20

// Options wires the handler to its collaborators
type Options struct {
	Storefront     *service.Storefront
	Reading        *service.ReadingService
	Sessions       *session.Registry
	Objects        storage.ObjectStore
	Provider       identity.Provider
	Tokens         *identity.TokenIssuer
	Watcher        *identity.Watcher
	AuthRateLimit  float64
	AuthBurst      int
	MaxUploadBytes int64
	Ready          func(ctx context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	storefront     *service.Storefront
	reading        *service.ReadingService
	sessions       *session.Registry
	objects        storage.ObjectStore
	provider       identity.Provider
	tokens         *identity.TokenIssuer
	watcher        *identity.Watcher
	authLimiter    *ipRateLimiter
	maxUploadBytes int64
	ready          func(ctx context.Context) error
	logger         *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(opts Options) *Handler {
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &Handler{
		storefront:     opts.Storefront,
		reading:        opts.Reading,
		sessions:       opts.Sessions,
		objects:        opts.Objects,
		provider:       opts.Provider,
		tokens:         opts.Tokens,
		watcher:        opts.Watcher,
		authLimiter:    newIPRateLimiter(opts.AuthRateLimit, opts.AuthBurst),
		maxUploadBytes: maxUpload,
		ready:          opts.Ready,
		logger:         util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(requestLogger(h.logger))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth", h.rateLimit())
	{
		auth.POST("/signin", h.signIn)
		auth.POST("/signup", h.signUp)
		auth.POST("/provider", h.signInWithProvider)
		auth.POST("/signout", h.authenticate(), h.signOut)
	}

	v1.GET("/categories", h.listCategories)

	private := v1.Group("", h.authenticate())
	{
		private.GET("/session", h.getSession)
		private.PUT("/session/role", h.setRole)
		private.PUT("/session/view", h.setView)
		private.PUT("/session/search", h.setSearch)
		private.GET("/session/notification", h.getNotification)
		private.DELETE("/session/notification", h.dismissNotification)

		private.GET("/books", h.listBooks)
		private.GET("/books/:id", h.getBook)
		private.GET("/books/:id/preview", h.previewBook)
		private.GET("/books/:id/read", h.readBook)
		private.GET("/books/:id/download", h.downloadBook)
		private.GET("/books/:id/reviews", h.listReviews)
		private.POST("/books/:id/reviews", h.addReview)

		private.GET("/wishlist", h.getWishlist)
		private.POST("/wishlist/:id/toggle", h.toggleWishlist)
		private.GET("/cart", h.getCart)
		private.POST("/cart/:id", h.addToCart)
		private.DELETE("/cart/:id", h.removeFromCart)
		private.GET("/library", h.getLibrary)

		private.POST("/checkout", h.beginCheckout)
		private.GET("/checkout", h.getCheckout)
		private.PUT("/checkout/method", h.selectPaymentMethod)
		private.POST("/checkout/paid", h.markPaid)
		private.POST("/checkout/proof", h.uploadProof)
		private.POST("/checkout/confirm", h.confirmCheckout)
		private.DELETE("/checkout", h.cancelCheckout)
	}

	seller := v1.Group("", h.authenticate(), requireSeller())
	{
		seller.POST("/books", h.listBook)
		seller.POST("/uploads/:kind", h.upload)
		seller.GET("/seller/dashboard", h.getDashboard)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports whether the persistence backend answers
func (h *Handler) readinessCheck(c *gin.Context) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ready(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not ready",
				"details": err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}
