package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BooksListedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "books_listed_total",
		Help: "Total number of books listed by sellers",
	})

	ListingsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listings_rejected_total",
		Help: "Total number of listing attempts rejected by validation",
	}, []string{"field"})

	PurchasesConfirmedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchases_confirmed_total",
		Help: "Total number of confirmed purchases",
	}, []string{"status"})

	CheckoutsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkouts_started_total",
		Help: "Total number of checkout flows opened",
	})

	CheckoutsCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkouts_cancelled_total",
		Help: "Total number of checkout flows closed before confirmation",
	})

	ReviewsPostedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviews_posted_total",
		Help: "Total number of reviews posted",
	})

	ReviewsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviews_rejected_total",
		Help: "Total number of rejected review attempts",
	}, []string{"reason"})

	WishlistTogglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_toggles_total",
		Help: "Total number of wishlist toggles",
	}, []string{"action"})

	CartOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Total number of cart operations",
	}, []string{"action"})

	CategorySalesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "category_sales_total",
		Help: "Total number of sales observed per catalog category",
	}, []string{"category"})

	StoreLoadFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_load_fallbacks_total",
		Help: "Total number of persisted values replaced by their default",
	}, []string{"key"})

	StoreSaveFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_save_failures_total",
		Help: "Total number of failed persistence writes",
	}, []string{"key"})

	StoreSaveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "store_save_latency_seconds",
		Help:    "Latency of persistence writes",
		Buckets: prometheus.DefBuckets,
	})

	GenAIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genai_requests_total",
		Help: "Total number of generative text requests",
	}, []string{"kind", "outcome"})

	GenAILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "genai_latency_seconds",
		Help:    "Latency of generative text requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	AuthAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_attempts_total",
		Help: "Total number of sign-in attempts",
	}, []string{"method", "outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
