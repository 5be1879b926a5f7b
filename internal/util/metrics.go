package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutOrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_created_total",
		Help: "Total number of gateway orders created at checkout",
	})

	CheckoutOrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_failed_total",
		Help: "Total number of failed checkout order creations",
	}, []string{"reason"})

	FinalizeSuccessTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_finalize_success_total",
		Help: "Total number of successful payment finalizations",
	})

	FinalizeDuplicateTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_finalize_duplicate_total",
		Help: "Total number of duplicate finalize calls treated as no-ops",
	})

	FinalizeFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_finalize_failed_total",
		Help: "Total number of failed payment finalizations",
	}, []string{"reason"})

	PurchasesCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchases_completed_total",
		Help: "Total number of newly finalized purchases",
	})

	PurchaseRevenueTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchase_revenue_minor_units_total",
		Help: "Total revenue from finalized purchases, in minor currency units",
	})

	GatewayRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_request_latency_seconds",
		Help:    "Latency of payment gateway calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	ReviewsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviews_written_total",
		Help: "Total number of reviews created or updated",
	})

	DownloadsServedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "downloads_served_total",
		Help: "Total number of downloads released by the purchase gate",
	})

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
