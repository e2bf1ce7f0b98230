// Package metrics holds the Prometheus collectors of the ordering API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

var Registry = prometheus.NewRegistry()

var (
	CartAdditions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "littlelemon_cart_additions_total",
			Help: "Menu items added to carts, by whether a new cart line was created or an existing one merged",
		},
		[]string{"outcome"},
	)

	OrdersPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "littlelemon_orders_placed_total",
			Help: "Orders materialized from carts",
		},
	)

	OrderTotals = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "littlelemon_order_total_amount",
			Help:    "Total amount of placed orders",
			Buckets: prometheus.ExponentialBuckets(5, 2, 8),
		},
	)

	OrderUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "littlelemon_order_updates_total",
			Help: "Order updates by the field that changed",
		},
		[]string{"field"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "littlelemon_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	Registry.MustRegister(CartAdditions, OrdersPlaced, OrderTotals, OrderUpdates, RequestDuration)
}

func RecordCartAddition(created bool) {
	outcome := "updated"
	if created {
		outcome = "created"
	}
	CartAdditions.WithLabelValues(outcome).Inc()
}

func RecordOrderPlaced(total decimal.Decimal) {
	OrdersPlaced.Inc()
	amount, _ := total.Float64()
	OrderTotals.Observe(amount)
}

func RecordOrderUpdate(field string) {
	OrderUpdates.WithLabelValues(field).Inc()
}

// Middleware observes the latency of every request by its route pattern.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
