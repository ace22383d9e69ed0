// Package metrics は Prometheus のメトリクスを定義し、収集用のミドルウェアを提供します。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gated_files"

// HTTP メトリクス
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)
)

// 認証・配信の結果
var (
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Password checks by result",
		},
		[]string{"result"}, // success, invalid, bad_request, misconfigured, error
	)

	TokenRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_rejections_total",
			Help:      "Protected requests redirected to login",
		},
		[]string{"reason"}, // missing, invalid, misconfigured
	)

	FileRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_requests_total",
			Help:      "Authenticated protected file requests by outcome",
		},
		[]string{"outcome"}, // served, forbidden, not_found, error
	)

	FileBytesServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_bytes_served_total",
			Help:      "Bytes of protected file content served",
		},
	)
)
