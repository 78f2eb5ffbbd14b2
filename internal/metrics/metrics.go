// Package metrics держит метрики служебного HTTP API.
package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "asterbot",
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "code"},
	)

	grpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "asterbot",
			Subsystem: "api",
			Name:      "grpc_requests_total",
			Help:      "gRPC calls by method and status code.",
		},
		[]string{"method", "code"},
	)

	leadsSynced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "asterbot",
			Subsystem: "leads",
			Name:      "sync_total",
			Help:      "Lead sync attempts by result.",
		},
		[]string{"result"},
	)
)

// Register регистрирует метрики в глобальном реестре. Повторный вызов ничего не делает.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, grpcRequests, leadsSynced)
	})
}

func IncHTTP(endpoint string, code int) {
	httpRequests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
}

func IncGRPC(method, code string) {
	grpcRequests.WithLabelValues(method, code).Inc()
}

// IncLeadSync result: completed, retry, failed.
func IncLeadSync(result string) {
	leadsSynced.WithLabelValues(result).Inc()
}
