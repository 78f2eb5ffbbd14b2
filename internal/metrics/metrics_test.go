package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	Register()
	Register()

	before := testutil.ToFloat64(httpRequests.WithLabelValues("/healthz", "200"))
	IncHTTP("/healthz", 200)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("/healthz", "200")))

	IncGRPC("/grpc.health.v1.Health/Check", "OK")
	assert.Equal(t, float64(1), testutil.ToFloat64(grpcRequests.WithLabelValues("/grpc.health.v1.Health/Check", "OK")))

	assert.NotPanics(t, func() { IncLeadSync("completed") })
	assert.Equal(t, float64(1), testutil.ToFloat64(leadsSynced.WithLabelValues("completed")))
}
