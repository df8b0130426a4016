package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordRequestIncrementsCounterForRouteAndStatus(t *testing.T) {
	before := testutil.ToFloat64(requestsTotal.WithLabelValues("/products/search", "200"))
	RecordRequest("/products/search", "200", 10*time.Millisecond)
	after := testutil.ToFloat64(requestsTotal.WithLabelValues("/products/search", "200"))
	require.Equal(t, before+1, after)
}

func TestRecordEngineCallIncrementsByHandleKindOutcome(t *testing.T) {
	before := testutil.ToFloat64(engineCalls.WithLabelValues("products", "elastic-like", "success"))
	RecordEngineCall("products", "elastic-like", "success")
	after := testutil.ToFloat64(engineCalls.WithLabelValues("products", "elastic-like", "success"))
	require.Equal(t, before+1, after)
}

func TestRecordCacheOperationIncrementsByOperationOutcome(t *testing.T) {
	before := testutil.ToFloat64(cacheOperations.WithLabelValues("get", "hit"))
	RecordCacheOperation("get", "hit")
	after := testutil.ToFloat64(cacheOperations.WithLabelValues("get", "hit"))
	require.Equal(t, before+1, after)
}
