package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	before := testutil.CollectAndCount(RequestLatency)
	ObserveRequest("GET", "/probe", "200", time.Now().Add(-10*time.Millisecond))
	assert.Equal(t, before+1, testutil.CollectAndCount(RequestLatency))
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(ReactionsToggled.WithLabelValues(DirectionAdded))
	ReactionsToggled.WithLabelValues(DirectionAdded).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ReactionsToggled.WithLabelValues(DirectionAdded)))
}
