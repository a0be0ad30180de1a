package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSync(t *testing.T) {
	before := testutil.ToFloat64(SyncEntriesTotal.WithLabelValues("added"))
	reqBefore := testutil.ToFloat64(SyncRequestsTotal)

	ObserveSync(2, 1, 3)

	assert.Equal(t, before+2, testutil.ToFloat64(SyncEntriesTotal.WithLabelValues("added")))
	assert.Equal(t, reqBefore+1, testutil.ToFloat64(SyncRequestsTotal))
}
