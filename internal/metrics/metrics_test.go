package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.Authorization(OutcomeSuccess)
	r.Authorization(OutcomeSuccess)
	r.Authorization(OutcomeInvalidSignature)
	r.UserCreated()
	r.CreateRace()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.authorizations.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.authorizations.WithLabelValues(OutcomeInvalidSignature)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.usersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.createRaces))
}
