// Package metrics exposes Prometheus counters for the sign-in flow.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Authorization outcomes.
const (
	OutcomeSuccess          = "success"
	OutcomeMalformed        = "malformed"
	OutcomeInvalidMessage   = "invalid_message"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeInvalidNonce     = "invalid_nonce"
	OutcomeBlocked          = "blocked"
	OutcomeError            = "error"
)

// Recorder tracks sign-in activity.
type Recorder struct {
	authorizations *prometheus.CounterVec
	usersCreated   prometheus.Counter
	createRaces    prometheus.Counter
}

// New registers the sign-in collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		authorizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crypteax",
			Subsystem: "auth",
			Name:      "authorizations_total",
			Help:      "Wallet sign-in attempts by outcome.",
		}, []string{"outcome"}),
		usersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crypteax",
			Subsystem: "auth",
			Name:      "users_created_total",
			Help:      "Users provisioned on first sign-in.",
		}),
		createRaces: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crypteax",
			Subsystem: "auth",
			Name:      "create_races_total",
			Help:      "Concurrent first sign-ins resolved by re-reading the existing user.",
		}),
	}
	reg.MustRegister(r.authorizations, r.usersCreated, r.createRaces)
	return r
}

// Authorization counts one sign-in attempt.
func (r *Recorder) Authorization(outcome string) {
	r.authorizations.WithLabelValues(outcome).Inc()
}

// UserCreated counts one provisioned user.
func (r *Recorder) UserCreated() {
	r.usersCreated.Inc()
}

// CreateRace counts one recovered duplicate-create conflict.
func (r *Recorder) CreateRace() {
	r.createRaces.Inc()
}
