package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gateway counters, labelled by outcome so dashboards can separate remote
// rejections from transport trouble.
var (
	TokenGrants = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offload_token_grants_total",
			Help: "Credential grants requested from the media API token endpoint",
		},
		[]string{"scope", "outcome"},
	)

	Uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offload_uploads_total",
			Help: "Asset uploads attempted against the media API",
		},
		[]string{"outcome"},
	)

	RemoteDeletes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offload_remote_deletes_total",
			Help: "Remote delete requests issued against the media API",
		},
		[]string{"outcome"},
	)

	Migrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offload_migrations_total",
			Help: "Assets fully migrated (uploaded, recorded, local copy removed)",
		},
		[]string{"kind"},
	)
)

// Outcome label values
const (
	OutcomeOK        = "ok"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport_error"
	OutcomeAuth      = "auth_error"
	OutcomeError     = "error"
)
