// Package metrics defines the custom Prometheus metrics of the H2EAUX
// gestion API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Call MustRegister once per registry before the HTTP server starts.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "h2eaux"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginAttemptsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// IdentitiesCreatedTotal counts identities created through registration.
// Label:
//   - role: "admin" or "employee"
var IdentitiesCreatedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identities_created_total",
		Help:      "Total number of identities registered, by role.",
	},
	[]string{"role"},
)

// AuthorizationDecisionsTotal counts permission gate decisions.
// Labels:
//   - requirement: the capability or role checked (e.g. "clients", "role:admin")
//   - decision: "allowed" or "denied"
var AuthorizationDecisionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_decisions_total",
		Help:      "Total number of permission gate decisions.",
	},
	[]string{"requirement", "decision"},
)

// ── Client metrics ────────────────────────────────────────────────────────────

// ClientMutationsTotal counts successful writes to the clients collection.
// Label:
//   - operation: "create", "update", or "delete"
var ClientMutationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_mutations_total",
		Help:      "Total number of client records created, updated, or deleted.",
	},
	[]string{"operation"},
)

// MustRegister adds every custom collector to reg. Registering the same
// collectors on several registries is allowed; registering twice on one
// registry panics.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		LoginAttemptsTotal,
		IdentitiesCreatedTotal,
		AuthorizationDecisionsTotal,
		ClientMutationsTotal,
	)
}
