// Package metrics defines and registers all custom Prometheus metrics
// for the user portal. It is the single source of truth for metric
// names, labels, and help strings. Metrics register with the default
// registry at package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "userportal"

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "not_found", "bad_password", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts self-service registration attempts.
// Label:
//   - result: "success", "invalid", "conflict", or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// UserMutationsTotal counts admin-side user mutations.
// Labels:
//   - action: "add", "update", or "delete"
//   - result: "success", "invalid", "conflict", "not_found", or "error"
var UserMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_mutations_total",
		Help:      "Total number of admin user mutations, by action and result.",
	},
	[]string{"action", "result"},
)

// AvatarCleanupFailures counts best-effort avatar deletions that failed
// and left an orphaned file behind.
var AvatarCleanupFailures = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "avatar_cleanup_failures_total",
		Help:      "Total number of failed best-effort avatar file deletions.",
	},
)
