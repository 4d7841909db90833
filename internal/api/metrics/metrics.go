// Package metrics defines the custom Prometheus metrics of the storefront.
// It is the single source of truth for metric names, labels and help strings.
//
// All metrics register with the default registry on package init, so they
// appear on /metrics next to the echoprometheus HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestsTotal counts calls made to the coffee-shop API.
// Labels:
//   - method: HTTP method
//   - status: response status code, or "error" on transport failure
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests issued to the backend API.",
	},
	[]string{"method", "status"},
)

// BackendRequestDuration measures backend round-trip latency.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of backend API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid", "rate_limited" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// GuardDecisionsTotal counts route guard outcomes.
// Label:
//   - decision: "allow", "login" or "forbidden"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions.",
	},
	[]string{"decision"},
)

// ── Admin metrics ─────────────────────────────────────────────────────────────

// AdminMutationsTotal counts successful dialog submissions.
// Labels:
//   - entity: "users", "menus", "variants" or "orders"
//   - action: "create", "edit" or "delete"
var AdminMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_mutations_total",
		Help:      "Total number of successful admin create/edit/delete operations.",
	},
	[]string{"entity", "action"},
)

// WorkspaceControllers tracks how many list controllers are cached.
var WorkspaceControllers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "workspace_controllers",
		Help:      "Current number of cached per-session list controllers.",
	},
)

// ── Shop metrics ──────────────────────────────────────────────────────────────

// CheckoutsTotal counts checkout attempts.
// Label:
//   - result: "placed", "empty", "in_flight" or "error"
var CheckoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkouts_total",
		Help:      "Total number of checkout attempts, by result.",
	},
	[]string{"result"},
)
