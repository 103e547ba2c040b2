// Package metrics defines and registers all custom Prometheus metrics for the
// tubehub API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry at package init
// via promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tubehub"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "unknown_user", "bad_password", "throttled", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RefreshTotal counts refresh-token exchanges by outcome.
// Label:
//   - result: "success", "missing", "invalid", "reused", "error"
var RefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "refresh_total",
		Help:      "Total number of refresh token exchanges, by result.",
	},
	[]string{"result"},
)

// LogoutsTotal counts logouts.
// Label:
//   - identified: "true" when the caller's account could be resolved
var LogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "logouts_total",
		Help:      "Total number of logouts, by whether the caller was identified.",
	},
	[]string{"identified"},
)

// SessionRejectionsTotal counts requests turned away by the session middleware.
// Label:
//   - reason: "missing_token", "invalid_token", "unknown_user"
var SessionRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "session_rejections_total",
		Help:      "Total number of protected requests rejected by the session middleware.",
	},
	[]string{"reason"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsWrittenTotal counts audit events handed to the store.
// Label:
//   - result: "ok" or "error"
var AuditEventsWrittenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "audit",
		Name:      "events_written_total",
		Help:      "Total number of auth audit events written, by result.",
	},
	[]string{"result"},
)

// AuditEventsDroppedTotal counts audit events discarded because a worker queue was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "audit",
		Name:      "events_dropped_total",
		Help:      "Total number of auth audit events dropped on a full queue.",
	},
)

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "audit",
		Name:      "queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Video metrics ─────────────────────────────────────────────────────────────

// VideoViewsTotal counts views recorded through the watch endpoint.
var VideoViewsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "videos",
		Name:      "views_total",
		Help:      "Total number of video views recorded.",
	},
)

// VideoSharesTotal counts generated share links.
// Label:
//   - platform: a share platform such as "facebook", or "general"
var VideoSharesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "videos",
		Name:      "shares_total",
		Help:      "Total number of video share link requests, by platform.",
	},
	[]string{"platform"},
)
