// Package metrics defines and registers all custom Prometheus metrics for
// the hostel API. It is the single source of truth for metric names, labels,
// and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hostel"

// ── Allocation metrics ────────────────────────────────────────────────────────

// RoomReassignmentsTotal counts reassignment attempts by outcome.
// Labels:
//   - result: "moved", "noop", "room_full", "not_found", "error"
var RoomReassignmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "room_reassignments_total",
		Help:      "Total number of room reassignment attempts, by outcome.",
	},
	[]string{"result"},
)

// ── Attendance metrics ────────────────────────────────────────────────────────

// AttendanceTokensIssuedTotal counts minted QR tokens.
var AttendanceTokensIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_tokens_issued_total",
		Help:      "Total number of attendance QR tokens issued.",
	},
)

// AttendanceMarkedTotal counts successful attendance marks.
// Labels:
//   - method: the verification method ("fingerprint", "otp")
var AttendanceMarkedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_marked_total",
		Help:      "Total number of attendance records created, by verification method.",
	},
	[]string{"method"},
)

// AttendanceRejectedTotal counts failed verification attempts.
// Label:
//   - reason: "invalid_token", "invalid_method", "error"
var AttendanceRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_rejected_total",
		Help:      "Total number of rejected attendance verification attempts.",
	},
	[]string{"reason"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the current number of audit events waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
