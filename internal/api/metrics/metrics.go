// Package metrics defines and registers all custom Prometheus metrics for
// the user management API. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "users"

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts successfully created accounts.
// Label:
//   - role: "user" or "admin"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts created, by role.",
	},
	[]string{"role"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "not_found", "rate_limited"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// DeletionsTotal counts account deletions.
// Label:
//   - initiator: "self" or "admin"
var DeletionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deletions_total",
		Help:      "Total number of accounts deleted, by initiator.",
	},
	[]string{"initiator"},
)

// ── Audit trail metrics ───────────────────────────────────────────────────────

// AuditEntriesTotal counts audit entries successfully appended.
// Label:
//   - kind: "create", "update", "delete"
var AuditEntriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_entries_total",
		Help:      "Total number of audit entries written, by change kind.",
	},
	[]string{"kind"},
)

// AuditWriteFailuresTotal counts audit appends that failed after the primary
// mutation committed. Every increment is a gap in the trail that needs
// operator reconciliation.
var AuditWriteFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_failures_total",
		Help:      "Total number of audit entry writes that failed.",
	},
)

// ── Mail dispatcher metrics ───────────────────────────────────────────────────

// MailQueueDepth tracks the number of messages waiting in each dispatcher
// worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of messages pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// MailSentTotal counts delivery attempts handed to the mailer.
// Label:
//   - result: "sent" or "error"
var MailSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_sent_total",
		Help:      "Total number of outbound mail deliveries, by result.",
	},
	[]string{"result"},
)
