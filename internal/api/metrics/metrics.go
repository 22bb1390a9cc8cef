// Package metrics defines and registers all custom Prometheus metrics for the
// storefront API. It is the single source of truth for metric names, labels
// and help strings.
//
// Metrics live in Registry rather than the global default registry so the
// HTTP router can be built more than once in one process (tests do).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// Registry holds every custom metric plus the Go runtime and process collectors.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "throttled" or "error"
var LoginsTotal = factory.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "conflict", "invalid" or "error"
var RegistrationsTotal = factory.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// SessionRejectionsTotal counts requests refused by the session gate.
// Label:
//   - reason: "missing", "malformed" or "invalid"
var SessionRejectionsTotal = factory.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_rejections_total",
		Help:      "Total number of requests rejected for a missing or bad session token.",
	},
	[]string{"reason"},
)

// AuthorizationDecisionsTotal counts mutation authorization decisions.
// Labels:
//   - requirement: the policy evaluated (e.g. "store_item")
//   - decision: "allow" or "deny"
var AuthorizationDecisionsTotal = factory.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_decisions_total",
		Help:      "Total number of authorization decisions, by requirement and outcome.",
	},
	[]string{"requirement", "decision"},
)

// ── Image metrics ─────────────────────────────────────────────────────────────

// ImageUploadsTotal counts image uploads.
// Label:
//   - result: "stored", "rejected" or "error"
var ImageUploadsTotal = factory.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_uploads_total",
		Help:      "Total number of image uploads, by result.",
	},
	[]string{"result"},
)

// ImageUploadBytes observes the size of accepted uploads.
var ImageUploadBytes = factory.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "image_upload_bytes",
		Help:      "Size of accepted image uploads in bytes.",
		Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 6), // 16KiB to 16MiB
	},
)

// ImageCleanupsTotal counts asynchronous image deletions.
// Label:
//   - result: "deleted", "failed" or "dropped" (queue full)
var ImageCleanupsTotal = factory.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_cleanups_total",
		Help:      "Total number of image cleanup jobs, by result.",
	},
	[]string{"result"},
)

// CleanupQueueDepth tracks the number of pending cleanup jobs per worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1")
var CleanupQueueDepth = factory.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cleanup_queue_depth",
		Help:      "Current number of image cleanup jobs pending in each worker channel.",
	},
	[]string{"worker_id"},
)
