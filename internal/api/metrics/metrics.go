// Package metrics defines and registers all custom Prometheus metrics for the
// proxy authentication service. It is the single source of truth for metric
// names, labels, and help strings.
//
// All metrics register with the default Prometheus registry through promauto,
// which is the registry echoprometheus serves on /metrics.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/99minutos/proxy-auth/internal/core/domain"
	"github.com/99minutos/proxy-auth/internal/core/ports"
)

const namespace = "proxyauth"

// ── Resolution metrics ────────────────────────────────────────────────────────

// ResolutionsTotal counts identity resolutions.
// Labels:
//   - origin: "hardcoded", "persisted", or "none" on failure
//   - outcome: "ok", "unknown_user", "store_error", "hook_error", "error"
var ResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolutions_total",
		Help:      "Total number of identity resolutions, by origin and outcome.",
	},
	[]string{"origin", "outcome"},
)

// ResolutionDuration measures the full resolution pipeline including hooks.
var ResolutionDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "resolution_duration_seconds",
		Help:      "Duration of identity resolution, hooks included.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionOutcomesTotal counts session state machine passes.
// Labels:
//   - operation: "login", "reauth", "logout"
//   - state: final state of the pass
var SessionOutcomesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_outcomes_total",
		Help:      "Total number of session operations, by final state.",
	},
	[]string{"operation", "state"},
)

// MisconfigurationsTotal counts logins refused because of a broken proxy header.
var MisconfigurationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "proxy_misconfigurations_total",
		Help:      "Logins refused because the trusted header was missing or \"(null)\".",
	},
	[]string{"reason"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsDroppedTotal counts audit events discarded because a worker queue was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of login audit events dropped on a full queue.",
	},
)

// AuditQueueDepth tracks pending events per dispatcher worker.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// Outcome classifies a resolution error for the outcome label.
func Outcome(err error) string {
	var se *domain.StoreError
	var he *domain.HookError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUnknownUser):
		return "unknown_user"
	case errors.As(err, &se):
		return "store_error"
	case errors.As(err, &he):
		return "hook_error"
	}
	return "error"
}

// InstrumentedResolver records resolution metrics around another resolver.
type InstrumentedResolver struct {
	next ports.IdentityResolver
}

func NewInstrumentedResolver(next ports.IdentityResolver) *InstrumentedResolver {
	return &InstrumentedResolver{next: next}
}

func (r *InstrumentedResolver) Resolve(ctx context.Context, username string) (*domain.Identity, error) {
	start := time.Now()
	identity, err := r.next.Resolve(ctx, username)

	outcome := Outcome(err)
	origin := "none"
	if identity != nil {
		origin = string(identity.Origin)
	}
	ResolutionsTotal.WithLabelValues(origin, outcome).Inc()
	ResolutionDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	return identity, err
}
