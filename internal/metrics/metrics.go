// Package metrics records sync activity with Prometheus collectors.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/julianstephens/zentask/internal/models"
)

const namespace = "zentask"

var (
	reconcileTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_total",
			Help:      "Reconciliation runs by kind and result",
		},
		[]string{"kind", "result"},
	)

	reconcileDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of reconciliation runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"kind"},
	)

	reconcileOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_operations_total",
			Help:      "Remote document operations issued by reconciliation",
		},
		[]string{"kind", "op"},
	)

	scheduledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_scheduled_total",
			Help:      "Debounced sync requests by kind",
		},
		[]string{"kind"},
	)

	coalescedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_coalesced_total",
			Help:      "Sync requests that replaced a pending timer",
		},
		[]string{"kind"},
	)

	pendingTimers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_pending_timers",
			Help:      "Debounce timers waiting to fire",
		},
	)

	bootstrapSources = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bootstrap_source_total",
			Help:      "Where each category's initial state came from",
		},
		[]string{"kind", "source"},
	)

	migratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bootstrap_migrated_total",
			Help:      "Categories pushed from local to remote on first load",
		},
		[]string{"kind"},
	)
)

// ObserveReconcile records one reconciliation run.
func ObserveReconcile(kind models.Kind, elapsed time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	reconcileTotal.WithLabelValues(string(kind), result).Inc()
	reconcileDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

// ObserveBatch records the size of a committed batch.
func ObserveBatch(kind models.Kind, upserts, deletes int) {
	reconcileOps.WithLabelValues(string(kind), "upsert").Add(float64(upserts))
	reconcileOps.WithLabelValues(string(kind), "delete").Add(float64(deletes))
}

// Scheduled records a debounced request; coalesced is true when it replaced a
// pending timer.
func Scheduled(kind models.Kind, coalesced bool) {
	scheduledTotal.WithLabelValues(string(kind)).Inc()
	if coalesced {
		coalescedTotal.WithLabelValues(string(kind)).Inc()
	}
}

// SetPending sets the number of pending debounce timers.
func SetPending(n int) {
	pendingTimers.Set(float64(n))
}

// BootstrapSource records where a category was loaded from.
func BootstrapSource(kind models.Kind, source string) {
	bootstrapSources.WithLabelValues(string(kind), source).Inc()
}

// Migrated records a category pushed during first-load migration.
func Migrated(kind models.Kind) {
	migratedTotal.WithLabelValues(string(kind)).Inc()
}

// Dump writes the zentask metrics gathered from the default registry as
// "name{labels} value" lines.
func Dump(w io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), namespace+"_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, m.GetCounter().GetValue()))
			case m.GetGauge() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, m.GetGauge().GetValue()))
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				lines = append(lines, fmt.Sprintf("%s count=%d sum=%.3fs", name, h.GetSampleCount(), h.GetSampleSum()))
			}
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
