package metrics

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/zentask/internal/models"
)

func TestObserveReconcile(t *testing.T) {
	ok := reconcileTotal.WithLabelValues("goals", "success")
	failed := reconcileTotal.WithLabelValues("goals", "failure")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	ObserveReconcile(models.KindGoals, 10*time.Millisecond, nil)
	ObserveReconcile(models.KindGoals, 10*time.Millisecond, errors.New("offline"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestScheduledCoalesced(t *testing.T) {
	before := testutil.ToFloat64(coalescedTotal.WithLabelValues("habits"))
	Scheduled(models.KindHabits, false)
	Scheduled(models.KindHabits, true)
	assert.Equal(t, before+1, testutil.ToFloat64(coalescedTotal.WithLabelValues("habits")))

	SetPending(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(pendingTimers))
	SetPending(0)
}

func TestDump(t *testing.T) {
	BootstrapSource(models.KindLogs, "remote")
	Migrated(models.KindLogs)
	ObserveBatch(models.KindLogs, 2, 0)

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf))

	out := buf.String()
	assert.Contains(t, out, `zentask_bootstrap_source_total{kind="logs",source="remote"}`)
	assert.Contains(t, out, `zentask_bootstrap_migrated_total{kind="logs"}`)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		assert.True(t, strings.HasPrefix(line, "zentask_"), "unexpected line %q", line)
	}
}
