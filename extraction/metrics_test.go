package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_SnapshotTracksLifecycle(t *testing.T) {
	m := NewMetrics(2)

	snap := m.Snapshot()
	assert.Equal(t, 0, snap.Active)
	assert.Equal(t, 2, snap.MaxConcurrent)
	assert.Equal(t, "healthy", snap.Status())
	assert.Equal(t, 2, snap.SlotsAvailable())

	m.enqueue()
	m.acquired()
	snap = m.Snapshot()
	assert.Equal(t, 1, snap.Active)
	assert.Equal(t, 0, snap.Queued)

	m.finished(nil)
	snap = m.Snapshot()
	assert.Equal(t, 0, snap.Active)
	assert.Equal(t, 1, snap.Completed)
	assert.Equal(t, 0, snap.Failed)

	m.enqueue()
	m.acquired()
	m.finished(assert.AnError)
	snap = m.Snapshot()
	assert.Equal(t, 1, snap.Failed)
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.enqueue()
	m.acquired()
	m.abandoned()
	m.finished(nil)
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestMetrics_AtCapacityStatus(t *testing.T) {
	m := NewMetrics(1)
	m.enqueue()
	m.acquired()
	snap := m.Snapshot()
	assert.Equal(t, "at_capacity", snap.Status())
	assert.Equal(t, 0, snap.SlotsAvailable())
}
