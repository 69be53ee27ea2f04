package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	coremetrics "github.com/gridwise/microdispatch/core/metrics"
)

type countingSink struct {
	solves int
	sweeps int
}

func (c *countingSink) RecordSolve(coremetrics.SolveEvent) error { c.solves++; return nil }
func (c *countingSink) RecordSweep(coremetrics.SweepEvent) error { c.sweeps++; return nil }

func TestMultiSinkFanout(t *testing.T) {
	a := &countingSink{}
	b := &countingSink{}
	m := NewMultiSink(a, b, coremetrics.NopSink{})

	assert.NoError(t, m.RecordSolve(coremetrics.SolveEvent{RunID: "r"}))
	assert.NoError(t, m.RecordSweep(coremetrics.SweepEvent{RunID: "r"}))

	assert.Equal(t, 1, a.solves)
	assert.Equal(t, 1, b.solves)
	assert.Equal(t, 1, a.sweeps)
	assert.Equal(t, 1, b.sweeps)
}
