package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTick_WaitsForInterval(t *testing.T) {
	p := NewProfiler(nil)
	start := p.lastTime

	_, ok := p.tick(start.Add(500 * time.Millisecond))
	assert.False(t, ok)

	snap, ok := p.tick(start.Add(time.Second))
	assert.True(t, ok)
	assert.InDelta(t, 2, snap.FPS, 1e-9)
	assert.Zero(t, snap.Target)
	assert.Equal(t, snap, p.Last())
	assert.Equal(t, 0, p.frameCount)
}

func TestTick_SampleRate(t *testing.T) {
	accumulated, target := uint32(0), uint32(256)
	p := NewProfiler(func() (uint32, uint32) { return accumulated, target })
	start := p.lastTime

	accumulated = 40
	snap, ok := p.tick(start.Add(2 * time.Second))
	assert.True(t, ok)
	assert.InDelta(t, 20, snap.SamplesPerSecond, 1e-9)
	assert.InDelta(t, 15.625, snap.Percent(), 1e-9)
	assert.False(t, snap.Converged())

	accumulated = 8
	snap, ok = p.tick(start.Add(3 * time.Second))
	assert.True(t, ok)
	assert.InDelta(t, 8, snap.SamplesPerSecond, 1e-9, "a restart counts from zero")

	accumulated = 256
	snap, _ = p.tick(start.Add(4 * time.Second))
	assert.True(t, snap.Converged())
	assert.InDelta(t, 100, snap.Percent(), 1e-9)
}

func TestSnapshot_NoTarget(t *testing.T) {
	s := Snapshot{Accumulated: 10}
	assert.Zero(t, s.Percent())
	assert.False(t, s.Converged())
}
