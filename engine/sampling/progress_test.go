package sampling

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress_RoundTrip(t *testing.T) {
	p := NewProgress()
	params := Params{MaxSamplesPerPixel: 16, NumSamplesPerPixel: 4, NumBounces: 8}

	first := p.NextFrame(params)
	assert.Equal(t, GPUSamplingParams{NumSamplesPerPixel: 4, NumBounces: 8, AccumulatedSamplesPerPixel: 4, ClearAccumulatedSamples: 1}, first)
	assert.Equal(t, ProgressStateAccumulating, p.State(params))

	second := p.NextFrame(params)
	assert.Equal(t, uint32(4), second.NumSamplesPerPixel)
	assert.Equal(t, uint32(8), second.AccumulatedSamplesPerPixel)
	assert.Equal(t, uint32(0), second.ClearAccumulatedSamples)

	third := p.NextFrame(params)
	assert.Equal(t, uint32(12), third.AccumulatedSamplesPerPixel)

	fourth := p.NextFrame(params)
	assert.Equal(t, uint32(16), fourth.AccumulatedSamplesPerPixel)
	assert.Equal(t, float32(1), p.Fraction(params))
	assert.Equal(t, ProgressStateCompleted, p.State(params))

	halted := p.NextFrame(params)
	assert.Equal(t, GPUSamplingParams{NumSamplesPerPixel: 0, NumBounces: 8, AccumulatedSamplesPerPixel: 16, ClearAccumulatedSamples: 0}, halted)
	assert.Equal(t, uint32(16), p.AccumulatedSamples())
}

func TestProgress_SingleFrameBudgetCompletesImmediately(t *testing.T) {
	p := NewProgress()
	params := Params{MaxSamplesPerPixel: 4, NumSamplesPerPixel: 4, NumBounces: 2}

	first := p.NextFrame(params)
	assert.Equal(t, uint32(1), first.ClearAccumulatedSamples)
	assert.Equal(t, ProgressStateCompleted, p.State(params))

	next := p.NextFrame(params)
	assert.Equal(t, uint32(0), next.NumSamplesPerPixel)
	assert.Equal(t, uint32(4), next.AccumulatedSamplesPerPixel)
}

func TestProgress_Reset(t *testing.T) {
	p := NewProgress()
	params := DefaultParams()

	for range 5 {
		p.NextFrame(params)
	}
	require.Equal(t, uint32(5), p.AccumulatedSamples())

	p.Reset()
	assert.Equal(t, uint32(0), p.AccumulatedSamples())
	assert.Equal(t, ProgressStateReset, p.State(params))
	assert.Equal(t, float32(0), p.Fraction(params))

	again := p.NextFrame(params)
	assert.Equal(t, uint32(1), again.ClearAccumulatedSamples)
	assert.Equal(t, uint32(1), again.AccumulatedSamplesPerPixel)
}

func TestProgress_FractionZeroBudget(t *testing.T) {
	var p Progress
	assert.Equal(t, float32(0), p.Fraction(Params{}))
}

func TestDefaultParams(t *testing.T) {
	assert.Equal(t, Params{MaxSamplesPerPixel: 256, NumSamplesPerPixel: 1, NumBounces: 8}, DefaultParams())
}

func TestGPUSamplingParams_Marshal(t *testing.T) {
	g := GPUSamplingParams{NumSamplesPerPixel: 1, NumBounces: 2, AccumulatedSamplesPerPixel: 3, ClearAccumulatedSamples: 4}
	buf := g.Marshal()

	require.Len(t, buf, 16)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[0:]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[4:]))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(buf[8:]))
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(buf[12:]))
}

func TestGPUFrameData_Marshal(t *testing.T) {
	g := NewGPUFrameData(1280, 720, 7)
	buf := g.Marshal()

	require.Len(t, buf, 16)
	assert.Equal(t, uint32(1280), binary.LittleEndian.Uint32(buf[0:]))
	assert.Equal(t, uint32(720), binary.LittleEndian.Uint32(buf[4:]))
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(buf[8:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[12:]))
}
