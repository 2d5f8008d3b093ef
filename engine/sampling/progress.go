package sampling

// ProgressState names the phase of an accumulation.
type ProgressState int

const (
	// ProgressStateReset means nothing has been accumulated; the next frame clears the image buffer.
	ProgressStateReset ProgressState = iota

	// ProgressStateAccumulating means samples are being added frame by frame.
	ProgressStateAccumulating

	// ProgressStateCompleted means the sampling budget is exhausted and the kernel takes no new samples.
	ProgressStateCompleted
)

// String returns a short human readable name for the state.
func (s ProgressState) String() string {
	switch s {
	case ProgressStateReset:
		return "reset"
	case ProgressStateAccumulating:
		return "accumulating"
	case ProgressStateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Progress is the accumulation state machine. The zero value is ready to use and starts in
// ProgressStateReset. Progress is not safe for concurrent use; its owner serializes access.
type Progress struct {
	accumulated uint32
}

// NewProgress returns a Progress in the reset state.
//
// Returns:
//   - *Progress: a fresh accumulation tracker
func NewProgress() *Progress {
	return &Progress{}
}

// NextFrame advances the accumulation by one frame and returns the descriptor the kernel
// consumes for that frame.
//
// The first frame after a reset sets the clear flag so the kernel zeroes the image buffer.
// Subsequent frames add NumSamplesPerPixel while the budget allows. Once the budget is
// exhausted the descriptor carries zero samples, which halts the kernel without skipping
// the draw.
//
// Parameters:
//   - params: the sampling budget in effect for this frame
//
// Returns:
//   - GPUSamplingParams: the descriptor to upload for this frame
func (p *Progress) NextFrame(params Params) GPUSamplingParams {
	next := p.accumulated + params.NumSamplesPerPixel

	switch {
	case p.accumulated == 0:
		p.accumulated = next
		return GPUSamplingParams{
			NumSamplesPerPixel:         params.NumSamplesPerPixel,
			NumBounces:                 params.NumBounces,
			AccumulatedSamplesPerPixel: next,
			ClearAccumulatedSamples:    1,
		}
	case next <= params.MaxSamplesPerPixel:
		p.accumulated = next
		return GPUSamplingParams{
			NumSamplesPerPixel:         params.NumSamplesPerPixel,
			NumBounces:                 params.NumBounces,
			AccumulatedSamplesPerPixel: next,
			ClearAccumulatedSamples:    0,
		}
	default:
		return GPUSamplingParams{
			NumSamplesPerPixel:         0,
			NumBounces:                 params.NumBounces,
			AccumulatedSamplesPerPixel: p.accumulated,
			ClearAccumulatedSamples:    0,
		}
	}
}

// Reset drops all accumulated samples. The next frame clears the image buffer.
func (p *Progress) Reset() {
	p.accumulated = 0
}

// AccumulatedSamples returns the number of samples per pixel currently in the image buffer.
//
// Returns:
//   - uint32: accumulated samples per pixel
func (p *Progress) AccumulatedSamples() uint32 {
	return p.accumulated
}

// State reports the phase of the accumulation relative to the given budget.
//
// Parameters:
//   - params: the sampling budget to compare against
//
// Returns:
//   - ProgressState: the current phase
func (p *Progress) State(params Params) ProgressState {
	switch {
	case p.accumulated == 0:
		return ProgressStateReset
	case p.accumulated >= params.MaxSamplesPerPixel:
		return ProgressStateCompleted
	default:
		return ProgressStateAccumulating
	}
}

// Fraction returns accumulated / max as a value in [0, 1].
//
// Parameters:
//   - params: the sampling budget to compare against
//
// Returns:
//   - float32: completion fraction, 0 when the budget is zero
func (p *Progress) Fraction(params Params) float32 {
	if params.MaxSamplesPerPixel == 0 {
		return 0
	}
	f := float32(p.accumulated) / float32(params.MaxSamplesPerPixel)
	if f > 1 {
		return 1
	}
	return f
}
