package sampling

import (
	_ "embed"
	"encoding/binary"
)

// GPUSamplingParamsSource is the WGSL definition of the SamplingParams struct.
// Matches GPUSamplingParams layout exactly (16 bytes).
//
//go:embed assets/sampling_params.wgsl
var GPUSamplingParamsSource string

// GPUFrameDataSource is the WGSL definition of the FrameData struct.
// Matches GPUFrameData layout exactly (16 bytes).
//
//go:embed assets/frame_data.wgsl
var GPUFrameDataSource string

// GPUSamplingParams is the per-frame sampling descriptor read by the kernel.
// Size: 16 bytes.
type GPUSamplingParams struct {
	NumSamplesPerPixel         uint32 // offset  0
	NumBounces                 uint32 // offset  4
	AccumulatedSamplesPerPixel uint32 // offset  8
	ClearAccumulatedSamples    uint32 // offset 12: 1 on the first frame after a reset
}

// Size returns the size of the GPUSamplingParams struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUSamplingParams) Size() int {
	return 16
}

// Marshal serializes the GPUSamplingParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSamplingParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], g.NumSamplesPerPixel)
	binary.LittleEndian.PutUint32(buf[4:], g.NumBounces)
	binary.LittleEndian.PutUint32(buf[8:], g.AccumulatedSamplesPerPixel)
	binary.LittleEndian.PutUint32(buf[12:], g.ClearAccumulatedSamples)
	return buf
}

// GPUFrameData carries the per-frame metadata of the image bind group.
// Size: 16 bytes.
type GPUFrameData struct {
	ViewportSize [2]uint32 // offset 0: vec2<u32>
	FrameNumber  uint32    // offset 8
	_pad         uint32    // offset 12: padding to 16 bytes
}

// NewGPUFrameData builds the frame metadata record.
//
// Parameters:
//   - width, height: the current viewport size in pixels
//   - frameNumber: the frame counter, starting at 1
//
// Returns:
//   - GPUFrameData: the populated record
func NewGPUFrameData(width, height, frameNumber uint32) GPUFrameData {
	return GPUFrameData{
		ViewportSize: [2]uint32{width, height},
		FrameNumber:  frameNumber,
	}
}

// Size returns the size of the GPUFrameData struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUFrameData) Size() int {
	return 16
}

// Marshal serializes the GPUFrameData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUFrameData) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], g.ViewportSize[0])
	binary.LittleEndian.PutUint32(buf[4:], g.ViewportSize[1])
	binary.LittleEndian.PutUint32(buf[8:], g.FrameNumber)
	binary.LittleEndian.PutUint32(buf[12:], 0) // _pad
	return buf
}
