package raytracer

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resizedSphere = `struct Sphere {
    center: vec4<f32>,
    radius: f32,
    materialIdx: u32,
    emission: vec4<f32>,
}`

func TestVerifyKernelLayout_ShippedKernel(t *testing.T) {
	p, err := buildPipeline("rt", kernelShaderSource)
	require.NoError(t, err)
	assert.NoError(t, VerifyKernelLayout(p))
}

func TestVerifyKernelLayout_ResizedSphere(t *testing.T) {
	source := strings.Replace(kernelShaderSource, "//@oxy:include sphere", resizedSphere, 1)
	require.NotEqual(t, kernelShaderSource, source)

	p, err := buildPipeline("rt", source)
	require.NoError(t, err)

	err = VerifyKernelLayout(p)
	assert.ErrorIs(t, err, ErrKernelLayout)
	assert.Contains(t, err.Error(), "group 3 binding 0")
}

func TestVerifyKernelLayout_WrongAddressSpace(t *testing.T) {
	source := strings.Replace(kernelShaderSource, "storage_read skyState", "storage_uniform skyState", 1)
	require.NotEqual(t, kernelShaderSource, source)

	p, err := buildPipeline("rt", source)
	require.NoError(t, err)

	err = VerifyKernelLayout(p)
	assert.ErrorIs(t, err, ErrKernelLayout)
	assert.Contains(t, err.Error(), "group 2 binding 2")
}

func TestVerifyKernelLayout_MissingBinding(t *testing.T) {
	source := strings.Replace(kernelShaderSource, "//@oxy:group 3 3 storage_read lights array<u32>", "", 1)
	require.NotEqual(t, kernelShaderSource, source)

	p, err := buildPipeline("rt", source)
	require.NoError(t, err)
	assert.ErrorIs(t, VerifyKernelLayout(p), ErrKernelLayout)
}

func TestVerifyKernelLayout_SwappedBindings(t *testing.T) {
	source := strings.Replace(kernelShaderSource, "//@oxy:group 3 0 storage_read spheres array<sphere>", "//@oxy:group 3 0 storage_read spheres array<material>", 1)
	source = strings.Replace(source, "//@oxy:group 3 1 storage_read materials array<material>", "//@oxy:group 3 1 storage_read materials array<sphere>", 1)

	p, err := buildPipeline("rt", source)
	require.NoError(t, err)
	assert.ErrorIs(t, VerifyKernelLayout(p), ErrKernelLayout)
}

func TestVerifyKernelLayout_MissingShader(t *testing.T) {
	assert.ErrorIs(t, VerifyKernelLayout(pipeline.NewPipeline("empty")), ErrKernelLayout)
}

func TestBuildPipeline_RequiresFragmentEntryPoint(t *testing.T) {
	source := strings.Replace(kernelShaderSource, "@fragment", "", 1)
	_, err := buildPipeline("rt", source)
	assert.ErrorIs(t, err, ErrKernelSource)
}
