package renderer

import (
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend marks pipelines as registered with a zero-value GPU pipeline.
type fakeBackend struct {
	registered  []string
	registerErr error
	sizes       [][2]int
	presentMode PresentMode
	draws       int
}

func (b *fakeBackend) configureSurface(width, height int) {
	b.sizes = append(b.sizes, [2]int{width, height})
}

func (b *fakeBackend) setPresentMode(mode PresentMode) {
	b.presentMode = mode
}

func (b *fakeBackend) registerRenderPipeline(p pipeline.Pipeline) error {
	if b.registerErr != nil {
		return b.registerErr
	}
	b.registered = append(b.registered, p.PipelineKey())
	p.SetRenderPipeline(&wgpu.RenderPipeline{})
	return nil
}

func (b *fakeBackend) initMeshBuffers(bind_group_provider.BindGroupProvider, []byte, int) error {
	return nil
}

func (b *fakeBackend) initBindGroup(bind_group_provider.BindGroupProvider, wgpu.BindGroupLayoutDescriptor, map[int]wgpu.BufferUsage, map[int]uint64) error {
	return nil
}

func (b *fakeBackend) writeBuffers([]bind_group_provider.BufferWrite) {}

func (b *fakeBackend) beginFrame() error { return nil }

func (b *fakeBackend) drawCall(pipeline.Pipeline, bind_group_provider.BindGroupProvider, uint32, []bind_group_provider.BindGroupProvider) error {
	b.draws++
	return nil
}

func (b *fakeBackend) endFrame() {}

func (b *fakeBackend) present() {}

func newTestRenderer() (*renderer, *fakeBackend) {
	b := &fakeBackend{}
	return &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backend:       b,
	}, b
}

func TestRegisterPipelines_SkipsRegisteredKeys(t *testing.T) {
	r, b := newTestRenderer()

	first := pipeline.NewPipeline("rt")
	require.NoError(t, r.RegisterPipelines(first))
	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline("rt"), pipeline.NewPipeline("other")))

	assert.Equal(t, []string{"rt", "other"}, b.registered)
	assert.Same(t, first, r.Pipeline("rt"))
}

func TestRegisterPipelines_Error(t *testing.T) {
	r, b := newTestRenderer()
	b.registerErr = errors.New("bad wgsl")

	err := r.RegisterPipelines(pipeline.NewPipeline("rt"))
	assert.ErrorIs(t, err, b.registerErr)
	assert.Nil(t, r.Pipeline("rt"))
}

func TestDrawCall_UnknownPipeline(t *testing.T) {
	r, b := newTestRenderer()
	mesh := bind_group_provider.NewBindGroupProvider("Quad")

	assert.Error(t, r.DrawCall("rt", mesh, 1, nil))
	assert.Zero(t, b.draws)

	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline("rt")))
	assert.NoError(t, r.DrawCall("rt", mesh, 1, nil))
	assert.Equal(t, 1, b.draws)
}

func TestResize_IgnoresEmptySurface(t *testing.T) {
	r, b := newTestRenderer()
	r.Resize(0, 600)
	r.Resize(800, -1)
	r.Resize(800, 600)
	assert.Equal(t, [][2]int{{800, 600}}, b.sizes)

	r.SetPresentMode(PresentModeVSync)
	assert.Equal(t, PresentModeVSync, b.presentMode)
}

func TestReleasePipeline_UnknownKey(t *testing.T) {
	r, _ := newTestRenderer()
	r.ReleasePipeline("missing")
	assert.Nil(t, r.Pipeline("missing"))
}

func TestOptions(t *testing.T) {
	r := &renderer{}
	for _, opt := range []RendererBuilderOption{
		WithPresentMode(PresentModeVSync),
		WithForceSoftwareRenderer(true),
		WithClearColor(0.5, 0.25, 0),
	} {
		opt(r)
	}
	require.NotNil(t, r.presentMode)
	assert.Equal(t, PresentModeVSync, *r.presentMode)
	assert.True(t, r.forceFallbackAdapter)
	assert.Equal(t, wgpu.Color{R: 0.5, G: 0.25, B: 0, A: 1}, r.clearColor)
}
