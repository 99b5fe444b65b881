package gpukey

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/unkn0wn-root/gpucache/cachekey"
)

func key(vs ...any) cachekey.Key { return cachekey.NewGenerator().Record(vs...).Key() }

func TestLabelsAreNotKeyed(t *testing.T) {
	a := gputypes.DefaultSamplerDescriptor()
	b := a
	b.Label = "other"
	if !key(a).Equal(key(b)) {
		t.Fatal("sampler label changed the key")
	}
	b.MaxAnisotropy = 8
	if key(a).Equal(key(b)) {
		t.Fatal("MaxAnisotropy not keyed")
	}
}

func TestAdapterNameNotKeyed(t *testing.T) {
	a := gputypes.AdapterInfo{Name: "GPU A", Vendor: "v", VendorID: 0x10de, DeviceID: 1, Driver: "550"}
	b := a
	b.Name = "GPU A (renamed)"
	if !key(a).Equal(key(b)) {
		t.Fatal("adapter name changed the key")
	}
	b.Driver = "551"
	if key(a).Equal(key(b)) {
		t.Fatal("driver version not keyed")
	}
}

func TestLimitsEveryFieldKeyed(t *testing.T) {
	base := key(gputypes.DefaultLimits())
	l := gputypes.DefaultLimits()
	l.MaxNonSamplerBindings++
	if key(l).Equal(base) {
		t.Fatal("last limits field not keyed")
	}
	l = gputypes.DefaultLimits()
	l.MaxTextureDimension1D++
	if key(l).Equal(base) {
		t.Fatal("first limits field not keyed")
	}
}

func TestProgrammableStageSkipsModuleHandle(t *testing.T) {
	a := gputypes.ProgrammableStage{Module: 1, EntryPoint: "main", Constants: map[string]float64{"a": 1, "b": 2}}
	b := gputypes.ProgrammableStage{Module: 2, EntryPoint: "main", Constants: map[string]float64{"b": 2, "a": 1}}
	if !key(a).Equal(key(b)) {
		t.Fatal("module handle or map order leaked into key")
	}
	b.Constants["a"] = 3
	if key(a).Equal(key(b)) {
		t.Fatal("constants not keyed")
	}
}

func TestShaderSourceKindsDiffer(t *testing.T) {
	var wgsl, glsl gputypes.ShaderSource = gputypes.ShaderSourceWGSL{Code: "x"}, gputypes.ShaderSourceGLSL{Code: "x"}
	if key(wgsl).Equal(key(glsl)) {
		t.Fatal("WGSL and GLSL sources with equal text share a key")
	}
	if !key(wgsl).Equal(key(&gputypes.ShaderSourceWGSL{Code: "x"})) {
		t.Fatal("pointer and value sources differ")
	}
}

func TestBindGroupLayoutEntryTypes(t *testing.T) {
	buf := gputypes.BindGroupLayoutEntry{Binding: 0, Visibility: gputypes.ShaderStageCompute,
		Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}}
	smp := gputypes.BindGroupLayoutEntry{Binding: 0, Visibility: gputypes.ShaderStageCompute,
		Sampler: &gputypes.SamplerBindingLayout{}}
	if key(buf).Equal(key(smp)) {
		t.Fatal("buffer and sampler entries share a key")
	}

	dyn := buf
	dyn.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform, HasDynamicOffset: true}
	if key(buf).Equal(key(dyn)) {
		t.Fatal("dynamic offset not keyed")
	}

	if bt, err := EntryBindingType(buf); err != nil || bt != BindingTypeBuffer {
		t.Fatalf("EntryBindingType = %v, %v", bt, err)
	}
	both := buf
	both.Sampler = smp.Sampler
	if _, err := EntryBindingType(both); !errors.Is(err, ErrBindingType) {
		t.Fatalf("err = %v, want ErrBindingType", err)
	}
	if _, err := EntryBindingType(gputypes.BindGroupLayoutEntry{}); !errors.Is(err, ErrBindingType) {
		t.Fatalf("err = %v, want ErrBindingType", err)
	}
}

func TestColorTargetBlendPresence(t *testing.T) {
	blend := gputypes.BlendStateAlpha()
	a := gputypes.ColorTargetState{Format: gputypes.TextureFormatRGBA8Unorm, WriteMask: gputypes.ColorWriteMaskAll}
	b := a
	b.Blend = &blend
	if key(a).Equal(key(b)) {
		t.Fatal("blend presence not keyed")
	}
}

func TestVertexBufferLayouts(t *testing.T) {
	l := gputypes.VertexBufferLayout{ArrayStride: 16, StepMode: gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{{Format: gputypes.VertexFormatFloat32x4, ShaderLocation: 0}}}
	m := l
	m.Attributes = []gputypes.VertexAttribute{{Format: gputypes.VertexFormatFloat32x4, ShaderLocation: 1}}
	if key(l).Equal(key(m)) {
		t.Fatal("attribute location not keyed")
	}
}

func TestDepthStencilFaces(t *testing.T) {
	a := gputypes.DefaultDepthStencilState(gputypes.TextureFormatDepth24Plus)
	b := a
	b.StencilBack.PassOp = gputypes.StencilOperationReplace
	if key(a).Equal(key(b)) {
		t.Fatal("stencil back face not keyed")
	}
	c := gputypes.PrimitiveState{CullMode: gputypes.CullModeBack}
	if key(gputypes.PrimitiveState{}).Equal(key(c)) {
		t.Fatal("cull mode not keyed")
	}
	if key(gputypes.DefaultMultisampleState()).Equal(key(gputypes.MultisampleState{Count: 4, Mask: 0xFFFFFFFF})) {
		t.Fatal("sample count not keyed")
	}
}
