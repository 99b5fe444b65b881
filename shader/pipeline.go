package shader

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/unkn0wn-root/gpucache"
	"github.com/unkn0wn-root/gpucache/cachekey"
	"github.com/unkn0wn-root/gpucache/codec"
)

var ErrEntryPoint = errors.New("shader: entry point")

// StageInfo is one resolved pipeline stage.
type StageInfo struct {
	Stage      Stage              `cbor:"1,keyasint"`
	EntryPoint string             `cbor:"2,keyasint"`
	Workgroup  [3]uint32          `cbor:"3,keyasint"`
	Constants  map[string]float64 `cbor:"4,keyasint,omitempty"`
}

// Pipeline is the validated, backend-independent part of a pipeline: which
// entry point runs in each stage and with what constants. Backends build
// their native objects from it.
type Pipeline struct {
	Stages []StageInfo `cbor:"1,keyasint"`
}

// PipelineCodec is the default codec for Pipeline results.
func PipelineCodec() codec.Codec[Pipeline] { return codec.MustCBOR[Pipeline](true) }

// ComputePipelineRequest keys a compute pipeline by its layout and module
// keys. Compute carries the module itself for the miss path; its key is
// already covered by ModuleKey.
type ComputePipelineRequest struct {
	LayoutKey cachekey.Key
	ModuleKey cachekey.Key
	Stage     gputypes.ProgrammableStage
	Compute   cachekey.UnsafeUnkeyedValue[Module]
}

func (ComputePipelineRequest) CacheKeyType() cachekey.Type { return cachekey.TypeComputePipeline }

// NewComputePipelineRequest takes the module from a Compile result.
func NewComputePipelineRequest(layout cachekey.Key, mod *gpucache.CacheResult[Module], stage gputypes.ProgrammableStage) ComputePipelineRequest {
	return ComputePipelineRequest{
		LayoutKey: layout,
		ModuleKey: mod.CacheKey(),
		Stage:     stage,
		Compute:   cachekey.Unkeyed(mod.Value()),
	}
}

func CreateComputePipeline(ctx context.Context, dev *gpucache.Device, req ComputePipelineRequest) (*gpucache.CacheResult[Pipeline], error) {
	return gpucache.LoadOrCreate(ctx, dev, req, PipelineCodec(), buildComputePipeline)
}

func buildComputePipeline(r ComputePipelineRequest) (Pipeline, error) {
	st, err := resolve(r.Compute.Value(), r.Stage.EntryPoint, StageCompute, r.Stage.Constants)
	if err != nil {
		return Pipeline{}, err
	}
	if st.Workgroup[0]*st.Workgroup[1]*st.Workgroup[2] == 0 {
		return Pipeline{}, fmt.Errorf("%w %q: empty workgroup size %v", ErrEntryPoint, st.EntryPoint, st.Workgroup)
	}
	return Pipeline{Stages: []StageInfo{st}}, nil
}

// RenderPipelineRequest keys a render pipeline. A zero FragmentModuleKey
// means no fragment stage.
type RenderPipelineRequest struct {
	LayoutKey         cachekey.Key
	VertexModuleKey   cachekey.Key
	VertexEntryPoint  string
	VertexConstants   map[string]float64
	Buffers           []gputypes.VertexBufferLayout
	Primitive         gputypes.PrimitiveState
	DepthStencil      *gputypes.DepthStencilState
	Multisample       gputypes.MultisampleState
	FragmentModuleKey cachekey.Key
	FragmentEntry     string
	FragmentConstants map[string]float64
	Targets           []gputypes.ColorTargetState

	VertexModule   cachekey.UnsafeUnkeyedValue[Module]
	FragmentModule cachekey.UnsafeUnkeyedValue[*Module]
}

func (RenderPipelineRequest) CacheKeyType() cachekey.Type { return cachekey.TypeRenderPipeline }

func CreateRenderPipeline(ctx context.Context, dev *gpucache.Device, req RenderPipelineRequest) (*gpucache.CacheResult[Pipeline], error) {
	return gpucache.LoadOrCreate(ctx, dev, req, PipelineCodec(), buildRenderPipeline)
}

func buildRenderPipeline(r RenderPipelineRequest) (Pipeline, error) {
	vs, err := resolve(r.VertexModule.Value(), r.VertexEntryPoint, StageVertex, r.VertexConstants)
	if err != nil {
		return Pipeline{}, err
	}
	p := Pipeline{Stages: []StageInfo{vs}}

	fm := r.FragmentModule.Value()
	if len(r.FragmentModuleKey) == 0 || fm == nil {
		if len(r.Targets) > 0 {
			return Pipeline{}, fmt.Errorf("%w: color targets without a fragment stage", ErrEntryPoint)
		}
		return p, nil
	}
	fs, err := resolve(*fm, r.FragmentEntry, StageFragment, r.FragmentConstants)
	if err != nil {
		return Pipeline{}, err
	}
	p.Stages = append(p.Stages, fs)
	return p, nil
}

// resolve finds name in m, or the module's only entry point for the stage
// when name is empty.
func resolve(m Module, name string, want Stage, constants map[string]float64) (StageInfo, error) {
	var (
		ep    EntryPoint
		found int
	)
	for _, e := range m.EntryPoints {
		if e.Stage != want || (name != "" && e.Name != name) {
			continue
		}
		ep = e
		found++
	}
	switch {
	case found == 0 && name != "":
		if e, ok := m.EntryPoint(name); ok {
			return StageInfo{}, fmt.Errorf("%w %q is a %s shader, want %s", ErrEntryPoint, name, e.Stage, want)
		}
		return StageInfo{}, fmt.Errorf("%w %q not found", ErrEntryPoint, name)
	case found == 0:
		return StageInfo{}, fmt.Errorf("%w: module has no %s entry point", ErrEntryPoint, want)
	case found > 1:
		return StageInfo{}, fmt.Errorf("%w: module has %d %s entry points, name one", ErrEntryPoint, found, want)
	}
	return StageInfo{Stage: want, EntryPoint: ep.Name, Workgroup: ep.Workgroup, Constants: constants}, nil
}
