package gpukey

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/unkn0wn-root/gpucache/cachekey"
)

// shader source discriminants
const (
	sourceWGSL uint8 = iota
	sourceSPIRV
	sourceGLSL
)

func recordShaderSource(g *cachekey.Generator, src gputypes.ShaderSource) {
	switch s := src.(type) {
	case gputypes.ShaderSourceWGSL:
		g.Record(sourceWGSL, s.Code)
	case *gputypes.ShaderSourceWGSL:
		g.Record(sourceWGSL, s.Code)
	case gputypes.ShaderSourceSPIRV:
		g.Record(sourceSPIRV, s.Code)
	case *gputypes.ShaderSourceSPIRV:
		g.Record(sourceSPIRV, s.Code)
	case gputypes.ShaderSourceGLSL:
		g.Record(sourceGLSL, s.Code, s.Stage, s.Defines)
	case *gputypes.ShaderSourceGLSL:
		g.Record(sourceGLSL, s.Code, s.Stage, s.Defines)
	default:
		panic(fmt.Sprintf("gpukey: unknown shader source %T", src))
	}
}

// The module handle is not recorded; callers record the module's key.
func recordProgrammableStage(g *cachekey.Generator, s gputypes.ProgrammableStage) {
	g.Record(s.EntryPoint, s.Constants)
}

func recordPrimitiveState(g *cachekey.Generator, p gputypes.PrimitiveState) {
	g.Record(p.Topology, p.StripIndexFormat, p.FrontFace, p.CullMode, p.UnclippedDepth)
}

func recordMultisampleState(g *cachekey.Generator, m gputypes.MultisampleState) {
	g.Record(m.Count, m.Mask, m.AlphaToCoverageEnabled)
}

func recordStencilFaceState(g *cachekey.Generator, s gputypes.StencilFaceState) {
	g.Record(s.Compare, s.FailOp, s.DepthFailOp, s.PassOp)
}

func recordDepthStencilState(g *cachekey.Generator, d gputypes.DepthStencilState) {
	g.Record(d.Format, d.DepthWriteEnabled, d.DepthCompare,
		d.StencilFront, d.StencilBack, d.StencilReadMask, d.StencilWriteMask,
		d.DepthBias, d.DepthBiasSlopeScale, d.DepthBiasClamp)
}

func recordBlendComponent(g *cachekey.Generator, b gputypes.BlendComponent) {
	g.Record(b.SrcFactor, b.DstFactor, b.Operation)
}

func recordBlendState(g *cachekey.Generator, b gputypes.BlendState) {
	g.Record(b.Color, b.Alpha)
}

func recordColorTargetState(g *cachekey.Generator, c gputypes.ColorTargetState) {
	g.Record(c.Format, c.Blend, c.WriteMask)
}

func recordVertexAttribute(g *cachekey.Generator, a gputypes.VertexAttribute) {
	g.Record(a.Format, a.Offset, a.ShaderLocation)
}

func recordVertexBufferLayout(g *cachekey.Generator, l gputypes.VertexBufferLayout) {
	g.Record(l.ArrayStride, l.StepMode)
	g.RecordIterable(l.Attributes)
}
