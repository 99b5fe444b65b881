package cachekey

import "strconv"

// Type discriminates request kinds. It is recorded right after the device
// key so different requests with identical fields never share a key.
type Type uint32

const (
	TypeShaderModule Type = iota
	TypeBindGroupLayout
	TypeComputePipeline
	TypeRenderPipeline
	TypeForTesting
)

func (t Type) String() string {
	switch t {
	case TypeShaderModule:
		return "ShaderModule"
	case TypeBindGroupLayout:
		return "BindGroupLayout"
	case TypeComputePipeline:
		return "ComputePipeline"
	case TypeRenderPipeline:
		return "RenderPipeline"
	case TypeForTesting:
		return "ForTesting"
	}
	return "Type(" + strconv.FormatUint(uint64(t), 10) + ")"
}
