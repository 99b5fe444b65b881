// Package gpukey records gputypes descriptors into cache keys.
//
// Each descriptor gets an explicit field list. Labels are never recorded,
// and neither are uintptr handles to other GPU objects: a caller that keys on
// a referenced object records that object's own cache key instead.
//
// Importing the package installs the recorders with cachekey.Register.
package gpukey

import (
	"github.com/gogpu/gputypes"
	"github.com/unkn0wn-root/gpucache/cachekey"
)

func init() {
	cachekey.Register(recordAdapterInfo)
	cachekey.Register(recordLimits)

	cachekey.Register(recordBindGroupLayoutEntry)
	cachekey.Register(recordBufferBindingLayout)
	cachekey.Register(recordSamplerBindingLayout)
	cachekey.Register(recordTextureBindingLayout)
	cachekey.Register(recordStorageTextureBindingLayout)
	cachekey.Register(recordPushConstantRange)
	cachekey.Register(recordSamplerDescriptor)

	cachekey.Register(recordShaderSource)
	cachekey.Register(recordProgrammableStage)

	cachekey.Register(recordPrimitiveState)
	cachekey.Register(recordMultisampleState)
	cachekey.Register(recordStencilFaceState)
	cachekey.Register(recordDepthStencilState)
	cachekey.Register(recordBlendComponent)
	cachekey.Register(recordBlendState)
	cachekey.Register(recordColorTargetState)
	cachekey.Register(recordVertexAttribute)
	cachekey.Register(recordVertexBufferLayout)
}

// Name and adapter-reported strings other than the driver are omitted; the
// PCI ids already identify the hardware.
func recordAdapterInfo(g *cachekey.Generator, a gputypes.AdapterInfo) {
	g.Record(a.Vendor, a.VendorID, a.DeviceID, a.DeviceType, a.Backend, a.Driver, a.DriverInfo)
}

func recordLimits(g *cachekey.Generator, l gputypes.Limits) {
	g.Record(
		l.MaxTextureDimension1D,
		l.MaxTextureDimension2D,
		l.MaxTextureDimension3D,
		l.MaxTextureArrayLayers,
		l.MaxBindGroups,
		l.MaxBindGroupsPlusVertexBuffers,
		l.MaxBindingsPerBindGroup,
		l.MaxDynamicUniformBuffersPerPipelineLayout,
		l.MaxDynamicStorageBuffersPerPipelineLayout,
		l.MaxSampledTexturesPerShaderStage,
		l.MaxSamplersPerShaderStage,
		l.MaxStorageBuffersPerShaderStage,
		l.MaxStorageTexturesPerShaderStage,
		l.MaxUniformBuffersPerShaderStage,
		l.MaxUniformBufferBindingSize,
		l.MaxStorageBufferBindingSize,
		l.MinUniformBufferOffsetAlignment,
		l.MinStorageBufferOffsetAlignment,
		l.MaxVertexBuffers,
		l.MaxBufferSize,
		l.MaxVertexAttributes,
		l.MaxVertexBufferArrayStride,
		l.MaxInterStageShaderVariables,
		l.MaxColorAttachments,
		l.MaxColorAttachmentBytesPerSample,
		l.MaxComputeWorkgroupStorageSize,
		l.MaxComputeInvocationsPerWorkgroup,
		l.MaxComputeWorkgroupSizeX,
		l.MaxComputeWorkgroupSizeY,
		l.MaxComputeWorkgroupSizeZ,
		l.MaxComputeWorkgroupsPerDimension,
		l.MaxPushConstantSize,
		l.MaxNonSamplerBindings,
	)
}
