// Package shader compiles WGSL to SPIR-V through a gpucache.Device, so each
// distinct source and option set is compiled once and then loaded from the
// blob store.
package shader

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/spirv"

	"github.com/unkn0wn-root/gpucache"
	"github.com/unkn0wn-root/gpucache/cachekey"
	"github.com/unkn0wn-root/gpucache/codec"
)

// CompileRequest is every input of a compile. Label only names the module in
// errors and logs.
type CompileRequest struct {
	Source     string
	SPIRVMajor uint8
	SPIRVMinor uint8
	Debug      bool
	Validate   bool
	Label      cachekey.UnsafeUnkeyedValue[string]
}

func (CompileRequest) CacheKeyType() cachekey.Type { return cachekey.TypeShaderModule }

// Option adjusts a CompileRequest or the codec used to store the result.
type Option func(*settings)

type settings struct {
	req   CompileRequest
	codec codec.Codec[Module]
}

func WithSPIRVVersion(v spirv.Version) Option {
	return func(s *settings) { s.req.SPIRVMajor, s.req.SPIRVMinor = v.Major, v.Minor }
}

func WithDebug() Option         { return func(s *settings) { s.req.Debug = true } }
func WithoutValidation() Option { return func(s *settings) { s.req.Validate = false } }
func WithLabel(l string) Option { return func(s *settings) { s.req.Label = cachekey.Unkeyed(l) } }

func WithCodec(c codec.Codec[Module]) Option { return func(s *settings) { s.codec = c } }

// NewRequest returns the request Compile would build for src and opts.
func NewRequest(src string, opts ...Option) CompileRequest {
	return apply(src, opts).req
}

func apply(src string, opts []Option) settings {
	def := naga.DefaultOptions()
	s := settings{
		req: CompileRequest{
			Source:     src,
			SPIRVMajor: def.SPIRVVersion.Major,
			SPIRVMinor: def.SPIRVVersion.Minor,
			Debug:      def.Debug,
			Validate:   def.Validate,
		},
		codec: DefaultCodec(),
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// Compile returns the module for src, compiling on a miss. A compiled module
// is not stored until the caller calls EnsureStored, typically after the
// backend accepted it.
func Compile(ctx context.Context, dev *gpucache.Device, src string, opts ...Option) (*gpucache.CacheResult[Module], error) {
	s := apply(src, opts)
	return gpucache.LoadOrCreate(ctx, dev, s.req, s.codec, compile)
}

// compile is the miss path. It reads nothing but r.
func compile(r CompileRequest) (Module, error) {
	name := r.Label.Value()
	if name == "" {
		name = "<anonymous>"
	}

	ast, err := naga.Parse(r.Source)
	if err != nil {
		return Module{}, fmt.Errorf("shader %s: %w", name, err)
	}
	mod, err := naga.LowerWithSource(ast, r.Source)
	if err != nil {
		return Module{}, fmt.Errorf("shader %s: lower: %w", name, err)
	}
	if r.Validate {
		verrs, err := naga.Validate(mod)
		if err != nil {
			return Module{}, fmt.Errorf("shader %s: validate: %w", name, err)
		}
		if len(verrs) > 0 {
			errs := make([]error, len(verrs))
			for i := range verrs {
				errs[i] = verrs[i]
			}
			return Module{}, fmt.Errorf("shader %s: validation failed: %w", name, errors.Join(errs...))
		}
	}
	code, err := naga.GenerateSPIRV(mod, spirv.Options{
		Version: spirv.Version{Major: r.SPIRVMajor, Minor: r.SPIRVMinor},
		Debug:   r.Debug,
	})
	if err != nil {
		return Module{}, fmt.Errorf("shader %s: %w", name, err)
	}

	out := Module{SPIRV: code, EntryPoints: make([]EntryPoint, 0, len(mod.EntryPoints))}
	for _, ep := range mod.EntryPoints {
		out.EntryPoints = append(out.EntryPoints, EntryPoint{
			Name:      ep.Name,
			Stage:     stageOf(ep.Stage),
			Workgroup: ep.Workgroup,
		})
	}
	return out, nil
}
