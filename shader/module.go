package shader

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/naga/ir"

	"github.com/unkn0wn-root/gpucache/codec"
)

// Stage is the pipeline stage an entry point runs in.
type Stage uint8

const (
	StageVertex Stage = iota
	StageTask
	StageMesh
	StageFragment
	StageCompute
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageTask:
		return "task"
	case StageMesh:
		return "mesh"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	}
	return fmt.Sprintf("Stage(%d)", uint8(s))
}

func stageOf(s ir.ShaderStage) Stage {
	switch s {
	case ir.StageVertex:
		return StageVertex
	case ir.StageTask:
		return StageTask
	case ir.StageMesh:
		return StageMesh
	case ir.StageFragment:
		return StageFragment
	}
	return StageCompute
}

type EntryPoint struct {
	Name      string    `cbor:"1,keyasint" msgpack:"name"`
	Stage     Stage     `cbor:"2,keyasint" msgpack:"stage"`
	Workgroup [3]uint32 `cbor:"3,keyasint" msgpack:"workgroup"`
}

// Module is a compiled shader: the SPIR-V words as little-endian bytes and
// the entry points found in the source.
type Module struct {
	SPIRV       []byte       `cbor:"1,keyasint" msgpack:"spirv"`
	EntryPoints []EntryPoint `cbor:"2,keyasint" msgpack:"entry_points"`
}

func (m Module) EntryPoint(name string) (EntryPoint, bool) {
	for _, e := range m.EntryPoints {
		if e.Name == name {
			return e, true
		}
	}
	return EntryPoint{}, false
}

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic = 0x07230203

var ErrNotSPIRV = errors.New("shader: not a SPIR-V module")

// Check rejects modules whose SPIR-V is truncated or lacks the magic number.
func Check(m Module) error {
	if len(m.SPIRV) < 20 || len(m.SPIRV)%4 != 0 {
		return fmt.Errorf("%w: %d bytes", ErrNotSPIRV, len(m.SPIRV))
	}
	if w := binary.LittleEndian.Uint32(m.SPIRV); w != SPIRVMagic {
		return fmt.Errorf("%w: magic %#08x", ErrNotSPIRV, w)
	}
	return nil
}

// DefaultCodec stores modules as deterministic CBOR and checks them on
// decode, so a damaged blob is recompiled instead of handed to a driver.
func DefaultCodec() codec.Codec[Module] {
	return WithCheck(codec.MustCBOR[Module](true))
}

// WithCheck wraps any module codec with Check.
func WithCheck(c codec.Codec[Module]) codec.Codec[Module] {
	return codec.Checked[Module]{Inner: c, Check: Check}
}
