package assets

type ShaderStage int

const (
	ShaderStageVertex   ShaderStage = 0x00000001
	ShaderStageGeometry ShaderStage = 0x00000002
	ShaderStageFragment ShaderStage = 0x00000004
	ShaderStageCompute  ShaderStage = 0x00000008
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStageGeometry:
		return "geometry"
	case ShaderStageFragment:
		return "fragment"
	case ShaderStageCompute:
		return "compute"
	}
	return "unknown"
}

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic uint32 = 0x07230203

// Shader is a compiled SPIR-V module.
type Shader struct {
	Base

	Stage ShaderStage
	Code  []uint32
}

func (s *Shader) Type() Type {
	return TypeShader
}

func (s *Shader) ConvertToDummy() {
	s.releasePayload(func() {
		s.Code = nil
	})
}
