package loaders

import (
	"encoding/binary"
	"fmt"
	"path"
	"strings"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
)

// ShaderLoader reads compiled SPIR-V modules. The stage is taken from the
// file name, e.g. `Builtin.MaterialShader.vert.spv`.
type ShaderLoader struct{}

func (sl *ShaderLoader) Extensions() []string {
	return []string{"spv"}
}

func (sl *ShaderLoader) SupportedTypes() assets.Type {
	return assets.TypeShader
}

func (sl *ShaderLoader) IsLoadable(f *assets.File) bool {
	header := f.Header(4)
	return len(header) == 4 && binary.LittleEndian.Uint32(header) == assets.SPIRVMagic && f.Size()%4 == 0
}

func (sl *ShaderLoader) LoadAsset(f *assets.File, ctx *assets.LoadContext, hierarchyLevel uint32) (assets.Bundle, error) {
	stage, ok := stageFromName(f.Name())
	if !ok {
		return assets.Bundle{}, fmt.Errorf("%w: cannot infer shader stage of '%s'", core.ErrInvalidAsset, f.Name())
	}
	return assets.NewBundle(&assets.Shader{
		Stage: stage,
		Code:  bytesToBytecode(f.Bytes()),
	}), nil
}

func stageFromName(name string) (assets.ShaderStage, bool) {
	base := strings.TrimSuffix(strings.ToLower(path.Base(name)), ".spv")
	switch path.Ext(base) {
	case ".vert", ".vs":
		return assets.ShaderStageVertex, true
	case ".geom", ".gs":
		return assets.ShaderStageGeometry, true
	case ".frag", ".fs":
		return assets.ShaderStageFragment, true
	case ".comp", ".cs":
		return assets.ShaderStageCompute, true
	}
	return 0, false
}

func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := range byteCode {
		byteCode[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return byteCode
}
