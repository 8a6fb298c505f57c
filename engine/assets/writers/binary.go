package writers

import (
	"encoding/binary"
	"fmt"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
)

// BinaryWriter writes blobs as anima binary resources.
type BinaryWriter struct{}

func (bw *BinaryWriter) Extensions() []string {
	return []string{"anb"}
}

func (bw *BinaryWriter) SupportedTypes() assets.Type {
	return assets.TypeBlob
}

func (bw *BinaryWriter) WriteAsset(f *assets.WriteFile, ctx *assets.WriteContext) error {
	blob, ok := ctx.Params.RootAsset.(*assets.Blob)
	if !ok {
		return fmt.Errorf("%w: %T is not a blob", core.ErrInvalidAsset, ctx.Params.RootAsset)
	}
	if blob.State() == assets.StateDummy {
		return fmt.Errorf("%w: blob '%s' has no payload", core.ErrInvalidAsset, blob.CacheKey())
	}
	header := blob.Header
	header.MagicNumber = assets.BlobMagic
	if header.Version == 0 {
		header.Version = 1
	}
	if err := binary.Write(f, binary.LittleEndian, header); err != nil {
		return err
	}
	_, err := f.Write(blob.Payload)
	return err
}

// ShaderWriter writes SPIR-V modules.
type ShaderWriter struct{}

func (sw *ShaderWriter) Extensions() []string {
	return []string{"spv"}
}

func (sw *ShaderWriter) SupportedTypes() assets.Type {
	return assets.TypeShader
}

func (sw *ShaderWriter) WriteAsset(f *assets.WriteFile, ctx *assets.WriteContext) error {
	shader, ok := ctx.Params.RootAsset.(*assets.Shader)
	if !ok {
		return fmt.Errorf("%w: %T is not a shader", core.ErrInvalidAsset, ctx.Params.RootAsset)
	}
	if len(shader.Code) == 0 || shader.Code[0] != assets.SPIRVMagic {
		return fmt.Errorf("%w: shader '%s' is not a SPIR-V module", core.ErrInvalidAsset, shader.CacheKey())
	}
	return binary.Write(f, binary.LittleEndian, shader.Code)
}
