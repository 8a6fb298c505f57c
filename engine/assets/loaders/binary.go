package loaders

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
)

// BinaryLoader reads anima binary resources: a little endian BlobHeader
// followed by an opaque payload.
type BinaryLoader struct{}

func (bl *BinaryLoader) Extensions() []string {
	return []string{"anb"}
}

func (bl *BinaryLoader) SupportedTypes() assets.Type {
	return assets.TypeBlob
}

func (bl *BinaryLoader) IsLoadable(f *assets.File) bool {
	header := f.Header(4)
	return len(header) == 4 && binary.LittleEndian.Uint32(header) == assets.BlobMagic
}

func (bl *BinaryLoader) LoadAsset(f *assets.File, ctx *assets.LoadContext, hierarchyLevel uint32) (assets.Bundle, error) {
	if f.Size() < assets.BlobHeaderSize {
		return assets.Bundle{}, fmt.Errorf("%w: '%s' is shorter than a blob header", core.ErrInvalidAsset, f.Name())
	}
	var header assets.BlobHeader
	if err := binary.Read(bytes.NewReader(f.Header(assets.BlobHeaderSize)), binary.LittleEndian, &header); err != nil {
		return assets.Bundle{}, fmt.Errorf("%w: %s: %v", core.ErrInvalidAsset, f.Name(), err)
	}
	payload := append([]byte(nil), f.Bytes()[assets.BlobHeaderSize:]...)
	return assets.NewBundle(&assets.Blob{Header: header, Payload: payload}), nil
}
