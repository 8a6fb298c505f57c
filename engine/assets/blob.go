package assets

// BlobMagic marks a file as an anima binary resource.
const BlobMagic uint32 = 0xdaaaadd1

// BlobHeader prefixes every anima binary resource, little endian.
type BlobHeader struct {
	MagicNumber uint32
	// AssetType is the Type of the asset the payload encodes, 0 for raw data.
	AssetType uint32
	Version   uint8
	Reserved  uint16
}

// BlobHeaderSize is the encoded size of BlobHeader.
const BlobHeaderSize = 4 + 4 + 1 + 2

// Blob is an opaque binary resource.
type Blob struct {
	Base

	Header  BlobHeader
	Payload []byte
}

func (b *Blob) Type() Type {
	return TypeBlob
}

func (b *Blob) ConvertToDummy() {
	b.releasePayload(func() {
		b.Payload = nil
	})
}
