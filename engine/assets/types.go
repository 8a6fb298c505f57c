package assets

import (
	"math/bits"
	"strings"
)

// Type tags an asset. Values are single bits so that loaders and writers can
// advertise the set of types they handle as one mask.
type Type uint64

const (
	TypeTexture Type = 1 << iota
	TypeImage
	TypeMaterial
	TypeMesh
	TypeShader
	TypeFont
	TypeBlob

	// TypeCount is the number of standard asset types, one cache bucket each.
	TypeCount = iota
)

const TypeAll Type = 1<<TypeCount - 1

var typeNames = [TypeCount]string{
	"texture",
	"image",
	"material",
	"mesh",
	"shader",
	"font",
	"blob",
}

// Index returns the bucket index of a single-bit type, or -1 when t is not
// exactly one known type.
func (t Type) Index() int {
	if bits.OnesCount64(uint64(t)) != 1 {
		return -1
	}
	ix := bits.TrailingZeros64(uint64(t))
	if ix >= TypeCount {
		return -1
	}
	return ix
}

func (t Type) Has(other Type) bool {
	return t&other != 0
}

// Each calls fn for every known type bit set in t, in index order.
func (t Type) Each(fn func(Type)) {
	for ix := 0; ix < TypeCount; ix++ {
		if single := Type(1) << ix; t&single != 0 {
			fn(single)
		}
	}
}

func (t Type) String() string {
	if ix := t.Index(); ix >= 0 {
		return typeNames[ix]
	}
	var names []string
	t.Each(func(single Type) {
		names = append(names, typeNames[single.Index()])
	})
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
