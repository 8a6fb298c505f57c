package assets

import "github.com/spaghettifunk/anima-assets/engine/math"

// Material describes surface properties and references the textures it
// samples. The *Map fields are filled by the loader from nested loads.
type Material struct {
	Base

	Name            string
	ShaderName      string
	DiffuseColour   math.Vec4
	Shininess       float32
	DiffuseMapName  string
	SpecularMapName string
	NormalMapName   string
	AutoRelease     bool

	DiffuseMap  *Texture
	SpecularMap *Texture
	NormalMap   *Texture
}

func (m *Material) Type() Type {
	return TypeMaterial
}

// Maps returns the resolved texture maps that are present.
func (m *Material) Maps() []*Texture {
	var out []*Texture
	for _, t := range []*Texture{m.DiffuseMap, m.SpecularMap, m.NormalMap} {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

func (m *Material) ConvertToDummy() {
	m.releasePayload(func() {
		m.DiffuseMap = nil
		m.SpecularMap = nil
		m.NormalMap = nil
	})
}
