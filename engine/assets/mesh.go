package assets

import "github.com/spaghettifunk/anima-assets/engine/math"

// Mesh is an indexed triangle list.
type Mesh struct {
	Base

	Name     string
	Vertices []math.Vertex3D
	Indices  []uint32
	Extents  math.Extents3D
	Center   math.Vec3

	MaterialName string
	Material     *Material
}

func (m *Mesh) Type() Type {
	return TypeMesh
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

func (m *Mesh) ConvertToDummy() {
	m.releasePayload(func() {
		m.Vertices = nil
		m.Indices = nil
		m.Material = nil
	})
}
