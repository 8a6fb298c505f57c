package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(7, 0, 5))
	assert.Equal(t, float32(0.5), Clamp(float32(0.5), 0, 1))
	assert.Equal(t, -1.0, Clamp(-3.0, -1.0, 1.0))
}

func TestGenerateNormalsFacingUp(t *testing.T) {
	vertices := []Vertex3D{
		{Position: Vec3{0, 0, 0}},
		{Position: Vec3{0, 0, 1}},
		{Position: Vec3{1, 0, 0}},
	}
	GenerateNormals(vertices, []uint32{0, 1, 2})
	for _, v := range vertices {
		assert.True(t, v.Normal.Compare(Vec3{0, 1, 0}, 1e-6), "normal %+v", v.Normal)
	}
}

func TestDeduplicateVertices(t *testing.T) {
	a := Vertex3D{Position: Vec3{0, 0, 0}}
	b := Vertex3D{Position: Vec3{1, 0, 0}}
	c := Vertex3D{Position: Vec3{0, 1, 0}}
	vertices := []Vertex3D{a, b, c, a, c, b}
	indices := []uint32{0, 1, 2, 3, 4, 5}

	out := DeduplicateVertices(vertices, indices)
	assert.Equal(t, []Vertex3D{a, b, c}, out)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 1}, indices)
}

func TestExtents(t *testing.T) {
	e := NewEmptyExtents3D()
	assert.True(t, e.IsEmpty())
	e = e.Extend(Vec3{-1, 2, 0}).Extend(Vec3{3, -2, 1})
	assert.Equal(t, Vec3{-1, -2, 0}, e.Min)
	assert.Equal(t, Vec3{3, 2, 1}, e.Max)
	assert.Equal(t, Vec3{1, 0, 0.5}, e.Center())
}

func TestMat4TranslationTransform(t *testing.T) {
	m := NewMat4Scale(Vec3{2, 2, 2}).Mul(NewMat4Translation(Vec3{1, 0, 0}))
	p := Vec3{1, 1, 1}.Transform(m)
	assert.True(t, p.Compare(Vec3{3, 2, 2}, 1e-6), "got %+v", p)
}
