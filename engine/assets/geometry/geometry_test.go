package geometry

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
	"github.com/spaghettifunk/anima-assets/engine/math"
)

func init() {
	core.SetLogOutput(io.Discard)
}

func TestCreatePlane(t *testing.T) {
	mesh := CreatePlane(4, 2, 2, 1, 2, 1, "floor", "")
	assert.Equal(t, "floor", mesh.Name)
	assert.Equal(t, DefaultMaterialName, mesh.MaterialName)
	assert.Len(t, mesh.Vertices, 8)
	assert.Equal(t, 4, mesh.TriangleCount())
	assert.Equal(t, math.NewVec3(-2, -1, 0), mesh.Extents.Min)
	assert.Equal(t, math.NewVec3(2, 1, 0), mesh.Extents.Max)
	assert.Equal(t, math.NewVec3Zero(), mesh.Center)

	for _, v := range mesh.Vertices {
		assert.Equal(t, math.NewVec3(0, 0, 1), v.Normal)
		assert.LessOrEqual(t, v.Texcoord.X, float32(2))
	}

	// Winding agrees with the stored normals.
	RecalculateNormals(mesh, false)
	for _, v := range mesh.Vertices {
		assert.True(t, v.Normal.Compare(math.NewVec3(0, 0, 1), math.K_FLOAT_EPSILON))
	}
}

func TestCreatePlaneDefaults(t *testing.T) {
	mesh := CreatePlane(0, -1, 0, 0, 0, 0, "", "")
	assert.Equal(t, DefaultMeshName, mesh.Name)
	assert.Equal(t, 2, mesh.TriangleCount())
	assert.Equal(t, math.NewVec3(0.5, 0.5, 0), mesh.Extents.Max)
}

func TestCreateCube(t *testing.T) {
	mesh := CreateCube(2, 4, 6, 1, 1, "crate", "wood")
	assert.Len(t, mesh.Vertices, 24)
	assert.Equal(t, 12, mesh.TriangleCount())
	assert.Equal(t, "wood", mesh.MaterialName)
	assert.Equal(t, math.NewVec3(-1, -2, -3), mesh.Extents.Min)
	assert.Equal(t, math.NewVec3(1, 2, 3), mesh.Extents.Max)

	// Every face winds outward.
	stored := make([]math.Vec3, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		stored[i] = v.Normal
	}
	RecalculateNormals(mesh, false)
	for i, v := range mesh.Vertices {
		assert.True(t, v.Normal.Compare(stored[i], math.K_FLOAT_EPSILON), "vertex %d", i)
	}
}

func TestFlipFaces(t *testing.T) {
	mesh := CreatePlane(1, 1, 1, 1, 1, 1, "", "")
	first := append([]uint32(nil), mesh.Indices...)

	FlipFaces(mesh)
	assert.Equal(t, first[0], mesh.Indices[0])
	assert.Equal(t, first[2], mesh.Indices[1])
	assert.Equal(t, first[1], mesh.Indices[2])
	assert.Equal(t, math.NewVec3(0, 0, -1), mesh.Vertices[0].Normal)

	RecalculateNormals(mesh, false)
	assert.True(t, mesh.Vertices[0].Normal.Compare(math.NewVec3(0, 0, -1), math.K_FLOAT_EPSILON))
}

func TestSmoothNormals(t *testing.T) {
	// Two triangles folded along the shared edge (0,1).
	mesh := &assets.Mesh{
		Vertices: []math.Vertex3D{
			{Position: math.NewVec3(0, 0, 0)},
			{Position: math.NewVec3(1, 0, 0)},
			{Position: math.NewVec3(0, 1, 0)},
			{Position: math.NewVec3(0, 0, -1)},
		},
		Indices: []uint32{0, 1, 2, 0, 1, 3},
	}
	RecalculateNormals(mesh, true)
	shared := mesh.Vertices[0].Normal
	assert.InDelta(t, 1, shared.Length(), 1e-5)
	assert.Greater(t, shared.Y, float32(0))
	assert.Greater(t, shared.Z, float32(0))
	assert.Equal(t, math.NewVec3(0, 0, 1), mesh.Vertices[2].Normal)
}

func TestRecalculateBoundingBoxEmpty(t *testing.T) {
	mesh := &assets.Mesh{Extents: math.Extents3D{Max: math.NewVec3(1, 1, 1)}}
	RecalculateBoundingBox(mesh)
	assert.Equal(t, math.Extents3D{}, mesh.Extents)
}

func TestToTriangleMesh(t *testing.T) {
	mesh := CreateCube(1, 1, 1, 1, 1, "", "")
	tri, err := ToTriangleMesh(mesh, math.NewMat4Translation(math.NewVec3(10, 0, 0)))
	require.NoError(t, err)
	assert.Len(t, tri.Triangles, 12)
	assert.Equal(t, math.NewVec3(9.5, -0.5, -0.5), tri.Extents.Min)
	assert.Equal(t, math.NewVec3(10.5, 0.5, 0.5), tri.Extents.Max)

	scaled, err := ToTriangleMesh(mesh, math.NewMat4Scale(math.NewVec3(2, 2, 2)))
	require.NoError(t, err)
	assert.Equal(t, math.NewVec3(1, 1, 1), scaled.Extents.Max)
}

func TestToTriangleMeshRejects(t *testing.T) {
	_, err := ToTriangleMesh(nil, math.NewMat4Identity())
	assert.ErrorIs(t, err, core.ErrInvalidAsset)

	broken := &assets.Mesh{Vertices: make([]math.Vertex3D, 2), Indices: []uint32{0, 1, 2}}
	_, err = ToTriangleMesh(broken, math.NewMat4Identity())
	assert.ErrorIs(t, err, core.ErrInvalidAsset)

	partial := &assets.Mesh{Vertices: make([]math.Vertex3D, 3), Indices: []uint32{0, 1}}
	_, err = ToTriangleMesh(partial, math.NewMat4Identity())
	assert.ErrorIs(t, err, core.ErrInvalidAsset)

	dummy := CreatePlane(1, 1, 1, 1, 1, 1, "", "")
	dummy.ConvertToDummy()
	_, err = ToTriangleMesh(dummy, math.NewMat4Identity())
	assert.ErrorIs(t, err, core.ErrInvalidAsset)
}
