package geometry

import (
	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/math"
)

// RecalculateBoundingBox refreshes the extents and center of mesh from its
// vertices. A mesh without vertices gets zero extents.
func RecalculateBoundingBox(mesh *assets.Mesh) {
	if len(mesh.Vertices) == 0 {
		mesh.Extents = math.Extents3D{}
		mesh.Center = math.NewVec3Zero()
		return
	}
	extents := math.NewEmptyExtents3D()
	for _, v := range mesh.Vertices {
		extents = extents.Extend(v.Position)
	}
	mesh.Extents = extents
	mesh.Center = extents.Center()
}

// RecalculateNormals rebuilds vertex normals. Flat normals take the normal of
// the last face touching a vertex; smooth normals average the area weighted
// normals of every face sharing it.
func RecalculateNormals(mesh *assets.Mesh, smooth bool) {
	if !smooth {
		math.GenerateNormals(mesh.Vertices, mesh.Indices)
		return
	}
	sums := make([]math.Vec3, len(mesh.Vertices))
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		i0, i1, i2 := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
		edge1 := mesh.Vertices[i1].Position.Sub(mesh.Vertices[i0].Position)
		edge2 := mesh.Vertices[i2].Position.Sub(mesh.Vertices[i0].Position)
		n := edge1.Cross(edge2)
		sums[i0] = sums[i0].Add(n)
		sums[i1] = sums[i1].Add(n)
		sums[i2] = sums[i2].Add(n)
	}
	for i := range mesh.Vertices {
		mesh.Vertices[i].Normal = sums[i].Normalized()
	}
}

// FlipFaces reverses the winding of every triangle and negates the normals.
func FlipFaces(mesh *assets.Mesh) {
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		mesh.Indices[i+1], mesh.Indices[i+2] = mesh.Indices[i+2], mesh.Indices[i+1]
	}
	for i := range mesh.Vertices {
		mesh.Vertices[i].Normal = mesh.Vertices[i].Normal.Negated()
	}
}
