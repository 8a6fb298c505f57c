package geometry

import (
	"fmt"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
	"github.com/spaghettifunk/anima-assets/engine/math"
)

// TriangleMesh is a flat, unindexed triangle soup in world space, the input
// physics engines expect for static collision shapes.
type TriangleMesh struct {
	Triangles [][3]math.Vec3
	Extents   math.Extents3D
}

// ToTriangleMesh expands mesh through transform. Dummy meshes and broken
// index buffers are rejected.
func ToTriangleMesh(mesh *assets.Mesh, transform math.Mat4) (*TriangleMesh, error) {
	if mesh == nil {
		return nil, fmt.Errorf("%w: nil mesh", core.ErrInvalidAsset)
	}
	var (
		out *TriangleMesh
		err error
	)
	if !mesh.ReadPayload(func() { out, err = expandTriangles(mesh, transform) }) {
		return nil, fmt.Errorf("%w: mesh '%s' has released its geometry", core.ErrInvalidAsset, mesh.CacheKey())
	}
	return out, err
}

func expandTriangles(mesh *assets.Mesh, transform math.Mat4) (*TriangleMesh, error) {
	if len(mesh.Indices)%3 != 0 {
		return nil, fmt.Errorf("%w: mesh '%s' has %d indices, not a triangle list", core.ErrInvalidAsset, mesh.CacheKey(), len(mesh.Indices))
	}

	out := &TriangleMesh{
		Triangles: make([][3]math.Vec3, 0, len(mesh.Indices)/3),
		Extents:   math.NewEmptyExtents3D(),
	}
	for i := 0; i < len(mesh.Indices); i += 3 {
		var tri [3]math.Vec3
		for c := 0; c < 3; c++ {
			ix := mesh.Indices[i+c]
			if int(ix) >= len(mesh.Vertices) {
				return nil, fmt.Errorf("%w: mesh '%s' index %d out of range", core.ErrInvalidAsset, mesh.CacheKey(), ix)
			}
			tri[c] = mesh.Vertices[ix].Position.Transform(transform)
			out.Extents = out.Extents.Extend(tri[c])
		}
		out.Triangles = append(out.Triangles, tri)
	}
	return out, nil
}
