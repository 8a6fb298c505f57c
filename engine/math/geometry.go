package math

import "github.com/spaghettifunk/anima-assets/engine/core"

// GenerateNormals writes flat face normals for an indexed triangle list.
func GenerateNormals(vertices []Vertex3D, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		// NOTE: This just generates a face normal. Smoothing out should be done in a separate pass if desired.
		normal := edge1.Cross(edge2).Normalized()
		vertices[i0].Normal = normal
		vertices[i1].Normal = normal
		vertices[i2].Normal = normal
	}
}

func GenerateTangents(vertices []Vertex3D, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		deltaU1 := vertices[i1].Texcoord.X - vertices[i0].Texcoord.X
		deltaV1 := vertices[i1].Texcoord.Y - vertices[i0].Texcoord.Y
		deltaU2 := vertices[i2].Texcoord.X - vertices[i0].Texcoord.X
		deltaV2 := vertices[i2].Texcoord.Y - vertices[i0].Texcoord.Y

		dividend := deltaU1*deltaV2 - deltaU2*deltaV1
		if dividend == 0 {
			continue
		}
		fc := 1.0 / dividend

		tangent := Vec3{
			fc * (deltaV2*edge1.X - deltaV1*edge2.X),
			fc * (deltaV2*edge1.Y - deltaV1*edge2.Y),
			fc * (deltaV2*edge1.Z - deltaV1*edge2.Z)}.Normalized()

		handedness := float32(1.0)
		if deltaV1*deltaU2-deltaV2*deltaU1 < 0.0 {
			handedness = -1.0
		}

		t := tangent.MulScalar(handedness)
		vertices[i0].Tangent = t
		vertices[i1].Tangent = t
		vertices[i2].Tangent = t
	}
}

// DeduplicateVertices collapses identical vertices and rewrites indices in
// place to point at the surviving copies.
func DeduplicateVertices(vertices []Vertex3D, indices []uint32) []Vertex3D {
	unique := make([]Vertex3D, 0, len(vertices))
	lookup := make(map[Vertex3D]uint32, len(vertices))
	remap := make([]uint32, len(vertices))

	for v, vert := range vertices {
		if u, ok := lookup[vert]; ok {
			remap[v] = u
			continue
		}
		u := uint32(len(unique))
		lookup[vert] = u
		remap[v] = u
		unique = append(unique, vert)
	}
	for i, idx := range indices {
		indices[i] = remap[idx]
	}

	core.LogDebug("geometry_deduplicate_vertices: removed %d vertices, orig/now %d/%d.", len(vertices)-len(unique), len(vertices), len(unique))
	return unique
}
