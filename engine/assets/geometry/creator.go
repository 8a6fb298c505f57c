package geometry

import (
	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
	"github.com/spaghettifunk/anima-assets/engine/math"
)

const (
	DefaultMeshName     = "default"
	DefaultMaterialName = "default"
)

/**
 * @brief Generates a plane mesh in the XY plane facing +Z, centered on the origin.
 * Zero or negative inputs default to one with a warning.
 * @param width The overall width of the plane.
 * @param height The overall height of the plane.
 * @param xSegmentCount The number of segments along the x-axis.
 * @param ySegmentCount The number of segments along the y-axis.
 * @param tileX The number of times the texture should tile across the plane on the x-axis.
 * @param tileY The number of times the texture should tile across the plane on the y-axis.
 * @param name The name of the generated mesh.
 * @param materialName The name of the material to be used.
 */
func CreatePlane(width, height float32, xSegmentCount, ySegmentCount uint32, tileX, tileY float32, name, materialName string) *assets.Mesh {
	if width <= 0 {
		core.LogWarn("Width must be positive. Defaulting to one.")
		width = 1.0
	}
	if height <= 0 {
		core.LogWarn("Height must be positive. Defaulting to one.")
		height = 1.0
	}
	if xSegmentCount < 1 {
		core.LogWarn("xSegmentCount must be a positive number. Defaulting to one.")
		xSegmentCount = 1
	}
	if ySegmentCount < 1 {
		core.LogWarn("ySegmentCount must be a positive number. Defaulting to one.")
		ySegmentCount = 1
	}
	if tileX == 0 {
		core.LogWarn("tileX must be nonzero. Defaulting to one.")
		tileX = 1.0
	}
	if tileY == 0 {
		core.LogWarn("tileY must be nonzero. Defaulting to one.")
		tileY = 1.0
	}

	vertices := make([]math.Vertex3D, xSegmentCount*ySegmentCount*4)
	indices := make([]uint32, xSegmentCount*ySegmentCount*6)

	segWidth := width / float32(xSegmentCount)
	segHeight := height / float32(ySegmentCount)
	halfWidth := width * 0.5
	halfHeight := height * 0.5
	for y := uint32(0); y < ySegmentCount; y++ {
		for x := uint32(0); x < xSegmentCount; x++ {
			minX := (float32(x) * segWidth) - halfWidth
			minY := (float32(y) * segHeight) - halfHeight
			maxX := minX + segWidth
			maxY := minY + segHeight
			minUVX := (float32(x) / float32(xSegmentCount)) * tileX
			minUVY := (float32(y) / float32(ySegmentCount)) * tileY
			maxUVX := (float32(x+1) / float32(xSegmentCount)) * tileX
			maxUVY := (float32(y+1) / float32(ySegmentCount)) * tileY

			vOffset := ((y * xSegmentCount) + x) * 4
			quad(vertices[vOffset:vOffset+4],
				[4]math.Vec3{
					math.NewVec3(minX, minY, 0),
					math.NewVec3(maxX, maxY, 0),
					math.NewVec3(minX, maxY, 0),
					math.NewVec3(maxX, minY, 0),
				},
				math.NewVec3(0, 0, 1),
				minUVX, minUVY, maxUVX, maxUVY)

			iOffset := ((y * xSegmentCount) + x) * 6
			quadIndices(indices[iOffset:iOffset+6], vOffset)
		}
	}

	return newMesh(vertices, indices, name, materialName)
}

/**
 * @brief Generates a cube mesh centered on the origin, four vertices per side.
 * Zero or negative sizes default to one with a warning.
 */
func CreateCube(width, height, depth, tileX, tileY float32, name, materialName string) *assets.Mesh {
	if width <= 0 {
		core.LogWarn("Width must be positive. Defaulting to one.")
		width = 1.0
	}
	if height <= 0 {
		core.LogWarn("Height must be positive. Defaulting to one.")
		height = 1.0
	}
	if depth <= 0 {
		core.LogWarn("Depth must be positive. Defaulting to one.")
		depth = 1.0
	}
	if tileX == 0 {
		core.LogWarn("tileX must be nonzero. Defaulting to one.")
		tileX = 1.0
	}
	if tileY == 0 {
		core.LogWarn("tileY must be nonzero. Defaulting to one.")
		tileY = 1.0
	}

	minX, minY, minZ := -width*0.5, -height*0.5, -depth*0.5
	maxX, maxY, maxZ := width*0.5, height*0.5, depth*0.5

	sides := []struct {
		corners [4]math.Vec3
		normal  math.Vec3
	}{
		// Front
		{[4]math.Vec3{{X: minX, Y: minY, Z: maxZ}, {X: maxX, Y: maxY, Z: maxZ}, {X: minX, Y: maxY, Z: maxZ}, {X: maxX, Y: minY, Z: maxZ}}, math.NewVec3(0, 0, 1)},
		// Back
		{[4]math.Vec3{{X: maxX, Y: minY, Z: minZ}, {X: minX, Y: maxY, Z: minZ}, {X: maxX, Y: maxY, Z: minZ}, {X: minX, Y: minY, Z: minZ}}, math.NewVec3(0, 0, -1)},
		// Left
		{[4]math.Vec3{{X: minX, Y: minY, Z: minZ}, {X: minX, Y: maxY, Z: maxZ}, {X: minX, Y: maxY, Z: minZ}, {X: minX, Y: minY, Z: maxZ}}, math.NewVec3(-1, 0, 0)},
		// Right
		{[4]math.Vec3{{X: maxX, Y: minY, Z: maxZ}, {X: maxX, Y: maxY, Z: minZ}, {X: maxX, Y: maxY, Z: maxZ}, {X: maxX, Y: minY, Z: minZ}}, math.NewVec3(1, 0, 0)},
		// Bottom
		{[4]math.Vec3{{X: maxX, Y: minY, Z: maxZ}, {X: minX, Y: minY, Z: minZ}, {X: maxX, Y: minY, Z: minZ}, {X: minX, Y: minY, Z: maxZ}}, math.NewVec3(0, -1, 0)},
		// Top
		{[4]math.Vec3{{X: minX, Y: maxY, Z: maxZ}, {X: maxX, Y: maxY, Z: minZ}, {X: minX, Y: maxY, Z: minZ}, {X: maxX, Y: maxY, Z: maxZ}}, math.NewVec3(0, 1, 0)},
	}

	vertices := make([]math.Vertex3D, 4*len(sides))
	indices := make([]uint32, 6*len(sides))
	for i, side := range sides {
		vOffset := uint32(i * 4)
		quad(vertices[vOffset:vOffset+4], side.corners, side.normal, 0, 0, tileX, tileY)
		quadIndices(indices[i*6:i*6+6], vOffset)
	}

	return newMesh(vertices, indices, name, materialName)
}

// quad fills four vertices laid out as min/min, max/max, min/max, max/min.
func quad(dst []math.Vertex3D, corners [4]math.Vec3, normal math.Vec3, minU, minV, maxU, maxV float32) {
	uvs := [4]math.Vec2{
		math.NewVec2(minU, minV),
		math.NewVec2(maxU, maxV),
		math.NewVec2(minU, maxV),
		math.NewVec2(maxU, minV),
	}
	for i := range dst {
		dst[i] = math.Vertex3D{
			Position: corners[i],
			Normal:   normal,
			Texcoord: uvs[i],
			Colour:   math.NewVec4One(),
		}
	}
}

func quadIndices(dst []uint32, vOffset uint32) {
	dst[0] = vOffset + 0
	dst[1] = vOffset + 1
	dst[2] = vOffset + 2
	dst[3] = vOffset + 0
	dst[4] = vOffset + 3
	dst[5] = vOffset + 1
}

func newMesh(vertices []math.Vertex3D, indices []uint32, name, materialName string) *assets.Mesh {
	if name == "" {
		name = DefaultMeshName
	}
	if materialName == "" {
		materialName = DefaultMaterialName
	}
	math.GenerateTangents(vertices, indices)
	mesh := &assets.Mesh{
		Name:         name,
		Vertices:     vertices,
		Indices:      indices,
		MaterialName: materialName,
	}
	RecalculateBoundingBox(mesh)
	return mesh
}
