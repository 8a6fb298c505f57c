package writers

import (
	"bufio"
	"fmt"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
)

// OBJWriter writes a mesh as a Wavefront OBJ object with positions, texture
// coordinates and normals.
type OBJWriter struct{}

func (ow *OBJWriter) Extensions() []string {
	return []string{"obj"}
}

func (ow *OBJWriter) SupportedTypes() assets.Type {
	return assets.TypeMesh
}

func (ow *OBJWriter) WriteAsset(f *assets.WriteFile, ctx *assets.WriteContext) error {
	mesh, ok := ctx.Params.RootAsset.(*assets.Mesh)
	if !ok {
		return fmt.Errorf("%w: %T is not a mesh", core.ErrInvalidAsset, ctx.Params.RootAsset)
	}
	if mesh.State() == assets.StateDummy {
		return fmt.Errorf("%w: mesh '%s' has no geometry (%s)", core.ErrInvalidAsset, mesh.CacheKey(), mesh.State())
	}

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# anima mesh, %d vertices, %d triangles\n", len(mesh.Vertices), mesh.TriangleCount())
	if mesh.Name != "" {
		fmt.Fprintf(w, "o %s\n", mesh.Name)
	}
	for _, v := range mesh.Vertices {
		fmt.Fprintf(w, "v %s %s %s\n", formatFloat(v.Position.X), formatFloat(v.Position.Y), formatFloat(v.Position.Z))
	}
	for _, v := range mesh.Vertices {
		fmt.Fprintf(w, "vt %s %s\n", formatFloat(v.Texcoord.X), formatFloat(v.Texcoord.Y))
	}
	for _, v := range mesh.Vertices {
		fmt.Fprintf(w, "vn %s %s %s\n", formatFloat(v.Normal.X), formatFloat(v.Normal.Y), formatFloat(v.Normal.Z))
	}
	if mesh.MaterialName != "" {
		fmt.Fprintf(w, "usemtl %s\n", mesh.MaterialName)
	}
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a, b, c := mesh.Indices[i]+1, mesh.Indices[i+1]+1, mesh.Indices[i+2]+1
		fmt.Fprintf(w, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
	}
	return w.Flush()
}
