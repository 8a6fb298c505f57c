package writers

import (
	"bufio"
	"fmt"
	"strconv"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
)

// MaterialWriter writes anima material files.
type MaterialWriter struct{}

func (mw *MaterialWriter) Extensions() []string {
	return []string{"amt"}
}

func (mw *MaterialWriter) SupportedTypes() assets.Type {
	return assets.TypeMaterial
}

func (mw *MaterialWriter) WriteAsset(f *assets.WriteFile, ctx *assets.WriteContext) error {
	m, ok := ctx.Params.RootAsset.(*assets.Material)
	if !ok {
		return fmt.Errorf("%w: %T is not a material", core.ErrInvalidAsset, ctx.Params.RootAsset)
	}
	if m.Name == "" || m.ShaderName == "" {
		return fmt.Errorf("%w: material needs a name and a shader", core.ErrInvalidAsset)
	}

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "version=1\n")
	fmt.Fprintf(w, "name=%s\n", m.Name)
	fmt.Fprintf(w, "shader=%s\n", m.ShaderName)
	fmt.Fprintf(w, "diffuse_colour=%s %s %s %s\n",
		formatFloat(m.DiffuseColour.X), formatFloat(m.DiffuseColour.Y),
		formatFloat(m.DiffuseColour.Z), formatFloat(m.DiffuseColour.W))
	fmt.Fprintf(w, "shininess=%s\n", formatFloat(m.Shininess))
	for _, kv := range [][2]string{
		{"diffuse_map_name", m.DiffuseMapName},
		{"specular_map_name", m.SpecularMapName},
		{"normal_map_name", m.NormalMapName},
	} {
		if kv[1] != "" {
			fmt.Fprintf(w, "%s=%s\n", kv[0], kv[1])
		}
	}
	fmt.Fprintf(w, "autorelease=%t\n", m.AutoRelease)
	return w.Flush()
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}
