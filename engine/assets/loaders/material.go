package loaders

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
	"github.com/spaghettifunk/anima-assets/engine/math"
)

// MaterialLoader reads anima material files: one key=value pair per line,
// '#' comments. Texture maps are loaded as nested assets.
type MaterialLoader struct{}

func (ml *MaterialLoader) Extensions() []string {
	return []string{"amt"}
}

func (ml *MaterialLoader) SupportedTypes() assets.Type {
	return assets.TypeMaterial
}

func (ml *MaterialLoader) IsLoadable(f *assets.File) bool {
	return hasKey(f.Bytes(), "name")
}

func (ml *MaterialLoader) LoadAsset(f *assets.File, ctx *assets.LoadContext, hierarchyLevel uint32) (assets.Bundle, error) {
	material, err := parseAMT(f.Reader())
	if err != nil {
		return assets.Bundle{}, fmt.Errorf("%s: %w", f.Name(), err)
	}

	material.DiffuseMap = loadTextureMap(ctx, material.DiffuseMapName, hierarchyLevel+1)
	material.SpecularMap = loadTextureMap(ctx, material.SpecularMapName, hierarchyLevel+1)
	material.NormalMap = loadTextureMap(ctx, material.NormalMapName, hierarchyLevel+1)

	return assets.NewBundle(material), nil
}

// loadTextureMap resolves a map name relative to the material. Names without
// an extension refer to PNG files. A missing map leaves the slot empty.
func loadTextureMap(ctx *assets.LoadContext, name string, level uint32) *assets.Texture {
	if name == "" {
		return nil
	}
	ref := name
	if assets.Extension(ref) == "" {
		ref += ".png"
	}
	b := ctx.LoadDependency(ref, level)
	tex, ok := b.First().(*assets.Texture)
	if !ok {
		core.LogWarn("material '%s': texture map '%s' could not be loaded", ctx.MainFile.Name(), ref)
		return nil
	}
	return tex
}

func parseAMT(r io.Reader) (*assets.Material, error) {
	scanner := bufio.NewScanner(r)
	material := &assets.Material{}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		// Split key-value pairs by the first "=" sign
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			core.LogWarn("skipping invalid material line: %s", line)
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "version":
			// Only version 1 exists.
		case "name":
			material.Name = value
		case "shader":
			material.ShaderName = value
		case "diffuse_colour":
			colour, err := parseVec4(value)
			if err != nil {
				return nil, fmt.Errorf("invalid diffuse_colour '%s': %w", value, err)
			}
			material.DiffuseColour = colour
		case "shininess":
			shininess, err := strconv.ParseFloat(value, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid shininess value: %s", value)
			}
			material.Shininess = float32(shininess)
		case "diffuse_map_name":
			material.DiffuseMapName = value
		case "specular_map_name":
			material.SpecularMapName = value
		case "normal_map_name":
			material.NormalMapName = value
		case "autorelease":
			autoRelease, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("invalid autorelease value: %s", value)
			}
			material.AutoRelease = autoRelease
		default:
			core.LogWarn("unknown material key '%s', skipping", key)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	if err := validateMaterial(material); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidAsset, err)
	}
	return material, nil
}

func parseVec4(value string) (math.Vec4, error) {
	fields := strings.Fields(value)
	if len(fields) != 4 {
		return math.Vec4{}, fmt.Errorf("expected 4 values, got %d", len(fields))
	}
	var out [4]float32
	for i, v := range fields {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return math.Vec4{}, err
		}
		out[i] = float32(f)
	}
	return math.NewVec4(out[0], out[1], out[2], out[3]), nil
}

func validateMaterial(material *assets.Material) error {
	if material.Name == "" {
		return fmt.Errorf("material name is required")
	}
	if material.ShaderName == "" {
		return fmt.Errorf("shader name is required")
	}
	// Colour channels are normalized.
	if !isValidVec4(material.DiffuseColour) {
		return fmt.Errorf("diffuse_colour values must be between 0.0 and 1.0")
	}
	if material.Shininess < 0 {
		return fmt.Errorf("shininess must be a non-negative value")
	}
	return nil
}

func isValidVec4(v math.Vec4) bool {
	return inRange(v.X) && inRange(v.Y) && inRange(v.Z) && inRange(v.W)
}

func inRange(value float32) bool {
	return value >= 0.0 && value <= 1.0
}
