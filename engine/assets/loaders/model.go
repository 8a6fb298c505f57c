package loaders

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
	"github.com/spaghettifunk/anima-assets/engine/math"
)

// ModelLoader reads Wavefront OBJ files. Every object or group becomes one
// mesh of the bundle; a `usemtl name` directive binds the anima material
// `name.amt` next to the model, loaded as a nested asset.
type ModelLoader struct{}

func (ml *ModelLoader) Extensions() []string {
	return []string{"obj"}
}

func (ml *ModelLoader) SupportedTypes() assets.Type {
	return assets.TypeMesh
}

func (ml *ModelLoader) IsLoadable(f *assets.File) bool {
	if !isText(f.Bytes()) {
		return false
	}
	scanner := bufio.NewScanner(f.Reader())
	for n := 0; n < maxSniffLines && scanner.Scan(); n++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v", "vt", "vn", "f", "o", "g", "mtllib", "usemtl", "s":
			return true
		}
		return false
	}
	return false
}

type objGroup struct {
	name     string
	material string
	vertices []math.Vertex3D
	indices  []uint32
	normals  bool
}

type objParser struct {
	positions []math.Vec3
	texcoords []math.Vec2
	normals   []math.Vec3

	groups  []*objGroup
	current *objGroup
}

func (p *objParser) group() *objGroup {
	if p.current == nil {
		p.current = &objGroup{}
		p.groups = append(p.groups, p.current)
	}
	return p.current
}

// startGroup opens a new group, reusing the current one while it is still empty.
func (p *objParser) startGroup(name string) {
	material := ""
	if p.current != nil {
		material = p.current.material
		if len(p.current.indices) == 0 {
			p.current.name = name
			return
		}
	}
	p.current = &objGroup{name: name, material: material}
	p.groups = append(p.groups, p.current)
}

func (ml *ModelLoader) LoadAsset(f *assets.File, ctx *assets.LoadContext, hierarchyLevel uint32) (assets.Bundle, error) {
	p := &objParser{}
	scanner := bufio.NewScanner(f.Reader())
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := p.parseLine(line); err != nil {
			return assets.Bundle{}, fmt.Errorf("%w: %s:%d: %v", core.ErrInvalidAsset, f.Name(), lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return assets.Bundle{}, fmt.Errorf("%w: %s: %v", core.ErrIO, f.Name(), err)
	}

	materials := make(map[string]*assets.Material)
	var meshes []assets.Asset
	for _, g := range p.groups {
		if len(g.indices) == 0 {
			continue
		}
		mesh := &assets.Mesh{
			Name:         g.name,
			Indices:      g.indices,
			MaterialName: g.material,
		}
		if !g.normals {
			math.GenerateNormals(g.vertices, g.indices)
		}
		math.GenerateTangents(g.vertices, g.indices)
		mesh.Vertices = math.DeduplicateVertices(g.vertices, g.indices)

		extents := math.NewEmptyExtents3D()
		for _, v := range mesh.Vertices {
			extents = extents.Extend(v.Position)
		}
		mesh.Extents = extents
		mesh.Center = extents.Center()

		if g.material != "" {
			m, ok := materials[g.material]
			if !ok {
				m = loadMaterial(ctx, g.material, hierarchyLevel+1)
				materials[g.material] = m
			}
			mesh.Material = m
		}
		meshes = append(meshes, mesh)
	}
	if len(meshes) == 0 {
		return assets.Bundle{}, fmt.Errorf("%w: %s has no faces", core.ErrInvalidAsset, f.Name())
	}
	core.LogDebug("model '%s' parsed: %d mesh(es)", f.Name(), len(meshes))
	return assets.NewBundle(meshes...), nil
}

func loadMaterial(ctx *assets.LoadContext, name string, level uint32) *assets.Material {
	ref := name
	if assets.Extension(ref) == "" {
		ref += ".amt"
	}
	m, ok := ctx.LoadDependency(ref, level).First().(*assets.Material)
	if !ok {
		core.LogWarn("model '%s': material '%s' could not be loaded", ctx.MainFile.Name(), ref)
		return nil
	}
	return m
}

func (p *objParser) parseLine(line string) error {
	fields := strings.Fields(line)
	args := fields[1:]
	switch fields[0] {
	case "v":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, math.NewVec3(v[0], v[1], v[2]))
	case "vt":
		v, err := parseFloats(args, 2)
		if err != nil {
			return err
		}
		p.texcoords = append(p.texcoords, math.NewVec2(v[0], v[1]))
	case "vn":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, math.NewVec3(v[0], v[1], v[2]))
	case "f":
		return p.parseFace(args)
	case "o", "g":
		p.startGroup(strings.Join(args, " "))
	case "usemtl":
		name := strings.Join(args, " ")
		if g := p.group(); len(g.indices) == 0 {
			g.material = name
		} else {
			p.current = &objGroup{name: g.name, material: name}
			p.groups = append(p.groups, p.current)
		}
	case "mtllib", "s", "l", "p":
		// Materials come from anima material files; smoothing groups and
		// non-triangle primitives are not represented.
	default:
		core.LogDebug("obj: unknown directive '%s'", fields[0])
	}
	return nil
}

// parseFace triangulates a polygon as a fan around its first corner.
func (p *objParser) parseFace(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("face needs at least 3 vertices, got %d", len(args))
	}
	g := p.group()
	corners := make([]uint32, 0, len(args))
	for _, corner := range args {
		v, hasNormal, err := p.parseCorner(corner)
		if err != nil {
			return err
		}
		if hasNormal {
			g.normals = true
		}
		corners = append(corners, uint32(len(g.vertices)))
		g.vertices = append(g.vertices, v)
	}
	for i := 1; i+1 < len(corners); i++ {
		g.indices = append(g.indices, corners[0], corners[i], corners[i+1])
	}
	return nil
}

// parseCorner decodes v, v/vt, v//vn or v/vt/vn. Negative indices count back
// from the latest element.
func (p *objParser) parseCorner(corner string) (math.Vertex3D, bool, error) {
	parts := strings.Split(corner, "/")
	vert := math.Vertex3D{Colour: math.NewVec4One()}

	pi, err := resolveIndex(parts[0], len(p.positions))
	if err != nil {
		return vert, false, fmt.Errorf("position %q: %w", corner, err)
	}
	vert.Position = p.positions[pi]

	if len(parts) > 1 && parts[1] != "" {
		ti, err := resolveIndex(parts[1], len(p.texcoords))
		if err != nil {
			return vert, false, fmt.Errorf("texcoord %q: %w", corner, err)
		}
		vert.Texcoord = p.texcoords[ti]
	}
	hasNormal := false
	if len(parts) > 2 && parts[2] != "" {
		ni, err := resolveIndex(parts[2], len(p.normals))
		if err != nil {
			return vert, false, fmt.Errorf("normal %q: %w", corner, err)
		}
		vert.Normal = p.normals[ni]
		hasNormal = true
	}
	return vert, hasNormal, nil
}

func resolveIndex(s string, count int) (int, error) {
	ix, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if ix < 0 {
		ix = count + ix
	} else {
		ix--
	}
	if ix < 0 || ix >= count {
		return 0, fmt.Errorf("index %s out of range (%d)", s, count)
	}
	return ix, nil
}

func parseFloats(args []string, n int) ([]float32, error) {
	if len(args) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(args))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}
