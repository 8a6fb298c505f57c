package renderer

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
	"github.com/spaghettifunk/anima-assets/engine/math"
)

type headlessTexture struct {
	pixels []uint8
}

type headlessGeometry struct {
	vertices []math.Vertex3D
	indices  []uint32
}

type headlessShader struct {
	code []uint32
}

// HeadlessBackend keeps GPU objects in host memory. Each object owns a copy
// of the payload it was created from, standing in for device memory.
type HeadlessBackend struct {
	maxTextures uint32

	mu         sync.Mutex
	textures   map[core.Identifier]*Texture
	geometries map[core.Identifier]*Geometry
	shaders    map[core.Identifier]*ShaderModule
}

// NewHeadlessBackend creates a backend accepting at most maxTextures live
// textures; zero means unlimited.
func NewHeadlessBackend(maxTextures uint32) *HeadlessBackend {
	return &HeadlessBackend{
		maxTextures: maxTextures,
		textures:    make(map[core.Identifier]*Texture),
		geometries:  make(map[core.Identifier]*Geometry),
		shaders:     make(map[core.Identifier]*ShaderModule),
	}
}

func (b *HeadlessBackend) TextureCreate(texture *assets.Texture) (*Texture, error) {
	if texture == nil || texture.State() == assets.StateDummy || len(texture.Pixels) == 0 {
		return nil, fmt.Errorf("%w: texture has no pixels", core.ErrInvalidAsset)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.maxTextures > 0 && uint32(len(b.textures)) >= b.maxTextures {
		return nil, fmt.Errorf("%w: %d textures", core.ErrGPUResourceLimit, b.maxTextures)
	}
	t := &Texture{
		ID:              core.NewIdentifier(),
		Width:           uint32(texture.Width),
		Height:          uint32(texture.Height),
		ChannelCount:    texture.ChannelCount,
		HasTransparency: texture.HasTransparency,
		Name:            texture.CacheKey(),
		InternalData: &headlessTexture{
			pixels: append([]uint8(nil), texture.Pixels...),
		},
	}
	b.textures[t.ID] = t
	core.LogDebug("texture '%s' created (%dx%d)", t.Name, t.Width, t.Height)
	return t, nil
}

func (b *HeadlessBackend) TextureDestroy(texture *Texture) {
	if texture == nil {
		return
	}
	b.mu.Lock()
	delete(b.textures, texture.ID)
	b.mu.Unlock()
	texture.InternalData = nil
	texture.Generation++
}

func (b *HeadlessBackend) GeometryCreate(mesh *assets.Mesh) (*Geometry, error) {
	if mesh == nil || mesh.State() == assets.StateDummy || len(mesh.Vertices) == 0 {
		return nil, fmt.Errorf("%w: mesh has no vertices", core.ErrInvalidAsset)
	}
	for _, ix := range mesh.Indices {
		if int(ix) >= len(mesh.Vertices) {
			return nil, fmt.Errorf("%w: mesh '%s' index %d out of range", core.ErrInvalidAsset, mesh.Name, ix)
		}
	}
	g := &Geometry{
		ID:           core.NewIdentifier(),
		VertexCount:  uint32(len(mesh.Vertices)),
		IndexCount:   uint32(len(mesh.Indices)),
		Center:       mesh.Center,
		Extents:      mesh.Extents,
		Name:         mesh.Name,
		MaterialName: mesh.MaterialName,
		InternalData: &headlessGeometry{
			vertices: append([]math.Vertex3D(nil), mesh.Vertices...),
			indices:  append([]uint32(nil), mesh.Indices...),
		},
	}
	b.mu.Lock()
	b.geometries[g.ID] = g
	b.mu.Unlock()
	core.LogDebug("geometry '%s' created (%d vertices, %d indices)", g.Name, g.VertexCount, g.IndexCount)
	return g, nil
}

func (b *HeadlessBackend) GeometryDestroy(geometry *Geometry) {
	if geometry == nil {
		return
	}
	b.mu.Lock()
	delete(b.geometries, geometry.ID)
	b.mu.Unlock()
	geometry.InternalData = nil
	geometry.Generation++
}

func (b *HeadlessBackend) ShaderCreate(shader *assets.Shader) (*ShaderModule, error) {
	if shader == nil || shader.State() == assets.StateDummy || len(shader.Code) == 0 {
		return nil, fmt.Errorf("%w: shader has no code", core.ErrInvalidAsset)
	}
	if shader.Code[0] != assets.SPIRVMagic {
		return nil, fmt.Errorf("%w: shader '%s' is not SPIR-V", core.ErrInvalidAsset, shader.CacheKey())
	}
	s := &ShaderModule{
		ID:        core.NewIdentifier(),
		Stage:     shader.Stage,
		WordCount: uint32(len(shader.Code)),
		Name:      shader.CacheKey(),
		InternalData: &headlessShader{
			code: append([]uint32(nil), shader.Code...),
		},
	}
	b.mu.Lock()
	b.shaders[s.ID] = s
	b.mu.Unlock()
	return s, nil
}

func (b *HeadlessBackend) ShaderDestroy(shader *ShaderModule) {
	if shader == nil {
		return
	}
	b.mu.Lock()
	delete(b.shaders, shader.ID)
	b.mu.Unlock()
	shader.InternalData = nil
}

// Live returns the number of textures, geometries and shaders still alive.
func (b *HeadlessBackend) Live() (textures, geometries, shaders int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.textures), len(b.geometries), len(b.shaders)
}

// TexturePixels returns the pixels uploaded for t, nil once it is destroyed.
func (b *HeadlessBackend) TexturePixels(t *Texture) []uint8 {
	if t == nil {
		return nil
	}
	if data, ok := t.InternalData.(*headlessTexture); ok {
		return data.pixels
	}
	return nil
}

// Shutdown destroys every object still alive.
func (b *HeadlessBackend) Shutdown() error {
	b.mu.Lock()
	textures := b.textures
	geometries := b.geometries
	shaders := b.shaders
	b.textures = make(map[core.Identifier]*Texture)
	b.geometries = make(map[core.Identifier]*Geometry)
	b.shaders = make(map[core.Identifier]*ShaderModule)
	b.mu.Unlock()

	for _, t := range textures {
		t.InternalData = nil
	}
	for _, g := range geometries {
		g.InternalData = nil
	}
	for _, s := range shaders {
		s.InternalData = nil
	}
	if n := len(textures) + len(geometries) + len(shaders); n > 0 {
		core.LogDebug("headless backend released %d gpu objects on shutdown", n)
	}
	return nil
}
