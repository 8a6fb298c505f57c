package renderer

import (
	"github.com/spaghettifunk/anima-assets/engine/assets"
	"github.com/spaghettifunk/anima-assets/engine/core"
	"github.com/spaghettifunk/anima-assets/engine/math"
)

// Backend creates and destroys the GPU resident counterparts of CPU assets.
// Create calls read the asset payload only; the asset may be converted to a
// dummy right after they return.
type Backend interface {
	TextureCreate(texture *assets.Texture) (*Texture, error)
	TextureDestroy(texture *Texture)
	GeometryCreate(mesh *assets.Mesh) (*Geometry, error)
	GeometryDestroy(geometry *Geometry)
	ShaderCreate(shader *assets.Shader) (*ShaderModule, error)
	ShaderDestroy(shader *ShaderModule)
	Shutdown() error
}

/**
 * @brief Represents a texture uploaded to the GPU.
 */
type Texture struct {
	/** @brief The unique texture identifier. */
	ID core.Identifier
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The number of channels in the texture. */
	ChannelCount uint8
	/** @brief Indicates if the texture has transparency. */
	HasTransparency bool
	/** @brief The texture Generation. Incremented every time the data is reloaded. */
	Generation uint32
	/** @brief The texture Name, the cache key of its source asset. */
	Name string
	/** @brief Backend specific data. */
	InternalData interface{}
}

func (t *Texture) GPUHandle() core.Identifier { return t.ID }

/**
 * @brief Represents geometry uploaded to the GPU.
 */
type Geometry struct {
	/** @brief The geometry identifier. */
	ID core.Identifier
	/** @brief The geometry generation. Incremented every time the geometry changes. */
	Generation  uint16
	VertexCount uint32
	IndexCount  uint32
	/** @brief The center of the geometry in local coordinates. */
	Center math.Vec3
	/** @brief The extents of the geometry in local coordinates. */
	Extents math.Extents3D
	/** @brief The geometry name. */
	Name string
	/** @brief The name of the material used by the geometry. */
	MaterialName string
	InternalData interface{}
}

func (g *Geometry) GPUHandle() core.Identifier { return g.ID }

// ShaderModule is a SPIR-V module handed to the GPU.
type ShaderModule struct {
	ID        core.Identifier
	Stage     assets.ShaderStage
	WordCount uint32
	Name      string

	InternalData interface{}
}

func (s *ShaderModule) GPUHandle() core.Identifier { return s.ID }
