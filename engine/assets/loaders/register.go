package loaders

import "github.com/spaghettifunk/anima-assets/engine/assets"

// Defaults returns one instance of every built-in loader, in fallback probe
// order.
func Defaults() []assets.Loader {
	return []assets.Loader{
		&TextureLoader{},
		&MaterialLoader{},
		&ModelLoader{},
		&ShaderLoader{},
		&BinaryLoader{},
		&BitmapFontLoader{},
		&SystemFontLoader{},
	}
}

// RegisterDefaults adds every built-in loader to m.
func RegisterDefaults(m *assets.Manager) {
	for _, l := range Defaults() {
		m.AddAssetLoader(l)
	}
}
