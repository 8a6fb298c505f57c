package writers

import "github.com/spaghettifunk/anima-assets/engine/assets"

// Defaults returns one instance of every built-in writer.
func Defaults() []assets.Writer {
	return []assets.Writer{
		&PNGWriter{},
		&BMPWriter{},
		&MaterialWriter{},
		&OBJWriter{},
		&BinaryWriter{},
		&ShaderWriter{},
	}
}

// RegisterDefaults adds every built-in writer to m.
func RegisterDefaults(m *assets.Manager) {
	for _, w := range Defaults() {
		m.AddAssetWriter(w)
	}
}
