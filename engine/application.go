package engine

import (
	"io"

	"github.com/spaghettifunk/anima-assets/engine/core"
)

type ApplicationConfig struct {
	// The application name used in logs.
	Name   string
	Config *core.Config
	// Asset paths, relative to the configured base path, loaded on Run.
	Assets []string
	// When set, the first loaded asset is written back out under this path.
	WriteTarget string
	// Destination of the cache dump printed after loading. Nil skips it.
	Output io.Writer
}
