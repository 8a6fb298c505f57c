//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Loads every file under ./assets through the pipeline and dumps the cache.
func (Run) Preload() error {
	mg.Deps(Build.Binary)

	var files []string
	err := filepath.WalkDir("assets", func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && !strings.HasPrefix(d.Name(), ".") {
			rel, err := filepath.Rel("assets", p)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to list assets: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no assets found under ./assets")
	}

	fmt.Printf("Preloading %d asset(s)...\n", len(files))
	args := append([]string{"-config", "anima.toml"}, files...)
	if _, err := executeCmd(filepath.Join("bin", "anima-assets"), withArgs(args...), withStream()); err != nil {
		return err
	}
	return nil
}
