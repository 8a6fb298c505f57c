//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Tidies the module and builds the anima-assets binary into bin/.
func (Build) Binary() error {
	if err := goModTidy(); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/anima-assets", "."), withStream()); err != nil {
		return err
	}
	return nil
}
