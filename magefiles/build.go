//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Build mg.Namespace

// Binary Build the subframe binary into dist/
func (Build) Binary() error {
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "0"},
		"go", "build", "-o", "dist/subframe", "./cmd/subframe")
}
