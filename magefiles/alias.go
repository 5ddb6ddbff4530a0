//go:build mage

package main

var Aliases = map[string]any{
	"build": Build.Binary,
	"test":  Test.Unit,
	"lint":  Lint.All,
}
