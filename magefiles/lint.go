//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Lint mg.Namespace

// All Run all linters
func (l Lint) All() error {
	mg.Deps(l.Gofumpt, l.Vet, l.Vulncheck)
	return nil
}

// Gofumpt Run gofumpt
func (Lint) Gofumpt() error {
	fmt.Println("formatting go")
	return RunSh("go", Tool())("run", "mvdan.cc/gofumpt", "-l", "-w", "..")
}

// Vet Run go vet with both assertion modes
func (Lint) Vet() error {
	fmt.Println("running go vet")
	if err := RunSh("go", WithV())("vet", "./..."); err != nil {
		return err
	}
	return RunSh("go", WithV())("vet", "-tags", "ci", "./...")
}

// Vulncheck Run vulncheck
func (Lint) Vulncheck() error {
	fmt.Println("running vulncheck")
	return RunSh("go", Tool())("run", "golang.org/x/vuln/cmd/govulncheck", "-C", "..", "./...")
}
