//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// All Run all test suites
func (t Test) All() error {
	mg.Deps(t.Unit, t.Race)
	return nil
}

// Unit Run the unit tests with debug assertions enabled
func (Test) Unit() error {
	fmt.Println("running unit tests")
	return goTest("./...", "-tags", "ci", "-timeout", "5m")
}

// Race Run the unit tests under the race detector
func (Test) Race() error {
	fmt.Println("running unit tests with -race")
	return goTest("./...", "-tags", "ci", "-race", "-timeout", "10m")
}

// Properties Run the property tests with more checks per property
func (Test) Properties() error {
	fmt.Println("running property tests")
	return goTest("./pkg/frame/...", "-tags", "ci", "-run", "Propert", "-rapid.checks", "10000")
}
