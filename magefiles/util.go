//go:build mage

package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// run go test in the root
func goTest(path string, args ...string) error {
	testArgs := append([]string{"test", "-failfast", "-count=1"}, args...)
	return RunSh(goCmdForTests(), WithV(), WithArgs(testArgs...))(path)
}

// use `richgo` for running tests if it's available
func goCmdForTests() string {
	if _, err := exec.LookPath("richgo"); err == nil {
		return "richgo"
	}
	return "go"
}

type runOptions struct {
	args           []string
	dir            string
	stderr, stdout io.Writer
}

// RunOpt applies an option to a runOptions set.
type RunOpt func(*runOptions)

// WithV sets stderr and stdout the standard streams
func WithV() RunOpt {
	return func(options *runOptions) {
		options.stdout = os.Stdout
		options.stderr = os.Stderr
	}
}

// WithDir sets the working directory for the command.
func WithDir(dir string) RunOpt {
	return func(options *runOptions) {
		options.dir = dir
	}
}

// WithArgs appends command arguments.
func WithArgs(args ...string) RunOpt {
	return func(options *runOptions) {
		options.args = append(options.args, args...)
	}
}

// Tool runs the command from the magefiles module, where tool versions are pinned.
func Tool() RunOpt {
	return func(options *runOptions) {
		WithDir("magefiles")(options)
		WithV()(options)
	}
}

// RunSh returns a function that runs the command, only returning errors. A
// failing command makes mage exit with the command's exit code.
func RunSh(cmd string, options ...RunOpt) func(args ...string) error {
	var opts runOptions
	for _, o := range options {
		o(&opts)
	}
	if opts.stdout == nil && mg.Verbose() {
		opts.stdout = os.Stdout
	}

	return func(args ...string) error {
		finalArgs := append(append([]string(nil), opts.args...), args...)

		c := exec.Command(cmd, finalArgs...)
		c.Dir = opts.dir
		c.Stdout = opts.stdout
		c.Stderr = opts.stderr
		c.Stdin = os.Stdin
		if mg.Verbose() {
			log.Println("exec:", cmd, strings.Join(finalArgs, " "))
		}

		err := c.Run()
		switch {
		case err == nil:
			return nil
		case sh.CmdRan(err):
			return mg.Fatalf(sh.ExitStatus(err), `running "%s %s" failed with exit code %d`, cmd, strings.Join(finalArgs, " "), sh.ExitStatus(err))
		default:
			return fmt.Errorf(`failed to run "%s %s": %w`, cmd, strings.Join(finalArgs, " "), err)
		}
	}
}
