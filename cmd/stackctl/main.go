package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/artpar/stackctl/internal/core/compose"
	"github.com/artpar/stackctl/internal/shell/docker"
	"github.com/artpar/stackctl/internal/shell/project"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitConfigError  = 1
	ExitComposeError = 2
	ExitDockerError  = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newApp(stdout, stderr).rootCommand()
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitCode(err)
	}
	return ExitSuccess
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	var (
		parseErr   *compose.ParseError
		cfgErr     *compose.ConfigurationError
		refErr     *project.ReferenceError
		rtErr      *project.RuntimeError
		dockerErr  *docker.DockerError
		notFoundEr *project.ServiceNotFoundError
	)
	switch {
	case errors.As(err, &parseErr), errors.As(err, &cfgErr), errors.As(err, &notFoundEr),
		errors.Is(err, compose.ErrEmptyInput), errors.Is(err, compose.ErrNoServices):
		return ExitComposeError
	case errors.As(err, &refErr), errors.As(err, &rtErr), errors.As(err, &dockerErr):
		return ExitDockerError
	default:
		return ExitConfigError
	}
}
