// Command shadec compiles the reference shade programs to GLSL or WGSL.
//
// Usage:
//
//	shadec [options] <program>...
//
// Examples:
//
//	shadec -list                          # List programs
//	shadec basic                          # Compile to WGSL on stdout
//	shadec -dialect glsl -glsl-version "300 es" textured
//	shadec -all -o build/shaders          # Compile every program to files
//	shadec -watch -o build textured       # Recompile when shadec.toml changes
//
// Options are read from shadec.toml or shadec.yaml (searched upward from the
// working directory), then from the SHADEC_FLAGS environment variable, then
// from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mattn/go-shellwords"
)

func main() {
	args, err := withEnvFlags(os.Getenv("SHADEC_FLAGS"), os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing SHADEC_FLAGS: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// withEnvFlags prepends the shell-quoted flags of env to args, so the
// command line wins over the environment.
func withEnvFlags(env string, args []string) ([]string, error) {
	if env == "" {
		return args, nil
	}
	extra, err := shellwords.Parse(env)
	if err != nil {
		return nil, err
	}
	return append(extra, args...), nil
}
