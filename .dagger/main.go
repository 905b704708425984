// Workbench CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
// It is the main harness for handling nearly all dev operations.
package main

import (
	"context"

	"dagger/workbench/internal/dagger"
)

// Workbench is the main module for the wb CI/CD pipeline
type Workbench struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Workbench CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", "build", "tmp"]
	source *dagger.Directory,
) *Workbench {
	return &Workbench{
		Source: source,
	}
}

// goContainer returns a Go container with the module caches mounted and the
// project source at /src. It is the shared foundation for tests and linting.
func (w *Workbench) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-bookworm").
		WithEnvVariable("CGO_ENABLED", "0").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", w.Source)
}

// Test runs the wb unit tests via "go test"
func (w *Workbench) Test(ctx context.Context) (string, error) {
	return w.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}
