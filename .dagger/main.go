// FarmerGPT CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/farmergpt/internal/dagger"
)

// FarmerGPT is the main module for the FarmerGPT CI/CD pipeline
type FarmerGPT struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new FarmerGPT CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", "build", "tmp", "frontend/node_modules", "frontend/dist", "*.db"]
	source *dagger.Directory,
) *FarmerGPT {
	return &FarmerGPT{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with gcc,
// libsqlite3-dev, CGO enabled, and the project source mounted.
func (f *FarmerGPT) goContainer() *dagger.Container {
	return f.goContainerFor("")
}

// goContainerFor is goContainer pinned to a target platform. The sqlite
// driver needs cgo, so cross builds run under emulation rather than GOARCH.
func (f *FarmerGPT) goContainerFor(platform dagger.Platform) *dagger.Container {
	opts := dagger.ContainerOpts{}
	if platform != "" {
		opts.Platform = platform
	}

	return dag.Container(opts).
		From("golang:1.25-bookworm").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "gcc", "libsqlite3-dev"}).
		WithEnvVariable("CGO_ENABLED", "1").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build-"+string(platform))).
		WithWorkdir("/src").
		WithDirectory("/src", f.Source)
}

// Test runs the farmergpt unit tests via "go test"
func (f *FarmerGPT) Test(ctx context.Context) (string, error) {
	return f.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}

// TestRace runs the unit tests with the race detector, which covers the
// worker pool and the detached persistence path.
func (f *FarmerGPT) TestRace(ctx context.Context) (string, error) {
	return f.goContainer().
		WithExec([]string{"go", "test", "-race", "./..."}).
		Stdout(ctx)
}
