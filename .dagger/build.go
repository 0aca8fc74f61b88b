package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/farmergpt/internal/dagger"
)

// Build and return directory of go binaries
func (f *FarmerGPT) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	// linux only: the sqlite storage driver is cgo
	goarches := []string{"amd64", "arm64"}

	outputs := dag.Directory()

	for _, goarch := range goarches {
		path := fmt.Sprintf("linux/%s/", goarch)

		build := f.goContainerFor(dagger.Platform("linux/"+goarch)).
			WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/farmergpt"})

		outputs = outputs.WithDirectory(path, build.Directory(path))
	}

	return outputs
}

// BuildRelease compiles versioned release binaries with embedded version info
func (f *FarmerGPT) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	buildtime := time.Now()

	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/farmergpt/farmergpt/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/farmergpt/farmergpt/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/farmergpt/farmergpt/pkg/utils.Buildtime=%s'", buildtime),
	}

	return f.Build(ctx, strings.Join(ldflags, " "))
}
