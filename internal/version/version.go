// Package version carries build metadata injected at link time.
package version

// Set with -ldflags at build time; the zero values identify a source build.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// String returns the bare version for banners and --version output.
func String() string {
	return Version
}
