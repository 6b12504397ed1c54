package version

// Version and Revision are set via -ldflags on release builds.
var (
	Version  = "dev"
	Revision = "unknown"
)
