// Package version provides information about the build version of the binaries.
package version

// BuildInfo holds version information about a binary build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information for service. The version, commit, and date variables
// are intended to be set at build time using -ldflags.
func Info(service string) BuildInfo {
	// Set via -ldflags "-X 'hamfinder/internal/platform/version.version=v0.1.0'
	// -X 'hamfinder/internal/platform/version.commit=abcd' -X 'hamfinder/internal/platform/version.date=2024-05-07'"
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
