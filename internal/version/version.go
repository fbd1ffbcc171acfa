// Package version holds build information, injected at build time with -ldflags.
package version

// These variables are populated at build time using -ldflags
var (
	// Version is the semantic version of the application
	Version = "dev"

	// BuildTime is the time the binary was built
	BuildTime = "unknown"
)

// GetVersion returns the current version of the application
func GetVersion() string {
	return Version
}

// GetBuildTime returns the build time of the binary
func GetBuildTime() string {
	return BuildTime
}

// ClientTag identifies this client to the analytics backend
func ClientTag() string {
	return "kava-go:" + Version
}

// UserAgent is sent with every beacon request
func UserAgent() string {
	return "kava-go/" + Version
}

// GetVersionInfo returns a formatted string with version information
func GetVersionInfo() string {
	return "kava v" + Version + " (built " + BuildTime + ")"
}
