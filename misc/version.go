// Package misc holds build-time program identification.
package misc

// Set at link time with -ldflags "-X stylediff/misc.version=..."
var (
	appName = "stylediff"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
