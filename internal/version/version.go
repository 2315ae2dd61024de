// Package version holds build metadata injected with -ldflags.
package version

// Set via -ldflags "-X github.com/doeshing/ytgenius/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

// UserAgent is sent with every request to the generation service.
func UserAgent() string {
	return "ytgenius/" + Version
}
