package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// AppDirName is the per-user directory holding config, session and history.
const AppDirName = ".ytgenius"

// UserHomeDir returns the current user's home directory.
// If the home directory cannot be determined, it returns "." as a fallback.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// AppDir returns ~/.ytgenius.
func AppDir() string {
	return filepath.Join(UserHomeDir(), AppDirName)
}

// AppPath joins elements under ~/.ytgenius.
func AppPath(elem ...string) string {
	return filepath.Join(append([]string{AppDir()}, elem...)...)
}

// ExpandPath resolves a leading "~/" and cleans the result.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		return UserHomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(UserHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}
