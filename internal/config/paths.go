package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultAnkiRoot is the directory where Anki keeps its profiles on this
// machine, or "" when the home directory is unknown.
func DefaultAnkiRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return ankiRoot(runtime.GOOS, home, os.Getenv)
}

func ankiRoot(goos, home string, getenv func(string) string) string {
	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Anki2")
	case "windows":
		if appData := getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Anki2")
		}
		return filepath.Join(home, "AppData", "Roaming", "Anki2")
	default:
		if dataHome := getenv("XDG_DATA_HOME"); dataHome != "" {
			return filepath.Join(dataHome, "Anki2")
		}
		return filepath.Join(home, ".local", "share", "Anki2")
	}
}

// DefaultCacheDir is where downloaded media repositories are kept.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "kanjisheet")
}
