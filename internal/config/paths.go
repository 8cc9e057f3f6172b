package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DataDir returns the default data directory for theo.
// Windows: %LOCALAPPDATA%\theo
// Linux/Mac: ~/.local/share/theo
func DataDir() string {
	if dir := os.Getenv("THEO_DATA_DIR"); dir != "" {
		return dir
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "theo")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "theo")
}

// DBPath returns the sqlite database file holding turns and summaries.
func DBPath() string {
	return filepath.Join(DataDir(), "theo.db")
}

// IndexDir returns the directory where the embedding index is persisted.
func IndexDir() string {
	return filepath.Join(DataDir(), "index")
}

// EnsureDirs creates the required directories if they don't exist.
func EnsureDirs(cfg *Config) error {
	for _, dir := range []string{cfg.DataDir, cfg.IndexDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
