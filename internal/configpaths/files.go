// Package configpaths resolves where deckstream config files may live:
// working directory, per-user config home, and /etc on unix.
package configpaths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// Base names probed in each candidate directory. "capture" and "play" allow
// per-command config files next to the shared one.
var configBaseNames = []string{"config", "capture", "play"}

// DefaultConfigDir returns the per-user deckstream config directory.
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("AppData"); appdata != "" {
			return filepath.Join(appdata, "deckstream"), nil
		}
		return "", errors.New("AppData not set")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "deckstream"), nil
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", "deckstream"), nil
		}
		return "", errors.New("HOME not set")
	}
}

// DefaultConfigPath returns the default shared config file path for the
// given format.
func DefaultConfigPath(format string) (string, error) {
	return DefaultNamedConfigPath("config", format)
}

// DefaultNamedConfigPath returns the default path for a config file with the
// given base name ("capture", "play") and format.
func DefaultNamedConfigPath(baseName, format string) (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	ext := "json"
	switch format {
	case "yaml", "yml":
		ext = "yaml"
	case "toml":
		ext = "toml"
	}
	return filepath.Join(dir, baseName+"."+ext), nil
}

// EnsureDir ensures the directory for a given file path exists.
func EnsureDir(filePath string) error {
	dir := filepath.Dir(filePath)
	return os.MkdirAll(dir, 0o755)
}

// ConfigCandidatePaths builds the candidate config file lists, one per
// format. A non-empty userPath takes priority and is routed to the loader
// matching its extension.
func ConfigCandidatePaths(userPath string) (jsonPaths, yamlPaths, tomlPaths []string) {
	add := func(slice *[]string, p string) { *slice = append(*slice, p) }

	if userPath != "" {
		switch ext := filepath.Ext(userPath); ext {
		case ".json":
			add(&jsonPaths, userPath)
		case ".yaml", ".yml":
			add(&yamlPaths, userPath)
		case ".toml":
			add(&tomlPaths, userPath)
		default:
			add(&jsonPaths, userPath)
		}
	}

	addDir := func(dir string, bases []string) {
		for _, base := range bases {
			add(&jsonPaths, filepath.Join(dir, base+".json"))
			add(&yamlPaths, filepath.Join(dir, base+".yaml"))
			add(&yamlPaths, filepath.Join(dir, base+".yml"))
			add(&tomlPaths, filepath.Join(dir, base+".toml"))
		}
	}

	// Working directory additionally probes a "deckstream" base name.
	wd, _ := os.Getwd()
	addDir(wd, append([]string{"deckstream"}, configBaseNames...))

	if dir, err := DefaultConfigDir(); err == nil {
		addDir(dir, configBaseNames)
	}

	if runtime.GOOS != "windows" {
		addDir("/etc/deckstream", configBaseNames)
	}

	return
}
