package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ConfigPaths holds the configuration files found for a working directory.
// Empty fields mean no file was found at that layer.
type ConfigPaths struct {
	// System is the machine-wide config, e.g. /etc/gorazor/config.yaml.
	System string

	// User is the per-user config, e.g. ~/.config/gorazor/config.yaml.
	User string

	// Project is the nearest project config above the working directory.
	Project string

	// Explicit is the file named by --config.
	Explicit string
}

// ProjectConfigName is the preferred project config file name, written by "gorazor init".
const ProjectConfigName = ".gorazor.yml"

const appName = "gorazor"

// projectConfigFiles are the project config names, in order of preference.
//
//nolint:gochecknoglobals // Read-only lookup table.
var projectConfigFiles = []string{
	ProjectConfigName,
	".gorazor.yaml",
	"gorazor.yml",
	"gorazor.yaml",
	".gorazor.json",
}

// projectRootMarkers end the upward project config search: a Go module root or a VCS root.
//
//nolint:gochecknoglobals // Read-only lookup table.
var projectRootMarkers = []struct {
	name string
	dir  bool
}{
	{"go.mod", false},
	{".git", true},
	{".hg", true},
	{".svn", true},
}

// DiscoverPaths finds the system, user and project configuration files for workDir.
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	project, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}

	return &ConfigPaths{
		System:  firstConfigIn(systemConfigDir()),
		User:    firstConfigIn(userConfigDir()),
		Project: project,
	}, nil
}

func systemConfigDir() string {
	if runtime.GOOS == "windows" {
		programData := os.Getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, appName)
	}
	return filepath.Join("/etc", appName)
}

func userConfigDir() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// firstConfigIn returns config.yaml or config.yml from dir, or "" when neither exists.
func firstConfigIn(dir string) string {
	if dir == "" {
		return ""
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		if path := filepath.Join(dir, name); isFile(path) {
			return path
		}
	}
	return ""
}

// FindProjectConfig walks up from startDir and returns the first project config found.
// The search includes, then stops at, the first directory holding a go.mod or a VCS
// root, the user's home directory, or the file system root. It returns "" when no
// config exists in that range.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		startDir = wd
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	home, _ := os.UserHomeDir()

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("context cancelled: %w", err)
		}

		for _, name := range projectConfigFiles {
			if path := filepath.Join(dir, name); isFile(path) {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if isProjectRoot(dir) || dir == home || parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func isProjectRoot(dir string) bool {
	for _, marker := range projectRootMarkers {
		info, err := os.Stat(filepath.Join(dir, marker.name))
		if err == nil && info.IsDir() == marker.dir {
			return true
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
