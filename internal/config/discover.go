package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const configDirName = "dirmirror"

// ConfigLevel represents the precedence level of a configuration file.
type ConfigLevel string

const (
	LevelSystem  ConfigLevel = "system"
	LevelUser    ConfigLevel = "user"
	LevelProject ConfigLevel = "project"
)

// ConfigLayerInfo describes a discovered config file and its load status.
type ConfigLayerInfo struct {
	Err    error // non-nil if the file exists but failed to load
	Path   string
	Level  ConfigLevel
	Loaded bool
}

// DiscoverOptions controls how config paths are discovered.
type DiscoverOptions struct {
	// ProjectPath is the config of the mirror job being run, usually
	// dirmirror.yaml in the working directory next to last.log.
	// Empty skips the layer.
	ProjectPath string

	// NoInherit skips the system and user layers so a job runs with
	// only its own file and the defaults.
	NoInherit bool

	// SystemConfigPath and UserConfigPath replace the OS defaults.
	// A nonexistent path skips the layer.
	SystemConfigPath string
	UserConfigPath   string
}

// DiscoverPaths returns the config files to check, lowest precedence first.
//
// Exclude lists accumulate across layers, so the system file carries
// machine-wide exclusions (VCS metadata, caches), the user file personal ones,
// and the job file what is specific to one source tree. Scalar settings such
// as log_file or arg_encoding are taken from the most specific layer that sets
// them. The same file listed at two levels is harmless: merging is idempotent
// for scalars and drops repeated patterns.
func DiscoverPaths(opts DiscoverOptions) []ConfigLayerInfo {
	candidates := []ConfigLayerInfo{
		{Level: LevelSystem, Path: orDefault(opts.SystemConfigPath, defaultSystemConfigPath)},
		{Level: LevelUser, Path: orDefault(opts.UserConfigPath, defaultUserConfigPath)},
		{Level: LevelProject, Path: opts.ProjectPath},
	}

	var layers []ConfigLayerInfo
	for _, c := range candidates {
		if c.Path == "" {
			continue
		}
		if opts.NoInherit && c.Level != LevelProject {
			continue
		}
		layers = append(layers, c)
	}
	return layers
}

func orDefault(path string, def func() string) string {
	if path != "" {
		return path
	}
	return def()
}

// defaultSystemConfigPath is /etc/dirmirror/dirmirror.yaml, or the
// ProgramData equivalent on Windows.
func defaultSystemConfigPath() string {
	if runtime.GOOS == "windows" {
		pd := os.Getenv("ProgramData")
		if pd == "" {
			pd = `C:\ProgramData`
		}
		return filepath.Join(pd, configDirName, DefaultFileName)
	}
	return filepath.Join("/etc", configDirName, DefaultFileName)
}

// defaultUserConfigPath is dirmirror/dirmirror.yaml under os.UserConfigDir,
// or empty when the user has no config directory.
func defaultUserConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, configDirName, DefaultFileName)
}

// EnvNoInherit returns true if DIRMIRROR_NO_INHERIT is set to "1" or "true".
func EnvNoInherit() bool {
	return envBoolTrue("DIRMIRROR_NO_INHERIT")
}

// LoadLayers loads every discovered layer that exists and merges them over
// Defaults. Missing files are skipped; a file that exists but fails to load
// aborts with its error. The returned slice reports the status of each layer.
func LoadLayers(opts DiscoverOptions) (*Config, []ConfigLayerInfo, error) {
	layers := DiscoverPaths(opts)
	configs := []*Config{Defaults()}

	for i := range layers {
		cfg, err := Load(layers[i].Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			layers[i].Err = err
			return nil, layers, fmt.Errorf("%s config: %w", layers[i].Level, err)
		}
		layers[i].Loaded = true
		configs = append(configs, cfg)
	}

	merged, err := MergeAll(configs)
	if err != nil {
		return nil, layers, err
	}
	return merged, layers, nil
}

// envBoolTrue returns true if the env var is set to "1" or "true" (case-insensitive).
func envBoolTrue(key string) bool {
	v := os.Getenv(key)
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "1" || v == "true"
}
