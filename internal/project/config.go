package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigFile is the name looked up by FindConfig.
const ConfigFile = "argbind.toml"

// Config is the decoded argbind.toml.
type Config struct {
	Decode DecodeConfig `toml:"decode"`
	Cache  CacheConfig  `toml:"cache"`
	Trace  TraceConfig  `toml:"trace"`
	Bind   BindConfig   `toml:"bind"`
}

type DecodeConfig struct {
	Strict         bool `toml:"strict"`
	MaxDiagnostics int  `toml:"max_diagnostics"`
	Jobs           int  `toml:"jobs"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
}

type BindConfig struct {
	InlineBytes bool `toml:"inline_bytes"`
	CheckKinds  bool `toml:"check_kinds"`
}

// DefaultConfig is used when no argbind.toml is found. Loaded files start
// from it, so absent keys keep these values.
func DefaultConfig() Config {
	return Config{
		Decode: DecodeConfig{MaxDiagnostics: 100},
		Cache:  CacheConfig{Enabled: true},
		Trace:  TraceConfig{Level: "off"},
		Bind:   BindConfig{InlineBytes: true},
	}
}

// Manifest is a located and decoded config file.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// FindConfig walks up from startDir to locate argbind.toml.
func FindConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Discover finds and loads the config above startDir. ok is false when there
// is none; the returned manifest then carries DefaultConfig.
func Discover(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return &Manifest{Config: DefaultConfig()}, false, nil
	}
	m, err := LoadManifest(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// LoadManifest loads the config file at path.
func LoadManifest(path string) (*Manifest, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}, nil
}

var validTraceLevels = []string{"off", "phase", "detail", "debug"}

// LoadConfig decodes and validates a config file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Decode.MaxDiagnostics <= 0 {
		return Config{}, fmt.Errorf("%s: [decode].max_diagnostics must be positive", path)
	}
	if cfg.Decode.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [decode].jobs must not be negative", path)
	}
	if meta.IsDefined("trace", "level") && !validLevel(cfg.Trace.Level) {
		return Config{}, fmt.Errorf("%s: [trace].level must be one of %s", path, strings.Join(validTraceLevels, "|"))
	}
	if meta.IsDefined("cache", "dir") && cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(filepath.Dir(path), cfg.Cache.Dir)
	}
	return cfg, nil
}

func validLevel(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, l := range validTraceLevels {
		if s == l {
			return true
		}
	}
	return false
}
