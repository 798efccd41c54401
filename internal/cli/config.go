package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is looked up in the specs directory when --config is not
// given.
const ConfigFileName = "optchain.toml"

// Config is the optional project file:
//
//	[transform]
//	emit = "source"
//	jobs = 4
//	header = "Code generated by optchain. DO NOT EDIT."
//
//	[cache]
//	path = ".optchain/cache.db"
//
// Relative cache paths are resolved against the file's directory.
type Config struct {
	Transform TransformConfig `toml:"transform"`
	Cache     CacheConfig     `toml:"cache"`
}

// TransformConfig holds defaults for the transform command.
type TransformConfig struct {
	Emit   string `toml:"emit"`
	Jobs   int    `toml:"jobs"`
	Header string `toml:"header"`
}

// CacheConfig holds the cache database location.
type CacheConfig struct {
	Path string `toml:"path"`
}

// LoadConfig decodes a config file. Unknown keys are rejected so typos do
// not silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Transform.Jobs < 0 {
		return Config{}, fmt.Errorf("config %s: transform.jobs must be non-negative", path)
	}
	if cfg.Cache.Path != "" && !filepath.IsAbs(cfg.Cache.Path) {
		cfg.Cache.Path = filepath.Join(filepath.Dir(path), cfg.Cache.Path)
	}
	return cfg, nil
}

// ResolveConfig loads the explicit config file, or dir/optchain.toml when it
// exists, or returns the zero Config. An explicit path must exist.
func ResolveConfig(explicit, dir string) (Config, error) {
	if explicit != "" {
		return LoadConfig(explicit)
	}
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	return LoadConfig(path)
}
