package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[transform]
emit = "json"
jobs = 4
header = "hand written"

[cache]
path = "state/cache.db"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Transform.Emit)
	assert.Equal(t, 4, cfg.Transform.Jobs)
	assert.Equal(t, "hand written", cfg.Transform.Header)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "state", "cache.db"), cfg.Cache.Path)
}

func TestLoadConfig_AbsoluteCachePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "cache.db")
	cfg, err := LoadConfig(writeConfig(t, "[cache]\npath = '"+abs+"'\n"))
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.Cache.Path)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown key", "[transform]\nemitt = \"json\"\n", "unknown keys: transform.emitt"},
		{"unknown table", "[worker]\njobs = 2\n", "unknown keys"},
		{"negative jobs", "[transform]\njobs = -1\n", "transform.jobs must be non-negative"},
		{"syntax", "[transform\n", "read config"},
		{"wrong type", "[transform]\njobs = \"four\"\n", "read config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolveConfig(t *testing.T) {
	t.Run("absent file is the zero config", func(t *testing.T) {
		cfg, err := ResolveConfig("", t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, Config{}, cfg)
	})

	t.Run("found in dir", func(t *testing.T) {
		path := writeConfig(t, "[transform]\nemit = \"json\"\n")
		cfg, err := ResolveConfig("", filepath.Dir(path))
		require.NoError(t, err)
		assert.Equal(t, "json", cfg.Transform.Emit)
	})

	t.Run("explicit path must exist", func(t *testing.T) {
		_, err := ResolveConfig(filepath.Join(t.TempDir(), "missing.toml"), ".")
		require.Error(t, err)
	})
}
