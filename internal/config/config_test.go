package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.Warmup)
	assert.Equal(t, 10, cfg.Runs)
	assert.Equal(t, 0, cfg.Threads)
	assert.Equal(t, "static", cfg.Policy)
	assert.Equal(t, 0.0, cfg.RandMin)
	assert.Equal(t, 99.0, cfg.RandMax)
	assert.Equal(t, "go-json", cfg.Output.Format)
	assert.False(t, cfg.Output.S3.Enabled())
	assert.False(t, cfg.Output.MinIO.Enabled())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative threads", func(c *Config) { c.Threads = -1 }},
		{"negative warmup", func(c *Config) { c.Warmup = -1 }},
		{"zero runs", func(c *Config) { c.Runs = 0 }},
		{"bad policy", func(c *Config) { c.Policy = "fastest" }},
		{"bad range", func(c *Config) { c.RandMin, c.RandMax = 5, 1 }},
		{"negative arena", func(c *Config) { c.ArenaCapacity = -1 }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad output format", func(c *Config) { c.Output.Format = "toml" }},
		{"minio without bucket", func(c *Config) { c.Output.MinIO.Endpoint = "localhost:9000" }},
		{"negative memory", func(c *Config) { c.Limits.MemoryLimitBytes = -1 }},
		{"no publishers", func(c *Config) { c.Limits.MaxPublishers = 0 }},
		{"negative io", func(c *Config) { c.Limits.IOLimitBytesPerSec = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spmv.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input: data/m.mtx
threads: 8
policy: guided,4
runs: 20
log:
  level: debug
output:
  format: yaml
  s3:
    bucket: results
    prefix: spmv/
limits:
  io_limit_bytes_per_sec: 1048576
`), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "data/m.mtx", cfg.Input)
	assert.Equal(t, 8, cfg.Threads)
	assert.Equal(t, "guided,4", cfg.Policy)
	assert.Equal(t, 20, cfg.Runs)
	assert.Equal(t, 5, cfg.Warmup, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.True(t, cfg.Output.S3.Enabled())
	assert.Equal(t, "spmv/", cfg.Output.S3.Prefix)

	rc := cfg.Limits.Resource()
	assert.Equal(t, int64(1048576), rc.IOLimitBytesPerSec)
	assert.Equal(t, int64(4), rc.MaxPublishers)
}

func TestLoadFromFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spmv.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"warmup": 0, "runs": 3, "seed": 42}`), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Warmup)
	assert.Equal(t, 3, cfg.Runs)
	assert.Equal(t, uint64(42), cfg.Seed)
}

func TestLoadFromFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	toml := filepath.Join(dir, "spmv.toml")
	require.NoError(t, os.WriteFile(toml, []byte("runs = 1"), 0o600))
	_, err = LoadFromFile(toml)
	assert.ErrorContains(t, err, "unsupported")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("runs: [1"), 0o600))
	_, err = LoadFromFile(bad)
	assert.ErrorContains(t, err, "YAML")
}

func TestLoadFromEnv(t *testing.T) {
	env := map[string]string{
		"SPMV_THREADS":          "3",
		"SPMV_POLICY":           "dynamic,8",
		"SPMV_SEED":             "7",
		"SPMV_RAND_MAX":         "1.5",
		"SPMV_EXPAND_SYMMETRIC": "false",
		"SPMV_FORMAT":           "json",
		"SPMV_MINIO_ENDPOINT":   "localhost:9000",
		"SPMV_MINIO_BUCKET":     "bench",
		"SPMV_MAX_PUBLISHERS":   "2",
		"SPMV_WARMUP":           "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, loadFromLookup(cfg, lookup))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3, cfg.Threads)
	assert.Equal(t, "dynamic,8", cfg.Policy)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, 1.5, cfg.RandMax)
	assert.False(t, cfg.ExpandSymmetric)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Output.MinIO.Enabled())
	assert.Equal(t, 2, cfg.Limits.MaxPublishers)
	assert.Equal(t, 5, cfg.Warmup, "empty values are ignored")
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	lookup := func(k string) (string, bool) {
		switch k {
		case "SPMV_RUNS":
			return "ten", true
		case "SPMV_SEED":
			return "-1", true
		}
		return "", false
	}
	err := loadFromLookup(Default(), lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SPMV_RUNS")
	assert.Contains(t, err.Error(), "SPMV_SEED")
}

func TestLoad(t *testing.T) {
	t.Setenv("SPMV_RUNS", "4")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Runs)

	path := filepath.Join(t.TempDir(), "c.yml")
	require.NoError(t, os.WriteFile(path, []byte("runs: 2\nwarmup: 1\n"), 0o600))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Runs, "environment wins over file")
	assert.Equal(t, 1, cfg.Warmup)
}
