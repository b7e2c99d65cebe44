// Package config provides layered configuration for the spmv commands:
// defaults, then a YAML or JSON file, then SPMV_* environment variables, then
// command-line flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hupe1980/spmv/codec"
	"github.com/hupe1980/spmv/internal/resource"
	"github.com/hupe1980/spmv/internal/sched"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable LoadFromEnv reads.
const EnvPrefix = "SPMV_"

// Config holds the configuration of one benchmark invocation.
type Config struct {
	// Input is the Matrix Market file to benchmark.
	Input string `json:"input" yaml:"input"`

	// Threads is the worker count. 0 means GOMAXPROCS.
	Threads int `json:"threads" yaml:"threads"`

	// Policy is the row scheduling policy, e.g. "static", "dynamic,32".
	Policy string `json:"policy" yaml:"policy"`

	// Warmup is the number of untimed kernel calls.
	Warmup int `json:"warmup" yaml:"warmup"`

	// Runs is the number of timed kernel calls.
	Runs int `json:"runs" yaml:"runs"`

	// Seed drives the input vector. 0 picks a random seed.
	Seed uint64 `json:"seed" yaml:"seed"`

	// RandMin and RandMax bound the input vector values.
	RandMin float64 `json:"rand_min" yaml:"rand_min"`
	RandMax float64 `json:"rand_max" yaml:"rand_max"`

	// ExpandSymmetric mirrors symmetric inputs instead of rejecting them.
	ExpandSymmetric bool `json:"expand_symmetric" yaml:"expand_symmetric"`

	// ArenaCapacity overrides the arena size derived from the header.
	ArenaCapacity int64 `json:"arena_capacity" yaml:"arena_capacity"`

	// Log configuration
	Log LogConfig `json:"log" yaml:"log"`

	// Output configuration
	Output OutputConfig `json:"output" yaml:"output"`

	// Limits configuration
	Limits LimitsConfig `json:"limits" yaml:"limits"`

	// History is the sqlite run history path. Empty disables it.
	History string `json:"history" yaml:"history"`
}

// LogConfig selects the logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is text or json.
	Format string `json:"format" yaml:"format"`
}

// OutputConfig describes where reports go.
type OutputConfig struct {
	// Path is a local report file. Empty disables the file sink.
	Path string `json:"path" yaml:"path"`

	// Format is the codec name: go-json, json or yaml.
	Format string `json:"format" yaml:"format"`

	// S3 sink
	S3 S3Config `json:"s3" yaml:"s3"`

	// MinIO sink
	MinIO MinIOConfig `json:"minio" yaml:"minio"`
}

// S3Config holds the AWS S3 sink settings.
type S3Config struct {
	Bucket string `json:"bucket" yaml:"bucket"`
	Prefix string `json:"prefix" yaml:"prefix"`
	Region string `json:"region" yaml:"region"`
}

// Enabled reports whether the sink is configured.
func (c S3Config) Enabled() bool { return c.Bucket != "" }

// MinIOConfig holds the MinIO sink settings.
type MinIOConfig struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	AccessKey string `json:"access_key" yaml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
	Secure    bool   `json:"secure" yaml:"secure"`
	Bucket    string `json:"bucket" yaml:"bucket"`
	Prefix    string `json:"prefix" yaml:"prefix"`
}

// Enabled reports whether the sink is configured.
func (c MinIOConfig) Enabled() bool { return c.Endpoint != "" }

// LimitsConfig bounds memory and publishing.
type LimitsConfig struct {
	// MemoryLimitBytes caps arena reservations. 0 means unlimited.
	MemoryLimitBytes int64 `json:"memory_limit_bytes" yaml:"memory_limit_bytes"`

	// MaxPublishers caps concurrent sink uploads.
	MaxPublishers int `json:"max_publishers" yaml:"max_publishers"`

	// IOLimitBytesPerSec throttles sink uploads. 0 means unlimited.
	IOLimitBytesPerSec int `json:"io_limit_bytes_per_sec" yaml:"io_limit_bytes_per_sec"`
}

// Resource converts the limits into a resource controller configuration.
func (c LimitsConfig) Resource() resource.Config {
	return resource.Config{
		MemoryLimitBytes:   c.MemoryLimitBytes,
		MaxPublishers:      int64(c.MaxPublishers),
		IOLimitBytesPerSec: int64(c.IOLimitBytesPerSec),
	}
}

// Default returns the configuration with all defaults applied.
func Default() *Config {
	return &Config{
		Threads:         0,
		Policy:          "static",
		Warmup:          5,
		Runs:            10,
		RandMin:         0,
		RandMax:         99,
		ExpandSymmetric: true,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Format: codec.Default.Name(),
		},
		Limits: LimitsConfig{
			MaxPublishers: 4,
		},
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Threads < 0 {
		return fmt.Errorf("threads must be >= 0, got %d", c.Threads)
	}
	if c.Warmup < 0 {
		return fmt.Errorf("warmup must be >= 0, got %d", c.Warmup)
	}
	if c.Runs < 1 {
		return fmt.Errorf("runs must be >= 1, got %d", c.Runs)
	}
	if _, err := sched.ParsePolicy(c.Policy); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	if c.RandMin > c.RandMax {
		return fmt.Errorf("rand_min %g exceeds rand_max %g", c.RandMin, c.RandMax)
	}
	if c.ArenaCapacity < 0 {
		return fmt.Errorf("arena_capacity must be >= 0, got %d", c.ArenaCapacity)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Log.Format)
	}

	if _, ok := codec.ByName(c.Output.Format); !ok {
		return fmt.Errorf("invalid output format: %s (must be one of %s)", c.Output.Format, strings.Join(codec.Names(), ", "))
	}
	if c.Output.MinIO.Enabled() && c.Output.MinIO.Bucket == "" {
		return fmt.Errorf("minio.bucket is required when minio.endpoint is set")
	}

	if c.Limits.MemoryLimitBytes < 0 {
		return fmt.Errorf("limits.memory_limit_bytes must be >= 0, got %d", c.Limits.MemoryLimitBytes)
	}
	if c.Limits.MaxPublishers < 1 {
		return fmt.Errorf("limits.max_publishers must be >= 1, got %d", c.Limits.MaxPublishers)
	}
	if c.Limits.IOLimitBytesPerSec < 0 {
		return fmt.Errorf("limits.io_limit_bytes_per_sec must be >= 0, got %d", c.Limits.IOLimitBytesPerSec)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file on top of the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv overrides cfg with SPMV_* environment variables.
func LoadFromEnv(cfg *Config) error {
	return loadFromLookup(cfg, os.LookupEnv)
}

func loadFromLookup(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return "", false
		}
		return v, true
	}

	var errs []string
	setInt := func(name string, dst *int) {
		if v, ok := get(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	setInt64 := func(name string, dst *int64) {
		if v, ok := get(name); ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	setFloat := func(name string, dst *float64) {
		if v, ok := get(name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", EnvPrefix, name, err))
				return
			}
			*dst = f
		}
	}
	setBool := func(name string, dst *bool) {
		if v, ok := get(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}
	setString := func(name string, dst *string) {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	setString("INPUT", &cfg.Input)
	setInt("THREADS", &cfg.Threads)
	setString("POLICY", &cfg.Policy)
	setInt("WARMUP", &cfg.Warmup)
	setInt("RUNS", &cfg.Runs)
	if v, ok := get("SEED"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%sSEED: %v", EnvPrefix, err))
		} else {
			cfg.Seed = n
		}
	}
	setFloat("RAND_MIN", &cfg.RandMin)
	setFloat("RAND_MAX", &cfg.RandMax)
	setBool("EXPAND_SYMMETRIC", &cfg.ExpandSymmetric)
	setInt64("ARENA_CAPACITY", &cfg.ArenaCapacity)
	setString("HISTORY", &cfg.History)

	// Log configuration
	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_FORMAT", &cfg.Log.Format)

	// Output configuration
	setString("OUTPUT", &cfg.Output.Path)
	setString("FORMAT", &cfg.Output.Format)
	setString("S3_BUCKET", &cfg.Output.S3.Bucket)
	setString("S3_PREFIX", &cfg.Output.S3.Prefix)
	setString("S3_REGION", &cfg.Output.S3.Region)
	setString("MINIO_ENDPOINT", &cfg.Output.MinIO.Endpoint)
	setString("MINIO_ACCESS_KEY", &cfg.Output.MinIO.AccessKey)
	setString("MINIO_SECRET_KEY", &cfg.Output.MinIO.SecretKey)
	setBool("MINIO_SECURE", &cfg.Output.MinIO.Secure)
	setString("MINIO_BUCKET", &cfg.Output.MinIO.Bucket)
	setString("MINIO_PREFIX", &cfg.Output.MinIO.Prefix)

	// Limits configuration
	setInt64("MEMORY_LIMIT_BYTES", &cfg.Limits.MemoryLimitBytes)
	setInt("MAX_PUBLISHERS", &cfg.Limits.MaxPublishers)
	setInt("IO_LIMIT_BYTES_PER_SEC", &cfg.Limits.IOLimitBytesPerSec)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Load builds a configuration from an optional file and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := LoadFromEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
