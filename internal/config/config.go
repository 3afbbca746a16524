// Package config loads blobbatch CLI settings from a TOML file and the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultFileName    = "blobbatch.toml"
	DefaultRegion      = "us-west-1"
	DefaultBackend     = BackendS3
	DefaultLogLevel    = "info"
	DefaultMaxAttempts = 3

	BackendS3    = "s3"
	BackendMinio = "minio"

	endpointEnvKey = "S3_ENDPOINT"
	regionEnvKey   = "S3_REGION"
	bucketEnvKey   = "BLOBBATCH_BUCKET"
)

// UploadConfig holds the batch uploader settings.
type UploadConfig struct {
	MaxAttempts   int           `toml:"max_attempts"`
	Concurrency   int           `toml:"concurrency"`
	RateLimit     float64       `toml:"rate_limit"`
	BackoffBase   time.Duration `toml:"backoff_base"`
	BackoffMax    time.Duration `toml:"backoff_max"`
	BackoffJitter float64       `toml:"backoff_jitter"`
	FailFast      bool          `toml:"fail_fast"`
}

// Config defines runtime configuration for blobbatch.
type Config struct {
	Bucket         string       `toml:"bucket"`
	Prefix         string       `toml:"prefix"`
	Backend        string       `toml:"backend"`
	Region         string       `toml:"region"`
	Endpoint       string       `toml:"endpoint"`
	ForcePathStyle bool         `toml:"force_path_style"`
	AccessKey      string       `toml:"access_key"`
	SecretKey      string       `toml:"secret_key"`
	DisableSSL     bool         `toml:"disable_ssl"`
	LogLevel       string       `toml:"log_level"`
	Upload         UploadConfig `toml:"upload"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		Backend:  DefaultBackend,
		Region:   DefaultRegion,
		LogLevel: DefaultLogLevel,
		Upload: UploadConfig{
			MaxAttempts: DefaultMaxAttempts,
		},
	}
}

// Load returns the defaults overlaid with the TOML file at path and then the
// environment. An empty path reads DefaultFileName from the working directory
// if it exists; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := loadFileIfExists(DefaultFileName, &cfg); err != nil {
			return Config{}, err
		}
	} else {
		found, err := loadFileIfExists(path, &cfg)
		if err != nil {
			return Config{}, err
		}
		if !found {
			return Config{}, fmt.Errorf("config file %s not found", path)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return false, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return true, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(endpointEnvKey)); v != "" {
		cfg.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(regionEnvKey)); v != "" {
		cfg.Region = v
	}
	if v := strings.TrimSpace(os.Getenv(bucketEnvKey)); v != "" {
		cfg.Bucket = v
	}
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case "":
		c.Backend = DefaultBackend
	case BackendS3:
	case BackendMinio:
		if c.Endpoint == "" {
			return fmt.Errorf("backend %q requires an endpoint", BackendMinio)
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendS3, BackendMinio)
	}

	if c.Upload.MaxAttempts < 1 {
		return fmt.Errorf("upload.max_attempts must be at least 1, got %d", c.Upload.MaxAttempts)
	}
	if c.Upload.Concurrency < 0 {
		return fmt.Errorf("upload.concurrency must not be negative, got %d", c.Upload.Concurrency)
	}
	if c.Upload.RateLimit < 0 {
		return fmt.Errorf("upload.rate_limit must not be negative, got %g", c.Upload.RateLimit)
	}
	if c.Upload.BackoffJitter < 0 || c.Upload.BackoffJitter > 1 {
		return fmt.Errorf("upload.backoff_jitter must be between 0 and 1, got %g", c.Upload.BackoffJitter)
	}
	return nil
}
