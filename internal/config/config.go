package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"

	"github.com/faanross/stegocrypt/internal/carrier"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Config holds the settings of the stego HTTP service.
type Config struct {
	Address           string `yaml:"address"`
	MaxUploadMB       int    `yaml:"maxUploadMB"`
	MaxConcurrentJobs int    `yaml:"maxConcurrentJobs"`
	MaxImagePixels    int    `yaml:"maxImagePixels"`
	LogLevel          string `yaml:"logLevel"`
	GinMode           string `yaml:"ginMode"`
}

// Environment variables that override the file.
const (
	EnvAddress     = "STEGO_ADDRESS"
	EnvMaxUploadMB = "STEGO_MAX_UPLOAD_MB"
	EnvMaxJobs     = "STEGO_MAX_JOBS"
	EnvMaxPixels   = "STEGO_MAX_IMAGE_PIXELS"
	EnvLogLevel    = "STEGO_LOG_LEVEL"
	EnvGinMode     = "STEGO_GIN_MODE"
)

// Load builds a Config from defaults, then the YAML file at path, then the
// environment. envFile, when present on disk, is loaded into the
// environment first; variables already set win over it. Missing files are
// not an error.
func Load(path, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("error loading %s: %w", envFile, err)
		}
	}

	var config Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("error reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &config); err != nil {
				return Config{}, fmt.Errorf("error parsing config %s: %w", path, err)
			}
		}
	}

	if err := config.applyEnv(); err != nil {
		return Config{}, err
	}

	if config.Address == "" {
		config.Address = ":5000"
	}

	if config.MaxUploadMB == 0 {
		config.MaxUploadMB = 32
	}

	if config.MaxConcurrentJobs == 0 {
		config.MaxConcurrentJobs = runtime.NumCPU()
	}

	if config.MaxImagePixels == 0 {
		config.MaxImagePixels = carrier.DefaultMaxPixels
	}

	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	if config.GinMode == "" {
		config.GinMode = "release"
	}

	return config, config.validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAddress); v != "" {
		c.Address = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvGinMode); v != "" {
		c.GinMode = v
	}

	for name, dst := range map[string]*int{
		EnvMaxUploadMB: &c.MaxUploadMB,
		EnvMaxJobs:     &c.MaxConcurrentJobs,
		EnvMaxPixels:   &c.MaxImagePixels,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", name, v)
		}
		*dst = n
	}
	return nil
}

func (c Config) validate() error {
	if c.MaxUploadMB < 0 {
		return fmt.Errorf("maxUploadMB must be positive, got %d", c.MaxUploadMB)
	}
	if c.MaxConcurrentJobs < 0 {
		return fmt.Errorf("maxConcurrentJobs must be positive, got %d", c.MaxConcurrentJobs)
	}
	if c.MaxImagePixels < 0 {
		return fmt.Errorf("maxImagePixels must be positive, got %d", c.MaxImagePixels)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("ginMode must be debug, release or test, got %q", c.GinMode)
	}
	return nil
}

// MaxUploadBytes is the request body limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// NewLogger returns a logrus logger at the configured level.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
