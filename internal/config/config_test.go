package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/faanross/stegocrypt/internal/carrier"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)

	assert.Equal(t, ":5000", config.Address)
	assert.Equal(t, 32, config.MaxUploadMB)
	assert.Equal(t, runtime.NumCPU(), config.MaxConcurrentJobs)
	assert.Equal(t, carrier.DefaultMaxPixels, config.MaxImagePixels)
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, "release", config.GinMode)
	assert.Equal(t, int64(32<<20), config.MaxUploadBytes())
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "config.yaml", `
address: 127.0.0.1:8080
maxUploadMB: 8
maxConcurrentJobs: 2
maxImagePixels: 1000000
logLevel: debug
ginMode: test
`)
	config, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, Config{
		Address:           "127.0.0.1:8080",
		MaxUploadMB:       8,
		MaxConcurrentJobs: 2,
		MaxImagePixels:    1000000,
		LogLevel:          "debug",
		GinMode:           "test",
	}, config)
	assert.Equal(t, logrus.DebugLevel, config.NewLogger().GetLevel())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "address: :7000\nmaxConcurrentJobs: 2\n")
	t.Setenv(EnvAddress, ":9000")
	t.Setenv(EnvMaxJobs, "6")

	config, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, ":9000", config.Address)
	assert.Equal(t, 6, config.MaxConcurrentJobs)
}

func TestLoad_DotEnv(t *testing.T) {
	envFile := writeFile(t, ".env", EnvLogLevel+"=warn\n"+EnvMaxUploadMB+"=4\n")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvMaxUploadMB, "")
	// godotenv does not override variables that are already set.
	os.Unsetenv(EnvLogLevel)
	os.Unsetenv(EnvMaxUploadMB)

	config, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "warn", config.LogLevel)
	assert.Equal(t, 4, config.MaxUploadMB)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "bad yaml", yaml: "address: [unterminated"},
		{name: "bad level", yaml: "logLevel: loud"},
		{name: "bad gin mode", yaml: "ginMode: turbo"},
		{name: "negative upload", yaml: "maxUploadMB: -1"},
		{name: "negative pixel cap", yaml: "maxImagePixels: -5"},
		{name: "non numeric env", env: map[string]string{EnvMaxJobs: "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeFile(t, "config.yaml", tt.yaml), "")
			assert.Error(t, err)
		})
	}
}
