package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytheresa/phone-catalog/app/assets"
	"github.com/mytheresa/phone-catalog/app/logging"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvAppEnv, "")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeoutDuration())
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, logging.LevelInfo, cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, 100, cfg.Pagination.MaxPageSize)
	assert.Equal(t, assets.BackendFilesystem, cfg.Assets.Backend)
	assert.Equal(t, int64(10_000_000), cfg.Assets.MaxUploadSizeBytes())
	assert.True(t, cfg.Seed.SeedEnabled())
	assert.True(t, cfg.Seed.AutoMigrateEnabled())
}

func TestLoadFileAndOverlay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, BaseConfigFile, `
[server]
port = 9000

[pagination]
default_page_size = 5

[assets]
max_upload_size = "2MB"

[seed]
enabled = false
`)
	writeFile(t, dir, "config.staging.toml", `
[server]
port = 9100

[database]
name = "phones_staging"
`)
	t.Setenv(EnvAppEnv, "staging")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "overlay wins over the base file")
	assert.Equal(t, "phones_staging", cfg.Database.Name)
	assert.Equal(t, 5, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, int64(2_000_000), cfg.Assets.MaxUploadSizeBytes())
	assert.False(t, cfg.Seed.SeedEnabled())
	assert.True(t, cfg.Seed.AutoMigrateEnabled())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, BaseConfigFile, `
[server]
port = 9000
`)
	t.Setenv(EnvAppEnv, "")
	t.Setenv(EnvServerPort, "7002")
	t.Setenv(EnvSeedEnabled, "false")
	t.Setenv(EnvAutoMigrate, "0")
	t.Setenv(logging.EnvLogFormat, "JSON")
	t.Setenv(assets.EnvAssetsPublicBaseURL, "https://localhost:7002")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 7002, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:7002", (&ServerConfig{Host: "0.0.0.0", Port: cfg.Server.Port}).Addr())
	assert.False(t, cfg.Seed.SeedEnabled())
	assert.False(t, cfg.Seed.AutoMigrateEnabled())
	assert.Equal(t, logging.FormatJSON, cfg.Logging.Format)
	assert.Equal(t, "https://localhost:7002", cfg.Assets.PublicBaseURL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "Malformed TOML", content: `[server`},
		{name: "Port out of range", content: "[server]\nport = 70000"},
		{name: "Bad timeout", content: "[server]\nread_timeout = \"soon\""},
		{name: "Unknown log level", content: "[logging]\nlevel = \"loud\""},
		{name: "Unknown asset backend", content: "[assets]\nbackend = \"ftp\""},
		{name: "Azure without endpoint", content: "[assets]\nbackend = \"azure\""},
		{name: "Relative public base URL", content: "[assets]\npublic_base_url = \"/images\""},
		{name: "Default page size above maximum", content: "[pagination]\ndefault_page_size = 200\nmax_page_size = 50"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvAppEnv, "")
			t.Setenv(assets.EnvAzureConnectionString, "")
			t.Setenv(assets.EnvAzureServiceURL, "")
			dir := t.TempDir()
			writeFile(t, dir, BaseConfigFile, tc.content)

			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}
