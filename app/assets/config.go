package assets

import (
	"fmt"
	"net/url"
	"os"

	"github.com/docker/go-units"
)

// Environment variable names for asset store configuration.
const (
	EnvAssetsBackend       = "ASSETS_BACKEND"
	EnvAssetsDir           = "ASSETS_DIR"
	EnvAssetsPublicBaseURL = "ASSETS_PUBLIC_BASE_URL"
	EnvAssetsMaxUploadSize = "ASSETS_MAX_UPLOAD_SIZE"

	EnvAzureContainerName    = "AZURE_STORAGE_CONTAINER"
	EnvAzureConnectionString = "AZURE_STORAGE_CONNECTION_STRING"
	EnvAzureServiceURL       = "AZURE_STORAGE_SERVICE_URL"
)

// Backend selects where image blobs are kept.
type Backend string

const (
	BackendFilesystem Backend = "filesystem"
	BackendAzure      Backend = "azure"
)

// Config contains asset store configuration.
type Config struct {
	Backend Backend `toml:"backend"`

	// Dir is the directory image files are written to by the filesystem backend.
	// Default: "wwwroot/Images/MemoryPhones"
	Dir string `toml:"dir"`

	// PublicBaseURL replaces the request host when building image references.
	// Empty means the scheme and host of the current request are used.
	PublicBaseURL string `toml:"public_base_url"`

	MaxUploadSize string      `toml:"max_upload_size"`
	Azure         AzureConfig `toml:"azure"`

	maxUploadSizeVal int64
}

// AzureConfig holds Azure Blob Storage connection parameters.
// ConnectionString wins over ServiceURL; with only ServiceURL set the
// default Azure credential chain is used.
type AzureConfig struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
}

func (c *Config) MaxUploadSizeBytes() int64 {
	return c.maxUploadSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the asset configuration.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.Dir != "" {
		c.Dir = overlay.Dir
	}
	if overlay.PublicBaseURL != "" {
		c.PublicBaseURL = overlay.PublicBaseURL
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.Azure.ContainerName != "" {
		c.Azure.ContainerName = overlay.Azure.ContainerName
	}
	if overlay.Azure.ConnectionString != "" {
		c.Azure.ConnectionString = overlay.Azure.ConnectionString
	}
	if overlay.Azure.ServiceURL != "" {
		c.Azure.ServiceURL = overlay.Azure.ServiceURL
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFilesystem
	}
	if c.Dir == "" {
		c.Dir = "wwwroot/Images/MemoryPhones"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
	if c.Azure.ContainerName == "" {
		c.Azure.ContainerName = "memoryphones"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvAssetsBackend); v != "" {
		c.Backend = Backend(v)
	}
	if v := os.Getenv(EnvAssetsDir); v != "" {
		c.Dir = v
	}
	if v := os.Getenv(EnvAssetsPublicBaseURL); v != "" {
		c.PublicBaseURL = v
	}
	if v := os.Getenv(EnvAssetsMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv(EnvAzureContainerName); v != "" {
		c.Azure.ContainerName = v
	}
	if v := os.Getenv(EnvAzureConnectionString); v != "" {
		c.Azure.ConnectionString = v
	}
	if v := os.Getenv(EnvAzureServiceURL); v != "" {
		c.Azure.ServiceURL = v
	}
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendFilesystem:
		if c.Dir == "" {
			return fmt.Errorf("dir required")
		}
	case BackendAzure:
		if c.Azure.ConnectionString == "" && c.Azure.ServiceURL == "" {
			return fmt.Errorf("azure connection_string or service_url required")
		}
	default:
		return fmt.Errorf("invalid backend: %s (must be filesystem or azure)", c.Backend)
	}

	if c.PublicBaseURL != "" {
		u, err := url.Parse(c.PublicBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid public_base_url: %q", c.PublicBaseURL)
		}
	}

	size, err := units.FromHumanSize(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.maxUploadSizeVal = size

	return nil
}
