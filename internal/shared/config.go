package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database   DatabaseConfig   `toml:"database"`
	Inventory  InventoryConfig  `toml:"inventory"`
	Wishlist   WishlistConfig   `toml:"wishlist"`
	Search     SearchConfig     `toml:"search"`
	Downloader DownloaderConfig `toml:"downloader"`
	HTTP       HTTPConfig       `toml:"http"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// InventoryConfig points at the tabular export of the local collection.
type InventoryConfig struct {
	CSVPath string `toml:"csv_path"`
}

// WishlistConfig lists the wishlist feed URLs to diff against the collection.
//
// AuthorField optionally names a feed extension element carrying the author
// name, for producers that do not populate the standard author field.
type WishlistConfig struct {
	Feeds       []string `toml:"feeds"`
	AuthorField string   `toml:"author_field"`
}

// SearchConfig contains search index credentials and query defaults.
type SearchConfig struct {
	BaseURL   string  `toml:"base_url"`
	APIKey    string  `toml:"api_key"`
	Category  int     `toml:"category"`
	Limit     int     `toml:"limit"`
	RateLimit float64 `toml:"rate_limit"` // Search requests per second
}

// DownloaderConfig contains download client credentials and the target category.
type DownloaderConfig struct {
	BaseURL  string `toml:"base_url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Category string `toml:"category"`
}

// HTTPConfig contains settings applied to every outbound HTTP client.
type HTTPConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Timeout returns the configured HTTP timeout as a [time.Duration].
func (h HTTPConfig) Timeout() time.Duration {
	if h.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
