package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Organizer OrganizerConfig `toml:"organizer"`
	Database  DatabaseConfig  `toml:"database"`
}

// ServerConfig contains the Immich server connection settings.
type ServerConfig struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
}

// OrganizerConfig contains defaults for the organizer run, overridable per invocation via CLI flags.
type OrganizerConfig struct {
	IncludeExifless bool    `toml:"include_exifless"`
	ArchiveScreens  bool    `toml:"archive_screens"`
	LibraryName     string  `toml:"library_name"`
	ImportPath      string  `toml:"import_path"`
	AddChunkSize    int     `toml:"add_chunk_size"`
	FetchChunkSize  int     `toml:"fetch_chunk_size"`
	Unattended      bool    `toml:"unattended"`
	ArchiveRate     float64 `toml:"archive_rate"`
}

// DatabaseConfig contains run-history database settings. An empty path disables history recording.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
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
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidConfig)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
