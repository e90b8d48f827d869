// Package config handles the configuration directory and config.yaml.
package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	// AppName is the application directory name.
	AppName = "gtodo"

	// ConfigFile is the optional settings file inside the config directory.
	ConfigFile = "config.yaml"

	// DataDir holds the file storage backend's keys.
	DataDir = "data"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `yaml:"-" mapstructure:"-"`

	// Debug enables debug logging.
	Debug bool `yaml:"-" mapstructure:"-"`

	// Quiet suppresses informational output.
	Quiet bool `yaml:"-" mapstructure:"-"`

	Storage     StorageConfig     `yaml:"storage" mapstructure:"storage"`
	Remote      RemoteConfig      `yaml:"remote" mapstructure:"remote"`
	Sync        SyncConfig        `yaml:"sync" mapstructure:"sync"`
	Maintenance MaintenanceConfig `yaml:"maintenance" mapstructure:"maintenance"`
	OAuth       OAuthConfig       `yaml:"oauth" mapstructure:"oauth"`

	// Users maps a username to its bcrypt password hash.
	Users map[string]string `yaml:"users" mapstructure:"users"`
}

// StorageConfig selects the local persistence backend.
type StorageConfig struct {
	Backend     string `yaml:"backend" mapstructure:"backend"` // file, sqlite, redis, memory
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	RedisAddr   string `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix" mapstructure:"redis_prefix"`
}

// RemoteConfig configures the gist backup endpoint.
type RemoteConfig struct {
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	Filename string        `yaml:"filename" mapstructure:"filename"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// SyncConfig configures debounce and pull throttling.
type SyncConfig struct {
	Debounce     time.Duration `yaml:"debounce" mapstructure:"debounce"`
	PullInterval time.Duration `yaml:"pull_interval" mapstructure:"pull_interval"`
}

// MaintenanceConfig configures the one-shot data repair.
type MaintenanceConfig struct {
	DefaultOwner string `yaml:"default_owner" mapstructure:"default_owner"`
}

// OAuthConfig configures the connect command's OAuth client.
type OAuthConfig struct {
	ClientID     string   `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string   `yaml:"client_secret" mapstructure:"client_secret"`
	AuthURL      string   `yaml:"auth_url" mapstructure:"auth_url"`
	TokenURL     string   `yaml:"token_url" mapstructure:"token_url"`
	Scopes       []string `yaml:"scopes" mapstructure:"scopes"`
}

// New creates a Config for the default or specified config directory,
// reading config.yaml from it when present.
// If configDir is empty, uses XDG_CONFIG_HOME/gtodo or $HOME/.config/gtodo.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := Default(dir)
	if err := cfg.loadFile(cfg.FilePath()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// FilePath returns the path to config.yaml.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// DataPath returns the directory used by the file storage backend.
func (c *Config) DataPath() string {
	return filepath.Join(c.Dir, DataDir)
}

// SQLitePath returns the SQLite database path.
func (c *Config) SQLitePath() string {
	if c.Storage.SQLitePath != "" {
		return c.Storage.SQLitePath
	}
	return filepath.Join(c.Dir, "gtodo.db")
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasFile checks if config.yaml exists.
func (c *Config) HasFile() bool {
	_, err := os.Stat(c.FilePath())
	return err == nil
}

// HasOAuthClient reports whether the connect command can run.
func (c *Config) HasOAuthClient() bool {
	return c.OAuth.ClientID != "" && c.OAuth.AuthURL != "" && c.OAuth.TokenURL != ""
}
