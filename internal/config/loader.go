package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint     = "https://gitee.com/api/v5/gists"
	DefaultFilename     = "todo_backup.json"
	DefaultTimeout      = 15 * time.Second
	DefaultDebounce     = 500 * time.Millisecond
	DefaultPullInterval = 60 * time.Second
	DefaultOwner        = "jackson"
)

// Default returns the built-in configuration rooted at dir.
func Default(dir string) *Config {
	return &Config{
		Dir: dir,
		Storage: StorageConfig{
			Backend:     "file",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "gtodo:",
		},
		Remote: RemoteConfig{
			Endpoint: DefaultEndpoint,
			Filename: DefaultFilename,
			Timeout:  DefaultTimeout,
		},
		Sync: SyncConfig{
			Debounce:     DefaultDebounce,
			PullInterval: DefaultPullInterval,
		},
		Maintenance: MaintenanceConfig{DefaultOwner: DefaultOwner},
		OAuth: OAuthConfig{
			AuthURL:  "https://gitee.com/oauth/authorize",
			TokenURL: "https://gitee.com/oauth/token",
			Scopes:   []string{"gists"},
		},
		Users: map[string]string{},
	}
}

// loadFile merges the YAML file at path over c. A missing file is not an
// error.
func (c *Config) loadFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("invalid %s: %w", path, err)
	}
	return nil
}

// Marshal renders the configuration as YAML with secrets masked.
func (c *Config) Marshal() ([]byte, error) {
	masked := *c
	if masked.OAuth.ClientSecret != "" {
		masked.OAuth.ClientSecret = "****"
	}
	return yaml.Marshal(&masked)
}

// WriteDefault writes c to config.yaml unless the file already exists.
func (c *Config) WriteDefault() error {
	if c.HasFile() {
		return fmt.Errorf("%s already exists", c.FilePath())
	}
	if err := c.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(c.FilePath(), data, 0600)
}
