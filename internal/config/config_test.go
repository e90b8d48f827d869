package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if cfg.Dir != dir {
		t.Errorf("expected dir %s, got %s", dir, cfg.Dir)
	}
	if cfg.Storage.Backend != "file" {
		t.Errorf("expected file backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Remote.Endpoint != DefaultEndpoint || cfg.Remote.Filename != DefaultFilename {
		t.Errorf("unexpected remote config %+v", cfg.Remote)
	}
	if cfg.Sync.Debounce != DefaultDebounce || cfg.Sync.PullInterval != DefaultPullInterval {
		t.Errorf("unexpected sync config %+v", cfg.Sync)
	}
	if cfg.Maintenance.DefaultOwner != DefaultOwner {
		t.Errorf("expected default owner %q, got %q", DefaultOwner, cfg.Maintenance.DefaultOwner)
	}
	if len(cfg.Users) != 0 {
		t.Errorf("expected no users, got %v", cfg.Users)
	}
	if cfg.HasFile() {
		t.Error("expected no config file")
	}
}

func TestNew_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
storage:
  backend: sqlite
  sqlite_path: /tmp/other.db
remote:
  endpoint: http://localhost:9999/gists
  timeout: 3s
sync:
  debounce: 250ms
maintenance:
  default_owner: alice
users:
  alice: "$2a$10$abcdefghijklmnopqrstuv"
`)

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if cfg.Storage.Backend != "sqlite" || cfg.SQLitePath() != "/tmp/other.db" {
		t.Errorf("unexpected storage config %+v", cfg.Storage)
	}
	if cfg.Remote.Endpoint != "http://localhost:9999/gists" || cfg.Remote.Timeout != 3*time.Second {
		t.Errorf("unexpected remote config %+v", cfg.Remote)
	}
	if cfg.Sync.Debounce != 250*time.Millisecond {
		t.Errorf("expected 250ms debounce, got %v", cfg.Sync.Debounce)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Remote.Filename != DefaultFilename || cfg.Sync.PullInterval != DefaultPullInterval {
		t.Errorf("expected defaults to survive, got %+v %+v", cfg.Remote, cfg.Sync)
	}
	if cfg.Storage.RedisPrefix != "gtodo:" {
		t.Errorf("expected default redis prefix, got %q", cfg.Storage.RedisPrefix)
	}
	if cfg.Maintenance.DefaultOwner != "alice" {
		t.Errorf("expected owner alice, got %q", cfg.Maintenance.DefaultOwner)
	}
	if cfg.Users["alice"] == "" {
		t.Errorf("expected alice in users, got %v", cfg.Users)
	}
}

func TestNew_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "storage: [unclosed\n")

	if _, err := New(dir); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := DefaultConfigDir(); got != filepath.Join("/xdg", AppName) {
		t.Errorf("expected XDG path, got %s", got)
	}
}

func TestDefaultConfigDir_Home(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/someone")
	if got := DefaultConfigDir(); got != filepath.Join("/home/someone", ".config", AppName) {
		t.Errorf("expected home path, got %s", got)
	}
}

func TestPaths(t *testing.T) {
	cfg := Default("/cfg")
	if cfg.FilePath() != "/cfg/config.yaml" {
		t.Errorf("unexpected file path %s", cfg.FilePath())
	}
	if cfg.DataPath() != "/cfg/data" {
		t.Errorf("unexpected data path %s", cfg.DataPath())
	}
	if cfg.SQLitePath() != "/cfg/gtodo.db" {
		t.Errorf("unexpected sqlite path %s", cfg.SQLitePath())
	}
}

func TestHasOAuthClient(t *testing.T) {
	cfg := Default("/cfg")
	if cfg.HasOAuthClient() {
		t.Error("expected no OAuth client without a client id")
	}
	cfg.OAuth.ClientID = "id"
	if !cfg.HasOAuthClient() {
		t.Error("expected OAuth client")
	}
}

func TestWriteDefault(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	cfg := Default(dir)

	if err := cfg.WriteDefault(); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}
	info, err := os.Stat(cfg.FilePath())
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %o", info.Mode().Perm())
	}

	if err := cfg.WriteDefault(); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected already exists error, got %v", err)
	}

	reread, err := New(dir)
	if err != nil {
		t.Fatalf("New failed on written file: %v", err)
	}
	if reread.Remote.Timeout != DefaultTimeout || reread.Sync.Debounce != DefaultDebounce {
		t.Errorf("expected defaults to round-trip, got %+v %+v", reread.Remote, reread.Sync)
	}
}

func TestMarshal_MasksSecret(t *testing.T) {
	cfg := Default("/cfg")
	cfg.OAuth.ClientSecret = "supersecret"

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "supersecret") {
		t.Errorf("secret leaked:\n%s", data)
	}
	if !strings.Contains(string(data), "client_secret: '****'") && !strings.Contains(string(data), `client_secret: "****"`) {
		t.Errorf("expected masked secret:\n%s", data)
	}
	if cfg.OAuth.ClientSecret != "supersecret" {
		t.Error("Marshal modified the config")
	}
	if strings.Contains(string(data), "/cfg") {
		t.Errorf("expected runtime fields omitted:\n%s", data)
	}
}
