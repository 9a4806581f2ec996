// Package config loads and saves BudgetBox configuration.
//
// Configuration lives in an XDG-compliant TOML file. A .env file in the
// working directory and BUDGETBOX_* environment variables override the
// file, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Duration is a time.Duration that round-trips through TOML as a string
// like "5s" or "1m30s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds all BudgetBox configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Client ClientConfig `toml:"client"`
}

// ServerConfig holds sync endpoint settings.
type ServerConfig struct {
	// Addr is the listen address for the sync endpoint.
	Addr string `toml:"addr"`

	// Backend selects the storage backend: memory, sqlite, or postgres.
	Backend string `toml:"backend"`

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `toml:"sqlite_path,omitempty"`

	// PostgresURL is the connection URL for the postgres backend.
	PostgresURL string `toml:"postgres_url,omitempty"`

	// LogFile enables rotated file logging when set.
	LogFile string `toml:"log_file,omitempty"`
}

// ClientConfig holds agent and CLI settings.
type ClientConfig struct {
	// ServerURL is the base URL of the sync endpoint.
	ServerURL string `toml:"server_url"`

	// DataDir holds the local budget database.
	DataDir string `toml:"data_dir,omitempty"`

	// SessionPath is the login session file.
	SessionPath string `toml:"session_path,omitempty"`

	// ProbeInterval is how often the connectivity monitor probes.
	ProbeInterval Duration `toml:"probe_interval,omitempty"`

	// SyncDebounce is the settle time before an auto-sync after
	// connectivity is restored.
	SyncDebounce Duration `toml:"sync_debounce,omitempty"`

	// DashboardPort serves the WebSocket dashboard when non-zero.
	DashboardPort int `toml:"dashboard_port,omitempty"`

	// LogFile enables rotated file logging for the agent when set.
	LogFile string `toml:"log_file,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:       ":8080",
			Backend:    "sqlite",
			SQLitePath: filepath.Join(DataDir(), "budgets.db"),
		},
		Client: ClientConfig{
			ServerURL:     "http://localhost:8080",
			DataDir:       DataDir(),
			SessionPath:   filepath.Join(DataDir(), "session.json"),
			ProbeInterval: Duration(5 * time.Second),
			SyncDebounce:  Duration(1 * time.Second),
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "budgetbox")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "budgetbox")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "budgetbox")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "budgetbox")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads configuration from path, returning defaults if the file
// does not exist, then applies .env and environment overrides. An empty
// path means ConfigPath().
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// .env is optional; ignore its absence.
	_ = godotenv.Load()
	applyEnv(&cfg)

	return cfg, nil
}

// applyEnv overlays BUDGETBOX_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("BUDGETBOX_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("BUDGETBOX_BACKEND"); v != "" {
		cfg.Server.Backend = v
	}
	if v := os.Getenv("BUDGETBOX_SQLITE_PATH"); v != "" {
		cfg.Server.SQLitePath = v
	}
	if v := os.Getenv("BUDGETBOX_POSTGRES_URL"); v != "" {
		cfg.Server.PostgresURL = v
	}
	if v := os.Getenv("BUDGETBOX_SERVER_URL"); v != "" {
		cfg.Client.ServerURL = v
	}
	if v := os.Getenv("BUDGETBOX_DATA_DIR"); v != "" {
		cfg.Client.DataDir = v
	}
}

// Save writes the config to path. An empty path means ConfigPath().
func Save(cfg Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}
