// Package config loads Jade's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Backends understood by the store factory
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendRemote = "remote"
)

const (
	DefaultBackend   = BackendSQLite
	DefaultServerURL = "ws://localhost:3001/ws"
	DefaultListen    = ":3001"
)

type Config struct {
	Backend   string `toml:"backend"`
	DataDir   string `toml:"data_dir"`
	BrowserID string `toml:"browser_id"`
	Log       Log    `toml:"log"`
	SQLite    SQLite `toml:"sqlite"`
	Badger    Badger `toml:"badger"`
	Remote    Remote `toml:"remote"`
	Server    Server `toml:"server"`
}

type Log struct {
	Level string `toml:"level"` // debug, info, warn, error
}

type SQLite struct {
	Path string `toml:"path"` // defaults to <data_dir>/jade.db
}

type Badger struct {
	Path       string        `toml:"path"` // defaults to <data_dir>/badger
	SyncWrites bool          `toml:"sync_writes"`
	GCInterval time.Duration `toml:"gc_interval"`
}

type Remote struct {
	Server      string        `toml:"server"`
	DialTimeout time.Duration `toml:"dial_timeout"`
}

// Server configures jade-graphd
type Server struct {
	Listen  string `toml:"listen"`
	Backend string `toml:"backend"` // embedded backend to serve: sqlite or badger
}

// Default returns the configuration used when no file exists
func Default() *Config {
	cfg := base()
	cfg.applyDefaults()
	return cfg
}

// base holds the values a config file may override. Paths derived from
// data_dir are filled in by applyDefaults after decoding.
func base() *Config {
	return &Config{
		Backend: DefaultBackend,
		Log:     Log{Level: "info"},
		Badger:  Badger{SyncWrites: true, GCInterval: 5 * time.Minute},
		Remote:  Remote{Server: DefaultServerURL, DialTimeout: 10 * time.Second},
		Server:  Server{Listen: DefaultListen, Backend: BackendBadger},
	}
}

// Path returns the config file path from JADE_CONFIG env var,
// falling back to $XDG_CONFIG_HOME/jade/config.toml.
func Path() string {
	if env := os.Getenv("JADE_CONFIG"); env != "" {
		return env
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "jade", "config.toml")
	}
	return "~/.config/jade/config.toml"
}

// Load reads the config at path. A missing file yields the defaults.
// JADE_BACKEND and JADE_SERVER override the file.
func Load(path string) (*Config, error) {
	cfg := base()

	data, err := os.ReadFile(ExpandHome(path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if env := os.Getenv("JADE_BACKEND"); env != "" {
		cfg.Backend = env
	}
	if env := os.Getenv("JADE_SERVER"); env != "" {
		cfg.Remote.Server = env
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads the config at Path()
func LoadDefault() (*Config, error) {
	return Load(Path())
}

func (c *Config) applyDefaults() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = DefaultBackend
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	c.DataDir = ExpandHome(c.DataDir)

	if c.SQLite.Path == "" {
		c.SQLite.Path = filepath.Join(c.DataDir, "jade.db")
	}
	if c.Badger.Path == "" {
		c.Badger.Path = filepath.Join(c.DataDir, "badger")
	}
	if c.Remote.Server == "" {
		c.Remote.Server = DefaultServerURL
	}
	if c.Remote.DialTimeout == 0 {
		c.Remote.DialTimeout = 10 * time.Second
	}
	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	if c.Server.Backend == "" {
		c.Server.Backend = BackendBadger
	}
	if c.BrowserID == "" {
		c.BrowserID = defaultBrowserID()
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendSQLite, BackendBadger, BackendRemote:
	default:
		return fmt.Errorf("unknown backend %q (expected sqlite, badger or remote)", c.Backend)
	}
	switch c.Server.Backend {
	case BackendSQLite, BackendBadger:
	default:
		return fmt.Errorf("unknown server backend %q (expected sqlite or badger)", c.Server.Backend)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Backend == BackendRemote &&
		!strings.HasPrefix(c.Remote.Server, "ws://") && !strings.HasPrefix(c.Remote.Server, "wss://") {
		return fmt.Errorf("remote server must be a ws:// or wss:// URL, got %q", c.Remote.Server)
	}
	return nil
}

// Logger returns a text logger writing to w at the configured level
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "jade")
	}
	return "~/.local/share/jade"
}

func defaultBrowserID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "jade"
	}
	return "jade-" + host
}
