package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the application configuration
type Config struct {
	API    APIConfig    `toml:"api"`
	Log    LogConfig    `toml:"log"`
	UI     UIConfig     `toml:"ui"`
	Server ServerConfig `toml:"server"`
}

// APIConfig points the client at the task API
type APIConfig struct {
	Backend string        `toml:"backend" env:"TASKS_BACKEND" env-upd:""`
	BaseURL string        `toml:"base_url" env:"TASKS_BASE_URL" env-upd:""`
	Timeout time.Duration `toml:"timeout" env:"TASKS_TIMEOUT" env-upd:""`
}

// LogConfig controls where and how much is logged
type LogConfig struct {
	Path  string `toml:"path" env:"TASKS_LOG_PATH" env-upd:""`
	Level string `toml:"level" env:"TASKS_LOG_LEVEL" env-upd:""`
}

// UIConfig holds terminal UI settings
type UIConfig struct {
	NoticeDuration time.Duration `toml:"notice_duration" env:"TASKS_NOTICE_DURATION" env-upd:""`
}

// ServerConfig configures the development API started by `serve`
type ServerConfig struct {
	Addr   string `toml:"addr" env:"TASKS_SERVER_ADDR" env-upd:""`
	DBPath string `toml:"db_path" env:"TASKS_DB_PATH" env-upd:""`
}

// Default returns the default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		API: APIConfig{
			Backend: "http",
			BaseURL: "http://localhost:8000/api",
			Timeout: 30 * time.Second,
		},
		Log: LogConfig{
			Path:  filepath.Join(homeDir, ".config", "tasks-tui", "tasks-tui.log"),
			Level: "info",
		},
		UI: UIConfig{
			NoticeDuration: 3 * time.Second,
		},
		Server: ServerConfig{
			Addr:   ":8000",
			DBPath: filepath.Join(homeDir, ".config", "tasks-tui", "tasks.db"),
		},
	}
}

// Path returns the standard config file location
func Path() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(homeDir, ".config", "tasks-tui", "config.toml"), nil
}

// Load loads configuration from the standard location
func Load() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path, then applies
// environment overrides
func LoadFrom(configPath string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := cleanenv.UpdateEnv(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	cfg.Log.Path = expandPath(cfg.Log.Path)
	cfg.Server.DBPath = expandPath(cfg.Server.DBPath)

	return cfg, nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Save saves the configuration to the standard location
func (c *Config) Save() error {
	configPath, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return nil
}
