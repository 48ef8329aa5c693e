package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	appDirName            = "taskdeck"
	DefaultConfigFileName = "config.toml"
	defaultSecretsName    = "secrets.db"
	defaultLogName        = "taskdeck.log"
)

type Keymap struct {
	Quit      string `toml:"quit"`
	Add       string `toml:"add"`
	Up        string `toml:"up"`
	Down      string `toml:"down"`
	Toggle    string `toml:"toggle"`
	Delete    string `toml:"delete"`
	Refresh   string `toml:"refresh"`
	Search    string `toml:"search"`
	Filter    string `toml:"filter"`
	Sort      string `toml:"sort"`
	DateRange string `toml:"date_range"`
	Confirm   string `toml:"confirm"`
	Cancel    string `toml:"cancel"`
	Logout    string `toml:"logout"`
}

type Config struct {
	ServerURL      string `toml:"server_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	DefaultFilter  string `toml:"default_filter"`
	DefaultSort    string `toml:"default_sort"`
	SecretsPath    string `toml:"secrets_path"`
	LogPath        string `toml:"log_path"`
	Keys           Keymap `toml:"keys"`
}

// ResolveConfigPath places the config under the user config dir, falling
// back to the working directory when that cannot be determined.
func ResolveConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(base, appDirName, DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	fillDefaults(&cfg, filepath.Dir(path))
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func fillDefaults(cfg *Config, dir string) {
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:8000"
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 10
	}
	if cfg.SecretsPath == "" {
		cfg.SecretsPath = filepath.Join(dir, defaultSecretsName)
	}
	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join(dir, defaultLogName)
	}
	if cfg.DefaultFilter == "" {
		cfg.DefaultFilter = "all"
	}
	if cfg.DefaultSort == "" {
		cfg.DefaultSort = "newest"
	}
}

func defaultConfig(dir string) Config {
	cfg := Config{
		Keys: Keymap{
			Quit:      "q",
			Add:       "a",
			Up:        "k",
			Down:      "j",
			Toggle:    " ",
			Delete:    "d",
			Refresh:   "r",
			Search:    "/",
			Filter:    "f",
			Sort:      "s",
			DateRange: "g",
			Confirm:   "enter",
			Cancel:    "esc",
			Logout:    "L",
		},
	}
	fillDefaults(&cfg, dir)
	return cfg
}
