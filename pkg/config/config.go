package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Personas Personas `json:"personas"`
	History  History  `json:"history"`
	Gateway  Gateway  `json:"gateway"`
	Channels Channels `json:"channels"`
	Log      Log      `json:"log"`
	mu       sync.RWMutex
}

type Personas struct {
	Dir           string   `json:"dir" env:"AFTERLIFE_PERSONAS_DIR"`
	Default       string   `json:"default" env:"AFTERLIFE_PERSONAS_DEFAULT"`
	CacheSize     int      `json:"cache_size" env:"AFTERLIFE_PERSONAS_CACHE_SIZE"`
	Preload       []string `json:"preload"`
	RefreshCron   string   `json:"refresh_cron" env:"AFTERLIFE_PERSONAS_REFRESH_CRON"`
	PreviewLength int      `json:"preview_length" env:"AFTERLIFE_PERSONAS_PREVIEW_LENGTH"`
}

type History struct {
	Path string `json:"path" env:"AFTERLIFE_HISTORY_PATH"`
}

type Gateway struct {
	Host string `json:"host" env:"AFTERLIFE_GATEWAY_HOST"`
	Port int    `json:"port" env:"AFTERLIFE_GATEWAY_PORT"`
}

type Channels struct {
	Discord Discord `json:"discord"`
}

type Discord struct {
	Token     string   `json:"token" env:"AFTERLIFE_CHANNELS_DISCORD_TOKEN"`
	AllowFrom []string `json:"allow_from" env:"AFTERLIFE_CHANNELS_DISCORD_ALLOW_FROM"`
	Persona   string   `json:"persona" env:"AFTERLIFE_CHANNELS_DISCORD_PERSONA"`
}

type Log struct {
	Level string `json:"level" env:"AFTERLIFE_LOG_LEVEL"`
}

func DefaultConfig() *Config {
	return &Config{
		Personas: Personas{
			Dir:           "~/.afterlife/personas",
			Default:       "james",
			CacheSize:     64,
			Preload:       []string{},
			RefreshCron:   "",
			PreviewLength: 200,
		},
		History: History{
			Path: "~/.afterlife/history.db",
		},
		Gateway: Gateway{
			Host: "0.0.0.0",
			Port: 8001,
		},
		Channels: Channels{
			Discord: Discord{
				Token:     "",
				AllowFrom: []string{},
				Persona:   "",
			},
		},
		Log: Log{
			Level: "info",
		},
	}
}

// LoadConfig reads the JSON config at path and applies AFTERLIFE_* env
// overrides. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if envErr := env.Parse(cfg); envErr != nil {
				return nil, envErr
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

func (c *Config) PersonasDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Personas.Dir)
}

func (c *Config) HistoryPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.History.Path)
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
