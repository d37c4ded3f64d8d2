package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// duration lets YAML carry human-readable values like "400ms" or "2s".
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

type config struct {
	ListenAddr string   `yaml:"listenAddr"`
	Redis      string   `yaml:"redis"`
	BoardKey   string   `yaml:"boardKey"`
	SaveDelay  duration `yaml:"saveDelay"`
	HistoryCap int      `yaml:"historyCap"`
	Debug      bool     `yaml:"debug"`
}

func defaultConfig() config {
	return config{
		ListenAddr: ":8080",
		Redis:      "redis://localhost:6379",
		BoardKey:   "board",
		SaveDelay:  duration(400 * time.Millisecond),
		HistoryCap: 50,
	}
}

// loadConfig starts from the defaults, merges the optional YAML file named by
// BOARDBOT_CONFIG, and applies environment overrides on top.
func loadConfig() (config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("BOARDBOT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("REDIS_CONNECTION_STRING"); v != "" {
		cfg.Redis = v
	}
	if v := os.Getenv("BOARD_KEY"); v != "" {
		cfg.BoardKey = v
	}
	if v := os.Getenv("SAVE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("invalid SAVE_DELAY: %q", v)
		}
		cfg.SaveDelay = duration(d)
	}
	if v := os.Getenv("HISTORY_CAP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid HISTORY_CAP: %q", v)
		}
		cfg.HistoryCap = n
	}
	if v := os.Getenv("DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}

	if cfg.ListenAddr == "" || cfg.Redis == "" || cfg.BoardKey == "" {
		return cfg, fmt.Errorf("listenAddr, redis and boardKey must not be empty")
	}
	return cfg, nil
}
