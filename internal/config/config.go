package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Cache struct {
		AnswerKeysTTL  string `yaml:"answerKeysTTL"`
		LeaderboardTTL string `yaml:"leaderboardTTL"`
	} `yaml:"cache"`
	Session struct {
		// Seed drives question shuffling; 0 seeds from the clock.
		Seed int64 `yaml:"seed"`
	} `yaml:"session"`
	Log struct {
		Level  string `yaml:"level"`
		File   string `yaml:"file"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

const (
	DefaultPort           = "8080"
	// Answer keys are read from the store on every submission unless a TTL is set.
	DefaultAnswerKeysTTL  = 0
	DefaultLeaderboardTTL = 30 * time.Second
)

// Default returns a config usable without a file: in-memory store, no Redis.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = DefaultPort
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	return cfg
}

// Load reads YAML config from path on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields Default.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return cfg, err
}

// AnswerKeysTTL is the opt-in answer-key cache TTL; 0 disables caching.
func (c Config) AnswerKeysTTL() time.Duration {
	return TTLDuration(c.Cache.AnswerKeysTTL, DefaultAnswerKeysTTL)
}

func (c Config) LeaderboardTTL() time.Duration {
	return TTLDuration(c.Cache.LeaderboardTTL, DefaultLeaderboardTTL)
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
