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
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Sets struct {
		TTL string `yaml:"ttl"`
	} `yaml:"sets"`
	Game struct {
		// Whole-game pacing knobs. Every window is tunable so tests and
		// small servers can compress the pacing.
		JoinWindow    string  `yaml:"joinWindow"`    // default 5m
		BuzzWindow    string  `yaml:"buzzWindow"`    // default 20s
		AnswerPerPart string  `yaml:"answerPerPart"` // default 10s
		ResolveDelay  string  `yaml:"resolveDelay"`  // default 4s
		SimilarityK   float64 `yaml:"similarityK"`   // default 1.2
	} `yaml:"game"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or
// malformed.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
