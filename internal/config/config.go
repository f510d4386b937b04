package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Remote  RemoteConfig  `yaml:"remote"`
	Sync    SyncConfig    `yaml:"sync"`
	Scoring ScoringConfig `yaml:"scoring"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	Environment string `yaml:"environment"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
	// Retention bounds how long synced consultations are kept before
	// cleanup removes them. Unsynced records are never deleted.
	Retention time.Duration `yaml:"retention"`
}

type RemoteConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout bounds a single record delivery attempt.
	Timeout time.Duration `yaml:"timeout"`
}

type SyncConfig struct {
	// Interval between periodic sync passes while online.
	Interval time.Duration `yaml:"interval"`
	// ProbeInterval between connectivity checks.
	ProbeInterval time.Duration `yaml:"probe_interval"`
}

type ScoringConfig struct {
	SymptomModelPath string `yaml:"symptom_model_path"`
	VitalsModelPath  string `yaml:"vitals_model_path"`
	// Severity floors applied when the model score is unavailable. These
	// are tunable heuristics, not clinically validated values.
	CriticalFloor float64 `yaml:"critical_floor"`
	SevereFloor   float64 `yaml:"severe_floor"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	setDefaults(&cfg)
	return &cfg, nil
}

func LoadFromEnv() *Config {
	cfg := &Config{}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if path := os.Getenv("CAREBRIDGE_DATA"); path != "" {
		cfg.Storage.Path = path
	}
	if url := os.Getenv("CAREBRIDGE_API_URL"); url != "" {
		cfg.Remote.BaseURL = url
	}

	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3004
	}
	if cfg.Server.Environment == "" {
		cfg.Server.Environment = "development"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "/var/lib/carebridge/data"
	}
	if cfg.Storage.Retention == 0 {
		cfg.Storage.Retention = 180 * 24 * time.Hour
	}
	if cfg.Remote.BaseURL == "" {
		cfg.Remote.BaseURL = "https://api.ruralhealth.example.com"
	}
	if cfg.Remote.Timeout == 0 {
		cfg.Remote.Timeout = 10 * time.Second
	}
	if cfg.Sync.Interval == 0 {
		cfg.Sync.Interval = 5 * time.Minute
	}
	if cfg.Sync.ProbeInterval == 0 {
		cfg.Sync.ProbeInterval = 30 * time.Second
	}
	if cfg.Scoring.CriticalFloor == 0 {
		cfg.Scoring.CriticalFloor = 0.9
	}
	if cfg.Scoring.SevereFloor == 0 {
		cfg.Scoring.SevereFloor = 0.6
	}
}
