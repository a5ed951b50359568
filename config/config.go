package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AllowedOriginEnv overrides Server.AllowedOrigin when set.
const AllowedOriginEnv = "CLIENT_ORIGIN"

type Config struct {
	LogLevel int `yaml:"log_level"`

	Server  ServerConfig  `yaml:"server"`
	Mix     MixConfig     `yaml:"mix"`
	Sources SourcesConfig `yaml:"sources"`
}

type ServerConfig struct {
	Port string `yaml:"port"`

	// Single origin allowed by the CORS middleware
	AllowedOrigin string `yaml:"allowed_origin"`
}

type MixConfig struct {
	SampleRate          int           `yaml:"sample_rate"`
	DefaultCrossfadeSec float64       `yaml:"default_crossfade_sec"`
	FetchTimeout        time.Duration `yaml:"fetch_timeout"`

	// Parent directory for per-request staging directories
	TempDir string `yaml:"temp_dir"`
}

type SourcesConfig struct {
	// Enables file:// source URLs. Off by default for the server.
	AllowLocal bool `yaml:"allow_local"`

	// Optional service account file for gs:// sources
	GCSCredentialsFile string `yaml:"gcs_credentials_file"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	// Unmarshal the YAML data into the struct
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	config.applyDefaults()
	return config, nil
}

// Default returns a configuration with every default filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8000"
	}

	if origin := os.Getenv(AllowedOriginEnv); origin != "" {
		c.Server.AllowedOrigin = origin
	}
	if c.Server.AllowedOrigin == "" {
		c.Server.AllowedOrigin = "http://localhost:3000"
	}

	if c.Mix.SampleRate <= 0 {
		c.Mix.SampleRate = 44100
	}

	if c.Mix.DefaultCrossfadeSec <= 0 {
		c.Mix.DefaultCrossfadeSec = 12.0
	}

	if c.Mix.FetchTimeout <= 0 {
		c.Mix.FetchTimeout = 30 * time.Second
	}

	if c.Mix.TempDir == "" {
		c.Mix.TempDir = os.TempDir()
	}
}
