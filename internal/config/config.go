package config

import (
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig     `koanf:"server"`
	LinkedIn  LinkedInConfig   `koanf:"linkedin"`
	Generator GeneratorConfig  `koanf:"generator"`
	Storage   StorageConfig    `koanf:"storage"`
	Telemetry TelemetryConfig  `koanf:"telemetry"`
	Schedule  []ScheduleConfig `koanf:"schedule"`
}

type ServerConfig struct {
	Port    int            `koanf:"port"`
	APIKeys []APIKeyConfig `koanf:"api_keys"`
}

type APIKeyConfig struct {
	KeyHash     string `koanf:"key_hash"`
	Description string `koanf:"description"`
}

type LinkedInConfig struct {
	AccessToken string `koanf:"access_token"`
	PersonID    string `koanf:"person_id"`
	BaseURL     string `koanf:"base_url"`
}

type GeneratorConfig struct {
	Provider    string  `koanf:"provider"` // gemini, groq
	Model       string  `koanf:"model"`
	APIKey      string  `koanf:"api_key"`
	BaseURL     string  `koanf:"base_url"`
	MaxChars    int     `koanf:"max_chars"`
	Temperature float64 `koanf:"temperature"`
}

type StorageConfig struct {
	Type   string       `koanf:"type"` // sqlite, memory, none
	SQLite SQLiteConfig `koanf:"sqlite"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// TelemetryConfig controls tracing. SampleRatio is the fraction of
// root spans kept, (0, 1]; zero means sample everything.
type TelemetryConfig struct {
	Enabled     bool    `koanf:"enabled"`
	SampleRatio float64 `koanf:"sample_ratio"`
}

// ScheduleConfig is one recurring trigger entry. Every is a duration
// string like "6h".
type ScheduleConfig struct {
	Topic  string `koanf:"topic"`
	Every  string `koanf:"every"`
	Tone   string `koanf:"tone"`
	Length string `koanf:"length"`
}

// Interval parses the Every field, falling back to 24h when unset.
func (s ScheduleConfig) Interval() (time.Duration, error) {
	if s.Every == "" {
		return 24 * time.Hour, nil
	}
	return time.ParseDuration(s.Every)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads config.yaml (when present) and overlays POSTFORGE_* environment
// variables. Double underscores in env names map to nested keys, e.g.
// POSTFORGE_LINKEDIN__ACCESS_TOKEN -> linkedin.access_token.
func Load() (*Config, error) {
	return LoadFile("config.yaml")
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("POSTFORGE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "POSTFORGE_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	defaults := []struct {
		key string
		val any
	}{
		{"server.port", 8080},
		{"generator.provider", "gemini"},
		{"generator.max_chars", 2900},
		{"storage.type", "memory"},
		{"telemetry.enabled", true},
	}
	for _, d := range defaults {
		if k.Exists(d.key) {
			continue
		}
		if err := k.Set(d.key, d.val); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	// Substitute ${VAR} references so secrets can live in the environment
	// while the file stays checked in.
	cfg.LinkedIn.AccessToken = substituteEnvVars(cfg.LinkedIn.AccessToken)
	cfg.LinkedIn.PersonID = substituteEnvVars(cfg.LinkedIn.PersonID)
	cfg.Generator.APIKey = substituteEnvVars(cfg.Generator.APIKey)

	return &cfg, nil
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
