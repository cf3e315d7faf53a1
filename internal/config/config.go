package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration lets yaml carry values like "15m" or "720h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
}

type JWTConfig struct {
	Secret     string   `yaml:"secret"`
	AccessTTL  Duration `yaml:"access_ttl"`
	RefreshTTL Duration `yaml:"refresh_ttl"`
}

type TokensConfig struct {
	VerificationTTL Duration `yaml:"verification_ttl"`
	ResetTTL        Duration `yaml:"reset_ttl"`
	// InvalidatePrevious marks older unused tokens of the same kind as used
	// whenever a new one is issued. Off by default so resent codes keep working.
	InvalidatePrevious bool `yaml:"invalidate_previous"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Email    EmailConfig  `yaml:"email"`
	JWT      JWTConfig    `yaml:"jwt"`
	Tokens   TokensConfig `yaml:"tokens"`
	Frontend struct {
		URL string `yaml:"url"`
	} `yaml:"frontend"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

func LoadConfig() *Config {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.JWT.AccessTTL == 0 {
		cfg.JWT.AccessTTL = Duration(15 * time.Minute)
	}
	if cfg.JWT.RefreshTTL == 0 {
		cfg.JWT.RefreshTTL = Duration(30 * 24 * time.Hour)
	}
	if cfg.Tokens.VerificationTTL == 0 {
		cfg.Tokens.VerificationTTL = Duration(15 * time.Minute)
	}
	if cfg.Tokens.ResetTTL == 0 {
		cfg.Tokens.ResetTTL = Duration(time.Hour)
	}
	if cfg.Frontend.URL == "" {
		cfg.Frontend.URL = "http://localhost:5173"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	// Secrets may come from the environment instead of the file.
	if v := os.Getenv("LEARNBOX_JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("LEARNBOX_DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if cfg.JWT.Secret == "" {
		panic("jwt.secret is not configured")
	}
	return &cfg
}
