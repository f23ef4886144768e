// Package config loads the server settings from the environment.
//
// A .env file in the working directory is loaded first when present, then
// every field is read from the process environment with its default applied.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" env-default:":5005"`
	LogFile  string `env:"LOG_FILE"`

	DB     DBConfig
	Auth   AuthConfig
	Gemini GeminiConfig
	TTS    ElevenLabsConfig
	Mail   MailConfig

	VendorTimeout time.Duration `env:"VENDOR_TIMEOUT" env-default:"60s"`
}

type DBConfig struct {
	Driver string `env:"DB_DRIVER" env-default:"mysql"`
	DSN    string `env:"DB_DSN" env-default:"root:root@tcp(127.0.0.1:3306)/voicebridge?charset=utf8mb4&parseTime=True&loc=UTC"`
}

type AuthConfig struct {
	JWTSecret           string        `env:"JWT_SECRET"`
	AccessTokenTTL      time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"24h"`
	VerificationCodeTTL time.Duration `env:"VERIFICATION_CODE_TTL" env-default:"15m"`
	RateLimit           float64       `env:"AUTH_RATE_LIMIT" env-default:"5"`
	// TrustProxy keys the rate limiter on X-Forwarded-For / X-Real-IP; only
	// enable it behind a reverse proxy that sets them.
	TrustProxy bool `env:"TRUST_PROXY" env-default:"false"`
}

// GeminiConfig is optional: without an API key the AI routes fail per request.
type GeminiConfig struct {
	APIKey     string `env:"GEMINI_API_KEY"`
	Model      string `env:"GEMINI_MODEL" env-default:"gemini-2.0-flash"`
	ImageModel string `env:"GEMINI_IMAGE_MODEL" env-default:"imagen-3.0-generate-002"`
}

type ElevenLabsConfig struct {
	APIKey  string `env:"ELEVENLABS_API_KEY"`
	BaseURL string `env:"ELEVENLABS_BASE_URL" env-default:"https://api.elevenlabs.io"`
	Model   string `env:"ELEVENLABS_MODEL" env-default:"eleven_multilingual_v2"`
}

// MailConfig leaves Host empty to log verification codes instead of sending them.
type MailConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" env-default:"587"`
	User     string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"MAIL_FROM" env-default:"VoiceBridge <no-reply@voicebridge.local>"`
}

// Load reads .env (if any) and the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET is required")
	}

	return &cfg, nil
}

// MustLoad is Load for main: it panics when the configuration is unusable.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
