package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ModeDev     = "dev"
	ModeRelease = "release"

	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	DefaultPath = "config/config.yaml"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER"`
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	Username string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"DB_NAME"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE"`
}

type Certs struct {
	Cert string `yaml:"cert" env:"TLS_CERT"`
	Key  string `yaml:"key" env:"TLS_KEY"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr" env:"SERVER_ADDR"`
	Certificate Certs  `yaml:"certificate"`
}

type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL        time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL"`
	LoginRateLimit  int           `yaml:"login_rate_limit" env:"LOGIN_RATE_LIMIT"`
	LoginRateWindow time.Duration `yaml:"login_rate_window" env:"LOGIN_RATE_WINDOW"`
	ClientIPHeader  string        `yaml:"client_ip_header" env:"CLIENT_IP_HEADER"`
}

type AttendanceConfig struct {
	Timezone           string        `yaml:"timezone" env:"ATTENDANCE_TIMEZONE"`
	MinSignatureLength int           `yaml:"min_signature_length" env:"ATTENDANCE_MIN_SIGNATURE_LENGTH"`
	WriteTimeout       time.Duration `yaml:"write_timeout" env:"ATTENDANCE_WRITE_TIMEOUT"`
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins" env:"CORS_ALLOW_ORIGINS" envSeparator:","`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

type Config struct {
	Version    string           `yaml:"version"`
	Mode       string           `yaml:"mode" env:"APP_MODE"`
	Server     ServerConfig     `yaml:"server"`
	DB         DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Attendance AttendanceConfig `yaml:"attendance"`
	CORS       CORSConfig       `yaml:"cors"`
	Log        LogConfig        `yaml:"log"`
}

// Default は設定ファイルが無い項目の既定値
func Default() Config {
	return Config{
		Mode: ModeDev,
		Server: ServerConfig{
			Addr: ":8443",
		},
		DB: DatabaseConfig{
			Driver:  DriverMySQL,
			Host:    "127.0.0.1",
			Port:    3306,
			SSLMode: "disable",
		},
		Auth: AuthConfig{
			TokenTTL:        time.Hour,
			LoginRateLimit:  5,
			LoginRateWindow: 15 * time.Minute,
		},
		Attendance: AttendanceConfig{
			Timezone:           "UTC",
			MinSignatureLength: 100,
			WriteTimeout:       5 * time.Second,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig: YAML → .env → 環境変数 の順で上書きする
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	buf, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// ファイル無しでも環境変数だけで起動できる
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// .env は任意（本番では存在しない想定）
	_ = godotenv.Load()

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Mode != ModeDev && c.Mode != ModeRelease {
		return fmt.Errorf("invalid mode %q (want %s|%s)", c.Mode, ModeDev, ModeRelease)
	}
	switch c.DB.Driver {
	case DriverMySQL, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("invalid database driver %q", c.DB.Driver)
	}
	if c.Auth.JWTSecret == "" {
		if c.Mode == ModeRelease {
			return errors.New("auth.jwt_secret is required in release mode")
		}
		c.Auth.JWTSecret = "dev-secret-change-me"
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be > 0")
	}
	if c.Attendance.MinSignatureLength <= 0 {
		return errors.New("attendance.min_signature_length must be > 0")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid attendance.timezone: %w", err)
	}
	return nil
}

// Location は日付境界の基準タイムゾーン
func (c *Config) Location() (*time.Location, error) {
	if c.Attendance.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Attendance.Timezone)
}
