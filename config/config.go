// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config はアプリケーション設定を表す。
type Config struct {
	Port string `validate:"required,numeric"`

	// エラーページと記録ファイル
	AppName      string `validate:"required"`
	LogFile      string `validate:"required"`
	ContactEmail string `validate:"required,email"`
	DenialPath   string `validate:"required,startswith=/"`
	DenialStatus int    `validate:"gte=200,lte=599"`

	// 記録先1件あたりの追記の上限時間
	SinkTimeout time.Duration `validate:"gt=0"`

	// 記録用データベース（任意）
	DBDriver      string `validate:"oneof=mysql sqlite"`
	DatabaseURL   string
	KMSKeyName    string
	MigrationsDir string

	GoogleCloudProject string
	LogLevel           string `validate:"oneof=DEBUG INFO WARN ERROR"`

	OtelEnabled      bool
	OtelEndpoint     string `validate:"required_if=OtelEnabled true"`
	OtelServiceName  string
	OtelSamplingRate float64 `validate:"gte=0,lte=1"`

	// 解釈できなかった環境変数
	loadErrs []error
}

// Load は環境変数から設定を読み込む。
// 数値として解釈できない値は Validate でエラーになる。
func Load() *Config {
	var errs []error
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		AppName:            getEnv("APP_NAME", "My Protected Application"),
		LogFile:            getEnv("LOG_FILE", "/tmp/access-error.log"),
		ContactEmail:       getEnv("CONTACT_EMAIL", "admin@example.org"),
		DenialPath:         getEnv("DENIAL_PATH", "/access-error"),
		DenialStatus:       getEnvInt("DENIAL_STATUS", http.StatusForbidden, &errs),
		SinkTimeout:        getEnvDuration("SINK_TIMEOUT", 2*time.Second, &errs),
		DBDriver:           getEnv("DB_DRIVER", "mysql"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		KMSKeyName:         os.Getenv("KMS_KEY_NAME"),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "./migrations"),
		GoogleCloudProject: os.Getenv("GOOGLE_CLOUD_PROJECT"),
		LogLevel:           getEnv("LOG_LEVEL", "INFO"),
		OtelEnabled:        os.Getenv("OTEL_ENABLED") == "true",
		OtelEndpoint:       os.Getenv("OTEL_ENDPOINT"),
		OtelServiceName:    getEnv("OTEL_SERVICE_NAME", "access-error-service"),
		OtelSamplingRate:   getEnvFloat("OTEL_SAMPLING_RATE", 1.0, &errs),
	}
	cfg.loadErrs = errs
	return cfg
}

// Validate は設定値を検証する。
func (c *Config) Validate() error {
	if len(c.loadErrs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(c.loadErrs...))
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// DatabaseEnabled は記録用データベースが設定されているかを返す。
func (c *Config) DatabaseEnabled() bool {
	return c.DatabaseURL != ""
}

// MigrationsPath はDBドライバ用のマイグレーションディレクトリを返す。
func (c *Config) MigrationsPath() string {
	return filepath.Join(c.MigrationsDir, c.DBDriver)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int, errs *[]error) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not an integer", key, val))
		return defaultVal
	}
	return n
}

func getEnvFloat(key string, defaultVal float64, errs *[]error) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a number", key, val))
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration, errs *[]error) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a duration", key, val))
		return defaultVal
	}
	return d
}
