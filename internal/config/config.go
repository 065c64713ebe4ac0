package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"directory/pkg/crypto"
)

// PSFTokenID - id SLP токена PSF, баланс которого проверяет оракул
const PSFTokenID = "38e97c5d7d3585a2cbf3f9580c82ca33985f9cb0845d4dcce220cb709f9538b0"

// Config содержит всю конфигурацию приложения
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Store    StoreConfig    `yaml:"store"`
	Oracle   OracleConfig   `yaml:"oracle"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port         int           `yaml:"port"`
	Host         string        `yaml:"host"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`

	// POST /directory выключен по умолчанию
	EnableWrites   bool   `yaml:"enable_writes"`
	WriteTokenHash string `yaml:"write_token_hash"`

	CORSOrigins []string `yaml:"cors_origins"`
	WSOrigins   []string `yaml:"ws_origins"`
}

// DatabaseConfig - настройки подключения к БД
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// StoreConfig - имя лога записей
type StoreConfig struct {
	Name string `yaml:"name"`
}

// OracleConfig - HTTP оракул баланса и merit
type OracleConfig struct {
	BaseURL         string        `yaml:"base_url"`
	TokenID         string        `yaml:"token_id"`
	Timeout         time.Duration `yaml:"timeout"`
	RateLimit       float64       `yaml:"rate_limit"` // запросов в секунду на эндпоинт
	RateBurst       float64       `yaml:"rate_burst"`
	MaxRetries      int           `yaml:"max_retries"`
	RetryBackoff    time.Duration `yaml:"retry_backoff"`
	BreakerFailures int           `yaml:"breaker_failures"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout"`
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            5432,
			Name:            "directory",
			User:            "user",
			Password:        "password",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Store: StoreConfig{
			Name: "psf-site-directory",
		},
		Oracle: OracleConfig{
			BaseURL:         "http://localhost:5010",
			TokenID:         PSFTokenID,
			Timeout:         10 * time.Second,
			RateLimit:       5,
			RateBurst:       10,
			MaxRetries:      3,
			RetryBackoff:    200 * time.Millisecond,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load загружает конфигурацию: значения по умолчанию, затем YAML файл из
// DIRECTORY_CONFIG (если задан), затем переменные окружения.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("DIRECTORY_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.validateSecurity(); err != nil {
		return nil, err
	}

	if err := cfg.validateRanges(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv - переменные окружения перекрывают файл
func (c *Config) applyEnv() {
	c.Server.Port = getEnvAsInt("SERVER_PORT", c.Server.Port)
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.ReadTimeout = getEnvAsDuration("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvAsDuration("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvAsDuration("SERVER_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.EnableWrites = getEnvAsBool("SERVER_ENABLE_WRITES", c.Server.EnableWrites)
	c.Server.WriteTokenHash = getEnv("WRITE_TOKEN_HASH", c.Server.WriteTokenHash)
	c.Server.CORSOrigins = getEnvAsList("CORS_ORIGINS", c.Server.CORSOrigins)
	c.Server.WSOrigins = getEnvAsList("WS_ORIGINS", c.Server.WSOrigins)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvAsInt("DB_PORT", c.Database.Port)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.SSLMode = getEnv("DB_SSL_MODE", c.Database.SSLMode)
	c.Database.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.ConnMaxLifetime = getEnvAsDuration("DB_CONN_MAX_LIFETIME", c.Database.ConnMaxLifetime)

	c.Store.Name = getEnv("STORE_NAME", c.Store.Name)

	c.Oracle.BaseURL = getEnv("ORACLE_URL", c.Oracle.BaseURL)
	c.Oracle.TokenID = getEnv("PSF_TOKEN_ID", c.Oracle.TokenID)
	c.Oracle.Timeout = getEnvAsDuration("ORACLE_TIMEOUT", c.Oracle.Timeout)
	c.Oracle.RateLimit = getEnvAsFloat("ORACLE_RATE_LIMIT", c.Oracle.RateLimit)
	c.Oracle.RateBurst = getEnvAsFloat("ORACLE_RATE_BURST", c.Oracle.RateBurst)
	c.Oracle.MaxRetries = getEnvAsInt("ORACLE_MAX_RETRIES", c.Oracle.MaxRetries)
	c.Oracle.RetryBackoff = getEnvAsDuration("ORACLE_RETRY_BACKOFF", c.Oracle.RetryBackoff)
	c.Oracle.BreakerFailures = getEnvAsInt("ORACLE_BREAKER_FAILURES", c.Oracle.BreakerFailures)
	c.Oracle.BreakerTimeout = getEnvAsDuration("ORACLE_BREAKER_TIMEOUT", c.Oracle.BreakerTimeout)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)
	c.Logging.Output = getEnv("LOG_OUTPUT", c.Logging.Output)
}

// validateSecurity проверяет параметры безопасности
func (c *Config) validateSecurity() error {
	if !c.Server.EnableWrites {
		return nil
	}

	// запись через HTTP без токена не включаем
	if c.Server.WriteTokenHash == "" {
		return fmt.Errorf("WRITE_TOKEN_HASH is required when SERVER_ENABLE_WRITES is true")
	}

	if err := crypto.ValidateHash(c.Server.WriteTokenHash); err != nil {
		return fmt.Errorf("WRITE_TOKEN_HASH must be a bcrypt hash: %w", err)
	}

	return nil
}

// validateRanges проверяет числовые диапазоны параметров
func (c *Config) validateRanges() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", c.Database.Port)
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive, got read=%v write=%v",
			c.Server.ReadTimeout, c.Server.WriteTimeout)
	}

	if c.Store.Name == "" {
		return fmt.Errorf("STORE_NAME cannot be empty")
	}

	if c.Oracle.BaseURL == "" {
		return fmt.Errorf("ORACLE_URL cannot be empty")
	}

	if c.Oracle.Timeout <= 0 {
		return fmt.Errorf("ORACLE_TIMEOUT must be positive, got %v", c.Oracle.Timeout)
	}

	if c.Oracle.RateLimit <= 0 {
		return fmt.Errorf("ORACLE_RATE_LIMIT must be positive, got %v", c.Oracle.RateLimit)
	}

	if c.Oracle.RateBurst < 1 {
		return fmt.Errorf("ORACLE_RATE_BURST must be at least 1, got %v", c.Oracle.RateBurst)
	}

	if c.Oracle.MaxRetries < 0 {
		return fmt.Errorf("ORACLE_MAX_RETRIES cannot be negative, got %d", c.Oracle.MaxRetries)
	}

	if c.Oracle.MaxRetries > 10 {
		return fmt.Errorf("ORACLE_MAX_RETRIES should not exceed 10, got %d", c.Oracle.MaxRetries)
	}

	if c.Oracle.BreakerFailures < 1 {
		return fmt.Errorf("ORACLE_BREAKER_FAILURES must be at least 1, got %d", c.Oracle.BreakerFailures)
	}

	return nil
}

// DSN возвращает строку подключения к базе данных
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// DSNWithoutPassword возвращает строку подключения без пароля (для логирования)
func (d DatabaseConfig) DSNWithoutPassword() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Name, d.SSLMode)
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList - список через запятую
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
