package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type (
	APIServerConfig struct {
		HTTP       HTTPConfig       `yaml:"http"`
		Database   DatabaseConfig   `yaml:"database"`
		Redis      RedisConfig      `yaml:"redis"`
		Notifier   NotifierConfig   `yaml:"notifier"`
		Email      EmailConfig      `yaml:"email"`
		Logger     LoggerConfig     `yaml:"logger"`
		Tracing    TracingConfig    `yaml:"tracing"`
		JWT        JWTConfig        `yaml:"jwt"`
		SuperAdmin SuperAdminConfig `yaml:"super_admin"`
		Dropdown   DropdownConfig   `yaml:"dropdown"`
		Metrics    MetricsConfig    `yaml:"metrics"`
		CORS       CORSConfig       `yaml:"cors"`
		I18n       I18nConfig       `yaml:"i18n"`
	}

	HTTPConfig struct {
		Port int    `yaml:"port"`
		Mode string `yaml:"mode"` // debug, release, test
	}

	// I18nConfig represents the internationalization configuration
	I18nConfig struct {
		Path        string `yaml:"path"`         // Path to i18n translation files
		DefaultLang string `yaml:"default_lang"` // en unless set
	}

	DatabaseConfig struct {
		Type     string `yaml:"type"`     // mysql, postgres, sqlite
		Host     string `yaml:"host"`     // localhost
		Port     int    `yaml:"port"`     // 3306 (for mysql), 5432 (for postgres)
		User     string `yaml:"user"`     // root (for mysql), postgres (for postgres)
		Password string `yaml:"password"` // password
		DBName   string `yaml:"dbname"`   // database name, or file path for sqlite
		SSLMode  string `yaml:"sslmode"`  // disable (for postgres)
	}

	JWTConfig struct {
		SecretKey string        `yaml:"secret_key"`
		Duration  time.Duration `yaml:"duration"`
	}

	// RedisConfig is shared by the notification queue and the dropdown label cache.
	// An empty Addr disables both redis consumers.
	RedisConfig struct {
		Addr     string `yaml:"addr"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	}

	EmailConfig struct {
		SendGridAPIKey string `yaml:"sendgrid_api_key"` // empty means console mode
		FromEmail      string `yaml:"from_email"`
		FromName       string `yaml:"from_name"`
		AppURL         string `yaml:"app_url"`
	}

	DropdownConfig struct {
		CacheTTL time.Duration `yaml:"cache_ttl"`
	}

	MetricsConfig struct {
		Enabled   bool      `yaml:"enabled"`
		Path      string    `yaml:"path"`
		Namespace string    `yaml:"namespace"`
		Buckets   []float64 `yaml:"buckets"`
	}

	CORSConfig struct {
		AllowOrigins []string      `yaml:"allow_origins"`
		MaxAge       time.Duration `yaml:"max_age"`
	}
)

func (c *APIServerConfig) applyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 5234
	}
	if c.JWT.Duration <= 0 {
		c.JWT.Duration = 24 * time.Hour
	}
	if c.Dropdown.CacheTTL <= 0 {
		c.Dropdown.CacheTTL = 10 * time.Minute
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "nextcrm"
	}
	if c.Notifier.Type == "" {
		c.Notifier.Type = NotifierTypeDirect
	}
	if c.Notifier.Stream == "" {
		c.Notifier.Stream = "nextcrm:notifications"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "nextcrm-apiserver"
	}
	if c.I18n.DefaultLang == "" {
		c.I18n.DefaultLang = "en"
	}
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case "postgres":
		return c.getPostgresDSN()
	case "mysql":
		return c.getMySQLDSN()
	case "sqlite":
		if c.DBName == ":memory:" {
			return c.DBName
		}
		if err := os.MkdirAll(filepath.Dir(c.DBName), 0755); err != nil {
			panic(fmt.Errorf("failed to create directory for sqlite database: %w", err))
		}
		return c.DBName
	default:
		return ""
	}
}

func (c *DatabaseConfig) getPostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

func (c *DatabaseConfig) getMySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}
