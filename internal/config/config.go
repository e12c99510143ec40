package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	HTTPPort      string
	Env           string
	Timezone      string
	CronSecret    string
	CORSOrigins   []string
	Store         string
	PropertyName  string
	MigrationsDir string
	Billing       BillingConfig
	Settings      SettingsConfig
	DB            DBConfig
	Redis         RedisConfig
	Auth          AuthConfig
	WhatsApp      WhatsAppConfig
}

// BillingConfig holds the defaults used until an app_settings row exists.
type BillingConfig struct {
	GenerationEnabled     bool
	DefaultBillingAccount string
}

type SettingsConfig struct {
	Cache    string
	CacheTTL time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DBConfig struct {
	SQLitePath      string
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	URL          string
	APIKey       string
	Timeout      time.Duration
	SkipAuth     bool
	MockUserID   string
	MockUserName string
	MockUserRole string
}

type WhatsAppConfig struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	RetryCount int
}

func (c WhatsAppConfig) Enabled() bool {
	return c.BaseURL != "" && c.Token != ""
}

// Load reads the process environment. A .env file, when present, is loaded
// first without overriding variables that are already set.
func Load() (Config, error) {
	if _, err := loadDotEnv(); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		Timezone:      getEnv("APP_TIMEZONE", "UTC"),
		CronSecret:    getEnv("CRON_SECRET", ""),
		CORSOrigins:   getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		Store:         strings.ToLower(getEnv("STORE", StorePostgres)),
		PropertyName:  getEnv("PROPERTY_NAME", "Sukha Senior Living"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", ""),
		Billing: BillingConfig{
			GenerationEnabled:     getEnvBool("BILLING_GENERATION_ENABLED", true),
			DefaultBillingAccount: getEnv("BILLING_DEFAULT_ACCOUNT", "main"),
		},
		Settings: SettingsConfig{
			Cache:    strings.ToLower(getEnv("SETTINGS_CACHE", CacheMemory)),
			CacheTTL: getEnvDuration("SETTINGS_CACHE_TTL", 30*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		DB: DBConfig{
			SQLitePath:      getEnv("SQLITE_PATH", "sukha-pms.db"),
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "sukha_pms"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Auth: AuthConfig{
			URL:          getEnv("AUTH_URL", ""),
			APIKey:       getEnv("AUTH_API_KEY", ""),
			Timeout:      getEnvDuration("AUTH_TIMEOUT", 5*time.Second),
			SkipAuth:     getEnvBool("AUTH_SKIP", false),
			MockUserID:   getEnv("AUTH_MOCK_USER_ID", "00000000-0000-0000-0000-000000000001"),
			MockUserName: getEnv("AUTH_MOCK_USER_NAME", "Local Admin"),
			MockUserRole: getEnv("AUTH_MOCK_USER_ROLE", "admin"),
		},
		WhatsApp: WhatsAppConfig{
			BaseURL:    getEnv("WHATSAPP_API_URL", ""),
			Token:      getEnv("WHATSAPP_API_TOKEN", ""),
			Timeout:    getEnvDuration("WHATSAPP_TIMEOUT", 10*time.Second),
			RetryCount: getEnvInt("WHATSAPP_RETRY_COUNT", 2),
		},
	}

	switch cfg.Store {
	case StorePostgres, StoreSQLite, StoreMemory:
	default:
		return Config{}, fmt.Errorf("invalid STORE %q: want postgres, sqlite or memory", cfg.Store)
	}
	if cfg.Settings.Cache != CacheMemory && cfg.Settings.Cache != CacheRedis {
		return Config{}, fmt.Errorf("invalid SETTINGS_CACHE %q: want memory or redis", cfg.Settings.Cache)
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return Config{}, fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

// Location returns the property's local time zone; "today" for billing and
// visitor checks is computed in it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
