package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is shared by the storefront CLI and the orders-api backend.
// Keys follow the upper-snake env naming so a .env file and the process
// environment can both feed it.
type Config struct {
	AppEnv    string `mapstructure:"APP_ENV"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	// client side
	APIBaseURL    string        `mapstructure:"API_BASE_URL"`
	APITimeout    time.Duration `mapstructure:"API_TIMEOUT"`
	ShareBaseURL  string        `mapstructure:"SHARE_BASE_URL"`
	StorageDriver string        `mapstructure:"STORAGE_DRIVER"`
	StoragePath   string        `mapstructure:"STORAGE_PATH"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPrefix   string `mapstructure:"REDIS_PREFIX"`

	ConsulHost    string `mapstructure:"CONSUL_HOST"`
	ConsulPort    int    `mapstructure:"CONSUL_PORT"`
	ConsulService string `mapstructure:"CONSUL_SERVICE"`

	// backend side
	ServerPort      int           `mapstructure:"SERVER_PORT"`
	ServiceID       string        `mapstructure:"SERVICE_ID"`
	DbHost          string        `mapstructure:"POSTGRES_HOST"`
	DbPort          int           `mapstructure:"POSTGRES_PORT"`
	DbUser          string        `mapstructure:"POSTGRES_USER"`
	DbPas           string        `mapstructure:"POSTGRES_PASSWORD"`
	DbName          string        `mapstructure:"POSTGRES_DB"`
	RabbitHost      string        `mapstructure:"RABBITMQ_HOST"`
	RabbitPort      int           `mapstructure:"RABBITMQ_PORT"`
	RabbitUser      string        `mapstructure:"RABBITMQ_USER"`
	RabbitPas       string        `mapstructure:"RABBITMQ_PASSWORD"`
	AuthUsername    string        `mapstructure:"AUTH_USERNAME"`
	AuthPassword    string        `mapstructure:"AUTH_PASSWORD"`
	AuthToken       string        `mapstructure:"AUTH_TOKEN"`
	ProductCacheTTL time.Duration `mapstructure:"PRODUCT_CACHE_TTL"`
}

var defaults = map[string]any{
	"APP_ENV":    "dev",
	"LOG_LEVEL":  "info",
	"LOG_PRETTY": false,

	"API_BASE_URL":   "http://localhost:8082",
	"API_TIMEOUT":    10 * time.Second,
	"SHARE_BASE_URL": "https://shop.example.com",
	"STORAGE_DRIVER": "sqlite",
	"STORAGE_PATH":   ".storefront/device.db",

	"REDIS_ADDR":     "",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,
	"REDIS_PREFIX":   "storefront",

	"CONSUL_HOST":    "",
	"CONSUL_PORT":    8500,
	"CONSUL_SERVICE": "orders-api",

	"SERVER_PORT":       8082,
	"SERVICE_ID":        "orders-api-1",
	"POSTGRES_HOST":     "",
	"POSTGRES_PORT":     5432,
	"POSTGRES_USER":     "minisys",
	"POSTGRES_PASSWORD": "",
	"POSTGRES_DB":       "minisys",
	"RABBITMQ_HOST":     "",
	"RABBITMQ_PORT":     5672,
	"RABBITMQ_USER":     "guest",
	"RABBITMQ_PASSWORD": "guest",
	"AUTH_USERNAME":     "demo",
	"AUTH_PASSWORD":     "demo",
	"AUTH_TOKEN":        "dev-token",
	"PRODUCT_CACHE_TTL": 5 * time.Minute,
}

// Load reads defaults, then the optional config file, then the
// environment. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if path != "" {
		v.SetConfigFile(path)
		if strings.HasSuffix(path, ".env") {
			v.SetConfigType("env")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	v.AutomaticEnv()

	cf := &Config{}
	if err := v.Unmarshal(cf); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cf, nil
}

// PostgresEnabled reports whether the backend should use PostgreSQL
// instead of the in-memory repositories.
func (c *Config) PostgresEnabled() bool { return c.DbHost != "" }

func (c *Config) RabbitEnabled() bool { return c.RabbitHost != "" }

func (c *Config) ConsulEnabled() bool { return c.ConsulHost != "" }
