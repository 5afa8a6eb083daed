package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv  string `mapstructure:"APP_ENV"`
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`
	Storage string `mapstructure:"STORAGE"`

	MongoURI string `mapstructure:"MONGO_URI"`
	DBName   string `mapstructure:"DB_NAME"`

	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	ProductCacheTTL time.Duration `mapstructure:"PRODUCT_CACHE_TTL"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTExpire time.Duration `mapstructure:"JWT_EXPIRE"`

	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogEncoding string `mapstructure:"LOG_ENCODING"`

	EmailSenderName string `mapstructure:"EMAIL_SENDER_NAME"`
	EmailAccount    string `mapstructure:"EMAIL_ACCOUNT"`
	EmailPassword   string `mapstructure:"EMAIL_PASSWORD"`

	OrderCompensateStock bool `mapstructure:"ORDER_COMPENSATE_STOCK"`
	OrderStrictStatus    bool `mapstructure:"ORDER_STRICT_STATUS"`
}

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

var defaults = map[string]any{
	"APP_ENV":                "development",
	"PORT":                   "8080",
	"GIN_MODE":               "release",
	"STORAGE":                StorageMongo,
	"MONGO_URI":              "",
	"DB_NAME":                "marketly",
	"REDIS_ADDR":             "",
	"REDIS_PASSWORD":         "",
	"REDIS_DB":               0,
	"PRODUCT_CACHE_TTL":      "10m",
	"JWT_SECRET":             "",
	"JWT_EXPIRE":             "24h",
	"LOG_LEVEL":              "info",
	"LOG_ENCODING":           "json",
	"EMAIL_SENDER_NAME":      "Marketly",
	"EMAIL_ACCOUNT":          "",
	"EMAIL_PASSWORD":         "",
	"ORDER_COMPENSATE_STOCK": true,
	"ORDER_STRICT_STATUS":    true,
}

func LoadEnv() {
	// a missing .env is fine, the process environment still applies
	_ = godotenv.Load()
}

func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// Load reads .env and the process environment into a Config.
func Load() (*Config, error) {
	LoadEnv()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMongo:
		if c.MongoURI == "" || c.DBName == "" {
			return fmt.Errorf("MONGO_URI or DB_NAME not set in environment variables")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET not set in environment variables")
	}
	return nil
}

func (c *Config) EmailEnabled() bool {
	return c.EmailAccount != "" && c.EmailPassword != ""
}

func (c *Config) Development() bool {
	return c.AppEnv == "development"
}
