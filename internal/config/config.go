package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration reads "30s" style strings from TOML
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	Port        int    `toml:"port"`
	DatabaseURL string `toml:"database_url"`
	// Migrations run on startup unless disabled
	MigrateOnStart bool `toml:"migrate_on_start"`

	Auth     AuthConfig     `toml:"auth"`
	Redis    RedisConfig    `toml:"redis"`
	Minio    MinioConfig    `toml:"minio"`
	Checkout CheckoutConfig `toml:"checkout"`

	AdminCacheTTL     Duration `toml:"admin_cache_ttl"`
	AdminCacheSize    int      `toml:"admin_cache_size"`
	LowStockThreshold int      `toml:"low_stock_threshold"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	JWKSURL   string `toml:"jwks_url"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type MinioConfig struct {
	Endpoint    string `toml:"endpoint"`
	AccessKey   string `toml:"access_key"`
	SecretKey   string `toml:"secret_key"`
	UseSSL      bool   `toml:"use_ssl"`
	ImageBucket string `toml:"image_bucket"`
}

type CheckoutConfig struct {
	Timeout Duration `toml:"timeout"`
	// Requests per user per minute
	RateLimit int `toml:"rate_limit"`
}

// Defaults suit local development
func Defaults() *Config {
	return &Config{
		Port:           8080,
		MigrateOnStart: true,
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Minio: MinioConfig{
			Endpoint:    "localhost:9000",
			AccessKey:   "minioadmin",
			SecretKey:   "minioadmin",
			ImageBucket: "product-images",
		},
		Checkout: CheckoutConfig{
			Timeout:   Duration{10 * time.Second},
			RateLimit: 10,
		},
		AdminCacheTTL:     Duration{5 * time.Minute},
		AdminCacheSize:    1000,
		LowStockThreshold: 10,
	}
}

// Load reads STOREFRONT_CONFIG (when set) over the defaults, then applies
// environment variables, which take precedence over the file.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("STOREFRONT_CONFIG"), os.LookupEnv)
}

func LoadFrom(path string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	if err := cfg.applyEnv(lookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookupEnv func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v, ok := lookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookupEnv(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *Duration) {
		if v, ok := lookupEnv(key); ok && v != "" {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}

	num("PORT", &c.Port)
	str("DATABASE_URL", &c.DatabaseURL)
	flag("MIGRATE_ON_START", &c.MigrateOnStart)

	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("JWKS_URL", &c.Auth.JWKSURL)

	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	num("REDIS_DB", &c.Redis.DB)

	str("MINIO_ENDPOINT", &c.Minio.Endpoint)
	str("MINIO_ACCESS_KEY", &c.Minio.AccessKey)
	str("MINIO_SECRET_KEY", &c.Minio.SecretKey)
	flag("MINIO_USE_SSL", &c.Minio.UseSSL)
	str("PRODUCT_IMAGE_BUCKET", &c.Minio.ImageBucket)

	duration("CHECKOUT_TIMEOUT", &c.Checkout.Timeout)
	num("CHECKOUT_RATE_LIMIT", &c.Checkout.RateLimit)

	duration("ADMIN_CACHE_TTL", &c.AdminCacheTTL)
	num("ADMIN_CACHE_SIZE", &c.AdminCacheSize)
	num("LOW_STOCK_THRESHOLD", &c.LowStockThreshold)

	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Auth.JWTSecret == "" && c.Auth.JWKSURL == "" {
		errs = append(errs, errors.New("either JWT_SECRET or JWKS_URL is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}
	if c.Minio.ImageBucket == "" {
		errs = append(errs, errors.New("PRODUCT_IMAGE_BUCKET must not be empty"))
	}
	if c.AdminCacheSize <= 0 {
		errs = append(errs, errors.New("ADMIN_CACHE_SIZE must be positive"))
	}
	return errors.Join(errs...)
}
