package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// EnvDevelopment exposes error details in API responses.
	EnvDevelopment = "development"
	// EnvProduction hides error details.
	EnvProduction = "production"

	// ConfigPathEnv names the variable that points at an optional YAML file.
	ConfigPathEnv = "BLOG_CONFIG"
)

// Config holds application level configuration.
// Values come from defaults, then an optional YAML file, then environment variables.
type Config struct {
	Environment string `yaml:"environment"`
	ServerPort  string `yaml:"server_port"`
	LogLevel    string `yaml:"log_level"`

	DBDriver    string `yaml:"db_driver"`
	MySQLDSN    string `yaml:"mysql_dsn"`
	PostgresDSN string `yaml:"postgres_dsn"`

	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
	RedisPass string `yaml:"redis_password"`

	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	SwaggerHost        string   `yaml:"swagger_host"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	S3Bucket    string `yaml:"s3_bucket"`
	S3Region    string `yaml:"s3_region"`
	S3Endpoint  string `yaml:"s3_endpoint"`
	S3AccessKey string `yaml:"s3_access_key"`
	S3SecretKey string `yaml:"s3_secret_key"`
	S3PublicURL string `yaml:"s3_public_url"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Environment:        EnvDevelopment,
		ServerPort:         "8080",
		LogLevel:           "info",
		DBDriver:           "mysql",
		MySQLDSN:           "user:password@tcp(localhost:3306)/blog?charset=utf8mb4&parseTime=True&loc=Local",
		PostgresDSN:        "host=localhost user=postgres password=postgres dbname=blog port=5432 sslmode=disable",
		RedisAddr:          "localhost:6379",
		JWTSecret:          "change-me",
		TokenTTL:           7 * 24 * time.Hour,
		CORSAllowedOrigins: []string{"*"},
		S3Bucket:           "blog-assets",
		S3Region:           "us-east-1",
		S3Endpoint:         "http://127.0.0.1:9000",
	}
}

// Load builds Config from an optional .env file, an optional YAML file and the environment.
// An empty path falls back to BLOG_CONFIG; a missing .env file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Debug reports whether error details may be shown to API callers.
func (c *Config) Debug() bool {
	return c.Environment == EnvDevelopment
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

func (c *Config) applyEnv() {
	c.Environment = getEnv("APP_ENV", c.Environment)
	c.ServerPort = getEnv("SERVER_PORT", c.ServerPort)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.MySQLDSN = getEnv("MYSQL_DSN", c.MySQLDSN)
	c.PostgresDSN = getEnv("POSTGRES_DSN", c.PostgresDSN)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.RedisPass = getEnv("REDIS_PASSWORD", c.RedisPass)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.TokenTTL = getEnvDuration("TOKEN_TTL", c.TokenTTL)
	c.SwaggerHost = getEnv("SWAGGER_HOST", c.SwaggerHost)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSAllowedOrigins = splitCSV(v)
	}
	c.S3Bucket = getEnv("S3_BUCKET", c.S3Bucket)
	c.S3Region = getEnv("S3_REGION", c.S3Region)
	c.S3Endpoint = getEnv("S3_ENDPOINT", c.S3Endpoint)
	c.S3AccessKey = getEnv("S3_ACCESS_KEY", c.S3AccessKey)
	c.S3SecretKey = getEnv("S3_SECRET_KEY", c.S3SecretKey)
	c.S3PublicURL = getEnv("S3_PUBLIC_URL", c.S3PublicURL)
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "memory":
	default:
		return fmt.Errorf("unsupported db driver %q", c.DBDriver)
	}
	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unsupported environment %q", c.Environment)
	}
	if c.Environment == EnvProduction && c.JWTSecret == "change-me" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
