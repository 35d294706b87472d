package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config groups the application configuration, read via Viper from the
// environment and optionally a config file.
type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	Minio MinioConfig
	Auth  AuthConfig
	Jobs  JobsConfig
}

type AppConfig struct {
	Env  string // development, staging, production
	Name string
	Port int
}

type DBConfig struct {
	URL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// AuthConfig points at the external identity provider. When JWKSURL is
// set tokens are verified against the provider's published keys;
// otherwise the shared HMAC secret is used.
type AuthConfig struct {
	JWKSURL    string
	HMACSecret string
}

type JobsConfig struct {
	LowStockThreshold  int
	AlertInterval      time.Duration
	AuditSweepInterval time.Duration
}

// Load reads configuration from environment variables (DEPOT_ prefix,
// dots become underscores) and an optional config.yaml in the working
// directory.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DEPOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", "development")
	v.SetDefault("app.name", "depot")
	v.SetDefault("app.port", 8080)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.bucket", "depot-reports")
	v.SetDefault("jobs.lowstockthreshold", 10)
	v.SetDefault("jobs.alertinterval", 30*time.Minute)
	v.SetDefault("jobs.auditsweepinterval", time.Hour)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Env:  v.GetString("app.env"),
			Name: v.GetString("app.name"),
			Port: v.GetInt("app.port"),
		},
		DB: DBConfig{
			URL: v.GetString("db.url"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Minio: MinioConfig{
			Endpoint:  v.GetString("minio.endpoint"),
			AccessKey: v.GetString("minio.accesskey"),
			SecretKey: v.GetString("minio.secretkey"),
			UseSSL:    v.GetBool("minio.usessl"),
			Bucket:    v.GetString("minio.bucket"),
		},
		Auth: AuthConfig{
			JWKSURL:    v.GetString("auth.jwksurl"),
			HMACSecret: v.GetString("auth.hmacsecret"),
		},
		Jobs: JobsConfig{
			LowStockThreshold:  v.GetInt("jobs.lowstockthreshold"),
			AlertInterval:      v.GetDuration("jobs.alertinterval"),
			AuditSweepInterval: v.GetDuration("jobs.auditsweepinterval"),
		},
	}

	if cfg.DB.URL == "" {
		return nil, fmt.Errorf("DEPOT_DB_URL is required")
	}
	if cfg.Auth.JWKSURL == "" && cfg.Auth.HMACSecret == "" {
		return nil, fmt.Errorf("either DEPOT_AUTH_JWKSURL or DEPOT_AUTH_HMACSECRET is required")
	}
	return cfg, nil
}
