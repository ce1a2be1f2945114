// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port      string `mapstructure:"PORT"`
	Env       string `mapstructure:"APP_ENV"`
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Authorization boundary: the single admin account, the shared secret for
	// cron callers, and the email domain staff must belong to.
	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	CronSecret    string `mapstructure:"CRON_SECRET"`
	AllowedDomain string `mapstructure:"ALLOWED_EMAIL_DOMAIN"`

	AppURL string `mapstructure:"APP_URL"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	RedisURL string `mapstructure:"REDIS_URL"`

	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	// Object storage for media uploads.
	StorageEndpoint  string `mapstructure:"STORAGE_ENDPOINT"`
	StorageAccessKey string `mapstructure:"STORAGE_ACCESS_KEY"`
	StorageSecretKey string `mapstructure:"STORAGE_SECRET_KEY"`
	StorageBucket    string `mapstructure:"STORAGE_BUCKET"`
	StorageUseSSL    bool   `mapstructure:"STORAGE_USE_SSL"`
	StoragePublicURL string `mapstructure:"STORAGE_PUBLIC_URL"`

	// OAuth providers.
	GoogleClientID       string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleAuthURL        string `mapstructure:"GOOGLE_AUTH_URL"`
	GoogleTokenURL       string `mapstructure:"GOOGLE_TOKEN_URL"`
	GoogleUserinfoURL    string `mapstructure:"GOOGLE_USERINFO_URL"`
	LinkedInClientID     string `mapstructure:"LINKEDIN_CLIENT_ID"`
	LinkedInClientSecret string `mapstructure:"LINKEDIN_CLIENT_SECRET"`
	LinkedInAuthURL      string `mapstructure:"LINKEDIN_AUTH_URL"`
	LinkedInTokenURL     string `mapstructure:"LINKEDIN_TOKEN_URL"`
	LinkedInAPIBaseURL   string `mapstructure:"LINKEDIN_API_BASE_URL"`

	// X (Twitter) publishing credentials.
	XAPIBaseURL string `mapstructure:"X_API_BASE_URL"`
	XBearer     string `mapstructure:"X_BEARER_TOKEN"`

	// LLM generator for the random-post pipeline.
	LLMAPIBaseURL string `mapstructure:"LLM_API_BASE_URL"`
	LLMAPIKey     string `mapstructure:"LLM_API_KEY"`
	LLMModel      string `mapstructure:"LLM_MODEL"`

	TracingEnabled  bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string  `mapstructure:"OTLP_ENDPOINT"`
	SamplerRatio    float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config
	// We intentionally ignore this error as the config file may not exist yet
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	// Set default values for development
	viper.SetDefault("PORT", "8460")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_URL", "http://localhost:8460")
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	viper.SetDefault("ADMIN_EMAIL", "")
	viper.SetDefault("CRON_SECRET", "")
	viper.SetDefault("ALLOWED_EMAIL_DOMAIN", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "marketing_hub")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("STORAGE_ENDPOINT", "localhost:9000")
	viper.SetDefault("STORAGE_BUCKET", "social-media-uploads")
	viper.SetDefault("STORAGE_USE_SSL", false)
	viper.SetDefault("GOOGLE_AUTH_URL", "https://accounts.google.com/o/oauth2/v2/auth")
	viper.SetDefault("GOOGLE_TOKEN_URL", "https://oauth2.googleapis.com/token")
	viper.SetDefault("GOOGLE_USERINFO_URL", "https://openidconnect.googleapis.com/v1/userinfo")
	viper.SetDefault("LINKEDIN_AUTH_URL", "https://www.linkedin.com/oauth/v2/authorization")
	viper.SetDefault("LINKEDIN_TOKEN_URL", "https://www.linkedin.com/oauth/v2/accessToken")
	viper.SetDefault("LINKEDIN_API_BASE_URL", "https://api.linkedin.com")
	viper.SetDefault("X_API_BASE_URL", "https://api.x.com")
	viper.SetDefault("LLM_API_BASE_URL", "https://api.openai.com")
	viper.SetDefault("LLM_MODEL", "gpt-4o")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.AllowedDomain = normalizeDomain(config.AllowedDomain)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// normalizeDomain strips a leading "@" and lowercases the allowlist domain so
// suffix checks compare like with like.
func normalizeDomain(domain string) string {
	domain = strings.TrimSpace(strings.ToLower(domain))
	return strings.TrimPrefix(domain, "@")
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.AdminEmail == "" {
		return errors.New("ADMIN_EMAIL is required")
	}
	if c.CronSecret == "" {
		return errors.New("CRON_SECRET is required")
	}
	if c.AllowedDomain == "" {
		return errors.New("ALLOWED_EMAIL_DOMAIN is required")
	}
	if strings.Contains(c.AllowedDomain, "@") {
		return errors.New("ALLOWED_EMAIL_DOMAIN must be a bare domain, e.g. example.com")
	}
	if !strings.HasSuffix(strings.ToLower(c.AdminEmail), "@"+c.AllowedDomain) {
		return errors.New("ADMIN_EMAIL must belong to ALLOWED_EMAIL_DOMAIN")
	}

	isProduction := c.Env == "production" || c.Env == "prod"

	// Strict checks for production
	if isProduction {
		if c.JWTSecret == "your-secret-key-change-in-production" {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if len(c.CronSecret) < 32 {
			return errors.New("CRON_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else {
		if len(c.JWTSecret) < 32 {
			log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
		}
	}

	return nil
}
