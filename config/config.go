package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Storage       StorageConfig
	Auth          AuthConfig
	ReCAPTCHA     ReCAPTCHAConfig
	EventTriggers EventTriggerFunctionsConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
	Enrollment    EnrollmentConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL           string
	MaxConns      int32
	MinConns      int32
	WorkOffline   bool
	CACertPath    string
	TLSServerName string
}

// StorageConfig points at the S3-compatible bucket holding enrollment documents
type StorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
	UsePathStyle    bool
	PresignTTLMins  int
}

type AuthConfig struct {
	StaffJWTSecret string
	JWTIssuer      string
}

type ReCAPTCHAConfig struct {
	SecretKey string
	SiteKey   string
}

type EventTriggerFunctionsConfig struct {
	EnrollmentCreatedTriggerURL       string
	EnrollmentStatusChangedTriggerURL string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	AlloyEndpoint     string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// EnrollmentConfig tunes the public enrollment wizard
type EnrollmentConfig struct {
	SessionTTLMinutes      int
	RegulationDocumentPath string
	Locale                 string
	Direction              string
	CreateParentAccount    bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8081")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "https://nursery.example.org")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://nursery.example.org")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_USE_PATH_STYLE", true)
	v.SetDefault("STORAGE_PRESIGN_TTL_MINUTES", 15)
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "alloy:4318") // OTLP over HTTP
	v.SetDefault("O11Y_BE_SERVICE_NAME", "nursery-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "nursery")
	v.SetDefault("O11Y_BE_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "nursery-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,goroutines,mutex")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)
	v.SetDefault("JWT_ISSUER", "nursery-api")

	// Enrollment wizard defaults
	v.SetDefault("ENROLLMENT_SESSION_TTL_MINUTES", 60)
	v.SetDefault("ENROLLMENT_REGULATION_PATH", "./static/reglement-interieur.pdf")
	v.SetDefault("ENROLLMENT_LOCALE", "fr")
	v.SetDefault("ENROLLMENT_DIRECTION", "ltr")
	v.SetDefault("ENROLLMENT_CREATE_PARENT_ACCOUNT", false)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			URL:           v.GetString("DATABASE_URL"),
			MaxConns:      v.GetInt32("DB_MAX_CONNS"),
			MinConns:      v.GetInt32("DB_MIN_CONNS"),
			WorkOffline:   v.GetBool("DB_WORK_OFFLINE"),
			CACertPath:    v.GetString("DB_CA_CERT_PATH"),
			TLSServerName: v.GetString("DB_TLS_SERVER_NAME"),
		},
		Storage: StorageConfig{
			AccessKeyID:     v.GetString("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("STORAGE_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("STORAGE_BUCKET_NAME"),
			Endpoint:        v.GetString("STORAGE_ENDPOINT"),
			Region:          v.GetString("STORAGE_REGION"),
			UsePathStyle:    v.GetBool("STORAGE_USE_PATH_STYLE"),
			PresignTTLMins:  v.GetInt("STORAGE_PRESIGN_TTL_MINUTES"),
		},
		Auth: AuthConfig{
			StaffJWTSecret: v.GetString("STAFF_JWT_SECRET"),
			JWTIssuer:      v.GetString("JWT_ISSUER"),
		},
		ReCAPTCHA: ReCAPTCHAConfig{
			SecretKey: v.GetString("RECAPTCHA_V2_SECRET_KEY"),
			SiteKey:   v.GetString("RECAPTCHA_V2_SITE_KEY"),
		},
		EventTriggers: EventTriggerFunctionsConfig{
			EnrollmentCreatedTriggerURL:       v.GetString("ENROLLMENT_CREATED_TRIGGER_URL"),
			EnrollmentStatusChangedTriggerURL: v.GetString("ENROLLMENT_STATUS_CHANGED_TRIGGER_URL"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			AlloyEndpoint:     v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_BE_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_BE_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
		Enrollment: EnrollmentConfig{
			SessionTTLMinutes:      v.GetInt("ENROLLMENT_SESSION_TTL_MINUTES"),
			RegulationDocumentPath: v.GetString("ENROLLMENT_REGULATION_PATH"),
			Locale:                 v.GetString("ENROLLMENT_LOCALE"),
			Direction:              v.GetString("ENROLLMENT_DIRECTION"),
			CreateParentAccount:    v.GetBool("ENROLLMENT_CREATE_PARENT_ACCOUNT"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// splitList parses a comma-separated env value, dropping blanks
func splitList(raw string) []string {
	out := []string{}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	// Database configuration
	if !c.Database.WorkOffline && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when not in offline mode")
	}

	if c.Auth.StaffJWTSecret == "" {
		return fmt.Errorf("STAFF_JWT_SECRET is required")
	}
	if len(c.Auth.StaffJWTSecret) < 32 {
		return fmt.Errorf("STAFF_JWT_SECRET must be at least 32 characters")
	}

	// Document storage is optional only when working offline
	if !c.Database.WorkOffline && c.Storage.BucketName == "" {
		return fmt.Errorf("STORAGE_BUCKET_NAME is required when not in offline mode")
	}

	// Server configuration
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	if c.Enrollment.SessionTTLMinutes <= 0 {
		return fmt.Errorf("ENROLLMENT_SESSION_TTL_MINUTES must be positive")
	}
	switch c.Enrollment.Direction {
	case "ltr", "rtl":
	default:
		return fmt.Errorf("ENROLLMENT_DIRECTION must be ltr or rtl, got %q", c.Enrollment.Direction)
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}
