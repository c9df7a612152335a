package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Delete policies for parents that still own children.
const (
	DeletePolicyRestrict = "restrict"
	DeletePolicyCascade  = "cascade"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for uploaded files.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AuthConfig controls token issuing and verification.
type AuthConfig struct {
	JWTSecret string
	JWTTTL    time.Duration
	// RevalidateRole reloads the user on every authenticated request instead of trusting the token's role.
	RevalidateRole bool
}

// UploadConfig bounds uploads and controls how stored files are served back.
type UploadConfig struct {
	MaxBytes   int
	Presign    bool
	PresignTTL time.Duration
}

// PredictorConfig describes the external question-prediction process.
type PredictorConfig struct {
	Command string
	Script  string
	Timeout time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowSuffix    string
}

type MailConfig struct {
	SendGridAPIKey string
	From           string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Env          string
	Port         string
	APIBasePath  string
	LogLevel     string
	DeletePolicy string
	RollbarToken string
	Database     DatabaseConfig
	MinIO        MinIOConfig
	Auth         AuthConfig
	Upload       UploadConfig
	Predictor    PredictorConfig
	CORS         CORSConfig
	Mail         MailConfig
}

// New returns a viper instance bound to the environment with every default registered.
func New() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("API_BASE_PATH", "/api")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DELETE_POLICY", DeletePolicyRestrict)
	v.SetDefault("ROLLBAR_TOKEN", "")

	v.SetDefault("DB_HOST", "")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_SEC", 300)

	v.SetDefault("MINIO_ENDPOINT", "")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "smartstudy")
	v.SetDefault("MINIO_USE_SSL", false)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", 24*time.Hour)
	v.SetDefault("AUTH_REVALIDATE_ROLE", false)

	v.SetDefault("UPLOAD_MAX_BYTES", 20<<20)
	v.SetDefault("UPLOADS_PRESIGN", false)
	v.SetDefault("UPLOADS_PRESIGN_TTL", 15*time.Minute)

	v.SetDefault("PREDICTOR_COMMAND", "python3")
	v.SetDefault("PREDICTOR_SCRIPT", "predictor/predict.py")
	v.SetDefault("PREDICTOR_TIMEOUT", 60*time.Second)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("CORS_ALLOW_SUFFIX", "")

	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_FROM", "noreply@smartstudy.com")

	v.AutomaticEnv()
	return v
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return FromViper(New())
}

// FromViper builds an AppConfig from an already populated viper instance.
func FromViper(v *viper.Viper) *AppConfig {
	return &AppConfig{
		Env:          v.GetString("APP_ENV"),
		Port:         v.GetString("PORT"),
		APIBasePath:  "/" + strings.Trim(v.GetString("API_BASE_PATH"), "/"),
		LogLevel:     v.GetString("LOG_LEVEL"),
		DeletePolicy: strings.ToLower(v.GetString("DELETE_POLICY")),
		RollbarToken: v.GetString("ROLLBAR_TOKEN"),
		Database: DatabaseConfig{
			Host:               v.GetString("DB_HOST"),
			Port:               v.GetString("DB_PORT"),
			User:               v.GetString("DB_USER"),
			Password:           v.GetString("DB_PASSWORD"),
			Name:               v.GetString("DB_NAME"),
			SSLMode:            v.GetString("DB_SSLMODE"),
			MaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetimeSec: v.GetInt("DB_CONN_MAX_LIFETIME_SEC"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
		Auth: AuthConfig{
			JWTSecret:      v.GetString("JWT_SECRET"),
			JWTTTL:         v.GetDuration("JWT_TTL"),
			RevalidateRole: v.GetBool("AUTH_REVALIDATE_ROLE"),
		},
		Upload: UploadConfig{
			MaxBytes:   v.GetInt("UPLOAD_MAX_BYTES"),
			Presign:    v.GetBool("UPLOADS_PRESIGN"),
			PresignTTL: v.GetDuration("UPLOADS_PRESIGN_TTL"),
		},
		Predictor: PredictorConfig{
			Command: v.GetString("PREDICTOR_COMMAND"),
			Script:  v.GetString("PREDICTOR_SCRIPT"),
			Timeout: v.GetDuration("PREDICTOR_TIMEOUT"),
		},
		CORS: CORSConfig{
			// viper splits slices on whitespace, origins come comma separated.
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowSuffix:    v.GetString("CORS_ALLOW_SUFFIX"),
		},
		Mail: MailConfig{
			SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
			From:           v.GetString("MAIL_FROM"),
		},
	}
}

// Validate reports configuration that would make the server unsafe or unusable.
func (c *AppConfig) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	switch c.DeletePolicy {
	case DeletePolicyRestrict, DeletePolicyCascade:
	default:
		return fmt.Errorf("unknown DELETE_POLICY %q", c.DeletePolicy)
	}
	if c.Predictor.Timeout <= 0 {
		return fmt.Errorf("PREDICTOR_TIMEOUT must be positive")
	}
	// An empty origin list means "*", which would make the suffix meaningless.
	if c.CORS.AllowSuffix != "" && len(c.CORS.AllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOW_SUFFIX requires CORS_ALLOWED_ORIGINS")
	}
	return nil
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
