package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/dungpham-npc/storefront/pkg/config"
	"github.com/dungpham-npc/storefront/pkg/database"
	"github.com/dungpham-npc/storefront/pkg/tracing"
)

const defaultJWTSecret = "change-this-to-a-secure-secret"

// Backend names.
const (
	AssetMemory  = "memory"
	AssetS3      = "s3"
	AssetRemote  = "remote"
	MailLog      = "log"
	MailSMTP     = "smtp"
	SearchMemory = "memory"
	SearchES     = "elasticsearch"
)

// Config holds all configuration for the storefront server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort           int           `env:"HTTP_PORT" envDefault:"8080"`
	HTTPRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Stores
	Postgres database.PostgresConfig `envPrefix:"POSTGRES_"`
	Redis    database.RedisConfig    `envPrefix:"REDIS_"`

	// JWT
	JWTSecret         string        `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTAccessTokenTTL time.Duration `env:"JWT_ACCESS_TOKEN_TTL" envDefault:"24h"`
	BcryptCost        int           `env:"BCRYPT_COST" envDefault:"12"`

	// Kafka. An empty broker list disables events and the notification
	// consumer.
	KafkaBrokers       []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaConsumerGroup string   `env:"KAFKA_CONSUMER_GROUP" envDefault:"storefront-notifications"`

	// Product images
	AssetBackend    string `env:"ASSET_BACKEND" envDefault:"memory"`
	AssetPublicURL  string `env:"ASSET_PUBLIC_URL" envDefault:"http://localhost:8080/assets"`
	S3Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket        string `env:"S3_BUCKET"`
	S3PublicURL     string `env:"S3_PUBLIC_URL"`
	AssetHostURL    string `env:"ASSET_HOST_URL"`
	AssetHostAPIKey string `env:"ASSET_HOST_API_KEY"`

	// Outbound mail
	MailBackend  string        `env:"MAIL_BACKEND" envDefault:"log"`
	SMTPHost     string        `env:"SMTP_HOST"`
	SMTPPort     int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string        `env:"SMTP_USERNAME"`
	SMTPPassword string        `env:"SMTP_PASSWORD"`
	SMTPFrom     string        `env:"SMTP_FROM"`
	SMTPSSL      bool          `env:"SMTP_SSL" envDefault:"false"`
	SMTPTimeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"10s"`

	// Product search
	SearchBackend          string   `env:"SEARCH_BACKEND" envDefault:"memory"`
	ElasticsearchAddresses []string `env:"ELASTICSEARCH_ADDRESSES" envDefault:"http://localhost:9200" envSeparator:","`
	ElasticsearchIndex     string   `env:"ELASTICSEARCH_INDEX" envDefault:"storefront_products"`

	// Tracing; disabled unless OTEL_EXPORTER_OTLP_ENDPOINT is set.
	Tracing tracing.Config

	// Rate limiting
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Bootstrap admin account, created on startup when both are set.
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load reads configuration from the environment, after any dotenv files.
func Load(dotenvFiles ...string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, dotenvFiles...); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that env tags cannot express.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.JWTAccessTokenTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TOKEN_TTL must be positive, got %s", c.JWTAccessTokenTTL)
	}

	// In non-development environments, require an explicitly set, strong JWT secret.
	if !c.IsDevelopment() {
		if c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", c.Environment)
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(c.JWTSecret))
		}
	}

	switch c.AssetBackend {
	case AssetMemory:
	case AssetS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when ASSET_BACKEND=%s", AssetS3)
		}
	case AssetRemote:
		if c.AssetHostURL == "" {
			return fmt.Errorf("ASSET_HOST_URL is required when ASSET_BACKEND=%s", AssetRemote)
		}
	default:
		return fmt.Errorf("unknown ASSET_BACKEND %q", c.AssetBackend)
	}

	switch c.MailBackend {
	case MailLog:
	case MailSMTP:
		if c.SMTPHost == "" || c.SMTPFrom == "" {
			return fmt.Errorf("SMTP_HOST and SMTP_FROM are required when MAIL_BACKEND=%s", MailSMTP)
		}
	default:
		return fmt.Errorf("unknown MAIL_BACKEND %q", c.MailBackend)
	}

	switch c.SearchBackend {
	case SearchMemory:
	case SearchES:
		if len(c.ElasticsearchAddresses) == 0 {
			return fmt.Errorf("ELASTICSEARCH_ADDRESSES is required when SEARCH_BACKEND=%s", SearchES)
		}
	default:
		return fmt.Errorf("unknown SEARCH_BACKEND %q", c.SearchBackend)
	}

	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// KafkaEnabled reports whether brokers are configured.
func (c *Config) KafkaEnabled() bool {
	for _, b := range c.KafkaBrokers {
		if b != "" {
			return true
		}
	}
	return false
}

// HTTPAddr returns the listen address.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
