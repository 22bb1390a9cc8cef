package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=2033"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth    AuthConfig
	Admin   AdminConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Storage StorageConfig
	HTTP    HTTPConfig
}

type AuthConfig struct {
	JWTSecret         string        `env:"JWT_SECRET, required"`
	Issuer            string        `env:"JWT_ISSUER, default=ecommerce-api"`
	TokenTTL          time.Duration `env:"TOKEN_TTL, default=48h"`
	BcryptCost        int           `env:"BCRYPT_COST, default=10"`
	PasswordMinLength int           `env:"PASSWORD_MIN_LENGTH, default=5"`
	// LegacyHeader accepts the credential as the third field of the
	// Authorization header, as older clients send it.
	LegacyHeader     bool          `env:"AUTH_LEGACY_HEADER, default=false"`
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	LoginLockout     time.Duration `env:"LOGIN_LOCKOUT_WINDOW, default=15m"`
}

// AdminConfig seeds an elevated account at startup when Email is set.
type AdminConfig struct {
	Name     string `env:"ADMIN_NAME, default=admin"`
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

type MongoConfig struct {
	URI            string        `env:"MONGO_URI,             default=mongodb://localhost:27017"`
	Database       string        `env:"MONGO_DB,              default=eCommercePlatForm"`
	AppName        string        `env:"MONGO_APP_NAME,        default=ecommerce-api"`
	MaxPoolSize    uint64        `env:"MONGO_MAX_POOL_SIZE,   default=100"`
	ConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,  default=5s"`
}

type StorageConfig struct {
	Driver         string `env:"STORAGE_DRIVER,  default=local"`
	UploadDir      string `env:"UPLOAD_DIR,      default=./uploads"`
	MaxImageBytes  int64  `env:"MAX_IMAGE_BYTES, default=5242880"`
	CleanupWorkers int    `env:"CLEANUP_WORKERS, default=4"`

	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION, default=us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`
}

type HTTPConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=*"`
	RateLimitRPS   float64  `env:"RATE_LIMIT_RPS,       default=20"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST,     default=40"`
}

// IsDevelopment reports whether human readable logs should be used.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l. Tests pass an envconfig.MapLookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("JWT_SECRET must not be blank")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.Storage.MaxImageBytes <= 0 {
		return errors.New("MAX_IMAGE_BYTES must be positive")
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	return nil
}
