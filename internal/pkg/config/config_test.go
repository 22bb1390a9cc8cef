package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func load(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	return LoadWith(context.Background(), envconfig.MapLookuper(env))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, map[string]string{"JWT_SECRET": "s3cret"})
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}

	if cfg.Port != "2033" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Auth.TokenTTL != 48*time.Hour {
		t.Errorf("TokenTTL = %v", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.BcryptCost != 10 || cfg.Auth.PasswordMinLength != 5 {
		t.Errorf("unexpected auth defaults: %+v", cfg.Auth)
	}
	if cfg.Auth.LegacyHeader {
		t.Error("legacy header mode must be off by default")
	}
	if cfg.Auth.LoginMaxAttempts != 5 || cfg.Auth.LoginLockout != 15*time.Minute {
		t.Errorf("unexpected throttle defaults: %+v", cfg.Auth)
	}
	if cfg.Mongo.Database != "eCommercePlatForm" {
		t.Errorf("Mongo.Database = %q", cfg.Mongo.Database)
	}
	if cfg.Mongo.AppName != "ecommerce-api" || cfg.Mongo.MaxPoolSize != 100 || cfg.Mongo.ConnectTimeout != 10*time.Second {
		t.Errorf("unexpected mongo defaults: %+v", cfg.Mongo)
	}
	if cfg.Redis.Password != "" || cfg.Redis.Timeout != 5*time.Second {
		t.Errorf("unexpected redis defaults: %+v", cfg.Redis)
	}
	if cfg.Storage.Driver != "local" || cfg.Storage.UploadDir != "./uploads" || cfg.Storage.MaxImageBytes != 5<<20 {
		t.Errorf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if len(cfg.HTTP.AllowedOrigins) != 1 || cfg.HTTP.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v", cfg.HTTP.AllowedOrigins)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development env by default")
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	if _, err := load(t, map[string]string{}); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
	if _, err := load(t, map[string]string{"JWT_SECRET": "   "}); err == nil {
		t.Fatal("expected error for blank JWT_SECRET")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(t, map[string]string{
		"JWT_SECRET":           "s3cret",
		"PORT":                 "8080",
		"ENV":                  "production",
		"TOKEN_TTL":            "2h",
		"AUTH_LEGACY_HEADER":   "true",
		"LOGIN_MAX_ATTEMPTS":   "3",
		"CORS_ALLOWED_ORIGINS": "https://a.example,https://b.example",
		"STORAGE_DRIVER":       "S3",
		"S3_BUCKET":            "images",
	})
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.Port != "8080" || cfg.IsDevelopment() {
		t.Errorf("unexpected server settings: port=%q env=%q", cfg.Port, cfg.Env)
	}
	if cfg.Auth.TokenTTL != 2*time.Hour || !cfg.Auth.LegacyHeader || cfg.Auth.LoginMaxAttempts != 3 {
		t.Errorf("unexpected auth settings: %+v", cfg.Auth)
	}
	if len(cfg.HTTP.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v", cfg.HTTP.AllowedOrigins)
	}
	if cfg.Storage.Driver != "s3" {
		t.Errorf("driver not normalized: %q", cfg.Storage.Driver)
	}
}

func TestLoad_ConnectionOverrides(t *testing.T) {
	cfg, err := load(t, map[string]string{
		"JWT_SECRET":            "s3cret",
		"MONGO_APP_NAME":        "storefront-worker",
		"MONGO_MAX_POOL_SIZE":   "25",
		"MONGO_CONNECT_TIMEOUT": "3s",
		"REDIS_PASSWORD":        "hunter2",
		"REDIS_TIMEOUT":         "750ms",
	})
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.Mongo.AppName != "storefront-worker" || cfg.Mongo.MaxPoolSize != 25 || cfg.Mongo.ConnectTimeout != 3*time.Second {
		t.Errorf("unexpected mongo config: %+v", cfg.Mongo)
	}
	if cfg.Redis.Password != "hunter2" || cfg.Redis.Timeout != 750*time.Millisecond {
		t.Errorf("unexpected redis config: %+v", cfg.Redis)
	}
}

func TestLoad_InvalidStorage(t *testing.T) {
	cases := map[string]map[string]string{
		"s3 without bucket": {"JWT_SECRET": "x", "STORAGE_DRIVER": "s3"},
		"unknown driver":    {"JWT_SECRET": "x", "STORAGE_DRIVER": "ftp"},
		"zero image size":   {"JWT_SECRET": "x", "MAX_IMAGE_BYTES": "0"},
		"bad duration":      {"JWT_SECRET": "x", "TOKEN_TTL": "soon"},
	}
	for name, env := range cases {
		if _, err := load(t, env); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
