package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultAppName        = "ecommerce-api"

	// defaultTimeout bounds each repository call.
	defaultTimeout = 10 * time.Second
)

// Config holds what the API needs to reach its database.
type Config struct {
	URI      string
	Database string
	// AppName is reported to the server and shows up in its logs and
	// currentOp output.
	AppName     string
	MaxPoolSize uint64
	// ConnectTimeout bounds dialing, server selection and the startup ping.
	ConnectTimeout time.Duration
}

func (c Config) connectTimeout() time.Duration {
	if c.ConnectTimeout <= 0 {
		return defaultConnectTimeout
	}
	return c.ConnectTimeout
}

func clientOptions(cfg Config) *options.ClientOptions {
	timeout := cfg.connectTimeout()
	appName := cfg.AppName
	if appName == "" {
		appName = defaultAppName
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	return opts
}

// Connect dials MongoDB, pings the primary and returns the client together
// with the configured database.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	if cfg.Database == "" {
		return nil, nil, fmt.Errorf("mongo connect: database name is empty")
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.connectTimeout())
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping %s: %w", cfg.Database, err)
	}

	return client, client.Database(cfg.Database), nil
}

// Setup builds the repositories over db and makes sure their indexes exist.
// The unique email index must be in place before the first registration.
func Setup(ctx context.Context, db *mongo.Database) (*UserRepository, *StoreRepository, error) {
	users := NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return nil, nil, fmt.Errorf("mongo setup users: %w", err)
	}
	stores := NewStoreRepository(db)
	if err := stores.EnsureIndexes(ctx); err != nil {
		return nil, nil, fmt.Errorf("mongo setup stores: %w", err)
	}
	return users, stores, nil
}
