package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connection represents a database connection
type Connection struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
}

// Config represents database configuration
type Config struct {
	URI     string
	DBName  string
	Timeout time.Duration
	MaxPool uint64
	MinPool uint64
}

// DefaultConfig returns default database configuration
func DefaultConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		MaxPool: 100,
		MinPool: 5,
	}
}

// Connect creates a new database connection and verifies it with a ping
func Connect(cfg *Config) (*Connection, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPool > 0 {
		clientOptions.SetMaxPoolSize(cfg.MaxPool)
	}
	if cfg.MinPool > 0 {
		clientOptions.SetMinPoolSize(cfg.MinPool)
	}
	clientOptions.SetMaxConnIdleTime(30 * time.Second)
	clientOptions.SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Connection{
		Client:   client,
		Database: client.Database(cfg.DBName),
		DBName:   cfg.DBName,
	}, nil
}

// Close closes the database connection
func (c *Connection) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.Client.Disconnect(ctx)
}

// Ping checks if the database is accessible
func (c *Connection) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.Client.Ping(ctx, readpref.Primary())
}

// GetCollection returns a collection by name
func (c *Connection) GetCollection(name string) *mongo.Collection {
	return c.Database.Collection(name)
}

// HealthCheck verifies both the connection and database access
func (c *Connection) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	if err := c.Database.RunCommand(ctx, map[string]interface{}{"ping": 1}).Err(); err != nil {
		return fmt.Errorf("database access failed: %w", err)
	}

	return nil
}
