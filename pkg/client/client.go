package client

import (
	"context"
	"time"

	"unilab/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Client struct {
	Mongo *mongo.Client
	Redis *redis.Client

	log *logger.Logger
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, mongoConnTimeout time.Duration) {
	c.log = log
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Successfully connected to MongoDB")
	c.Mongo = client
}

// SetRedis connects the optional Redis client. A failed ping is not fatal:
// Redis only backs the idempotency cache, which falls back to memory.
func (c *Client) SetRedis(log *logger.Logger, addr, password string, db int, timeout time.Duration) bool {
	c.log = log
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, continuing without it", "addr", addr, "error", err)
		_ = rdb.Close()
		return false
	}

	log.Info("Successfully connected to Redis", "addr", addr)
	c.Redis = rdb
	return true
}

func (c *Client) GracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if c.Mongo != nil {
		if err := c.Mongo.Disconnect(ctx); err != nil && c.log != nil {
			c.log.Error("Failed to disconnect from MongoDB", "error", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil && c.log != nil {
			c.log.Error("Failed to close Redis client", "error", err)
		}
	}
}
