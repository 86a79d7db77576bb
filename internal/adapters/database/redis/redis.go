package redis

import (
	"context"
	"fmt"

	"github.com/ggorockee/reviewmaps-alerts/internal/adapters/database/redis/counts"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	Counts *counts.Storage
}

type Options struct {
	Host     string
	Port     string
	Password string
}

func New(opts Options) (*Client, error) {
	countStorage := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       0,
	})
	if err := countStorage.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping counts storage: %w", err)
	}

	return &Client{
		Counts: counts.NewStorage(countStorage),
	}, nil
}
