package broker

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Client is a redis stream that download events are appended to.
type Client struct {
	redis  *redis.Client
	stream string
	maxLen int64
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	opt, err := redis.ParseURL(cfg.URI)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()

		return nil, err
	}

	return &Client{
		redis:  rdb,
		stream: cfg.StreamName,
		maxLen: cfg.MaxLen,
	}, nil
}

func (c *Client) Close() error {
	return c.redis.Close()
}
