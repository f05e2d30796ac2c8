// Package redis connects to the Redis instance backing request rate limits.
package redis

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
)

// New parses a redis:// URL, connects and verifies the connection.
func New(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
