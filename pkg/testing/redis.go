package testing

import (
	"context"
	"net"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

// RedisClient connects to the redis instance at host:port and fails the test
// if it does not answer a ping. An empty host falls back to REDIS_HOST, then
// localhost. The password comes from FITTRACKER_REDIS_PASS.
func RedisClient(t *testing.T, host, port string) *redis.Client {
	t.Helper()

	if host == "" {
		host = os.Getenv("REDIS_HOST")
	}
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "6379"
	}
	t.Logf("using redis: [%s]", net.JoinHostPort(host, port))

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: os.Getenv("FITTRACKER_REDIS_PASS"),
		DB:       0, // use default DB
	})
	t.Cleanup(func() {
		if err := rdb.Close(); err != nil {
			t.Logf("close redis client: %s", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pingRes, err := rdb.Ping(ctx).Result()
	require.NoError(t, err)
	t.Logf("redis ping res: %s", pingRes)

	return rdb
}
