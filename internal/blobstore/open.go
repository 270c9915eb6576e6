package blobstore

import (
	"context"
	"fmt"
	"net"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	BackendDisk   = "disk"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Store is what every backend implements.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

var (
	_ Store = (*Disk)(nil)
	_ Store = (*Redis)(nil)
	_ Store = (*Memory)(nil)
)

type OpenParams struct {
	Backend        string
	DiskPath       string
	RedisHost      string
	RedisPort      string
	RedisPassword  string
	MemorySizeMB   int
	TracingEnabled bool
}

// Open creates the configured backend. The redis client is returned too
// (nil for other backends) so the caller can reuse and eventually close it.
func Open(ctx context.Context, params OpenParams) (Store, *redis.Client, error) {
	switch params.Backend {
	case BackendDisk:
		disk, err := NewDisk(params.DiskPath)
		if err != nil {
			return nil, nil, fmt.Errorf("new disk store: %w", err)
		}
		log.Debugf("blobstore: using disk store at [%s]", params.DiskPath)
		return disk, nil, nil
	case BackendMemory:
		log.Warnf("blobstore: using in-memory store (%d MB), exercises are lost on restart", params.MemorySizeMB)
		return NewMemory(params.MemorySizeMB), nil, nil
	case BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(params.RedisHost, params.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})
		if params.TracingEnabled {
			rdb.AddHook(redisotel.NewTracingHook())
		}

		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
		return NewRedis(rdb), rdb, nil
	default:
		return nil, nil, fmt.Errorf("unknown blob store backend: %s", params.Backend)
	}
}
