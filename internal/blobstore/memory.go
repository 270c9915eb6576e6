package blobstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/coocood/freecache"
)

// Memory is an in-process store, used for local development and tests.
// freecache ignores entries larger than 1/1024 of the cache size, so the
// cache has to be sized for the biggest expected blob.
type Memory struct {
	cache *freecache.Cache
}

func NewMemory(sizeMegabytes int) *Memory {
	megabyte := 1024 * 1024
	return &Memory{
		cache: freecache.NewCache(sizeMegabytes * megabyte),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	data, err := m.cache.Get([]byte(key))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("memory get: %w", err)
	}
	return data, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	// 0 -> no expiry
	if err := m.cache.Set([]byte(key), value, 0); err != nil {
		return fmt.Errorf("memory set: %w", err)
	}
	return nil
}
