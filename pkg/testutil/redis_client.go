package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// MockRedisClient keeps values in memory and ignores TTLs.
type MockRedisClient struct {
	mutex  sync.Mutex
	values map[string]string
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{values: make(map[string]string)}
}

func (c *MockRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, ok := c.values[key]
	return ok, nil
}

func (c *MockRedisClient) Get(ctx context.Context, key string) (string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	value, ok := c.values[key]
	if !ok {
		return "", errors.New("key not found")
	}

	return value, nil
}

func (c *MockRedisClient) Set(ctx context.Context, key, value string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.values[key] = value
	return nil
}

func (c *MockRedisClient) Del(ctx context.Context, key ...string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, k := range key {
		delete(c.values, k)
	}

	return nil
}

func (c *MockRedisClient) SetObj(ctx context.Context, key string, obj any, ttl time.Duration) error {
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	return c.Set(ctx, key, string(b))
}

func (c *MockRedisClient) GetObj(ctx context.Context, key string, v any) error {
	s, err := c.Get(ctx, key)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(s), v)
}
