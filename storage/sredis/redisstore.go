// Package sredis provides a RequestStore on Redis, for clients sharing saved requests across hosts
package sredis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/base/bconfig"
	"github.com/relex/client-logger/defs"
	"github.com/relex/gotils/logger"
)

const defaultTimeout = 5 * time.Second

// Config for RedisStore
type Config struct {
	bconfig.Header `yaml:",inline"`
	Address        string        `yaml:"address"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	KeyPrefix      string        `yaml:"keyPrefix"` // prepended to all keys
	Timeout        time.Duration `yaml:"timeout"`   // per operation, default 5s
}

// NewStore creates a RedisStore
func (cfg *Config) NewStore(parentLogger logger.Logger) (base.RequestStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStore(parentLogger, client, cfg.KeyPrefix, cfg.Timeout), nil
}

// VerifyConfig verifies RedisStore config
func (cfg *Config) VerifyConfig() error {
	if cfg.Address == "" {
		return errors.New(".address is unspecified")
	}
	if cfg.DB < 0 {
		return fmt.Errorf(".db cannot be negative: %d", cfg.DB)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf(".timeout cannot be negative: %s", cfg.Timeout)
	}
	return nil
}

// RedisStore keeps values as plain Redis strings
type RedisStore struct {
	logger    logger.Logger
	client    redis.UniversalClient
	keyPrefix string
	timeout   time.Duration
}

// NewRedisStore creates a RedisStore on an existing client, which is closed together with the store
func NewRedisStore(parentLogger logger.Logger, client redis.UniversalClient, keyPrefix string, timeout time.Duration) *RedisStore {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &RedisStore{
		logger:    parentLogger.WithField(defs.LabelComponent, "RedisStore"),
		client:    client,
		keyPrefix: keyPrefix,
		timeout:   timeout,
	}
}

func (store *RedisStore) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), store.timeout)
	defer cancel()

	value, err := store.client.Get(ctx, store.keyPrefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get '%s': %w", key, err)
	}
	return value, true, nil
}

func (store *RedisStore) Set(key string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), store.timeout)
	defer cancel()

	if err := store.client.Set(ctx, store.keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set '%s': %w", key, err)
	}
	return nil
}

func (store *RedisStore) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), store.timeout)
	defer cancel()

	if err := store.client.Del(ctx, store.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete '%s': %w", key, err)
	}
	return nil
}

func (store *RedisStore) Close() error {
	if err := store.client.Close(); err != nil {
		store.logger.Warnf("error closing redis client: %s", err.Error())
		return err
	}
	return nil
}
