// Package redis shares cached rows between API instances.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	settingsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/settings"
	"github.com/cg-naveen/sukha-pms-new-sub000/pkg/logger"
	"github.com/go-redis/redis/v8"
)

const (
	defaultSettingsKey = "sukha-pms:settings"
	opTimeout          = 500 * time.Millisecond
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

func NewClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// SettingsCache stores the settings row as JSON under one key so a save on any
// instance is seen by all of them. Redis errors degrade to a cache miss.
type SettingsCache struct {
	client *redis.Client
	key    string
	log    logger.Logger
}

func NewSettingsCache(client *redis.Client, log logger.Logger) *SettingsCache {
	if log == nil {
		log = logger.Nop()
	}
	return &SettingsCache{client: client, key: defaultSettingsKey, log: log}
}

func (c *SettingsCache) Get() (*settingsdomain.Settings, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("settings cache: get failed", "err", err)
		}
		return nil, false
	}

	var settings settingsdomain.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		c.log.Warn("settings cache: corrupt entry", "err", err)
		c.Clear()
		return nil, false
	}
	return &settings, true
}

func (c *SettingsCache) Set(settings *settingsdomain.Settings, ttl time.Duration) {
	if settings == nil || ttl <= 0 {
		c.Clear()
		return
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		c.log.Warn("settings cache: encode failed", "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := c.client.Set(ctx, c.key, raw, ttl).Err(); err != nil {
		c.log.Warn("settings cache: set failed", "err", err)
	}
}

func (c *SettingsCache) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		c.log.Warn("settings cache: clear failed", "err", err)
	}
}
