package inmemory

import (
	"context"
	"sync"
	"time"

	settingsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/settings"
)

type SettingsRepository struct {
	session
}

func (r *SettingsRepository) Get(_ context.Context) (*settingsdomain.Settings, error) {
	var settings settingsdomain.Settings
	err := r.read(func(t *tables) error {
		if t.settings == nil {
			return settingsdomain.ErrSettingsNotFound
		}
		settings = *t.settings
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *SettingsRepository) Save(_ context.Context, settings *settingsdomain.Settings) error {
	return r.read(func(t *tables) error {
		settings.UpdatedAt = r.stamp()
		stored := *settings
		t.settings = &stored
		return nil
	})
}

// SettingsCache holds the settings row for a short TTL so the generator and
// the settings endpoint do not hit the database on every call.
type SettingsCache struct {
	mu   sync.RWMutex
	item *settingsItem
	now  func() time.Time
}

type settingsItem struct {
	value     settingsdomain.Settings
	expiresAt time.Time
}

func NewSettingsCache() *SettingsCache {
	return &SettingsCache{now: time.Now}
}

func (c *SettingsCache) Get() (*settingsdomain.Settings, bool) {
	now := c.now()

	c.mu.RLock()
	item := c.item
	c.mu.RUnlock()
	if item == nil {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		if c.item == item {
			c.item = nil
		}
		c.mu.Unlock()
		return nil, false
	}

	value := item.value
	return &value, true
}

func (c *SettingsCache) Set(settings *settingsdomain.Settings, ttl time.Duration) {
	if settings == nil || ttl <= 0 {
		c.Clear()
		return
	}

	c.mu.Lock()
	c.item = &settingsItem{
		value:     *settings,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *SettingsCache) Clear() {
	c.mu.Lock()
	c.item = nil
	c.mu.Unlock()
}
