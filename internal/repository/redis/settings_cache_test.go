package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	settingsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, *SettingsCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewClient(Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewSettingsCache(client, nil)
}

func TestSettingsCacheRoundTripAndExpiry(t *testing.T) {
	mr, cache := newTestCache(t)

	_, ok := cache.Get()
	assert.False(t, ok)

	cache.Set(&settingsdomain.Settings{ID: 1, PropertyName: "Sukha", DefaultBillingAccount: "main"}, time.Minute)
	got, ok := cache.Get()
	require.True(t, ok)
	assert.Equal(t, "Sukha", got.PropertyName)
	assert.False(t, got.BillingGenerationEnabled)

	mr.FastForward(2 * time.Minute)
	_, ok = cache.Get()
	assert.False(t, ok)
}

func TestSettingsCacheClearAndZeroTTL(t *testing.T) {
	mr, cache := newTestCache(t)

	cache.Set(&settingsdomain.Settings{ID: 1}, time.Minute)
	cache.Clear()
	assert.False(t, mr.Exists(defaultSettingsKey))

	cache.Set(&settingsdomain.Settings{ID: 1}, time.Minute)
	cache.Set(&settingsdomain.Settings{ID: 1}, 0)
	assert.False(t, mr.Exists(defaultSettingsKey))
}

func TestSettingsCacheDropsCorruptEntry(t *testing.T) {
	mr, cache := newTestCache(t)

	require.NoError(t, mr.Set(defaultSettingsKey, "{not json"))
	_, ok := cache.Get()
	assert.False(t, ok)
	assert.False(t, mr.Exists(defaultSettingsKey))
}

func TestSettingsCacheMissWhenRedisIsDown(t *testing.T) {
	mr, cache := newTestCache(t)
	mr.Close()

	cache.Set(&settingsdomain.Settings{ID: 1}, time.Minute)
	_, ok := cache.Get()
	assert.False(t, ok)
}
