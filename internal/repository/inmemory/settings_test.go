package inmemory

import (
	"testing"
	"time"

	occupancydomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/occupancy"
	settingsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsCacheExpires(t *testing.T) {
	now := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	cache := NewSettingsCache()
	cache.now = func() time.Time { return now }

	cache.Set(&settingsdomain.Settings{ID: 1, PropertyName: "Sukha"}, 30*time.Second)

	got, ok := cache.Get()
	require.True(t, ok)
	assert.Equal(t, "Sukha", got.PropertyName)

	got.PropertyName = "mutated"
	again, ok := cache.Get()
	require.True(t, ok)
	assert.Equal(t, "Sukha", again.PropertyName)

	now = now.Add(30 * time.Second)
	_, ok = cache.Get()
	assert.False(t, ok)
}

func TestSettingsCacheZeroTTLClears(t *testing.T) {
	cache := NewSettingsCache()
	cache.Set(&settingsdomain.Settings{ID: 1}, time.Minute)
	cache.Set(&settingsdomain.Settings{ID: 1}, 0)

	_, ok := cache.Get()
	assert.False(t, ok)
}

func TestTransactionRestoresSnapshotOnError(t *testing.T) {
	store := NewStore()
	repo := store.Occupancy()

	err := repo.transaction(func(tx session) error {
		return tx.read(func(tb *tables) error {
			tb.rooms["r1"] = occupancydomain.Room{ID: "r1", UnitNumber: "R1"}
			return assert.AnError
		})
	})
	require.ErrorIs(t, err, assert.AnError)

	_, found := store.state.rooms["r1"]
	assert.False(t, found)
}
