package settings_test

import (
	"context"
	"testing"

	"github.com/cg-naveen/sukha-pms-new-sub000/internal/db"
	settingsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/settings"
	settingsrepo "github.com/cg-naveen/sukha-pms-new-sub000/internal/repository/postgres/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveUpsertsSingleRow(t *testing.T) {
	gormDB, err := db.NewSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	repo := settingsrepo.NewPostgres(gormDB)
	ctx := context.Background()

	_, err = repo.Get(ctx)
	assert.ErrorIs(t, err, settingsdomain.ErrSettingsNotFound)

	require.NoError(t, repo.Save(ctx, &settingsdomain.Settings{ID: 1, PropertyName: "Sukha", BillingGenerationEnabled: true, DefaultBillingAccount: "operating"}))
	require.NoError(t, repo.Save(ctx, &settingsdomain.Settings{ID: 1, PropertyName: "Sukha East", BillingGenerationEnabled: false, DefaultBillingAccount: "trust"}))

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sukha East", stored.PropertyName)
	assert.False(t, stored.BillingGenerationEnabled)
	assert.Equal(t, "trust", stored.DefaultBillingAccount)

	var rows int64
	require.NoError(t, gormDB.Model(&settingsdomain.Settings{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	service := settingsdomain.NewService(settingsdomain.ServiceDeps{Repo: repo})
	enabled := true
	updated, err := service.Update(ctx, settingsdomain.UpdateInput{BillingGenerationEnabled: &enabled})
	require.NoError(t, err)
	assert.True(t, updated.BillingGenerationEnabled)
	assert.Equal(t, "Sukha East", updated.PropertyName)
}
