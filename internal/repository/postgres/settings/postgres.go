package settings

import (
	"context"
	"errors"

	settingsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/settings"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context) (*settingsdomain.Settings, error) {
	var settings settingsdomain.Settings
	if err := r.db.WithContext(ctx).Order("id asc").First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, settingsdomain.ErrSettingsNotFound
		}
		return nil, err
	}
	return &settings, nil
}

func (r *PostgresRepository) Save(ctx context.Context, settings *settingsdomain.Settings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(settings).Error
}
