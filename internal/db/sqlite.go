package db

import (
	"fmt"

	billingdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/billing"
	occupancydomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/occupancy"
	residentsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/residents"
	settingsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/settings"
	visitorsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/visitors"
	"github.com/cg-naveen/sukha-pms-new-sub000/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Models lists every persisted type, in foreign key order.
func Models() []interface{} {
	return []interface{}{
		&occupancydomain.Room{},
		&residentsdomain.Resident{},
		&residentsdomain.NextOfKin{},
		&occupancydomain.Occupancy{},
		&billingdomain.Billing{},
		&visitorsdomain.Visitor{},
		&settingsdomain.Settings{},
	}
}

// NewSQLite opens a single-connection SQLite database and creates the schema
// from the models. The SQL migrations are postgres-only, so SQLite is for
// local runs and tests. A nil log discards gorm output.
func NewSQLite(path string, log logger.Logger) (*gorm.DB, error) {
	if path == "" {
		path = ":memory:"
	}

	gormDB, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: newGormLog(log)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	// Each :memory: connection is its own database.
	sqlDB.SetMaxOpenConns(1)

	if err := gormDB.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return gormDB, nil
}
