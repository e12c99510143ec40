package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cg-naveen/sukha-pms-new-sub000/internal/config"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/db"
	billingdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/billing"
	occupancydomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/occupancy"
	residentsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/residents"
	settingsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/settings"
	visitorsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/visitors"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/notify/whatsapp"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/repository/inmemory"
	billingrepo "github.com/cg-naveen/sukha-pms-new-sub000/internal/repository/postgres/billing"
	occupancyrepo "github.com/cg-naveen/sukha-pms-new-sub000/internal/repository/postgres/occupancy"
	residentsrepo "github.com/cg-naveen/sukha-pms-new-sub000/internal/repository/postgres/residents"
	settingsrepo "github.com/cg-naveen/sukha-pms-new-sub000/internal/repository/postgres/settings"
	visitorsrepo "github.com/cg-naveen/sukha-pms-new-sub000/internal/repository/postgres/visitors"
	redisrepo "github.com/cg-naveen/sukha-pms-new-sub000/internal/repository/redis"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/transport/httpserver"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/transport/httpserver/handler"
	"github.com/cg-naveen/sukha-pms-new-sub000/pkg/logger"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type App struct {
	cfg         config.Config
	log         logger.Logger
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redis.Client

	Rooms     *occupancydomain.Service
	Residents *residentsdomain.Service
	Billings  *billingdomain.Service
	Visitors  *visitorsdomain.Service
	Settings  *settingsdomain.Service
}

type repositories struct {
	occupancy occupancydomain.Repository
	residents residentsdomain.Repository
	billing   billingdomain.Repository
	visitors  visitorsdomain.Repository
	settings  settingsdomain.Repository
}

func New(cfg config.Config, log logger.Logger) (*App, error) {
	log.Info("app: opening store", "store", cfg.Store)
	repos, dbConn, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}

	cache, redisClient, err := openSettingsCache(cfg, log)
	if err != nil {
		return nil, errors.Join(err, closeDB(dbConn))
	}

	loc := cfg.Location()
	now := time.Now

	log.Info("app: initializing services")
	settings := settingsdomain.NewService(settingsdomain.ServiceDeps{
		Repo:     repos.settings,
		Cache:    cache,
		CacheTTL: cfg.Settings.CacheTTL,
		Defaults: settingsdomain.Settings{
			PropertyName:             cfg.PropertyName,
			BillingGenerationEnabled: cfg.Billing.GenerationEnabled,
			DefaultBillingAccount:    cfg.Billing.DefaultBillingAccount,
		},
	})

	application := &App{
		cfg:         cfg,
		log:         log,
		db:          dbConn,
		redisClient: redisClient,
		Rooms:       occupancydomain.NewService(repos.occupancy),
		Residents:   residentsdomain.NewService(repos.residents, now, loc),
		Billings:    billingdomain.NewService(repos.billing, now, loc),
		Visitors:    visitorsdomain.NewService(repos.visitors, newNotifier(cfg, log), log, now, loc),
		Settings:    settings,
	}

	log.Info("app: initializing router")
	handlers := handler.New(application.Rooms, application.Residents, application.Billings, application.Visitors, application.Settings, log)
	router := httpserver.NewRouter(cfg, handlers, log)

	log.Info("app: initializing http server")
	application.httpServer = httpserver.New(cfg, router)

	return application, nil
}

func openStore(cfg config.Config, log logger.Logger) (repositories, *gorm.DB, error) {
	switch cfg.Store {
	case config.StoreMemory:
		store := inmemory.NewStore()
		return repositories{
			occupancy: store.Occupancy(),
			residents: store.Residents(),
			billing:   store.Billing(),
			visitors:  store.Visitors(),
			settings:  store.Settings(),
		}, nil, nil
	case config.StoreSQLite:
		dbConn, err := db.NewSQLite(cfg.DB.SQLitePath, log)
		if err != nil {
			return repositories{}, nil, err
		}
		return gormRepositories(dbConn), dbConn, nil
	case config.StorePostgres, "":
		dbConn, err := db.NewPostgres(cfg.DB, log)
		if err != nil {
			return repositories{}, nil, err
		}
		return gormRepositories(dbConn), dbConn, nil
	default:
		return repositories{}, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func gormRepositories(dbConn *gorm.DB) repositories {
	return repositories{
		occupancy: occupancyrepo.NewPostgres(dbConn),
		residents: residentsrepo.NewPostgres(dbConn),
		billing:   billingrepo.NewPostgres(dbConn),
		visitors:  visitorsrepo.NewPostgres(dbConn),
		settings:  settingsrepo.NewPostgres(dbConn),
	}
}

func openSettingsCache(cfg config.Config, log logger.Logger) (settingsdomain.Cache, *redis.Client, error) {
	if cfg.Settings.Cache != config.CacheRedis {
		return inmemory.NewSettingsCache(), nil, nil
	}

	log.Info("app: connecting to redis", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	client := redisrepo.NewClient(redisrepo.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisrepo.Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return redisrepo.NewSettingsCache(client, log), client, nil
}

func newNotifier(cfg config.Config, log logger.Logger) visitorsdomain.Notifier {
	if !cfg.WhatsApp.Enabled() {
		log.Warn("app: whatsapp gateway not configured, visitor messages will only be logged")
		return whatsapp.NewLogNotifier(log)
	}
	client := whatsapp.NewClient(whatsapp.Config{
		BaseURL:    cfg.WhatsApp.BaseURL,
		Token:      cfg.WhatsApp.Token,
		Timeout:    cfg.WhatsApp.Timeout,
		RetryCount: cfg.WhatsApp.RetryCount,
	})
	return whatsapp.NewVisitorNotifier(client, cfg.PropertyName, log)
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

// DB is nil for the in-memory store.
func (a *App) DB() *gorm.DB {
	return a.db
}

// Close waits for queued visitor notifications, then closes the database and
// redis connections.
func (a *App) Close() error {
	if a.Visitors != nil {
		a.Visitors.Wait()
	}
	var errs []error
	if a.redisClient != nil {
		errs = append(errs, a.redisClient.Close())
	}
	errs = append(errs, closeDB(a.db))
	return errors.Join(errs...)
}

func closeDB(dbConn *gorm.DB) error {
	if dbConn == nil {
		return nil
	}
	sqlDB, err := dbConn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
