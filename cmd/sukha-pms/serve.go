package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cg-naveen/sukha-pms-new-sub000/internal/app"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/config"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/db"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")

			cfg, log, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			log.Info("app: starting", "store", cfg.Store, "env", cfg.Env)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.New(cfg, log)
			if err != nil {
				log.Critical("app: init failed", "err", err)
				return err
			}

			if migrate && cfg.Store == config.StorePostgres {
				if _, err := db.Migrate(application.DB(), cfg.MigrationsDir, log); err != nil {
					log.Critical("db: migrate failed", "err", err)
					_ = application.Close()
					return err
				}
			}

			srv := application.HTTPServer()
			log.Info("http: listening", "addr", srv.Addr)

			serverErrCh := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErrCh <- err
				}
				close(serverErrCh)
			}()

			var runErr error
			select {
			case <-ctx.Done():
				log.Info("app: shutdown signal received")
			case err := <-serverErrCh:
				if err != nil {
					log.Critical("http: server failed", "addr", srv.Addr, "err", err)
					runErr = err
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http: graceful shutdown failed", "err", err)
				runErr = errors.Join(runErr, err)
			}

			if err := application.Close(); err != nil {
				log.Error("app: close failed", "err", err)
				runErr = errors.Join(runErr, err)
			}

			if runErr == nil {
				log.Info("app: stopped")
			}
			return runErr
		},
	}

	cmd.Flags().Bool("migrate", false, "apply pending SQL migrations before serving (postgres only)")
	return cmd
}
