package main

import (
	"fmt"

	"github.com/cg-naveen/sukha-pms-new-sub000/internal/app"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/config"
	"github.com/cg-naveen/sukha-pms-new-sub000/internal/db"
	billingdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/billing"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations to postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, log, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			if cfg.Store != config.StorePostgres {
				return fmt.Errorf("migrate: STORE=%s builds its schema on startup", cfg.Store)
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			conn, err := db.NewPostgres(cfg.DB, log)
			if err != nil {
				return err
			}
			defer func() {
				if sqlDB, err := conn.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}()

			applied, err := db.Migrate(conn, dir, log)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending migrations.")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().String("dir", "", "migrations directory (default: MIGRATIONS_DIR or ./migrations)")
	return cmd
}

// generateBillingsCmd runs the same generator as POST /api/billings/generate,
// for hosts that schedule jobs with cron instead of an HTTP call.
func generateBillingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-billings",
		Short: "Create today's monthly invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(application *app.App) error {
				ctx := cmd.Context()
				generatorCfg, err := application.Settings.GeneratorConfig(ctx)
				if err != nil {
					return fmt.Errorf("load settings: %w", err)
				}

				result, err := application.Billings.Generate(ctx, billingdomain.GenerateInput{Config: generatorCfg})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if !generatorCfg.Enabled {
					fmt.Fprintln(out, "billing generation is disabled")
				}
				fmt.Fprintf(out, "%s: generated=%d skipped=%d errors=%d\n", result.Date, result.Generated, result.Skipped, len(result.Errors))
				for _, failure := range result.Errors {
					fmt.Fprintf(out, "  %s (%s): %s\n", failure.ResidentName, failure.ResidentID, failure.Message)
				}
				return nil
			})
		},
	}
}

func markOverdueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mark-overdue",
		Short: "Flag unpaid invoices past their due date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(application *app.App) error {
				updated, err := application.Billings.MarkOverdue(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "marked %d billing(s) overdue\n", updated)
				return nil
			})
		},
	}
}

func withApp(cmd *cobra.Command, fn func(*app.App) error) error {
	cfg, log, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	application, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error("app: close failed", "err", err)
		}
	}()
	return fn(application)
}
