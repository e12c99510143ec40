package main

import (
	"fmt"
	"os"

	"github.com/cg-naveen/sukha-pms-new-sub000/internal/config"
	"github.com/cg-naveen/sukha-pms-new-sub000/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sukha-pms",
		Short:         "Property management API and scheduled jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().Bool("quiet", false, "discard log output")

	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		generateBillingsCmd(),
		markOverdueCmd(),
	)
	return rootCmd
}

// bootstrap loads configuration and the logger shared by every command.
func bootstrap(cmd *cobra.Command) (config.Config, logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		return cfg, logger.Nop(), nil
	}
	return cfg, logger.NewFromEnv(), nil
}
