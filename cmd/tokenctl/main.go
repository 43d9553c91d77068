package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vicuna-trace/ledger/internal/config"
	"github.com/vicuna-trace/ledger/internal/logger"
	"github.com/vicuna-trace/ledger/internal/store"
)

var (
	configFile string
	envPath    string
	timeout    time.Duration

	cfg       *config.TokenctlConfig
	dataStore store.Store
)

// rootCmd is the operator CLI for inspecting provenance and settling mints
var rootCmd = &cobra.Command{
	Use:   "tokenctl",
	Short: "Inspect product provenance and settle NFT mints",
	Long: `tokenctl is the operator tool of the vicuña ledger.

It resolves the certification chain of a product, re-checks mint transactions that
were left unsettled, runs a reconciliation pass on demand, and lists the mint attempt journal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadTokenctlConfig(configFile, envPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := logger.Initialize(logger.Config{Debug: cfg.Debug, SentryDSN: cfg.SentryDSN}); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		dataStore = store.NewPGStore(db)

		logger.Debug("Connected to database", zap.String("host", cfg.Database.Host))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Flush(time.Second)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", "config/", "Path to environment files")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	rootCmd.AddCommand(provenanceCmd)
	rootCmd.AddCommand(recheckCmd)
	rootCmd.AddCommand(attemptsCmd)
	rootCmd.AddCommand(reconcileCmd)
}

// commandContext bounds a command by the --timeout flag
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func main() {
	config.ChdirRepoRoot()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
