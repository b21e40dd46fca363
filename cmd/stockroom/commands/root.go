package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/mytheresa/stockroom/cmd/stockroom/output"
	"github.com/mytheresa/stockroom/config"
	"github.com/mytheresa/stockroom/database"
	"github.com/mytheresa/stockroom/inventory"
	"github.com/mytheresa/stockroom/logger"
	"github.com/mytheresa/stockroom/models"
)

// rootOptions holds the global flags shared by every command.
type rootOptions struct {
	envFile    string
	jsonOutput bool
	verbose    bool
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "stockroom",
		Short: "Stockroom - inventory of products, categories and deliveries",
		Long: `Stockroom keeps a catalog of categorised products, registers deliveries,
issues stock and reports on the value of what is on the shelves.

Data lives in an embedded sqlite file by default or in Postgres
(STOCKROOM_DB_DRIVER=postgres). Settings are read from the environment
and an optional .env file. Outside production (STOCKROOM_ENV) every
command migrates the schema before it runs; in production run
"stockroom migrate" first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path to an optional env file")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log service activity to stderr")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newDashboardCmd(opts),
		newReportCmd(opts),
		newExportCmd(opts),
		newSearchCmd(opts),
		newDeliverCmd(opts),
		newIssueCmd(opts),
		newCategoryCmd(opts),
		newProductCmd(opts),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		output.Error("%s", userMessage(err))
		os.Exit(1)
	}
}

// deps is the wiring shared by the commands that touch the database.
type deps struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *gorm.DB
	store *models.Store
	svc   *inventory.Service
}

// open loads config and connects. Outside production the schema is migrated
// first, so every command works against a fresh sqlite file. Unless verbose,
// one-shot commands keep service logs quiet so stdout carries only their output.
func (o *rootOptions) open(ctx context.Context, alwaysLog bool) (*deps, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, err
	}

	log := logger.Nop()
	if alwaysLog || o.verbose {
		if log, err = logger.New(cfg.Env); err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, err
	}
	store := models.NewStore(db)
	d := &deps{
		cfg:   cfg,
		log:   log,
		db:    db,
		store: store,
		svc:   inventory.NewService(store, log, cfg.LowStockThreshold),
	}

	if cfg.IsProduction() {
		log.Info("Running in production mode - skipping auto-migration")
		return d, nil
	}
	log.Info("Running in development mode - performing auto-migration")
	if err := store.AutoMigrate(ctx); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *deps) Close() {
	if sqlDB, err := d.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	d.log.Sync()
}

// userMessage strips wrapping from domain errors so the CLI prints the
// kind, and keeps anything else verbatim.
func userMessage(err error) string {
	for _, known := range []error{
		models.ErrProductNotFound,
		models.ErrCategoryNotFound,
		models.ErrInvalidQuantity,
		models.ErrInvalidPrice,
		models.ErrInvalidName,
		models.ErrInvalidCategory,
		models.ErrDuplicateName,
		models.ErrCategoryNotEmpty,
		models.ErrInsufficientStock,
		models.ErrConflict,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return err.Error()
}
