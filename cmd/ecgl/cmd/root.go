package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/ecglearn/internal/config"
	"github.com/OpenTraceLab/ecglearn/pkg/backend"
	"github.com/OpenTraceLab/ecglearn/pkg/shop"
)

var (
	// Global flags
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "ecgl",
	Short: "ECG Learn - ECG strip viewer, lessons and points shop",
	Long: `ECG Learn (ecgl) bundles the tools of the ECG e-learning app:
  - an image viewer with pinch/wheel zoom, pan, rotation and fullscreen
  - gesture scripts that replay viewer input headless
  - lesson decks with slides, quizzes and flashcards
  - a shop where quiz points buy lesson packs

Examples:
  ecgl view strip.png --watch            # View an ECG strip, reload on change
  ecgl replay pinch.gest --trace         # Replay a gesture script
  ecgl lesson run decks/ecg-101.lesson   # Take a lesson
  ecgl shop buy rhythm-atlas             # Spend points`,
	Version:       "0.3.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is the platform config dir)")
}

// loadConfig reads the config selected by --config
func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the named logger for a command. --verbose forces debug.
func newLogger(cmd *cobra.Command, cfg *config.AppConfig, name string) hclog.Logger {
	level := hclog.LevelFromString(cfg.LogLevel)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	if verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  level,
		Output: cmd.ErrOrStderr(),
	})
}

// stack is the set of local services the shop and lesson commands share
type stack struct {
	cfg     *config.AppConfig
	logger  hclog.Logger
	ledger  *backend.Ledger
	billing *backend.MemoryBilling
	blobs   *backend.DirBlobs
	shop    *shop.Shop
}

func openStack(ctx context.Context, cmd *cobra.Command, name string) (*stack, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd, cfg, name)

	balances, err := backend.NewFileBalances(cfg.BalancesPath())
	if err != nil {
		return nil, err
	}
	blobs, err := backend.NewDirBlobs(cfg.BlobDir())
	if err != nil {
		return nil, err
	}

	catalog := shop.DefaultCatalog()
	if cfg.Catalog != "" {
		if catalog, err = shop.LoadCatalog(cfg.Catalog); err != nil {
			return nil, err
		}
	}
	billing := backend.NewMemoryBilling(catalog.Packages())
	if err := billing.Initialize(ctx); err != nil {
		return nil, err
	}
	ledger := backend.NewLedger(balances, logger.Named("ledger"))

	logger.Debug("services ready", "balances", balances.Path(), "blobs", cfg.BlobDir())
	return &stack{
		cfg:     cfg,
		logger:  logger,
		ledger:  ledger,
		billing: billing,
		blobs:   blobs,
		shop:    shop.New(catalog, ledger, billing, logger.Named("shop")),
	}, nil
}
