package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Abinayanafaiq/BotDating/internal/app/botapp"
	"github.com/Abinayanafaiq/BotDating/internal/config"
	"github.com/Abinayanafaiq/BotDating/internal/infra/logger"
	"github.com/Abinayanafaiq/BotDating/internal/infra/pakasir"
	"github.com/Abinayanafaiq/BotDating/internal/pkg/keylock"
	"github.com/Abinayanafaiq/BotDating/internal/repo/cache"
	entsvc "github.com/Abinayanafaiq/BotDating/internal/services/entitlements"
)

var (
	configPath string
	jsonOutput bool

	cfg          config.Config
	log          *zap.Logger
	store        *cache.ProfileCache
	closeStore   func()
	entitlements *entsvc.Service
)

func defaultConfigPath() string {
	if p := os.Getenv("APP_CONFIG"); p != "" {
		return p
	}
	return "configs/config.yaml"
}

var rootCmd = &cobra.Command{
	Use:           "matchctl",
	Short:         "Operator tool for the dating bot's profiles and payments",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log, err = logger.New(cfg.Log.Level, cfg.Log.Encoding)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeStore != nil {
			closeStore()
		}
		if log != nil {
			_ = log.Sync()
		}
	},
}

// openEntitlements wires the profile store and, when configured, the gateway.
func openEntitlements(ctx context.Context) error {
	var err error
	store, closeStore, err = botapp.OpenProfileStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	deps := entsvc.Dependencies{Store: store, Locks: keylock.New(), Logger: log}
	if gateway, err := pakasir.NewClient(cfg.Payment.BaseURL, cfg.Payment.Slug, cfg.Payment.APIKey, cfg.Payment.Timeout); err == nil {
		deps.Gateway = gateway
	} else {
		log.Debug("payment gateway not configured", zap.Error(err))
	}
	entitlements = entsvc.NewService(deps, entsvc.Config{
		Price:        cfg.Payment.ProPrice,
		DurationDays: cfg.Payment.ProDurationDays,
		CallbackURL:  cfg.Payment.CallbackURL,
	})
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to the YAML config")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(grantCmd)
	rootCmd.AddCommand(verifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
