package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"cookstove_tracker/internal/config"
	"cookstove_tracker/internal/logger"
	"cookstove_tracker/internal/repository/db"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "cookstove",
		Short: "Cookstove telemetry service",
		Long: `Backend for tracking household cookstove usage:
- serve: HTTP API for pairing, telemetry ingestion and usage reports
- user: account administration (bootstrap the first admin)
- simulate: drive fake stoves against a running API`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yml or ./config.yml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("db-path", "app.db", "SQLite database file")

	for key, flag := range map[string]string{
		"log.level":  "log-level",
		"log.format": "log-format",
		"db.path":    "db-path",
	} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			log.Fatalf("failed to bind %s flag: %v", flag, err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if err := config.Init(viper.GetViper(), cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig validates the merged settings and initializes the logger from them.
func loadConfig() (config.Config, *logger.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger.Init(cfg.Log.Level, cfg.Log.Format), nil
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg config.Config, log *logger.Logger) (*sql.DB, error) {
	log.Infow("opening database", "path", cfg.DBPath)
	return db.InitDB(cfg.DBPath)
}
