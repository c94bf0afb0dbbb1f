package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"cookstove_tracker/internal/logger"
	"cookstove_tracker/internal/simulator"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Submit synthetic telemetry for a set of stoves",
	Long: `Generate daily usage readings for each --device and post them to a
running API. A device given as ID:API_KEY uses the authenticated ingest route,
a bare ID uses the open route.`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().String("url", "http://localhost:8080", "base URL of the API")
	simulateCmd.Flags().StringSlice("device", nil, "stove to simulate as ID or ID:API_KEY (repeatable)")
	simulateCmd.Flags().Duration("interval", 5*time.Second, "time between rounds")
	simulateCmd.Flags().Int("rounds", 0, "number of rounds (0 runs until interrupted)")
	simulateCmd.Flags().Uint64("seed", 0, "random seed (0 uses the current time)")
	simulateCmd.Flags().Duration("timeout", 5*time.Second, "per-request timeout")
	_ = simulateCmd.MarkFlagRequired("device")

	_ = viper.BindPFlag("simulate.url", simulateCmd.Flags().Lookup("url"))
	_ = viper.BindPFlag("simulate.interval", simulateCmd.Flags().Lookup("interval"))
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	// No signing key or database is needed here, so config.Load is skipped.
	log := logger.New(viper.GetString("log.level"), viper.GetString("log.format"))
	defer func() { _ = log.Sync() }()

	specs, _ := cmd.Flags().GetStringSlice("device")
	devices, err := simulator.ParseDevices(specs)
	if err != nil {
		return err
	}
	rounds, _ := cmd.Flags().GetInt("rounds")
	seed, _ := cmd.Flags().GetUint64("seed")
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")

	baseURL := viper.GetString("simulate.url")
	interval := viper.GetDuration("simulate.interval")

	sim := simulator.New(devices,
		simulator.NewHTTPSubmitter(baseURL, timeout),
		simulator.NewGenerator(seed),
		log,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infow("simulator starting", "url", baseURL, "devices", len(devices), "interval", interval, "rounds", rounds)
	sent := sim.Tick(ctx, time.Now())
	log.Infow("simulate_round", "sent", sent, "devices", len(devices))
	if rounds == 1 {
		return nil
	}
	if rounds > 1 {
		rounds--
	}
	sim.Run(ctx, interval, rounds)
	log.Infow("simulator stopped")
	return nil
}
