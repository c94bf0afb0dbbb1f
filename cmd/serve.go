package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "cookstove_tracker/docs"
	"cookstove_tracker/internal/config"
	"cookstove_tracker/internal/events"
	"cookstove_tracker/internal/handlers"
	"cookstove_tracker/internal/logger"
	"cookstove_tracker/internal/metrics"
	"cookstove_tracker/internal/repository"
	"cookstove_tracker/internal/server"
	"cookstove_tracker/internal/service"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API that:
- registers and pairs stoves
- accepts telemetry from paired (API key) and unpaired (open, rate-limited) stoves
- serves per-user usage views and admin reports
- publishes activity events to AMQP when amqp.url is set
- exposes Prometheus metrics at /metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("port", "8080", "HTTP listen port")
	serveCmd.Flags().String("amqp-url", "", "AMQP broker URL for activity events (empty disables publishing)")

	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("amqp.url", serveCmd.Flags().Lookup("amqp-url"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := openDB(cfg, log)
	if err != nil {
		log.Errorw("failed to init sqlite", "err", err)
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	publisher := newPublisher(cfg.AMQP, log)
	defer func() { _ = publisher.Close() }()

	limiter := handlers.NewRateLimiter(cfg.Ingest.OpenRate, cfg.Ingest.OpenBurst)
	defer limiter.Stop()

	repos := repository.NewRepository(db)
	services := service.NewService(repos, service.Deps{
		Auth: service.AuthConfig{
			SigningKey: cfg.Auth.SigningKey,
			TokenTTL:   cfg.Auth.TokenTTL,
			BcryptCost: cfg.Auth.BcryptCost,
		},
		Location:  cfg.Stats.Location,
		Publisher: publisher,
		Log:       log,
	})
	apiHandler := handlers.NewHandler(services, log,
		handlers.WithMetrics(metrics.New()),
		handlers.WithOpenIngestLimiter(limiter),
	)

	srv := server.New(server.Timeouts{
		ReadHeader: cfg.Server.ReadHeaderTimeout,
		Write:      cfg.Server.WriteTimeout,
		Idle:       cfg.Server.IdleTimeout,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server starting", "port", cfg.Port, "timezone", cfg.Stats.Location.String(), "amqp", cfg.AMQP.URL != "")
		errCh <- srv.Run(cfg.Port, apiHandler.InitRoutes())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Errorw("error starting server", "err", err)
		}
		return err
	case <-ctx.Done():
	}

	log.Infow("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
		return err
	}
	return <-errCh
}

func newPublisher(cfg config.AMQPConfig, log *logger.Logger) events.Publisher {
	if cfg.URL == "" {
		log.Infow("amqp.url not set; activity events stay local")
		return events.NopPublisher{}
	}
	return events.NewAMQPPublisher(events.AMQPConfig{
		URL:         cfg.URL,
		Exchange:    cfg.Exchange,
		DialTimeout: cfg.DialTimeout,
	}, log)
}
