package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/insightdesk/internal/company/auth"
	"github.com/gartstein/insightdesk/internal/company/config"
	"github.com/gartstein/insightdesk/internal/company/controller"
	gorm "github.com/gartstein/insightdesk/internal/company/db"
	"github.com/gartstein/insightdesk/internal/company/enrichment"
	"github.com/gartstein/insightdesk/internal/company/events"
	"github.com/gartstein/insightdesk/internal/company/handlers"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "company",
		Short:        "Company intelligence service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the YAML config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the gRPC API and its HTTP gateway",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withRuntime(configPath, runServe)
			},
		},
		&cobra.Command{
			Use:   "worker",
			Short: "Enrich newly created companies from the event stream",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withRuntime(configPath, runWorker)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withRuntime(configPath, func(_ *config.Config, repo *gorm.Repository, logger *zap.Logger) error {
					logger.Info("Database schema is up to date")
					return nil
				})
			},
		},
	)
	return root
}

type runFunc func(cfg *config.Config, repo *gorm.Repository, logger *zap.Logger) error

// withRuntime loads the config, opens the database and hands both to run.
func withRuntime(configPath string, run runFunc) error {
	logger := initLogger()
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("Failed to load config", zap.Error(err))
		return err
	}

	repo, err := connectDatabase(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize database", zap.Error(err))
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("Failed to close database", zap.Error(err))
		}
	}()

	return run(cfg, repo, logger)
}

func runServe(cfg *config.Config, repo *gorm.Repository, logger *zap.Logger) error {
	producer, err := events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic)
	if err != nil {
		return fmt.Errorf("initialize Kafka producer: %w", err)
	}
	defer producer.Close()

	opts := []controller.Option{controller.WithPolicy(cfg.Policy())}
	if cfg.OpenAIAPIKey != "" {
		opts = append(opts, controller.WithEnricher(newEnricher(cfg, logger)))
	} else {
		logger.Warn("OPENAI_API_KEY not set, enrichment disabled")
	}
	companySvc := controller.NewCompanyService(repo, producer, logger, opts...)

	companyHandler := handlers.NewCompanyHandler(companySvc, logger)
	authInterceptor := auth.NewAuthInterceptor(cfg.JWTSecret)

	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger, grpc.UnaryInterceptor(authInterceptor.Unary()))
	server.RegisterGRPCHandler(companyHandler)

	if err := server.RegisterHTTPGateway(
		context.Background(),
		[]grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		},
		cfg.JWTSecret); err != nil {
		return fmt.Errorf("register HTTP gateway: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	return waitForShutdown(server, errCh, logger)
}

func runWorker(cfg *config.Config, repo *gorm.Repository, logger *zap.Logger) error {
	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("worker requires OPENAI_API_KEY")
	}

	producer, err := events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic)
	if err != nil {
		return fmt.Errorf("initialize Kafka producer: %w", err)
	}
	defer producer.Close()

	companySvc := controller.NewCompanyService(repo, producer, logger,
		controller.WithPolicy(cfg.Policy()),
		controller.WithEnricher(newEnricher(cfg, logger)),
	)

	worker := enrichment.NewWorker(func(ctx context.Context, name string) error {
		_, _, err := companySvc.EnrichCompany(ctx, name, true)
		return err
	}, cfg.Policy(), logger)

	consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, cfg.Topic, logger)
	defer consumer.Close()
	consumer.RegisterHandler(worker.HandleEvent)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Enrichment worker started", zap.String("topic", cfg.Topic), zap.String("group", cfg.ConsumerGroup))
	consumer.Run(ctx)
	logger.Info("Enrichment worker stopped")
	return nil
}

func newEnricher(cfg *config.Config, logger *zap.Logger) *enrichment.Enricher {
	return enrichment.NewEnricher(enrichment.NewOpenAICompleter(cfg.OpenAI()), cfg.Enrichment(), logger)
}

// initLogger initializes a Zap production logger.
func initLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// connectDatabase retries while the database container is still starting.
func connectDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.Repository, error) {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second

	var repo *gorm.Repository
	err := backoff.RetryNotify(func() error {
		var err error
		repo, err = gorm.NewRepository(cfg.Database())
		return err
	}, b, func(err error, next time.Duration) {
		logger.Warn("Database not ready", zap.Error(err), zap.Duration("retry_in", next))
	})
	return repo, err
}

// waitForShutdown blocks until an interrupt, SIGTERM or server failure, then shuts down servers.
func waitForShutdown(server *handlers.Server, errCh <-chan error, logger *zap.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		server.Stop()
		logger.Info("Servers stopped properly")
		return <-errCh
	case err := <-errCh:
		server.Stop()
		return err
	}
}
