// Package main provides the entry point for the matchcast prediction service.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/matchcast/internal/api"
	"github.com/yourusername/matchcast/internal/config"
	"github.com/yourusername/matchcast/internal/database"
	"github.com/yourusername/matchcast/internal/datasource"
	"github.com/yourusername/matchcast/internal/features"
	"github.com/yourusername/matchcast/internal/generator"
	"github.com/yourusername/matchcast/internal/health"
	"github.com/yourusername/matchcast/internal/history"
	"github.com/yourusername/matchcast/internal/logger"
	"github.com/yourusername/matchcast/internal/metrics"
	"github.com/yourusername/matchcast/internal/predictor"
	"github.com/yourusername/matchcast/internal/repository"
	"github.com/yourusername/matchcast/internal/scheduler"
	"github.com/yourusername/matchcast/internal/service"
)

// Build information - set via ldflags
var (
	Version = "dev"
)

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "matchcast",
	Short: "Contest outcome prediction service",
	Long:  `Serves three-way outcome predictions for football and basketball contests, combining rolling form features with tiered text generation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	cfg, err := loadConfigWithSecrets(configFile)
	if err != nil {
		return err
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Info("Starting matchcast")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to create repositories: %w", err)
	}

	metrics.InitRegistry()

	source := datasource.NewSportsAPIClient(&cfg.SportsData, appLog)
	ingestion := service.NewIngestionService(source, repos.Match, appLog)

	engine := features.NewEngine(
		repos.Match,
		repos.Feature,
		time.Duration(cfg.Prediction.FeatureCacheTTLSeconds)*time.Second,
		appLog,
	)

	historyBuilder := history.NewBuilder(repos.Match, ingestion, history.Config{
		RecentCap:         cfg.Prediction.RecentMatchesCap,
		HeadToHeadCap:     cfg.Prediction.HeadToHeadCap,
		BackfillThreshold: cfg.Prediction.BackfillThreshold,
	}, appLog)

	var remote, local generator.Generator
	engines := make([]string, 0, 3)
	if cfg.RemoteConfigured() {
		remote = generator.NewRemoteClient(&cfg.RemoteGenerator, cfg.RemoteTimeout(), appLog)
		engines = append(engines, "remote")
	}
	if cfg.LocalConfigured() {
		local = generator.NewLocalClient(&cfg.LocalGenerator, cfg.LocalTimeout(), appLog)
		engines = append(engines, "local")
	}
	engines = append(engines, "rule-based")
	appLog.WithField("engines", engines).Info("Prediction tiers configured")

	orchestrator := predictor.NewOrchestrator(
		repos.Match,
		ingestion,
		engine,
		historyBuilder,
		predictor.NewRuleBasedPredictor(nil),
		remote, cfg.RemoteTimeout(),
		local, cfg.LocalTimeout(),
		appLog,
	)

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Engines:     engines,
		Logger:      appLog,
		DB:          db,
	})
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	if cfg.Metrics.Enabled {
		startMetricsServer(ctx, cfg, appLog)
	}

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(repos.Match, engine, appLog)
		if err := sched.ScheduleFeatureRefresh(cfg.Scheduler.FeatureRefreshCron); err != nil {
			return fmt.Errorf("failed to schedule feature refresh: %w", err)
		}
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer sched.Stop()
	}

	apiServer := api.NewServer(cfg.Server, orchestrator, appLog)
	healthServer.SetReady(true)

	if err := apiServer.Start(ctx); err != nil {
		return err
	}

	appLog.Info("Shutdown complete")
	return nil
}

func loadConfigWithSecrets(path string) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func startMetricsServer(ctx context.Context, cfg *config.Config, appLog *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: mux,
	}

	mLog := logger.WithComponent(appLog, "metrics")
	go func() {
		mLog.WithField("addr", server.Addr).Info("Metrics server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			mLog.WithError(err).Error("Metrics server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()
}
