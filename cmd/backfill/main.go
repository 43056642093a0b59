// Package main provides a one-shot CLI for pulling contest history from the
// sports-data provider into the local store.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/matchcast/internal/config"
	"github.com/yourusername/matchcast/internal/database"
	"github.com/yourusername/matchcast/internal/datasource"
	"github.com/yourusername/matchcast/internal/logger"
	"github.com/yourusername/matchcast/internal/models"
	"github.com/yourusername/matchcast/internal/repository"
	"github.com/yourusername/matchcast/internal/service"
)

var (
	configFile string
	sportName  string
	teamID     int64
	opponentID int64
	contestID  int64
	limit      int

	appLog    *logrus.Logger
	ingestion *service.IngestionService
	db        *database.DB
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&sportName, "sport", "football", "Sport: football or basketball")
	rootCmd.PersistentFlags().IntVar(&limit, "limit", 0, "Maximum contests to pull (0 uses sports_data.default_backfill)")

	teamCmd.Flags().Int64Var(&teamID, "team-id", 0, "Provider team id")
	teamCmd.MarkFlagRequired("team-id")

	h2hCmd.Flags().Int64Var(&teamID, "team-id", 0, "Provider team id")
	h2hCmd.Flags().Int64Var(&opponentID, "opponent-id", 0, "Provider opponent team id")
	h2hCmd.MarkFlagRequired("team-id")
	h2hCmd.MarkFlagRequired("opponent-id")

	contestCmd.Flags().Int64Var(&contestID, "contest-id", 0, "Contest id (basketball ids are offset)")
	contestCmd.MarkFlagRequired("contest-id")

	rootCmd.AddCommand(teamCmd, h2hCmd, contestCmd)
}

var rootCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Pull contest history from the sports-data provider",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Backfill a team's recent contests",
	RunE: func(cmd *cobra.Command, args []string) error {
		sport, err := parseSport(sportName)
		if err != nil {
			return err
		}
		stored := ingestion.BackfillTeamHistory(cmd.Context(), teamID, limit, sport)
		appLog.WithFields(logrus.Fields{
			"team_id": teamID,
			"sport":   sport,
			"stored":  len(stored),
		}).Info("Team backfill finished")
		return nil
	},
}

var h2hCmd = &cobra.Command{
	Use:   "h2h",
	Short: "Backfill direct meetings between two teams",
	RunE: func(cmd *cobra.Command, args []string) error {
		sport, err := parseSport(sportName)
		if err != nil {
			return err
		}
		stored := ingestion.BackfillHeadToHead(cmd.Context(), teamID, opponentID, limit, sport)
		appLog.WithFields(logrus.Fields{
			"team_id":     teamID,
			"opponent_id": opponentID,
			"sport":       sport,
			"stored":      len(stored),
		}).Info("Head-to-head backfill finished")
		return nil
	},
}

var contestCmd = &cobra.Command{
	Use:   "contest",
	Short: "Fetch and store a single contest",
	RunE: func(cmd *cobra.Command, args []string) error {
		match, err := ingestion.FetchAndStoreMatch(cmd.Context(), contestID)
		if err != nil {
			return fmt.Errorf("failed to fetch contest %d: %w", contestID, err)
		}
		appLog.WithFields(logrus.Fields{
			"contest_id": match.ID,
			"home":       match.HomeTeamName,
			"away":       match.AwayTeamName,
		}).Info("Contest stored")
		return nil
	},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup(ctx context.Context) error {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if limit <= 0 {
		limit = cfg.SportsData.DefaultBackfill
	}

	appLog = logger.NewLogger(cfg.App.LogLevel)

	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to create repositories: %w", err)
	}

	source := datasource.NewSportsAPIClient(&cfg.SportsData, appLog)
	ingestion = service.NewIngestionService(source, repos.Match, appLog)

	return nil
}

func parseSport(name string) (models.Sport, error) {
	switch name {
	case "football":
		return models.SportFootball, nil
	case "basketball":
		return models.SportBasketball, nil
	default:
		return "", fmt.Errorf("unknown sport %q", name)
	}
}
