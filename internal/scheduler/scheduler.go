// Package scheduler runs periodic feature refresh over upcoming contests so
// prediction requests mostly hit warm features.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/matchcast/internal/features"
	"github.com/yourusername/matchcast/internal/models"
	"github.com/yourusername/matchcast/internal/repository"
)

const upcomingBatchSize = 50

// Scheduler manages the recurring feature refresh job.
type Scheduler struct {
	cron            *cron.Cron
	matchRepo       repository.MatchRepository
	engine          *features.Engine
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a scheduler over the given repository and feature engine.
func NewScheduler(matchRepo repository.MatchRepository, engine *features.Engine, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		matchRepo:       matchRepo,
		engine:          engine,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleFeatureRefresh registers the refresh job under the given cron
// expression. Must be called before Start.
func (s *Scheduler) ScheduleFeatureRefresh(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, s.refreshUpcoming)
	if err != nil {
		return fmt.Errorf("failed to add feature refresh job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled feature refresh job")

	return nil
}

// refreshUpcoming recomputes features for the next batch of upcoming
// contests in both sports. Individual failures are logged and skipped so one
// bad contest never stalls the sweep.
func (s *Scheduler) refreshUpcoming() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	refreshed, failed := 0, 0
	for _, sport := range []models.Sport{models.SportFootball, models.SportBasketball} {
		matches, err := s.matchRepo.GetUpcoming(ctx, sport, upcomingBatchSize)
		if err != nil {
			s.logger.WithError(err).WithField("sport", sport).Error("Failed to list upcoming contests")
			continue
		}

		for _, match := range matches {
			if _, err := s.engine.GetOrCompute(ctx, match); err != nil {
				failed++
				s.logger.WithError(err).WithFields(logrus.Fields{
					"sport":      sport,
					"contest_id": match.ID,
				}).Warn("Feature refresh failed for contest")
				continue
			}
			refreshed++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"refreshed": refreshed,
		"failed":    failed,
	}).Info("Feature refresh sweep completed")
}

// Start starts the scheduler.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(s.gracefulTimeout):
		s.logger.Warn("Scheduler stop timed out waiting for running job")
	}

	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled run.
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}
