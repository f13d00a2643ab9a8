package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"brokerage-api/internal/config"
	"brokerage-api/internal/ledger"
	"brokerage-api/internal/monitoring"
)

// Scheduler runs the periodic portfolio revaluation job. Holdings are
// re-marked to the latest quote so account aggregates stay close to the
// market between trades.
type Scheduler struct {
	cron    *cron.Cron
	service *ledger.Service
	metrics monitoring.MetricsService
	config  config.SchedulerConfig
	logger  *logrus.Logger
}

func NewScheduler(service *ledger.Service, metrics monitoring.MetricsService, cfg config.SchedulerConfig, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		service: service,
		metrics: metrics,
		config:  cfg,
		logger:  logger,
	}
}

func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.config.RevaluationCron, s.runRevaluation)
	if err != nil {
		return fmt.Errorf("failed to schedule revaluation job: %w", err)
	}

	s.cron.Start()
	s.logger.Infof("Scheduler started, revaluation cron: %s", s.config.RevaluationCron)
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runRevaluation() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	err := s.service.RevalueAll(ctx, int64(s.config.RevaluationBatch))
	s.metrics.RecordRevaluationRun(time.Since(start), err)

	if err != nil {
		s.logger.Errorf("Portfolio revaluation failed: %v", err)
		return
	}

	s.logger.WithField("duration_ms", time.Since(start).Milliseconds()).Info("Portfolio revaluation completed")
}
