package service

import (
	"context"
	"time"

	"golang-stock-ranker/internal/ranker/config"
	"golang-stock-ranker/pkg/logger"

	"github.com/robfig/cron/v3"
)

// RefreshScheduler re-runs the ranking pipeline on a cron schedule and
// publishes the new table for the API to serve.
type RefreshScheduler struct {
	cfg  *config.Config
	log  *logger.Logger
	svc  RankingService
	cron *cron.Cron
}

// NewRefreshScheduler creates a RefreshScheduler.
func NewRefreshScheduler(cfg *config.Config, log *logger.Logger, svc RankingService) *RefreshScheduler {
	return &RefreshScheduler{
		cfg:  cfg,
		log:  log,
		svc:  svc,
		cron: cron.New(),
	}
}

// Start registers the refresh entry and starts the cron loop. The schedule
// comes from config; an invalid expression is reported, not fatal, so serve
// mode still exposes the initial table.
func (r *RefreshScheduler) Start(ctx context.Context) {
	spec := r.cfg.Scheduler.Cron
	if spec == "" {
		spec = "0 18 * * MON-FRI"
	}
	_, err := r.cron.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
		defer cancel()
		if _, err := r.svc.Run(runCtx); err != nil {
			r.log.Error("Scheduled ranking refresh failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		r.log.Error("Invalid refresh cron expression",
			logger.StringField("cron", spec), logger.ErrorField(err))
		return
	}
	r.cron.Start()
	r.log.Info("Refresh scheduler started", logger.StringField("cron", spec))
}

// Stop halts the cron loop and waits for a running refresh to finish.
func (r *RefreshScheduler) Stop() {
	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
	r.log.Info("Refresh scheduler stopped")
}
