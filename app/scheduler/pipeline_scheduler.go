// Package scheduler
package scheduler

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	businessflow "github.com/apexhq/outreach-engine/business_flow"
	"github.com/apexhq/outreach-engine/repository"
	"gopkg.in/natefinch/lumberjack.v2"
)

// PipelineScheduler periodically runs the outreach pipeline for every active
// campaign and sweeps expired pending actions.
type PipelineScheduler struct {
	campaignRepo repository.CampaignRepository
	outreach     businessflow.OutreachFlow
	pending      businessflow.PendingActionFlow
	logger       *log.Logger
	interval     time.Duration
	sweepEvery   time.Duration
}

func NewPipelineScheduler(
	campaignRepo repository.CampaignRepository,
	outreach businessflow.OutreachFlow,
	pending businessflow.PendingActionFlow,
	interval time.Duration,
	logDir string,
) *PipelineScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	s := &PipelineScheduler{
		campaignRepo: campaignRepo,
		outreach:     outreach,
		pending:      pending,
		interval:     interval,
		sweepEvery:   time.Hour,
	}

	// Scheduler-specific logger (stdout plus a rotated persistent file)
	if err := s.initSchedulerLogger(logDir); err != nil {
		s.logger = log.Default()
		s.logger.Printf("scheduler: failed to initialize file logger: %v", err)
	}

	return s
}

// initSchedulerLogger configures a logger that writes to both stdout and a
// size-rotated file under the given directory
func (s *PipelineScheduler) initSchedulerLogger(logDir string) error {
	if logDir == "" {
		logDir = "data"
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}

	rotated := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "scheduler.log"),
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	mw := io.MultiWriter(os.Stdout, rotated)
	s.logger = log.New(mw, "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
	return nil
}

// Start launches the scheduler loop in a background goroutine and returns a
// stop function
func (s *PipelineScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	go s.startExpirySweeper(ctx)

	return cancel
}

// runOnce lists active campaigns and spawns one pipeline run per campaign.
// Overlap across ticks is serialized by the per-campaign run lease inside
// the flow, so the loop stays non-blocking.
func (s *PipelineScheduler) runOnce(ctx context.Context) {
	campaigns, err := s.campaignRepo.ListActive(ctx)
	if err != nil {
		s.logger.Printf("scheduler: list active campaigns failed: %v", err)
		return
	}
	if len(campaigns) == 0 {
		return
	}
	s.logger.Printf("scheduler: %d active campaigns", len(campaigns))

	for _, camp := range campaigns {
		c := camp
		go func() {
			agent := businessflow.AgentContext{UserID: c.UserID}
			summary, err := s.outreach.RunPipeline(ctx, c.ID, agent)
			if err != nil {
				s.logger.Printf("scheduler: pipeline run failed for campaign id=%d: %v", c.ID, err)
				return
			}
			if summary.Skipped {
				s.logger.Printf("scheduler: campaign id=%d skipped: %s", c.ID, summary.SkipReason)
				return
			}
			s.logger.Printf("scheduler: campaign id=%d discovered=%d connections=%d follow_ups=%d pending=%d accepted=%d replies=%d completed=%t",
				c.ID, summary.ProspectsDiscovered, summary.ConnectionsSent, summary.FollowUpsSent,
				summary.PendingActionsCreated, summary.AcceptancesDetected, summary.RepliesDetected, summary.Completed)
		}()
	}
}

// startExpirySweeper moves pending actions past their expiry into expired
// state on an hourly cadence
func (s *PipelineScheduler) startExpirySweeper(ctx context.Context) {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := s.pending.ExpireOld(ctx)
			if err != nil {
				s.logger.Printf("scheduler: pending action expiry sweep failed: %v", err)
				continue
			}
			if expired > 0 {
				s.logger.Printf("scheduler: expired %d pending actions", expired)
			}
		}
	}
}
