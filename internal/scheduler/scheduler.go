// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"time"

	"hackarena/internal/middleware"

	"github.com/go-co-op/gocron/v2"
)

// SanctionSweeper is the job contract: deactivate due sanctions and report
// how many users were touched.
type SanctionSweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// Scheduler owns the background job runner.
type Scheduler struct {
	sched gocron.Scheduler
}

// New builds a scheduler with the sanction expiry sweep registered at the
// given interval. interval <= 0 disables the sweep.
func New(sweeper SanctionSweeper, interval time.Duration) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	if interval > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(func() {
				runSweep(sweeper)
			}),
		)
		if err != nil {
			return nil, err
		}
	}

	return &Scheduler{sched: sched}, nil
}

func runSweep(sweeper SanctionSweeper) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	swept, err := sweeper.SweepExpired(ctx)
	if err != nil {
		middleware.Logger.Error("sanction expiry sweep failed", "error", err)
		return
	}
	if swept > 0 {
		middleware.Logger.Info("sanction expiry sweep completed", "users_affected", swept)
	}
}

// Start begins running registered jobs.
func (s *Scheduler) Start() {
	s.sched.Start()
}

// Shutdown stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
