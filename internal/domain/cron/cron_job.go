package cron

import (
	"context"
	"time"

	"github.com/droplabz/backend/pkg/xcontext"
)

type CronJob interface {
	Name() string
	Interval(ctx context.Context) time.Duration
	Do(ctx context.Context)
}

// Manager runs every registered job on its own ticker until the context is
// cancelled.
type Manager struct {
	jobs []CronJob
}

func NewManager(jobs ...CronJob) *Manager {
	return &Manager{jobs: jobs}
}

func (m *Manager) Start(ctx context.Context) {
	for _, job := range m.jobs {
		go m.run(ctx, job)
	}
}

func (m *Manager) run(ctx context.Context, job CronJob) {
	xcontext.Logger(ctx).Infof("Start cron job %s", job.Name())
	ticker := time.NewTicker(job.Interval(ctx))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			xcontext.Logger(ctx).Infof("Stop cron job %s", job.Name())
			return
		case <-ticker.C:
			job.Do(ctx)
		}
	}
}
