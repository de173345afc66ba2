package main

import (
	"os/signal"
	"syscall"

	"github.com/droplabz/backend/internal/domain/cron"
	"github.com/droplabz/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(cliCtx *cli.Context) error {
	if err := s.load(cliCtx); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager := cron.NewManager(
		cron.NewEndedEventCronJob(
			s.eventRepo, s.entryRepo, s.winnerRepo, s.auditLogRepo,
			s.eventLocker, nil,
		),
	)
	manager.Start(ctx)

	<-ctx.Done()
	xcontext.Logger(s.ctx).Infof("Cron runner stopped")
	return nil
}
