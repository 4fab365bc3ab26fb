package main

import (
	"github.com/raffleclub/backend/internal/domain/cron"
	"github.com/raffleclub/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(cliCtx *cli.Context) error {
	s.loadConfig(cliCtx)
	s.loadLogger()
	s.loadDatabase()
	s.migrateDB()
	s.loadDeliveryCaller()
	s.loadRepos()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Start(
		s.ctx,
		cron.NewSubscriptionReminderCronJob(
			xcontext.Configs(s.ctx).Notifier,
			s.subscriptionRepo,
			s.groupRepo,
			s.deliveryCaller,
		),
	)

	return nil
}
