package main

import (
	"github.com/raffleclub/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(cliCtx *cli.Context) error {
	s.loadConfig(cliCtx)
	s.loadLogger()
	s.loadDatabase()
	s.migrateDB()

	xcontext.Logger(s.ctx).Infof("Database migration completed")
	return nil
}
