package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "raffleclub"
	app.Usage = "Raffle service of subscription based chat groups"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path of the configuration file",
			Value: "config.toml",
		},
	}
	app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start the api service",
			Category:    "Api",
			Description: `Serves the raffle, subscription, and group apis.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start the cron service",
			Category:    "Worker",
			Description: `Runs the scheduled jobs, currently the daily subscription expiry reminder.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database schema",
			Category:    "Database",
			Description: `Creates or updates the database tables.`,
		},
	}

	s.app = app
}
