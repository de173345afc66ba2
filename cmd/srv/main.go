package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	s := &srv{}
	app := &cli.App{
		Name:  "srv",
		Usage: "eligibility and winner selection backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.toml",
				Usage: "path to the TOML config file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "api",
				Usage:  "start the api server",
				Action: s.startApi,
			},
			{
				Name:   "cron",
				Usage:  "start the cron jobs",
				Action: s.startCron,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
