package main

import (
	"fmt"
	"os"

	_ "time/tzdata"

	"github.com/dtnitsch/sweep-schedules/internal/build"
	dbcmd "github.com/dtnitsch/sweep-schedules/internal/db"
	"github.com/dtnitsch/sweep-schedules/internal/serve"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "sweeps",
		Usage: "Rebuild street-sweep schedules from PDF reports and serve them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "YAML config file (optional)",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "yaml",
				Usage:   "Output format: yaml, json or table",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Directory of per-date activity files",
			},
			&cli.StringFlag{
				Name:  "invalid-dir",
				Usage: "Directory of per-date rejected records",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Process source documents uploaded since the last build",
				Action: build.BuildAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "assets",
						Usage: "Line-delimited JSON asset list",
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Number of documents processed concurrently",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Ignore the watermark and rebuild every asset",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the read API",
				Action: serve.ServeAction,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "Listen port",
					},
					&cli.BoolFlag{
						Name:  "no-build",
						Usage: "Do not build on start",
					},
					&cli.StringFlag{
						Name:  "assets",
						Usage: "Line-delimited JSON asset list for the startup build",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of documents processed concurrently by the startup build",
					},
				},
			},
			{
				Name:   "days",
				Usage:  "List dates that have data",
				Action: dbcmd.DaysAction,
			},
			{
				Name:   "builds",
				Usage:  "List recent builds",
				Action: dbcmd.BuildsAction,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "Maximum builds to list (0 for all)",
					},
				},
				Subcommands: []*cli.Command{
					{
						Name:      "show",
						Usage:     "Show a build and its documents (latest if no id)",
						ArgsUsage: "[build-id]",
						Action:    dbcmd.BuildAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}
