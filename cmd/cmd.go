// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// rootFlags are the flags of the top-level sync action.
func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
		},
		&cli.BoolFlag{
			Name:    "read-only",
			Aliases: []string{"r"},
			Usage:   "Only collect source libraries into snapshots, skip writing",
		},
		&cli.BoolFlag{
			Name:    "write-only",
			Aliases: []string{"w"},
			Usage:   "Only replay existing snapshots into destinations, skip collecting",
		},
	}
}

// authCommand pre-authorizes accounts so later runs find cached tokens.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize configured accounts ahead of a sync",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.BoolFlag{
				Name:  "sources",
				Usage: "Only authorize source accounts",
			},
			&cli.BoolFlag{
				Name:  "destinations",
				Usage: "Only authorize destination accounts",
			},
		},
		Action: r.Auth,
	}
}

// snapshotCommand inspects the snapshots left by the read phase.
func snapshotCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Inspect collected library snapshots",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show what the current snapshots contain",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.SnapshotShow,
			},
		},
	}
}

// historyCommand lists past sync runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent sync runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to list",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}
