// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
			{
				Name:  "config",
				Usage: "Create a config file from the embedded template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Where to write the config file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// importCommand ingests the inventory CSV into the collection table.
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "import",
		Aliases: []string{"imp"},
		Usage:   "Import the inventory CSV into the collection",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "csv",
				Usage: "Inventory CSV path (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.ImportRun,
	}
}

// reconcileCommand synchronizes the tracked-book table against the collection.
func reconcileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "reconcile",
		Aliases: []string{"rec"},
		Usage:   "Reconcile tracked books against the collection",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.ReconcileRun,
	}
}

// wishlistCommand handles wishlist feed operations.
func wishlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "wishlist",
		Aliases: []string{"wl"},
		Usage:   "Wishlist feed operations",
		Commands: []*cli.Command{
			{
				Name:  "diff",
				Usage: "List wishlist entries missing from the collection",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Output CSV with inventory-compatible columns",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write CSV to a file instead of stdout",
					},
				},
				Action: r.WishlistDiff,
			},
			{
				Name:  "acquire",
				Usage: "Search the index for missing entries and submit matches",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Output per-entry outcomes as CSV",
					},
					&cli.BoolFlag{
						Name:    "dry-run",
						Aliases: []string{"n"},
						Usage:   "Search and match without submitting",
					},
				},
				Action: r.AcquireRun,
			},
		},
	}
}

// indexCommand handles direct search index calls for debugging.
func indexCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Direct search index operations",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Query the search index, prints candidates",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "title",
						Aliases:  []string{"t"},
						Usage:    "Requested title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "author",
						Aliases:  []string{"a"},
						Usage:    "Requested author",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.IndexSearch,
			},
		},
	}
}

// syncCommand runs the full batch pipeline.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Run the full batch: import, reconcile, diff, acquire",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the batch report as JSON",
			},
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Output acquisition outcomes as CSV",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the plain text batch report to a file",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Suppress per-step progress output",
			},
		},
		Action: r.SyncRun,
	}
}
