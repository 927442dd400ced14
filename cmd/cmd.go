// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// serverFlags returns the connection flags shared by every command that talks to the server.
func serverFlags(r *Runner) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Root API URL of the Immich instance, e.g. https://immich.mydomain.com/api/",
			Value:   r.config.Server.URL,
		},
		&cli.StringFlag{
			Name:    "api-key",
			Aliases: []string{"k"},
			Usage:   "Immich API key",
			Value:   r.config.Server.APIKey,
		},
	}
}

// runCommand performs the one-shot reconciliation run.
func runCommand(r *Runner) *cli.Command {
	flags := append(serverFlags(r),
		&cli.BoolFlag{
			Name:  "include-exifless",
			Usage: "Include photos that don't have any EXIF data",
			Value: r.config.Organizer.IncludeExifless,
		},
		&cli.BoolFlag{
			Name:  "archive-screens",
			Usage: "Archive all screenshots to hide them from the timeline",
			Value: r.config.Organizer.ArchiveScreens,
		},
		&cli.StringFlag{
			Name:    "library-name",
			Aliases: []string{"n"},
			Usage:   "Name of the library to look for screenshots in; empty searches all libraries",
			Value:   r.config.Organizer.LibraryName,
		},
		&cli.StringFlag{
			Name:    "import-path",
			Aliases: []string{"p"},
			Usage:   "Import path of the library to look for screenshots in; empty searches all libraries",
			Value:   r.config.Organizer.ImportPath,
		},
		&cli.BoolFlag{
			Name:    "unattended",
			Aliases: []string{"u"},
			Usage:   "Do not ask for confirmation after planning. Set this flag to run as a cronjob",
			Value:   r.config.Organizer.Unattended,
		},
		&cli.IntFlag{
			Name:    "chunk-size",
			Aliases: []string{"c"},
			Usage:   "Maximum number of assets to add to an album with a single API call",
			Value:   r.config.Organizer.AddChunkSize,
		},
		&cli.IntFlag{
			Name:    "fetch-chunk-size",
			Aliases: []string{"C"},
			Usage:   "Maximum number of assets to fetch with a single API call",
			Value:   r.config.Organizer.FetchChunkSize,
		},
		&cli.StringFlag{
			Name:    "log-level",
			Aliases: []string{"l"},
			Usage:   "Log level to use (debug, info, warn, error)",
			Value:   "info",
		},
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Classify screenshots and reconcile them into an album",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "album",
				UsageText: "The album name for your screenshots",
			},
		},
		Flags:  flags,
		Action: r.Run,
	}
}

// versionCommand probes the server capability endpoint.
func versionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Probe the Immich server version",
		Flags: append(serverFlags(r),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		),
		Action: r.ServerVersion,
	}
}

// librariesCommand lists the server's libraries.
func librariesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "libraries",
		Usage: "List libraries on the Immich server",
		Flags: append(serverFlags(r),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		),
		Action: r.Libraries,
	}
}

// albumsCommand lists the server's albums.
func albumsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "albums",
		Usage: "List albums on the Immich server",
		Flags: append(serverFlags(r),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		),
		Action: r.Albums,
	}
}

// historyCommand lists recent runs from the history database.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent organizer runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to the run-history database",
				Value: r.config.Database.Path,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
		},
		Action: r.History,
	}
}

// setupCommand handles setup operations for configuration and the history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a starter config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the run-history database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "db",
						Usage: "Path to the run-history database",
						Value: r.config.Database.Path,
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
