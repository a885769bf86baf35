// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Player API base URL (overrides server.base_url)",
		},
	}
}

func formatFlag(value string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: text, md, csv, or json",
		Value:   value,
	}
}

// statusCommand prints the current player status
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show playback state, current track, and volume",
		Flags:  []cli.Flag{formatFlag("text")},
		Action: r.Status,
	}
}

// playlistCommand prints or exports the server playlist
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"ls"},
		Usage:   "List the tracks in the playlist",
		Flags: []cli.Flag{
			formatFlag("text"),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the playlist to a file instead of stdout",
			},
		},
		Action: r.Playlist,
	}
}

// controlCommands returns the transport controls
func controlCommands(r *Runner) []*cli.Command {
	return []*cli.Command{
		{
			Name:      "play",
			Usage:     "Resume playback, or play the track at a playlist position",
			ArgsUsage: "[position]",
			Action:    r.Play,
		},
		{
			Name:   "pause",
			Usage:  "Pause playback",
			Action: r.Pause,
		},
		{
			Name:   "stop",
			Usage:  "Stop playback",
			Action: r.Stop,
		},
		{
			Name:   "next",
			Usage:  "Skip to the next track",
			Action: r.Next,
		},
		{
			Name:    "previous",
			Aliases: []string{"prev"},
			Usage:   "Go back to the previous track",
			Action:  r.Previous,
		},
		{
			Name:      "volume",
			Aliases:   []string{"vol"},
			Usage:     "Set the volume (0-100)",
			ArgsUsage: "<level>",
			Action:    r.Volume,
		},
		{
			Name:   "mute",
			Usage:  "Mute, or restore the volume when already muted",
			Action: r.Mute,
		},
	}
}

// editCommands return the playlist editing commands
func editCommands(r *Runner) []*cli.Command {
	return []*cli.Command{
		{
			Name:      "remove",
			Aliases:   []string{"rm"},
			Usage:     "Remove a track by ID",
			ArgsUsage: "<track-id>",
			Action:    r.Remove,
		},
		{
			Name:  "clear",
			Usage: "Remove every track from the playlist",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    "yes",
					Aliases: []string{"y"},
					Usage:   "Confirm clearing the playlist",
				},
			},
			Action: r.Clear,
		},
	}
}

// transferCommands handles getting audio onto the server
func transferCommands(r *Runner) []*cli.Command {
	return []*cli.Command{
		{
			Name:      "upload",
			Aliases:   []string{"up"},
			Usage:     "Upload local audio files in order",
			ArgsUsage: "<file>...",
			Action:    r.Upload,
		},
		{
			Name:      "download",
			Aliases:   []string{"dl"},
			Usage:     "Ask the server to download audio from a URL",
			ArgsUsage: "<url>",
			Action:    r.Download,
		},
	}
}

// watchCommand prints status snapshots until interrupted
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Poll the player and print each status snapshot",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Polling interval (overrides polling.interval)",
			},
		},
		Action: r.Watch,
	}
}

// configCommand handles configuration file operations
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write an example configuration file to the --config path",
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration",
				Before: r.Before,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON instead of TOML",
					},
				},
				Action: r.ConfigShow,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive playback.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive player",
		Action:  r.TUI,
	}
}
