package main

import (
	"context"
	"os"

	"github.com/desertthunder/jtp/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "jtp",
		Usage:    "Control a remote music player from the terminal",
		Version:  "0.1.0",
		Flags:    globalFlags(),
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Debug("command failed", "error", err)
		logger.Fatal(shared.UserMessage(err))
	}
}
