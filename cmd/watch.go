package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/jtp/internal/formatter"
	"github.com/desertthunder/jtp/internal/models"
	"github.com/urfave/cli/v3"
)

// Watch starts the poller and prints every accepted status snapshot until interrupted.
//
// Failed polls are logged and the last printed snapshot stands.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	if interval := cmd.Duration("interval"); interval > 0 {
		r.config.Polling.Interval.Duration = interval
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := r.newEngine()
	if err != nil {
		return err
	}

	var last string
	engine.OnStatus(func(s *models.PlayerStatus) {
		line := formatter.StatusLine(s)
		if line == last {
			return
		}
		last = line
		r.writePlain("%s\n", line)
	})

	if err := engine.Start(ctx); err != nil {
		return err
	}
	defer engine.Stop()

	r.logger.Info("watching player", "interval", r.config.Polling.Interval.Duration)
	<-ctx.Done()

	return r.writePlain("stopped watching\n")
}
