package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/jtp/internal/formatter"
	"github.com/desertthunder/jtp/internal/shared"
	"github.com/desertthunder/jtp/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Status fetches one status snapshot and prints it.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	engine, err := r.newEngine()
	if err != nil {
		return err
	}
	defer engine.Stop()

	if err := engine.Poller.Refresh(ctx); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrConnectivity, err)
	}

	data, err := formatter.ExportStatus(engine.Status(), format)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// Playlist fetches the playlist and prints or exports it, marking the current track when status is available.
func (r *Runner) Playlist(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	engine, err := r.newEngine()
	if err != nil {
		return err
	}
	defer engine.Stop()

	playlist, err := engine.Playlist.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrConnectivity, err)
	}
	if err := engine.Poller.Refresh(ctx); err != nil {
		r.logger.Warn("status unavailable, current track not marked", "error", err)
	}
	current := engine.CurrentIndex()

	if output := cmd.String("output"); output != "" {
		path, err := formatter.WritePlaylistExport(playlist, current, format, output)
		if err != nil {
			return err
		}
		r.logger.Info("playlist exported", "path", path, "tracks", playlist.Len())
		return r.writePlain("Exported %d track(s) to %s\n", playlist.Len(), path)
	}

	data, err := formatter.RenderPlaylist(playlist, current, format)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// Play resumes playback, or plays the track at a 1-based playlist position.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	var index *int
	if arg := cmd.Args().First(); arg != "" {
		position, err := strconv.Atoi(arg)
		if err != nil || position < 1 {
			return fmt.Errorf("%w: position must be a positive number, got %q", shared.ErrInvalidArgument, arg)
		}
		i := position - 1
		index = &i
	}

	return r.control(ctx, "Playing", func(d *tasks.Dispatcher) error { return d.Play(ctx, index) })
}

func (r *Runner) Pause(ctx context.Context, cmd *cli.Command) error {
	return r.control(ctx, "Paused", func(d *tasks.Dispatcher) error { return d.Pause(ctx) })
}

func (r *Runner) Stop(ctx context.Context, cmd *cli.Command) error {
	return r.control(ctx, "Stopped", func(d *tasks.Dispatcher) error { return d.Stop(ctx) })
}

func (r *Runner) Next(ctx context.Context, cmd *cli.Command) error {
	return r.control(ctx, "Skipped to next track", func(d *tasks.Dispatcher) error { return d.Next(ctx) })
}

func (r *Runner) Previous(ctx context.Context, cmd *cli.Command) error {
	return r.control(ctx, "Back to previous track", func(d *tasks.Dispatcher) error { return d.Previous(ctx) })
}

// Volume sets the volume to a level between 0 and 100.
func (r *Runner) Volume(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.Args().First()
	if arg == "" {
		return fmt.Errorf("%w: volume level", shared.ErrMissingArgument)
	}
	level, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("%w: volume %q", shared.ErrInvalidArgument, arg)
	}

	return r.control(ctx, fmt.Sprintf("Volume set to %d", level), func(d *tasks.Dispatcher) error {
		return d.SetVolume(ctx, level)
	})
}

// Mute reads the current volume and toggles mute from it. Unmuting without a remembered level restores 50.
func (r *Runner) Mute(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.newEngine()
	if err != nil {
		return err
	}
	defer engine.Stop()
	engine.Dispatcher.Close()

	if err := engine.Poller.Refresh(ctx); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrConnectivity, err)
	}

	level, err := engine.Dispatcher.ToggleMute(ctx, engine.Status().Volume)
	if err != nil {
		return err
	}
	if level == 0 {
		return r.writePlain("✓ Muted\n")
	}
	return r.writePlain("✓ Volume restored to %d\n", level)
}

// Remove deletes one track by its server ID.
func (r *Runner) Remove(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.Args().First()
	if arg == "" {
		return fmt.Errorf("%w: track ID", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("%w: track ID %q", shared.ErrInvalidArgument, arg)
	}

	return r.control(ctx, fmt.Sprintf("Removed track %d", id), func(d *tasks.Dispatcher) error {
		return d.RemoveTrack(ctx, id)
	})
}

// Clear removes every track. It requires --yes.
func (r *Runner) Clear(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to clear the playlist", shared.ErrMissingArgument)
	}
	return r.control(ctx, "Playlist cleared", func(d *tasks.Dispatcher) error { return d.ClearPlaylist(ctx) })
}

// control runs one dispatcher intent and prints done on success.
//
// The process exits right after the command, so the dispatcher is closed first and schedules no
// follow-up status fetch. Remove and clear still reload the playlist before returning.
func (r *Runner) control(ctx context.Context, done string, fn func(*tasks.Dispatcher) error) error {
	engine, err := r.newEngine()
	if err != nil {
		return err
	}
	defer engine.Stop()
	engine.Dispatcher.Close()

	if err := fn(engine.Dispatcher); err != nil {
		return err
	}
	return r.writePlain("✓ %s\n", strings.TrimSpace(done))
}
