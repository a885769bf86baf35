package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jtp/internal/services"
	"github.com/desertthunder/jtp/internal/shared"
	"github.com/desertthunder/jtp/internal/tasks"
	"github.com/jonboulle/clockwork"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	configPath string
	config     *shared.Config
	api        services.RemoteAPI
	httpClient *http.Client
	clock      clockwork.Clock
	logger     *log.Logger
	output     io.Writer
	mu         sync.Mutex
}

// RunnerOpts contains configuration options for creating a Runner.
//
// API is normally left nil and built from the loaded configuration in Before.
type RunnerOpts struct {
	ConfigPath string
	Config     *shared.Config
	API        services.RemoteAPI
	HTTPClient *http.Client
	Clock      clockwork.Clock
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	return &Runner{
		configPath: opts.ConfigPath,
		config:     opts.Config,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		clock:      opts.Clock,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		statusCommand, playlistCommand, watchCommand, tuiCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}
	for _, fn := range [](func(*Runner) []*cli.Command){
		controlCommands, editCommands, transferCommands,
	} {
		commands = append(commands, fn(r)...)
	}

	for _, c := range commands {
		if c.Name != "config" {
			c.Before = r.Before
		}
	}
	return commands
}

// Before loads configuration, applies the log level, and builds the API client. Every command
// except config init runs it.
//
// A missing file at the default --config path falls back to the embedded defaults; an explicit path
// must exist.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if err := r.loadConfig(cmd.String("config"), cmd.IsSet("config")); err != nil {
		return ctx, err
	}

	if server := cmd.String("server"); server != "" {
		r.config.Server.BaseURL = server
	}

	if err := shared.ApplyLogLevel(r.logger, r.config.Log.Level); err != nil {
		return ctx, err
	}

	if r.api == nil {
		r.api = services.NewAPIService(r.config, r.httpClient)
	}
	return ctx, nil
}

func (r *Runner) loadConfig(path string, required bool) error {
	if path == "" {
		return nil
	}
	r.configPath = path

	if _, err := os.Stat(path); err != nil {
		if required {
			return fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
		}
		r.logger.Debug("config file not found, using defaults", "path", path)
		return nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidConfig) {
			return err
		}
		return fmt.Errorf("%w: %w", shared.ErrInvalidConfig, err)
	}

	r.config = config
	r.logger.Debug("config loaded", "path", path)
	return nil
}

// SetLogger replaces the logger used by the runner and components it builds.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// newEngine builds an engine over the runner's API using the loaded configuration.
func (r *Runner) newEngine() (*tasks.Engine, error) {
	if r.api == nil {
		return nil, fmt.Errorf("%w: player API not initialized", shared.ErrMissingConfig)
	}

	opts := tasks.EngineOptsFromConfig(r.config, r.logger)
	opts.Clock = r.clock
	return tasks.NewEngine(r.api, opts), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

// writePlain is safe to call from engine hooks.
func (r *Runner) writePlain(format string, args ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		if _, err := r.output.Write([]byte("\n")); err != nil {
			return fmt.Errorf("failed to write newline: %w", err)
		}
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
