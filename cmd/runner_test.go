package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jtp/internal/models"
	"github.com/desertthunder/jtp/internal/services"
	"github.com/desertthunder/jtp/internal/shared"
	tu "github.com/desertthunder/jtp/internal/testing"
	"github.com/jonboulle/clockwork"
	"github.com/urfave/cli/v3"
)

// syncBuffer guards a buffer shared with engine goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func ptr[T any](v T) *T { return &v }

func newTestRunner(api *tu.FakeAPI) (*Runner, *syncBuffer) {
	output := &syncBuffer{}
	runner := NewRunner(RunnerOpts{
		API:    api,
		Output: output,
		Logger: log.New(io.Discard),
		Clock:  clockwork.NewFakeClock(),
	})
	return runner, output
}

func runApp(ctx context.Context, r *Runner, args ...string) error {
	app := &cli.Command{
		Name:     "jtp",
		Flags:    globalFlags(),
		Commands: r.register(),
	}
	return app.Run(ctx, append([]string{"jtp"}, args...))
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			api := tu.NewFakeAPI()
			clock := clockwork.NewFakeClock()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				API:        api,
				Clock:      clock,
				ConfigPath: "/test/path/config.toml",
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
			if runner.clock != clock {
				t.Error("expected clock to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
			if runner.clock == nil {
				t.Error("expected real clock by default")
			}
			if runner.api != nil {
				t.Error("expected api to be built lazily")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(map[string]any{"ch": make(chan int)}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes formatted text", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("Hello, %s!\n", "World"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "Hello, World!\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writePlain("test"); err == nil {
				t.Error("expected error")
			}
		})
	})

	t.Run("writeBytes", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		runner.writeBytes([]byte("one"))
		runner.writeBytes([]byte("two\n"))

		if output.String() != "one\ntwo\n" {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := make(map[string]*cli.Command)
		for _, c := range commands {
			names[c.Name] = c
		}

		for _, want := range []string{
			"status", "playlist", "play", "pause", "stop", "next", "previous", "volume", "mute",
			"remove", "clear", "upload", "download", "watch", "tui", "config",
		} {
			if _, ok := names[want]; !ok {
				t.Errorf("expected %s command to be registered", want)
			}
		}

		if names["status"].Before == nil {
			t.Error("expected status to load configuration")
		}
		if names["config"].Before != nil {
			t.Error("expected config group to skip configuration loading")
		}
	})
}

func TestBefore(t *testing.T) {
	ctx := context.Background()

	t.Run("builds API service from defaults", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &syncBuffer{}, Logger: log.New(io.Discard)})

		if err := runApp(ctx, runner, "--config", "", "config", "show"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		api, ok := runner.api.(*services.APIService)
		if !ok {
			t.Fatalf("expected *services.APIService, got %T", runner.api)
		}
		if api.BaseURL() != "http://localhost:8000" {
			t.Errorf("unexpected base URL %s", api.BaseURL())
		}
	})

	t.Run("loads config file", func(t *testing.T) {
		path := writeConfig(t, "[server]\nbase_url = \"http://player.test:9000\"\n")
		runner, output := newTestRunner(tu.NewFakeAPI())

		if err := runApp(ctx, runner, "--config", path, "config", "show"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if runner.config.Server.BaseURL != "http://player.test:9000" {
			t.Errorf("unexpected base URL %s", runner.config.Server.BaseURL)
		}
		if runner.config.Polling.Interval.Duration != 2*time.Second {
			t.Errorf("expected default interval to be kept, got %v", runner.config.Polling.Interval)
		}
		if !strings.Contains(output.String(), `base_url = "http://player.test:9000"`) {
			t.Errorf("expected TOML output, got %s", output.String())
		}
	})

	t.Run("server flag overrides config", func(t *testing.T) {
		runner, output := newTestRunner(tu.NewFakeAPI())

		if err := runApp(ctx, runner, "--server", "http://override.test", "config", "show", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), `"BaseURL": "http://override.test"`) {
			t.Errorf("expected overridden base URL, got %s", output.String())
		}
	})

	t.Run("explicit missing config fails", func(t *testing.T) {
		runner, _ := newTestRunner(tu.NewFakeAPI())
		path := filepath.Join(t.TempDir(), "missing.toml")

		err := runApp(ctx, runner, "--config", path, "status")
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("invalid config fails", func(t *testing.T) {
		path := writeConfig(t, "[polling]\ninterval = \"soon\"\n")
		runner, _ := newTestRunner(tu.NewFakeAPI())

		err := runApp(ctx, runner, "--config", path, "status")
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestPlayerCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("status", func(t *testing.T) {
		api := tu.NewFakeAPI()
		runner, output := newTestRunner(api)

		if err := runApp(ctx, runner, "status"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "stopped") || !strings.Contains(output.String(), "vol 80") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("controls skip follow-up refresh", func(t *testing.T) {
		api := tu.NewFakeAPI()
		runner, output := newTestRunner(api)

		if err := runApp(ctx, runner, "pause"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "✓ Paused") {
			t.Errorf("unexpected output %q", output.String())
		}

		runner.clock.(*clockwork.FakeClock).Advance(time.Second)
		time.Sleep(10 * time.Millisecond)
		if api.Count("status") != 0 {
			t.Errorf("expected no status fetch after a one-shot command, got %d", api.Count("status"))
		}
	})

	t.Run("status json", func(t *testing.T) {
		runner, output := newTestRunner(tu.NewFakeAPI())

		if err := runApp(ctx, runner, "status", "--format", "json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), `"volume": 80`) {
			t.Errorf("expected JSON status, got %q", output.String())
		}
	})

	t.Run("status connection failure", func(t *testing.T) {
		api := tu.NewFakeAPI()
		api.Fail("status", errors.New("connection refused"))
		runner, _ := newTestRunner(api)

		err := runApp(ctx, runner, "status")
		if !errors.Is(err, shared.ErrConnectivity) {
			t.Errorf("expected ErrConnectivity, got %v", err)
		}
		if shared.UserMessage(err) != "Failed to connect to music player API" {
			t.Errorf("unexpected message %q", shared.UserMessage(err))
		}
	})

	t.Run("playlist marks current track", func(t *testing.T) {
		api := tu.NewFakeAPI()
		api.SetPlaylist(&models.Playlist{Tracks: []models.Track{
			{ID: 1, Title: "One", Duration: ptr(61.0)},
			{ID: 2, Title: "Two"},
		}})
		api.SetStatus(&models.PlayerStatus{State: models.StatePlaying, CurrentTrack: &models.Track{ID: 2, Title: "Two"}, Volume: 50})
		runner, output := newTestRunner(api)

		if err := runApp(ctx, runner, "playlist"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := output.String()
		if !strings.Contains(out, "Tracks: 2") {
			t.Errorf("expected track count, got %q", out)
		}
		if !strings.Contains(out, "▶ 2. Two [--:--] (id 2)") {
			t.Errorf("expected current marker, got %q", out)
		}
		if !strings.Contains(out, "  1. One [1:01] (id 1)") {
			t.Errorf("expected first track, got %q", out)
		}
	})

	t.Run("playlist export", func(t *testing.T) {
		api := tu.NewFakeAPI()
		api.SetPlaylist(&models.Playlist{Tracks: []models.Track{{ID: 1, Title: "One"}}})
		runner, output := newTestRunner(api)
		path := filepath.Join(t.TempDir(), "out.md")

		if err := runApp(ctx, runner, "playlist", "--format", "md", "--output", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tu.AssertFileExists(t, path)
		if !strings.Contains(tu.MustReadFile(t, path), "# Playlist") {
			t.Error("expected markdown export")
		}
		if !strings.Contains(output.String(), "Exported 1 track(s)") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("playlist bad format", func(t *testing.T) {
		runner, _ := newTestRunner(tu.NewFakeAPI())

		err := runApp(ctx, runner, "playlist", "--format", "xml")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("play", func(t *testing.T) {
		tc := []struct {
			name    string
			args    []string
			want    *int
			wantErr error
		}{
			{name: "resume", args: nil, want: nil},
			{name: "position", args: []string{"2"}, want: ptr(1)},
			{name: "zero", args: []string{"0"}, wantErr: shared.ErrInvalidArgument},
			{name: "not a number", args: []string{"two"}, wantErr: shared.ErrInvalidArgument},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				api := tu.NewFakeAPI()
				runner, _ := newTestRunner(api)

				err := runApp(ctx, runner, append([]string{"play"}, tt.args...)...)
				if tt.wantErr != nil {
					if !errors.Is(err, tt.wantErr) {
						t.Errorf("expected %v, got %v", tt.wantErr, err)
					}
					if api.Count("play") != 0 {
						t.Error("expected no play call")
					}
					return
				}

				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(api.PlayIndexes) != 1 {
					t.Fatalf("expected one play call, got %d", len(api.PlayIndexes))
				}
				got := api.PlayIndexes[0]
				if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
					t.Errorf("unexpected index %v", got)
				}
			})
		}
	})

	t.Run("transport", func(t *testing.T) {
		tc := []struct {
			command string
			call    string
			output  string
		}{
			{"pause", "pause", "✓ Paused"},
			{"stop", "stop", "✓ Stopped"},
			{"next", "next", "✓ Skipped to next track"},
			{"prev", "previous", "✓ Back to previous track"},
		}

		for _, tt := range tc {
			t.Run(tt.command, func(t *testing.T) {
				api := tu.NewFakeAPI()
				runner, output := newTestRunner(api)

				if err := runApp(ctx, runner, tt.command); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if api.Count(tt.call) != 1 {
					t.Errorf("expected one %s call, got %d", tt.call, api.Count(tt.call))
				}
				if !strings.Contains(output.String(), tt.output) {
					t.Errorf("unexpected output %q", output.String())
				}
			})
		}
	})

	t.Run("action failure", func(t *testing.T) {
		api := tu.NewFakeAPI()
		api.Fail("next", errors.New("status 500"))
		runner, output := newTestRunner(api)

		err := runApp(ctx, runner, "next")
		if !errors.Is(err, shared.ErrActionFailed) {
			t.Errorf("expected ErrActionFailed, got %v", err)
		}
		if output.String() != "" {
			t.Errorf("expected no output, got %q", output.String())
		}
	})

	t.Run("volume", func(t *testing.T) {
		tc := []struct {
			name    string
			args    []string
			want    []int
			wantErr error
		}{
			{name: "valid", args: []string{"30"}, want: []int{30}},
			{name: "out of range", args: []string{"150"}, wantErr: shared.ErrInvalidVolume},
			{name: "not a number", args: []string{"loud"}, wantErr: shared.ErrInvalidArgument},
			{name: "missing", args: nil, wantErr: shared.ErrMissingArgument},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				api := tu.NewFakeAPI()
				runner, _ := newTestRunner(api)

				err := runApp(ctx, runner, append([]string{"volume"}, tt.args...)...)
				if tt.wantErr != nil {
					if !errors.Is(err, tt.wantErr) {
						t.Errorf("expected %v, got %v", tt.wantErr, err)
					}
					if len(api.Volumes) != 0 {
						t.Errorf("expected no volume call, got %v", api.Volumes)
					}
					return
				}

				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(api.Volumes) != 1 || api.Volumes[0] != tt.want[0] {
					t.Errorf("expected volumes %v, got %v", tt.want, api.Volumes)
				}
			})
		}
	})

	t.Run("mute", func(t *testing.T) {
		api := tu.NewFakeAPI()
		runner, output := newTestRunner(api)

		if err := runApp(ctx, runner, "mute"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(api.Volumes) != 1 || api.Volumes[0] != 0 {
			t.Errorf("expected mute to set 0, got %v", api.Volumes)
		}
		if !strings.Contains(output.String(), "✓ Muted") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("unmute restores default", func(t *testing.T) {
		api := tu.NewFakeAPI()
		api.SetStatus(&models.PlayerStatus{State: models.StatePaused, Volume: 0})
		runner, output := newTestRunner(api)

		if err := runApp(ctx, runner, "mute"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(api.Volumes) != 1 || api.Volumes[0] != 50 {
			t.Errorf("expected unmute to set 50, got %v", api.Volumes)
		}
		if !strings.Contains(output.String(), "Volume restored to 50") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("remove", func(t *testing.T) {
		api := tu.NewFakeAPI()
		runner, _ := newTestRunner(api)

		if err := runApp(ctx, runner, "rm", "7"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(api.Removed) != 1 || api.Removed[0] != 7 {
			t.Errorf("expected track 7 removed, got %v", api.Removed)
		}
		if api.Count("playlist") != 1 {
			t.Errorf("expected playlist reload after remove, got %d", api.Count("playlist"))
		}

		if err := runApp(ctx, runner, "remove", "seven"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("clear", func(t *testing.T) {
		api := tu.NewFakeAPI()
		runner, output := newTestRunner(api)

		if err := runApp(ctx, runner, "clear"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if api.Count("clear") != 0 {
			t.Fatal("expected clear to require confirmation")
		}

		if err := runApp(ctx, runner, "clear", "--yes"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if api.Count("clear") != 1 {
			t.Errorf("expected one clear call, got %d", api.Count("clear"))
		}
		if !strings.Contains(output.String(), "✓ Playlist cleared") {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}

func TestTransferCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("upload", func(t *testing.T) {
		api := tu.NewFakeAPI()
		runner, output := newTestRunner(api)
		dir := t.TempDir()
		song := tu.MustWriteFile(t, dir, "song.mp3", 1536)
		notes := tu.MustWriteFile(t, dir, "notes.txt", 10)

		if err := runApp(ctx, runner, "upload", song, notes); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(api.Uploads) != 1 || api.Uploads[0] != "song.mp3" {
			t.Errorf("expected song.mp3 uploaded, got %v", api.Uploads)
		}
		out := output.String()
		for _, want := range []string{
			"Rejected files: notes.txt (invalid format)",
			"song.mp3 (1.5 KB)",
			"Uploaded 1/1 file(s)",
			"✓ song.mp3 (uploaded)",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output %q", want, out)
			}
		}
	})

	t.Run("upload stops at first failure", func(t *testing.T) {
		api := tu.NewFakeAPI()
		api.UploadErrs["b.wav"] = errors.New("status 500")
		runner, output := newTestRunner(api)
		dir := t.TempDir()
		paths := []string{
			tu.MustWriteFile(t, dir, "a.mp3", 10),
			tu.MustWriteFile(t, dir, "b.wav", 10),
			tu.MustWriteFile(t, dir, "c.flac", 10),
		}

		err := runApp(ctx, runner, append([]string{"upload"}, paths...)...)
		if !errors.Is(err, shared.ErrUploadFailed) {
			t.Errorf("expected ErrUploadFailed, got %v", err)
		}
		if api.Count("upload") != 2 || len(api.Uploads) != 1 {
			t.Errorf("expected c.flac never to be sent, got %v", api.Calls())
		}
		out := output.String()
		if !strings.Contains(out, "✗ b.wav (failed)") || !strings.Contains(out, "✗ c.flac (skipped)") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("upload with nothing accepted", func(t *testing.T) {
		api := tu.NewFakeAPI()
		runner, _ := newTestRunner(api)
		path := tu.MustWriteFile(t, t.TempDir(), "cover.jpg", 10)

		err := runApp(ctx, runner, "upload", path)
		if !errors.Is(err, shared.ErrNothingSelected) {
			t.Errorf("expected ErrNothingSelected, got %v", err)
		}
		if api.Count("upload") != 0 {
			t.Error("expected no upload calls")
		}
	})

	t.Run("upload missing file", func(t *testing.T) {
		runner, _ := newTestRunner(tu.NewFakeAPI())

		err := runApp(ctx, runner, "upload", filepath.Join(t.TempDir(), "gone.mp3"))
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("download", func(t *testing.T) {
		api := tu.NewFakeAPI()
		runner, output := newTestRunner(api)

		if err := runApp(ctx, runner, "download", "https://www.youtube.com/watch?v=abc"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(api.Downloads) != 1 || api.Downloads[0] != "https://www.youtube.com/watch?v=abc" {
			t.Errorf("unexpected downloads %v", api.Downloads)
		}
		out := output.String()
		if !strings.Contains(out, "Platform: YouTube") || !strings.Contains(out, "Download completed successfully") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("download invalid url", func(t *testing.T) {
		api := tu.NewFakeAPI()
		runner, _ := newTestRunner(api)

		err := runApp(ctx, runner, "download", "not a url")
		if !errors.Is(err, shared.ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL, got %v", err)
		}
		if api.Count("download") != 0 {
			t.Error("expected no download call")
		}
	})

	t.Run("download failure", func(t *testing.T) {
		api := tu.NewFakeAPI()
		api.Fail("download", errors.New("status 500"))
		runner, _ := newTestRunner(api)

		err := runApp(ctx, runner, "dl", "https://soundcloud.com/artist/track")
		if !errors.Is(err, shared.ErrDownloadFailed) {
			t.Errorf("expected ErrDownloadFailed, got %v", err)
		}
	})
}

func TestConfigCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("init writes example config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "config.toml")
		runner, output := newTestRunner(tu.NewFakeAPI())

		if err := runApp(ctx, runner, "--config", path, "config", "init"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tu.AssertFileExists(t, path)
		if _, err := shared.LoadConfig(path); err != nil {
			t.Errorf("written config does not load: %v", err)
		}
		if !strings.Contains(output.String(), "Configuration written to") {
			t.Errorf("unexpected output %q", output.String())
		}

		if err := runApp(ctx, runner, "--config", path, "config", "init"); err == nil {
			t.Error("expected error when config already exists")
		}
	})
}

func TestWatch(t *testing.T) {
	api := tu.NewFakeAPI()
	clock := clockwork.NewFakeClock()
	output := &syncBuffer{}
	runner := NewRunner(RunnerOpts{API: api, Output: output, Logger: log.New(io.Discard), Clock: clock})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- runApp(ctx, runner, "watch") }()

	tu.BlockUntil(t, clock, 1)
	if !strings.Contains(output.String(), "stopped") {
		t.Errorf("expected first snapshot, got %q", output.String())
	}

	api.SetStatus(&models.PlayerStatus{State: models.StatePlaying, CurrentTrack: &models.Track{ID: 1, Title: "Tune"}, Duration: 100, Volume: 80})
	clock.Advance(2 * time.Second)
	tu.Eventually(t, func() bool { return strings.Contains(output.String(), "Tune") }, "playing snapshot printed")

	before := output.String()
	clock.Advance(2 * time.Second)
	tu.Eventually(t, func() bool { return api.Count("status") >= 3 }, "third poll")
	if output.String() != before {
		t.Errorf("expected unchanged snapshot not to be printed again, got %q", output.String())
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watch did not stop")
	}

	calls := api.Count("status")
	clock.Advance(10 * time.Second)
	time.Sleep(10 * time.Millisecond)
	if api.Count("status") != calls {
		t.Error("expected polling to stop with the command")
	}
	if !strings.Contains(output.String(), "stopped watching") {
		t.Errorf("unexpected output %q", output.String())
	}
}
