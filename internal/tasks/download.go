package tasks

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jtp/internal/shared"
)

// Platform is a display hint derived from a URL's host. It never changes what is sent.
type Platform int

const (
	PlatformOther Platform = iota
	PlatformYouTube
	PlatformSoundCloud
)

func (p Platform) String() string {
	switch p {
	case PlatformYouTube:
		return "YouTube"
	case PlatformSoundCloud:
		return "SoundCloud"
	default:
		return "Other"
	}
}

var platformDomains = []struct {
	platform Platform
	domains  []string
}{
	{PlatformYouTube, []string{"youtube.com", "youtu.be"}},
	{PlatformSoundCloud, []string{"soundcloud.com"}},
}

// DetectPlatform matches the host and its parent domains against known platforms.
func DetectPlatform(u *url.URL) Platform {
	if u == nil {
		return PlatformOther
	}
	host := strings.ToLower(u.Hostname())
	for _, entry := range platformDomains {
		for _, d := range entry.domains {
			if host == d || strings.HasSuffix(host, "."+d) {
				return entry.platform
			}
		}
	}
	return PlatformOther
}

// DownloadRequest is a validated URL ready for submission.
type DownloadRequest struct {
	Raw      string
	URL      *url.URL
	Platform Platform
}

// ValidateURL checks that raw is an absolute URL. The scheme is not restricted.
func ValidateURL(raw string) (DownloadRequest, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DownloadRequest{}, shared.ErrEmptyURL
	}

	u, err := url.Parse(trimmed)
	if err != nil || !u.IsAbs() || (u.Host == "" && u.Opaque == "") {
		return DownloadRequest{}, fmt.Errorf("%w: %q", shared.ErrInvalidURL, trimmed)
	}

	return DownloadRequest{Raw: trimmed, URL: u, Platform: DetectPlatform(u)}, nil
}

// Downloader asks the server to ingest audio from a URL.
type Downloader interface {
	Download(ctx context.Context, url string) error
}

// DownloadIngestor holds the pending URL and submits it for server-side ingestion.
type DownloadIngestor struct {
	api      Downloader
	playlist PlaylistRefresher
	logger   *log.Logger

	mu    sync.Mutex
	input string
}

func NewDownloadIngestor(api Downloader, playlist PlaylistRefresher, logger *log.Logger) *DownloadIngestor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &DownloadIngestor{api: api, playlist: playlist, logger: logger.With("component", "download")}
}

func (d *DownloadIngestor) SetInput(raw string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.input = raw
}

func (d *DownloadIngestor) Input() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.input
}

// Submit validates the pending input and sends it. Success clears the input and reloads the playlist;
// failure keeps the input so it can be corrected and retried.
func (d *DownloadIngestor) Submit(ctx context.Context, progress chan<- ProgressUpdate) (DownloadRequest, error) {
	req, err := ValidateURL(d.Input())
	if err != nil {
		return req, err
	}

	logger := d.logger.With("url", req.Raw, "platform", req.Platform)
	logger.Info("download submitted")
	sendProgress(progress, downloadStartUpdate(req))

	if err := d.api.Download(ctx, req.Raw); err != nil {
		logger.Error("download failed", "error", err)
		sendProgress(progress, downloadFailedUpdate(req))
		return req, fmt.Errorf("%w: %s", shared.ErrDownloadFailed, req.Raw)
	}

	d.mu.Lock()
	if strings.TrimSpace(d.input) == req.Raw {
		d.input = ""
	}
	d.mu.Unlock()

	logger.Info("download accepted")
	sendProgress(progress, downloadCompletedUpdate(req))

	if d.playlist != nil {
		if _, err := d.playlist.Refresh(ctx); err != nil {
			logger.Warn("playlist refresh after download failed", "error", err)
		}
	}
	return req, nil
}

// SubmitURL sets raw as the input and submits it.
func (d *DownloadIngestor) SubmitURL(ctx context.Context, raw string, progress chan<- ProgressUpdate) (DownloadRequest, error) {
	d.SetInput(raw)
	return d.Submit(ctx, progress)
}
