// API service for making HTTP requests to the player's FastAPI server
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/jtp/internal/models"
	"github.com/desertthunder/jtp/internal/shared"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-ID"

var _ RemoteAPI = (*APIService)(nil)

// APIService implements [RemoteAPI] against the player's HTTP server.
type APIService struct {
	baseURL         string
	httpClient      *http.Client
	requestTimeout  time.Duration
	uploadTimeout   time.Duration
	downloadTimeout time.Duration
	limiter         *rate.Limiter
}

// NewAPIService creates a new API service instance from the server, timeout, and client settings in cfg.
//
// A nil cfg uses [shared.DefaultConfig]; a nil client uses [http.DefaultClient].
func NewAPIService(cfg *shared.Config, client *http.Client) *APIService {
	if cfg == nil {
		cfg = shared.DefaultConfig()
	}
	if client == nil {
		client = http.DefaultClient
	}

	a := &APIService{
		baseURL:         strings.TrimRight(cfg.Server.BaseURL, "/"),
		httpClient:      client,
		requestTimeout:  cfg.Timeouts.Request.Duration,
		uploadTimeout:   cfg.Timeouts.Upload.Duration,
		downloadTimeout: cfg.Timeouts.Download.Duration,
	}

	if rps := cfg.Client.RequestsPerSecond; rps > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	return a
}

// BaseURL returns the server address requests are sent to.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// do sends one request bounded by timeout and decodes a JSON body into result when result is non-nil.
func (a *APIService) do(ctx context.Context, timeout time.Duration, method, path string, body io.Reader, contentType string, result any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %s %s: %w", shared.ErrAPIRequest, method, path, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %w", shared.ErrAPIRequest, err)
	}

	req.Header.Set(requestIDHeader, shared.GenerateID())
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w: %s %s: %w", shared.ErrAPIRequest, shared.ErrTimeout, method, path, err)
		}
		return fmt.Errorf("%w: %s %s: %w", shared.ErrAPIRequest, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("%w: %s %s (status %d): %s", shared.ErrAPIRequest, method, path, resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("%w: %s %s: status %d", shared.ErrAPIRequest, method, path, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %w", shared.ErrAPIRequest, err)
		}
	}

	return nil
}

func (a *APIService) postJSON(ctx context.Context, timeout time.Duration, path string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: failed to encode request: %w", shared.ErrAPIRequest, err)
	}
	return a.do(ctx, timeout, http.MethodPost, path, bytes.NewReader(data), "application/json", nil)
}

// Status fetches the current player state.
//
// Calls GET /status.
func (a *APIService) Status(ctx context.Context) (*models.PlayerStatus, error) {
	var resp statusResponse
	if err := a.do(ctx, a.requestTimeout, http.MethodGet, "/status", nil, "", &resp); err != nil {
		return nil, err
	}
	return toStatus(resp), nil
}

// Playlist fetches the server's track list.
//
// Calls GET /playlist.
func (a *APIService) Playlist(ctx context.Context) (*models.Playlist, error) {
	var resp models.Playlist
	if err := a.do(ctx, a.requestTimeout, http.MethodGet, "/playlist", nil, "", &resp); err != nil {
		return nil, err
	}

	playlist, err := toPlaylist(&resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	return playlist, nil
}

// Play starts the track at index or resumes when index is nil.
//
// Calls POST /play with a JSON body {"index": n}, or {} to resume. The index is repeated as a query
// parameter for servers that read it from the URL.
func (a *APIService) Play(ctx context.Context, index *int) error {
	path := "/play"
	if index != nil {
		path += "?" + url.Values{"index": {strconv.Itoa(*index)}}.Encode()
	}
	return a.postJSON(ctx, a.requestTimeout, path, playRequest{Index: index})
}

func (a *APIService) Pause(ctx context.Context) error {
	return a.do(ctx, a.requestTimeout, http.MethodPost, "/pause", nil, "", nil)
}

func (a *APIService) Stop(ctx context.Context) error {
	return a.do(ctx, a.requestTimeout, http.MethodPost, "/stop", nil, "", nil)
}

func (a *APIService) Next(ctx context.Context) error {
	return a.do(ctx, a.requestTimeout, http.MethodPost, "/next", nil, "", nil)
}

func (a *APIService) Previous(ctx context.Context) error {
	return a.do(ctx, a.requestTimeout, http.MethodPost, "/previous", nil, "", nil)
}

// SetVolume sets the output level. Range checking is left to callers.
//
// Calls POST /volume.
func (a *APIService) SetVolume(ctx context.Context, volume int) error {
	return a.postJSON(ctx, a.requestTimeout, "/volume", volumeRequest{Volume: volume})
}

// Upload streams r as a multipart form with field "file" named name.
//
// The whole form is buffered in memory before the request is sent.
func (a *APIService) Upload(ctx context.Context, name string, r io.Reader) (*models.Track, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create form: %w", shared.ErrAPIRequest, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", shared.ErrAPIRequest, name, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%w: failed to finalize form: %w", shared.ErrAPIRequest, err)
	}

	var resp uploadResponse
	if err := a.do(ctx, a.uploadTimeout, http.MethodPost, "/upload", &buf, mw.FormDataContentType(), &resp); err != nil {
		return nil, err
	}
	return resp.Track, nil
}

// Download submits a URL for server-side ingestion.
//
// Calls POST /download.
func (a *APIService) Download(ctx context.Context, rawURL string) error {
	return a.postJSON(ctx, a.downloadTimeout, "/download", downloadRequest{URL: rawURL})
}

// ClearPlaylist removes every track.
//
// Calls DELETE /playlist.
func (a *APIService) ClearPlaylist(ctx context.Context) error {
	return a.do(ctx, a.requestTimeout, http.MethodDelete, "/playlist", nil, "", nil)
}

// RemoveTrack removes one track by ID.
//
// Calls DELETE /track/{id}.
func (a *APIService) RemoveTrack(ctx context.Context, id int) error {
	return a.do(ctx, a.requestTimeout, http.MethodDelete, "/track/"+strconv.Itoa(id), nil, "", nil)
}
