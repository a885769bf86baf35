package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jtp/internal/models"
	"github.com/desertthunder/jtp/internal/shared"
)

// MaxUploadSize is the largest file accepted for upload (50 MiB).
const MaxUploadSize int64 = 50 * 1024 * 1024

// SupportedFormats lists the accepted extensions, lower-case and without the dot.
var SupportedFormats = []string{"mp3", "wav", "flac", "m4a"}

// Candidate is a local file offered for upload.
type Candidate struct {
	Name string // Base name sent to the server
	Path string // Local path opened at transfer time
	Size int64
}

// Extension returns the lower-cased text after the last dot, or "" when there is none.
func (c Candidate) Extension() string {
	i := strings.LastIndex(c.Name, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(c.Name[i+1:])
}

// RejectReason explains why a candidate was refused.
type RejectReason int

const (
	ReasonInvalidFormat RejectReason = iota
	ReasonTooLarge
)

func (r RejectReason) String() string {
	switch r {
	case ReasonInvalidFormat:
		return "invalid format"
	case ReasonTooLarge:
		return "too large"
	default:
		return "rejected"
	}
}

// Err returns the validation sentinel matching the reason.
func (r RejectReason) Err() error {
	if r == ReasonTooLarge {
		return shared.ErrFileTooLarge
	}
	return shared.ErrUnsupportedFormat
}

// Rejection pairs a candidate with the reason it was refused.
type Rejection struct {
	Candidate
	Reason RejectReason
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s (%s)", r.Name, r.Reason)
}

// Validation partitions candidates, each side keeping input order.
type Validation struct {
	Accepted []Candidate
	Rejected []Rejection
}

// Summary returns one line listing every rejected file, or "" when nothing was rejected.
func (v Validation) Summary() string {
	if len(v.Rejected) == 0 {
		return ""
	}
	names := make([]string, len(v.Rejected))
	for i, r := range v.Rejected {
		names[i] = r.String()
	}
	return "Rejected files: " + strings.Join(names, ", ")
}

// UploadOutcome is the result for one file of a batch.
type UploadOutcome int

const (
	OutcomeUploaded UploadOutcome = iota
	OutcomeFailed
	OutcomeSkipped
)

func (o UploadOutcome) String() string {
	switch o {
	case OutcomeUploaded:
		return "uploaded"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// FileOutcome records what happened to one file in a batch.
type FileOutcome struct {
	Candidate Candidate
	Outcome   UploadOutcome
	Track     *models.Track
	Err       error
}

// UploadReport describes one batch. Per-file errors are kept for logs and are not shown to users.
type UploadReport struct {
	BatchID  string
	Outcomes []FileOutcome
}

// Uploaded returns how many files reached the server.
func (r *UploadReport) Uploaded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Outcome == OutcomeUploaded {
			n++
		}
	}
	return n
}

// Uploader transmits one file.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (*models.Track, error)
}

// UploadPipeline validates local files and sends them one at a time.
type UploadPipeline struct {
	api      Uploader
	playlist PlaylistRefresher
	maxSize  int64
	formats  []string
	open     func(string) (io.ReadCloser, error)
	logger   *log.Logger

	mu       sync.Mutex
	selected []Candidate
}

// NewUploadPipeline creates a pipeline with the default size limit and formats.
func NewUploadPipeline(api Uploader, playlist PlaylistRefresher, logger *log.Logger) *UploadPipeline {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &UploadPipeline{
		api:      api,
		playlist: playlist,
		maxSize:  MaxUploadSize,
		formats:  SupportedFormats,
		open:     func(path string) (io.ReadCloser, error) { return os.Open(path) },
		logger:   logger.With("component", "upload"),
	}
}

// WithLimits overrides the size limit and accepted formats, e.g. from [shared.UploadConfig].
func (p *UploadPipeline) WithLimits(maxSize int64, formats []string) *UploadPipeline {
	if maxSize > 0 {
		p.maxSize = maxSize
	}
	if len(formats) > 0 {
		normalized := make([]string, len(formats))
		for i, f := range formats {
			normalized[i] = strings.ToLower(strings.TrimPrefix(f, "."))
		}
		p.formats = normalized
	}
	return p
}

// Validate partitions cands without side effects. Format is checked before size.
func (p *UploadPipeline) Validate(cands []Candidate) Validation {
	var v Validation
	for _, c := range cands {
		switch {
		case !slices.Contains(p.formats, c.Extension()):
			v.Rejected = append(v.Rejected, Rejection{Candidate: c, Reason: ReasonInvalidFormat})
		case c.Size > p.maxSize:
			v.Rejected = append(v.Rejected, Rejection{Candidate: c, Reason: ReasonTooLarge})
		default:
			v.Accepted = append(v.Accepted, c)
		}
	}
	return v
}

// Select validates cands and replaces the current selection with the accepted ones.
func (p *UploadPipeline) Select(cands []Candidate) Validation {
	v := p.Validate(cands)

	p.mu.Lock()
	p.selected = v.Accepted
	p.mu.Unlock()

	for _, r := range v.Rejected {
		p.logger.Info("file rejected", "name", r.Name, "reason", r.Reason, "size", r.Size)
	}
	return v
}

// Selected returns a copy of the current selection.
func (p *UploadPipeline) Selected() []Candidate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.selected)
}

func (p *UploadPipeline) ClearSelection() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = nil
}

// Upload sends the selection strictly in order, stopping at the first failure.
//
// Progress after file k of N is k/N. Files after a failure are reported as skipped. Any failure is
// returned as [shared.ErrUploadFailed] and the selection is kept. On full success the selection is
// cleared and the playlist reloaded.
func (p *UploadPipeline) Upload(ctx context.Context, progress chan<- ProgressUpdate) (*UploadReport, error) {
	batch := p.Selected()
	if len(batch) == 0 {
		return nil, shared.ErrNothingSelected
	}

	report := &UploadReport{BatchID: shared.GenerateID(), Outcomes: make([]FileOutcome, len(batch))}
	for i, c := range batch {
		report.Outcomes[i] = FileOutcome{Candidate: c, Outcome: OutcomeSkipped}
	}

	logger := p.logger.With("batch", report.BatchID)
	logger.Info("upload started", "files", len(batch))
	sendProgress(progress, uploadStartUpdate(len(batch), report.BatchID))

	for i, c := range batch {
		track, err := p.send(ctx, c)
		if err != nil {
			report.Outcomes[i].Outcome = OutcomeFailed
			report.Outcomes[i].Err = err
			logger.Error("upload failed", "name", c.Name, "index", i, "error", err)
			sendProgress(progress, uploadFailedUpdate(i, len(batch), c.Name))
			return report, fmt.Errorf("%w: %s", shared.ErrUploadFailed, c.Name)
		}

		report.Outcomes[i].Outcome = OutcomeUploaded
		report.Outcomes[i].Track = track
		logger.Debug("file uploaded", "name", c.Name, "size", c.Size)
		sendProgress(progress, uploadedFileUpdate(i+1, len(batch), c.Name))
	}

	p.ClearSelection()
	logger.Info("upload completed", "files", len(batch))
	sendProgress(progress, uploadCompletedUpdate(report))

	if p.playlist != nil {
		if _, err := p.playlist.Refresh(ctx); err != nil {
			logger.Warn("playlist refresh after upload failed", "error", err)
		}
	}
	return report, nil
}

func (p *UploadPipeline) send(ctx context.Context, c Candidate) (*models.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := p.open(c.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return p.api.Upload(ctx, c.Name, f)
}

// CandidatesFromPaths stats each path. Directories and unreadable paths are returned as errors.
func CandidatesFromPaths(paths []string) ([]Candidate, error) {
	cands := make([]Candidate, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", shared.ErrInvalidArgument, path)
		}
		cands = append(cands, Candidate{Name: filepath.Base(path), Path: path, Size: info.Size()})
	}
	return cands, nil
}
