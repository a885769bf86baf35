package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/jtp/internal/shared"
	"github.com/desertthunder/jtp/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Upload validates the given files and uploads the accepted ones in order.
//
// Rejected files are listed and skipped. The batch stops at the first failed upload.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one file", shared.ErrMissingArgument)
	}

	cands, err := tasks.CandidatesFromPaths(paths)
	if err != nil {
		return err
	}

	engine, err := r.newEngine()
	if err != nil {
		return err
	}
	defer engine.Stop()

	v := engine.Uploads.Select(cands)
	if summary := v.Summary(); summary != "" {
		r.writePlain("%s\n", summary)
	}
	if len(v.Accepted) == 0 {
		return shared.ErrNothingSelected
	}

	for _, c := range v.Accepted {
		r.writePlain("  %s (%s)\n", c.Name, shared.FormatFileSize(c.Size))
	}
	r.writePlain("\n")

	report, err := r.withProgress(func(progress chan<- tasks.ProgressUpdate) (*tasks.UploadReport, error) {
		return engine.Uploads.Upload(ctx, progress)
	})

	if report != nil {
		r.writePlainHeader(fmt.Sprintf("Uploaded %d/%d file(s)", report.Uploaded(), len(report.Outcomes)))
		for _, o := range report.Outcomes {
			marker := "✓"
			if o.Outcome != tasks.OutcomeUploaded {
				marker = "✗"
			}
			r.writePlain("%s %s (%s)\n", marker, o.Candidate.Name, o.Outcome)
		}
	}
	return err
}

// Download submits a URL for server-side ingestion and waits for the server to finish.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.Args().First()
	if raw == "" {
		return fmt.Errorf("%w: URL", shared.ErrMissingArgument)
	}

	req, err := tasks.ValidateURL(raw)
	if err != nil {
		return err
	}
	r.writePlain("Platform: %s\n", req.Platform)

	engine, err := r.newEngine()
	if err != nil {
		return err
	}
	defer engine.Stop()

	_, err = r.withProgress(func(progress chan<- tasks.ProgressUpdate) (*tasks.UploadReport, error) {
		_, err := engine.Downloads.SubmitURL(ctx, req.Raw, progress)
		return nil, err
	})
	return err
}

// withProgress runs fn with a progress channel and prints each update until fn returns.
func (r *Runner) withProgress(fn func(chan<- tasks.ProgressUpdate) (*tasks.UploadReport, error)) (*tasks.UploadReport, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progressCh {
			switch update.Phase {
			case tasks.UploadFile:
				if update.Step == 0 {
					r.writePlain("📤 %s\n", update.Message)
				} else {
					r.writePlain("   %s\n", update.Message)
				}
			case tasks.SubmitDownload:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.UploadDone, tasks.DownloadDone:
				r.writePlain("\n%s\n", update.Message)
			}
		}
	}()

	report, err := fn(progressCh)
	close(progressCh)
	wg.Wait()

	return report, err
}
