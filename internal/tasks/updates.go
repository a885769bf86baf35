package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Percent returns Step/Total as a percentage.
func (u ProgressUpdate) Percent() float64 {
	if u.Total <= 0 {
		return 0
	}
	return float64(u.Step) / float64(u.Total) * 100
}

// Operation phase enumeration
type Phase int

const (
	UploadFile Phase = iota
	UploadDone
	SubmitDownload
	DownloadDone
)

func (p Phase) String() string {
	switch p {
	case UploadFile:
		return "upload_file"
	case UploadDone:
		return "upload_done"
	case SubmitDownload:
		return "submit_download"
	case DownloadDone:
		return "download_done"
	default:
		return ""
	}
}

func uploadStartUpdate(total int, batchID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFile,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Uploading %d file(s)...", total),
		Data:    batchID,
	}
}

func uploadedFileUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFile,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, name),
	}
}

func uploadFailedUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadDone,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s", step+1, total, name),
	}
}

func uploadCompletedUpdate(report *UploadReport) ProgressUpdate {
	total := len(report.Outcomes)
	noun := "file"
	if total != 1 {
		noun = "files"
	}
	return ProgressUpdate{
		Phase:   UploadDone,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("%d %s uploaded successfully", total, noun),
		Data:    report,
	}
}

func downloadStartUpdate(req DownloadRequest) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SubmitDownload,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Starting %s download... this may take a few minutes.", req.Platform),
		Data:    req,
	}
}

func downloadCompletedUpdate(req DownloadRequest) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadDone,
		Step:    1,
		Total:   1,
		Message: "Download completed successfully",
		Data:    req,
	}
}

func downloadFailedUpdate(req DownloadRequest) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadDone,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("✗ %s", req.Raw),
		Data:    req,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full, skip this update
	}
}
