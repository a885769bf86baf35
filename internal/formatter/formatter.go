// package formatter renders player snapshots as plain text, Markdown, CSV, or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/jtp/internal/models"
	"github.com/desertthunder/jtp/internal/shared"
)

// Format names an output format accepted by the CLI.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "md"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// ParseFormat accepts text, md (or markdown), csv, and json, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension conventionally used for f.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatCSV:
		return ".csv"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

func trackDuration(t models.Track) string {
	if t.Duration == nil {
		return "--:--"
	}
	return shared.FormatDuration(*t.Duration)
}

// ExportToCSV converts a Playlist to CSV format with columns: Position, ID, Title, Filename, Duration, Current
func ExportToCSV(playlist *models.Playlist, current int) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "ID", "Title", "Filename", "Duration", "Current"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range playlist.Tracks {
		duration := ""
		if track.Duration != nil {
			duration = strconv.FormatFloat(*track.Duration, 'f', -1, 64)
		}
		record := []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(track.ID),
			track.Title,
			track.Filename,
			duration,
			strconv.FormatBool(i == current),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Playlist to Markdown, marking the current track in bold
func ExportToMarkdown(playlist *models.Playlist, current int) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Playlist\n\n")
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", playlist.Len()))

	if playlist.Len() == 0 {
		buf.WriteString("_No tracks in playlist._\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("## Tracks\n\n")
	for i, track := range playlist.Tracks {
		line := fmt.Sprintf("%s `%s` [%s]", track.Title, track.Filename, trackDuration(track))
		if i == current {
			line = "**" + line + "** (now playing)"
		}
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, line))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Playlist to plain text format, marking the current track with an arrow
func ExportToText(playlist *models.Playlist, current int) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", playlist.Len()))

	for i, track := range playlist.Tracks {
		marker := "  "
		if i == current {
			marker = "▶ "
		}
		buf.WriteString(fmt.Sprintf("%s%d. %s [%s] (id %d)\n", marker, i+1, track.Title, trackDuration(track), track.ID))
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the playlist as indented JSON
func ExportToJSON(playlist *models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(playlist, true)
}

// RenderPlaylist dispatches to the exporter for format.
func RenderPlaylist(playlist *models.Playlist, current int, format Format) ([]byte, error) {
	if playlist == nil {
		playlist = &models.Playlist{}
	}
	switch format {
	case FormatMarkdown:
		return ExportToMarkdown(playlist, current)
	case FormatCSV:
		return ExportToCSV(playlist, current)
	case FormatJSON:
		return ExportToJSON(playlist)
	default:
		return ExportToText(playlist, current)
	}
}

// StatusLine renders a one-line summary such as "▶ playing  song  1:02 / 3:45  vol 80".
func StatusLine(status *models.PlayerStatus) string {
	if status == nil {
		return "no status"
	}

	icon := "■"
	switch status.State {
	case models.StatePlaying:
		icon = "▶"
	case models.StatePaused:
		icon = "⏸"
	}

	title := "No track selected"
	if status.CurrentTrack != nil {
		title = status.CurrentTrack.Title
	}

	return fmt.Sprintf("%s %-7s  %s  %s / %s  vol %d",
		icon, status.State, title,
		shared.FormatDuration(status.Position), shared.FormatDuration(status.Duration), status.Volume)
}

// ExportStatus renders the status as text or JSON; other formats fall back to text.
func ExportStatus(status *models.PlayerStatus, format Format) ([]byte, error) {
	if format == FormatJSON {
		return shared.MarshalJSON(status, true)
	}
	return []byte(StatusLine(status) + "\n"), nil
}

// WritePlaylistExport renders the playlist and writes it to path.
//
// Defaults to playlist{ext} in the working directory.
func WritePlaylistExport(playlist *models.Playlist, current int, format Format, path string) (string, error) {
	if path == "" {
		path = "playlist" + format.Extension()
	}

	data, err := RenderPlaylist(playlist, current, format)
	if err != nil {
		return "", fmt.Errorf("failed to render playlist: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}
