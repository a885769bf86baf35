package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/jtp/internal/models"
	"github.com/desertthunder/jtp/internal/shared"
)

var (
	_ list.Item = trackItem{}
)

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track   models.Track
	index   int
	current bool
}

func (i trackItem) FilterValue() string { return i.track.Title }

func (i trackItem) Title() string {
	if i.current {
		return "▶ " + i.track.Title
	}
	return i.track.Title
}

func (i trackItem) Description() string {
	duration := "--:--"
	if i.track.Duration != nil {
		duration = shared.FormatDuration(*i.track.Duration)
	}
	return fmt.Sprintf("%d • %s • %s", i.index+1, i.track.Filename, duration)
}

// trackItems builds list items, marking the entry at current.
func trackItems(playlist *models.Playlist, current int) []list.Item {
	if playlist == nil {
		return []list.Item{}
	}
	items := make([]list.Item, len(playlist.Tracks))
	for i, t := range playlist.Tracks {
		items[i] = trackItem{track: t, index: i, current: i == current}
	}
	return items
}
