package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/jtp/internal/models"
	"github.com/desertthunder/jtp/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStarted MsgKind = iota
	MsgStatus
	MsgPlaylist
	MsgActionDone
	MsgProgressUpdate
	MsgUploadDone
	MsgDownloadDone
	MsgNoticeExpired
)

type actionResult struct {
	name string
	err  error
}

type uploadResult struct {
	report *tasks.UploadReport
	err    error
}

type downloadResult struct {
	req tasks.DownloadRequest
	err error
}

// startedMsg is the constructor for [MsgStarted]
func startedMsg(err error) Msg {
	return Msg{kind: MsgStarted, data: err}
}

// statusMsg is the constructor for [MsgStatus]
func statusMsg(status *models.PlayerStatus) Msg {
	return Msg{kind: MsgStatus, data: status}
}

// playlistMsg is the constructor for [MsgPlaylist]
func playlistMsg(playlist *models.Playlist) Msg {
	return Msg{kind: MsgPlaylist, data: playlist}
}

// actionDoneMsg is the constructor for [MsgActionDone]
func actionDoneMsg(name string, err error) Msg {
	return Msg{kind: MsgActionDone, data: actionResult{name: name, err: err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// uploadDoneMsg is the constructor for [MsgUploadDone]
func uploadDoneMsg(report *tasks.UploadReport, err error) Msg {
	return Msg{kind: MsgUploadDone, data: uploadResult{report: report, err: err}}
}

// downloadDoneMsg is the constructor for [MsgDownloadDone]
func downloadDoneMsg(req tasks.DownloadRequest, err error) Msg {
	return Msg{kind: MsgDownloadDone, data: downloadResult{req: req, err: err}}
}

// noticeExpiredMsg is the constructor for [MsgNoticeExpired]
func noticeExpiredMsg(id int) Msg {
	return Msg{kind: MsgNoticeExpired, data: id}
}
