package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/jtp/internal/formatter"
	"github.com/desertthunder/jtp/internal/models"
	"github.com/desertthunder/jtp/internal/shared"
	"github.com/desertthunder/jtp/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlayerView ViewState = iota
	UploadView
	DownloadView
	ConfirmClearView
)

const (
	volumeStep    = 5
	updatesBuffer = 64
	noticeTimeout = 5 * time.Second
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.Engine
	width        int
	height       int
	tracks       list.Model
	status       *models.PlayerStatus
	playlist     *models.Playlist
	updates      chan Msg
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	bar          progress.Model
	input        textinput.Model
	started      bool
	busy         bool
	notice       string
	noticeErr    bool
	noticeID     int
	noticeTTL    time.Duration
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model over engine and registers its snapshot hooks.
//
// The engine must not have been started; Init starts it.
func NewModel(ctx context.Context, engine *tasks.Engine) *Model {
	tracks := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	tracks.Title = "Playlist"
	tracks.SetShowHelp(false)
	tracks.KeyMap.Quit.SetEnabled(false)

	input := textinput.New()
	input.CharLimit = 2048

	m := &Model{
		ctx:       ctx,
		view:      PlayerView,
		engine:    engine,
		tracks:    tracks,
		updates:   make(chan Msg, updatesBuffer),
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		input:     input,
		help:      help.New(),
		keys:      newKeyMap(),
		noticeTTL: noticeTimeout,
	}

	engine.OnStatus(func(s *models.PlayerStatus) { m.push(statusMsg(s)) })
	engine.OnPlaylist(func(p *models.Playlist) { m.push(playlistMsg(p)) })
	return m
}

// push never blocks the poller; a full buffer drops the update and the next poll replaces it.
func (m *Model) push(msg Msg) {
	select {
	case m.updates <- msg:
	default:
	}
}

// Init starts the engine and begins listening for snapshots.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.start(), m.waitForUpdate())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tracks.SetSize(msg.Width-4, max(msg.Height-12, 4))
		m.bar.Width = max(msg.Width-24, 10)
		m.input.Width = max(msg.Width-8, 20)
		return m, nil

	case tea.KeyMsg:
		if m.err != nil || !m.started {
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}

		switch m.view {
		case PlayerView:
			return m.handlePlayerKeys(msg)
		case UploadView:
			return m.handleUploadKeys(msg)
		case DownloadView:
			return m.handleDownloadKeys(msg)
		case ConfirmClearView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateComponents(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgStarted:
		if err, ok := msg.data.(error); ok && err != nil {
			m.err = err
			return m, nil
		}
		m.started = true
		m.status = m.engine.Status()
		m.playlist = m.engine.Tracks()
		m.refreshItems()
		return m, nil

	case MsgStatus:
		m.status = msg.data.(*models.PlayerStatus)
		m.refreshItems()
		return m, m.waitForUpdate()

	case MsgPlaylist:
		m.playlist = msg.data.(*models.Playlist)
		m.refreshItems()
		return m, m.waitForUpdate()

	case MsgActionDone:
		result := msg.data.(actionResult)
		if result.err != nil {
			return m, m.setNotice(shared.UserMessage(result.err), true)
		}
		return m, nil

	case MsgNoticeExpired:
		if msg.data.(int) == m.noticeID && !m.busy {
			m.dismissNotice()
		}
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		expire := m.setNotice(m.progress.Message, false)
		if m.progressChan != nil {
			return m, tea.Batch(expire, m.waitForProgress(m.progressChan))
		}
		return m, expire

	case MsgUploadDone:
		result := msg.data.(uploadResult)
		m.busy = false
		m.progressChan = nil
		if result.err != nil {
			return m, m.setNotice(shared.UserMessage(result.err), true)
		}
		m.view = PlayerView
		m.input.Blur()
		return m, m.setNotice(fmt.Sprintf("Uploaded %d file(s)", result.report.Uploaded()), false)

	case MsgDownloadDone:
		result := msg.data.(downloadResult)
		m.busy = false
		m.progressChan = nil
		if result.err != nil {
			m.input.SetValue(m.engine.Downloads.Input())
			return m, m.setNotice(shared.UserMessage(result.err), true)
		}
		m.input.Reset()
		m.input.Blur()
		m.view = PlayerView
		return m, m.setNotice(fmt.Sprintf("Downloaded from %s", result.req.Platform), false)
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %s\n\nPress q to quit", shared.UserMessage(m.err)))
	}
	if !m.started {
		return styles.help.Render("Connecting to music player...")
	}

	switch m.view {
	case PlayerView:
		return m.renderPlayer()
	case UploadView:
		return m.renderUpload()
	case DownloadView:
		return m.renderDownload()
	case ConfirmClearView:
		return m.renderConfirm()
	default:
		return ""
	}
}

func (m *Model) handlePlayerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.tracks.FilterState() == list.Filtering {
		return m.updateComponents(msg)
	}

	m.dismissNotice()

	d := m.engine.Dispatcher
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		if m.status.IsPlaying() {
			return m, m.action("pause", d.Pause)
		}
		return m, m.action("play", func(ctx context.Context) error { return d.Play(ctx, nil) })
	case key.Matches(msg, m.keys.play):
		if item, ok := m.selected(); ok {
			index := item.index
			return m, m.action("play", func(ctx context.Context) error { return d.Play(ctx, &index) })
		}
		return m, nil
	case key.Matches(msg, m.keys.stop):
		return m, m.action("stop", d.Stop)
	case key.Matches(msg, m.keys.next):
		return m, m.action("next", d.Next)
	case key.Matches(msg, m.keys.previous):
		return m, m.action("previous", d.Previous)
	case key.Matches(msg, m.keys.volUp):
		return m, m.setVolume(m.volume() + volumeStep)
	case key.Matches(msg, m.keys.volDown):
		return m, m.setVolume(m.volume() - volumeStep)
	case key.Matches(msg, m.keys.mute):
		current := m.volume()
		return m, m.action("mute", func(ctx context.Context) error {
			_, err := d.ToggleMute(ctx, current)
			return err
		})
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.selected(); ok {
			id := item.track.ID
			return m, m.action("remove", func(ctx context.Context) error { return d.RemoveTrack(ctx, id) })
		}
		return m, nil
	case key.Matches(msg, m.keys.clear):
		m.view = ConfirmClearView
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.action("refresh", m.refresh)
	case key.Matches(msg, m.keys.upload):
		m.view = UploadView
		m.input.Reset()
		m.input.Placeholder = "song.mp3, other.wav"
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.download):
		m.view = DownloadView
		m.input.SetValue(m.engine.Downloads.Input())
		m.input.Placeholder = "https://www.youtube.com/watch?v=..."
		return m, m.input.Focus()
	}

	return m.updateComponents(msg)
}

func (m *Model) handleUploadKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlayerView
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.submit):
		if m.busy {
			return m, nil
		}
		return m, m.selectAndUpload(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleDownloadKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlayerView
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.submit):
		if m.busy {
			return m, nil
		}
		return m, m.startDownload(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.engine.Downloads.SetInput(m.input.Value())
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = PlayerView
		return m, m.action("clear", m.engine.Dispatcher.ClearPlaylist)
	case key.Matches(msg, m.keys.no), msg.Type == tea.KeyCtrlC:
		m.view = PlayerView
	}
	return m, nil
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlayerView:
		m.tracks, cmd = m.tracks.Update(msg)
	case UploadView, DownloadView:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// setNotice shows text and returns a command that clears it after noticeTTL unless a newer notice
// replaced it first.
func (m *Model) setNotice(text string, isErr bool) tea.Cmd {
	m.notice = text
	m.noticeErr = isErr
	m.noticeID++
	if m.noticeTTL <= 0 {
		return nil
	}

	id := m.noticeID
	return tea.Tick(m.noticeTTL, func(time.Time) tea.Msg { return noticeExpiredMsg(id) })
}

func (m *Model) dismissNotice() {
	m.notice = ""
	m.noticeErr = false
	m.noticeID++
}

func (m *Model) refreshItems() {
	current := -1
	if m.status != nil && m.status.CurrentTrack != nil {
		current = m.playlist.IndexOf(m.status.CurrentTrack.ID)
	}
	m.tracks.SetItems(trackItems(m.playlist, current))
	m.tracks.Title = fmt.Sprintf("Playlist (%d)", m.playlist.Len())
}

func (m *Model) selected() (trackItem, bool) {
	item, ok := m.tracks.SelectedItem().(trackItem)
	return item, ok
}

func (m *Model) volume() int {
	if m.status == nil {
		return 0
	}
	return m.status.Volume
}

func (m *Model) setVolume(v int) tea.Cmd {
	v = min(max(v, 0), 100)
	return m.action("volume", func(ctx context.Context) error {
		return m.engine.Dispatcher.SetVolume(ctx, v)
	})
}

func (m *Model) refresh(ctx context.Context) error {
	statusErr := m.engine.Poller.Refresh(ctx)
	_, playlistErr := m.engine.Playlist.Refresh(ctx)
	return errors.Join(statusErr, playlistErr)
}

// selectAndUpload validates comma separated paths and uploads the accepted files.
//
// Empty input retries the selection kept from a failed batch.
func (m *Model) selectAndUpload(raw string) tea.Cmd {
	paths := splitPaths(raw)
	if len(paths) == 0 {
		if len(m.engine.Uploads.Selected()) == 0 {
			return m.setNotice(shared.UserMessage(shared.ErrNothingSelected), true)
		}
		return m.startUpload()
	}

	cands, err := tasks.CandidatesFromPaths(paths)
	if err != nil {
		return m.setNotice(err.Error(), true)
	}

	var expire tea.Cmd
	v := m.engine.Uploads.Select(cands)
	if summary := v.Summary(); summary != "" {
		expire = m.setNotice(summary, true)
	}
	if len(v.Accepted) == 0 {
		return expire
	}
	m.input.Reset()
	return tea.Batch(expire, m.startUpload())
}

func splitPaths(raw string) []string {
	var paths []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func (m *Model) start() tea.Cmd {
	return func() tea.Msg {
		return startedMsg(m.engine.Start(m.ctx))
	}
}

func (m *Model) action(name string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg(name, fn(m.ctx))
	}
}

func (m *Model) startUpload() tea.Cmd {
	ch := make(chan tasks.ProgressUpdate, 16)
	m.progressChan = ch
	m.progress = tasks.ProgressUpdate{}
	m.busy = true

	upload := func() tea.Msg {
		report, err := m.engine.Uploads.Upload(m.ctx, ch)
		close(ch)
		return uploadDoneMsg(report, err)
	}
	return tea.Batch(upload, m.waitForProgress(ch))
}

func (m *Model) startDownload(raw string) tea.Cmd {
	ch := make(chan tasks.ProgressUpdate, 4)
	m.progressChan = ch
	m.progress = tasks.ProgressUpdate{}
	m.busy = true

	download := func() tea.Msg {
		req, err := m.engine.Downloads.SubmitURL(m.ctx, raw, ch)
		close(ch)
		return downloadDoneMsg(req, err)
	}
	return tea.Batch(download, m.waitForProgress(ch))
}

func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.updates:
			return msg
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) waitForProgress(ch <-chan tasks.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return nil
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderStatus() string {
	s := m.status
	if s == nil {
		return styles.panel.Render(styles.help.Render("No status yet"))
	}

	volume := fmt.Sprintf("Volume %d%%", s.Volume)
	if s.Volume == 0 {
		volume = styles.warn.Render("Muted")
	}

	lines := []string{
		styles.playing.Render(formatter.StatusLine(s)),
		fmt.Sprintf("%s %s / %s", m.bar.ViewAs(s.Progress()/100),
			shared.FormatDuration(s.Position), shared.FormatDuration(s.Duration)),
		volume,
	}
	return styles.panel.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderNotice() string {
	if m.notice == "" {
		return ""
	}
	if m.noticeErr {
		return styles.err.Render(m.notice)
	}
	return styles.ok.Render(m.notice)
}

func (m *Model) renderPlayer() string {
	sections := []string{m.renderStatus(), m.tracks.View()}
	if notice := m.renderNotice(); notice != "" {
		sections = append(sections, notice)
	}
	sections = append(sections, m.help.View(m.keys))
	return strings.Join(sections, "\n\n")
}

func (m *Model) renderUpload() string {
	title := styles.title.Render("Upload Files")
	info := fmt.Sprintf("Formats: %s", strings.Join(tasks.SupportedFormats, ", "))
	if selected := m.engine.Uploads.Selected(); len(selected) > 0 && !m.busy {
		names := make([]string, len(selected))
		for i, c := range selected {
			names[i] = fmt.Sprintf("%s (%s)", c.Name, shared.FormatFileSize(c.Size))
		}
		info += "\nSelected: " + strings.Join(names, ", ") + "\nPress enter with empty input to retry"
	}

	body := m.input.View()
	if m.busy {
		body = fmt.Sprintf("%s\n%s", m.bar.ViewAs(m.progress.Percent()/100), m.progress.Message)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.submit, m.keys.back})
	return strings.Join([]string{title, info, body, m.renderNotice(), helpView}, "\n\n")
}

func (m *Model) renderDownload() string {
	title := styles.title.Render("Download from URL")

	hint := styles.help.Render("Paste a YouTube, SoundCloud, or other media URL")
	if req, err := tasks.ValidateURL(m.input.Value()); err == nil {
		hint = styles.help.Render("Platform: " + req.Platform.String())
	}

	body := m.input.View()
	if m.busy {
		body = styles.warn.Render("Downloading audio... this may take a few minutes")
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.submit, m.keys.back})
	return strings.Join([]string{title, hint, body, m.renderNotice(), helpView}, "\n\n")
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Clear the playlist?")
	info := fmt.Sprintf("All %d track(s) will be removed from the server.", m.playlist.Len())
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
