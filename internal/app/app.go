// Package app contains the root application model.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/csvedit/internal/cachemanager"
	"github.com/zjrosen/csvedit/internal/config"
	"github.com/zjrosen/csvedit/internal/flags"
	"github.com/zjrosen/csvedit/internal/keys"
	"github.com/zjrosen/csvedit/internal/log"
	"github.com/zjrosen/csvedit/internal/navigation"
	"github.com/zjrosen/csvedit/internal/pubsub"
	"github.com/zjrosen/csvedit/internal/sessions/domain"
	"github.com/zjrosen/csvedit/internal/sheet"
	"github.com/zjrosen/csvedit/internal/ui/gridview"
	"github.com/zjrosen/csvedit/internal/ui/help"
	"github.com/zjrosen/csvedit/internal/ui/logoverlay"
	"github.com/zjrosen/csvedit/internal/ui/modal"
	"github.com/zjrosen/csvedit/internal/ui/toaster"
	"github.com/zjrosen/csvedit/internal/watcher"
)

// ErrNoFile is returned by New when no file path was supplied.
var ErrNoFile = errors.New("app: a file path is required")

// Options configures the application.
type Options struct {
	Path   string
	Config config.Config

	// ConfigPath receives editor preference changes. Empty disables saving them.
	ConfigPath string

	// Sessions remembers the cursor per file. Nil disables session restore.
	Sessions domain.SessionRepository

	// TextCache memoizes serialized text. Nil disables caching.
	TextCache cachemanager.CacheManager[string]

	// Flags gates optional behavior. Nil disables every flag.
	Flags *flags.Registry

	// Debug enables the log overlay (f12).
	Debug bool
}

// quitRequest tags the unsaved-changes confirmation.
type quitRequest struct{}

// Model is the root application state.
type Model struct {
	path       string
	cfg        config.Config
	configPath string
	keys       keys.KeyMap
	flags      *flags.Registry

	sheet     *sheet.Sheet
	savedText string
	isNew     bool
	// dirty follows sheet change events for the status bar. Decisions
	// that must not lag, such as quitting, use Dirty.
	dirty bool

	grid       gridview.Model
	help       help.Model
	showHelp   bool
	showStatus bool
	confirm    *modal.Model
	toaster    toaster.Model

	sessions domain.SessionRepository
	session  *domain.Session

	debugMode   bool
	logOverlay  logoverlay.Model
	logListener *log.LogListener

	// Sheet change events
	ctx           context.Context
	cancel        context.CancelFunc
	broker        *pubsub.Broker[string]
	sheetListener *pubsub.ContinuousListener[string]

	// File watcher for auto-reload
	watcherHandle *watcher.Watcher
	watcherC      <-chan struct{}

	width  int
	height int
}

// New opens the file at opts.Path and builds the editor around it.
// A missing file opens as an empty sheet and is created on first save.
func New(opts Options) (Model, error) {
	if opts.Path == "" {
		return Model{}, ErrNoFile
	}
	path, err := filepath.Abs(opts.Path)
	if err != nil {
		return Model{}, fmt.Errorf("resolving %s: %w", opts.Path, err)
	}

	source, exists, err := readSource(path)
	if err != nil {
		return Model{}, err
	}

	broker := pubsub.NewBroker[string]()
	sheetOpts := []sheet.Option{
		sheet.WithConfig(opts.Config.SheetConfig()),
		sheet.WithPublisher(broker),
	}
	if opts.TextCache != nil {
		sheetOpts = append(sheetOpts, sheet.WithTextCache(opts.TextCache))
	}
	s, err := sheet.New(source, sheetOpts...)
	if err != nil {
		broker.Close()
		return Model{}, fmt.Errorf("opening %s: %w", path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		path:          path,
		cfg:           opts.Config,
		configPath:    opts.ConfigPath,
		keys:          keys.DefaultKeyMap(),
		flags:         opts.Flags,
		sheet:         s,
		savedText:     s.Text(),
		isNew:         !exists,
		help:          help.New(s.Meta(), opts.Config.UI.MarkdownStyle),
		showStatus:    opts.Config.UI.ShowStatusBar,
		toaster:       toaster.New(),
		sessions:      opts.Sessions,
		debugMode:     opts.Debug,
		logOverlay:    logoverlay.New(),
		ctx:           ctx,
		cancel:        cancel,
		broker:        broker,
		sheetListener: pubsub.NewContinuousListener(ctx, broker),
	}
	m.grid = gridview.New(s, gridview.Config{
		ShowControls: opts.Config.Editor.ShowControls,
		WarnOnDelete: opts.Config.Editor.WarnOnDelete,
		Labels:       opts.Config.Editor.Labels,
		MaxCellWidth: opts.Config.UI.MaxCellWidth,
	})
	m.restoreSession()

	if opts.Debug {
		m.logListener = log.NewListener(ctx)
	}

	if opts.Config.AutoReload {
		m.startWatcher(opts.Config.AutoReloadDebounce)
	}

	log.Info(log.CatUI, "opened", "path", path, "exists", exists,
		"rows", s.Rows(), "cols", s.Cols(), "delimiter", string(s.Meta().Delimiter))
	return m, nil
}

func (m *Model) startWatcher(debounce time.Duration) {
	cfg := watcher.DefaultConfig(m.path)
	if debounce > 0 {
		cfg.DebounceDur = debounce
	}
	w, err := watcher.New(cfg)
	if err != nil {
		log.ErrorErr(log.CatWatcher, "watcher init failed", err, "path", m.path)
		return
	}
	ch, err := w.Start()
	if err != nil {
		// The editor works without auto-reload.
		log.ErrorErr(log.CatWatcher, "watcher start failed", err, "path", m.path)
		_ = w.Stop()
		return
	}
	m.watcherHandle = w
	m.watcherC = ch
}

func (m *Model) restoreSession() {
	if m.sessions == nil {
		return
	}
	sess, err := m.sessions.FindByPath(m.path)
	if err != nil {
		var notFound *domain.SessionNotFoundError
		if !errors.As(err, &notFound) {
			log.ErrorErr(log.CatStore, "load session failed", err, "path", m.path)
		}
		m.session = domain.NewSession(m.path)
		return
	}
	m.session = sess
	m.grid = m.grid.SetCursor(navigation.Address{Row: sess.Row(), Col: sess.Col()})
	log.Debug(log.CatStore, "session restored", "path", m.path, "row", sess.Row(), "col", sess.Col())
}

// saveSession records the cursor for the next time the file is opened.
func (m *Model) saveSession() {
	if m.sessions == nil || m.session == nil {
		return
	}
	cursor := m.grid.Cursor()
	if err := m.session.MoveCursor(cursor.Row, cursor.Col); err != nil {
		log.ErrorErr(log.CatStore, "move session cursor failed", err)
		return
	}
	if err := m.sessions.Save(m.session); err != nil {
		log.ErrorErr(log.CatStore, "save session failed", err, "path", m.path)
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.grid.Init(),
		m.sheetListener.Listen(),
	}
	if m.watcherC != nil {
		cmds = append(cmds, watchCmd(m.watcherC))
	}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case pubsub.Event[string]:
		return m.handleEvent(msg)

	case fileChangedMsg:
		return m.handleFileChanged()

	case savedMsg:
		m.savedText = msg.text
		m.isNew = false
		m.dirty = m.sheet.Text() != m.savedText
		text := "Saved " + filepath.Base(m.path)
		if m.flags.Enabled(flags.FlagSaveDiffSummary) {
			text += fmt.Sprintf(" (+%d -%d lines)", msg.added, msg.removed)
		}
		return m.toast(text, toaster.StyleSuccess)

	case saveFailedMsg:
		return m.toast("Save failed: "+msg.err.Error(), toaster.StyleError)

	case gridview.NoticeMsg:
		return m.toast(msg.Text, toaster.StyleWarn)

	case gridview.ControlsToggledMsg:
		return m.handleControlsToggled(msg)

	case modal.SubmitMsg:
		if _, ok := msg.Tag.(quitRequest); ok {
			m.confirm = nil
			return m.quit()
		}

	case modal.CancelMsg:
		if _, ok := msg.Tag.(quitRequest); ok {
			m.confirm = nil
			return m, nil
		}

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case logoverlay.CloseMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.logOverlay.Visible() || m.showHelp {
			return m, nil
		}
		if m.confirm != nil {
			return m.updateConfirm(msg)
		}
	}

	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.debugMode && key.Matches(msg, m.keys.DebugLog) {
		m.logOverlay.Toggle()
		return m, nil
	}
	if m.logOverlay.Visible() {
		var cmd tea.Cmd
		m.logOverlay, cmd = m.logOverlay.Update(msg)
		return m, cmd
	}

	if key.Matches(msg, m.keys.Quit) {
		return m.requestQuit()
	}
	if m.confirm != nil {
		return m.updateConfirm(msg)
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Escape) {
			m.showHelp = false
		}
		return m, nil
	}

	// A pending delete confirmation owns the keyboard.
	if !m.grid.Confirming() {
		switch {
		case key.Matches(msg, m.keys.Save):
			return m, saveCmd(m.path, m.sheet.Text(), m.savedText)
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			m.help = m.help.SetMeta(m.sheet.Meta())
			return m, nil
		case key.Matches(msg, m.keys.ToggleStatus):
			m.showStatus = !m.showStatus
			m.resize()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	confirm, cmd := m.confirm.Update(msg)
	m.confirm = &confirm
	return m, cmd
}

// requestQuit quits at once when everything is saved and asks first otherwise.
func (m Model) requestQuit() (tea.Model, tea.Cmd) {
	if !m.Dirty() || m.confirm != nil {
		return m.quit()
	}
	confirm := modal.New(modal.Config{
		Title:          "Unsaved Changes",
		Message:        fmt.Sprintf("%s has unsaved changes. Quit without saving?", filepath.Base(m.path)),
		ConfirmLabel:   "Quit",
		CancelLabel:    "Keep Editing",
		ConfirmVariant: modal.ButtonDanger,
		Tag:            quitRequest{},
	})
	confirm.SetSize(m.width, m.height)
	m.confirm = &confirm
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.saveSession()
	return m, tea.Quit
}

func (m Model) handleEvent(event pubsub.Event[string]) (tea.Model, tea.Cmd) {
	switch event.Type {
	case pubsub.LoggedEvent:
		m.logOverlay = m.logOverlay.Append(event.Payload)
		if m.logListener == nil {
			return m, nil
		}
		return m, m.logListener.Listen()

	case pubsub.ChangedEvent:
		m.dirty = event.Payload != m.savedText

	case pubsub.ReloadedEvent:
		m.dirty = false
	}
	return m, m.sheetListener.Listen()
}

// handleFileChanged reloads the file from disk unless the buffer has
// unsaved edits. Our own saves read back identical and are ignored.
func (m Model) handleFileChanged() (tea.Model, tea.Cmd) {
	var next tea.Cmd
	if m.watcherC != nil {
		next = watchCmd(m.watcherC)
	}

	text, exists, err := readSource(m.path)
	if err != nil {
		log.ErrorErr(log.CatWatcher, "reload read failed", err, "path", m.path)
		return m, next
	}
	if !exists || text == m.sheet.Text() {
		return m, next
	}
	if m.Dirty() {
		log.Warn(log.CatWatcher, "file changed on disk with unsaved edits", "path", m.path)
		m2, cmd := m.toast("File changed on disk; keeping your unsaved edits", toaster.StyleWarn)
		return m2, tea.Batch(cmd, next)
	}

	m.sheet.Reload(text)
	m.savedText = m.sheet.Text()
	m.dirty = false
	m.grid = m.grid.Refresh()
	m.help = m.help.SetMeta(m.sheet.Meta())
	log.Info(log.CatWatcher, "reloaded from disk", "path", m.path, "rows", m.sheet.Rows(), "cols", m.sheet.Cols())

	m2, cmd := m.toast("Reloaded "+filepath.Base(m.path), toaster.StyleInfo)
	return m2, tea.Batch(cmd, next)
}

func (m Model) handleControlsToggled(msg gridview.ControlsToggledMsg) (tea.Model, tea.Cmd) {
	m.cfg.Editor.ShowControls = msg.Show
	if m.configPath == "" {
		return m, nil
	}
	if err := config.SaveEditor(m.configPath, m.cfg.Editor); err != nil {
		log.ErrorErr(log.CatConfig, "save editor preferences failed", err, "path", m.configPath)
		return m.toast("Could not save preferences: "+err.Error(), toaster.StyleError)
	}
	return m, nil
}

func (m Model) toast(message string, style toaster.Style) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.toaster, cmd = m.toaster.Show(message, style, toaster.DefaultDuration)
	return m, cmd
}

// resize hands the grid the space left by the status bar.
func (m *Model) resize() {
	gridHeight := m.height
	if m.showStatus {
		gridHeight--
	}
	m.grid = m.grid.SetSize(m.width, max(1, gridHeight))
	m.help = m.help.SetSize(m.width, m.height)
	m.logOverlay.SetSize(m.width, m.height)
	if m.confirm != nil {
		m.confirm.SetSize(m.width, m.height)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	view := m.grid.View()
	if m.showStatus {
		view += "\n" + m.renderStatusBar()
	}

	if m.showHelp {
		view = m.help.Overlay(view)
	}
	if m.confirm != nil {
		view = m.confirm.Overlay(view)
	}
	if m.toaster.Visible() {
		view = m.toaster.Overlay(view, m.width, m.height)
	}
	if m.debugMode && m.logOverlay.Visible() {
		view = m.logOverlay.Overlay(view)
	}

	return zone.Scan(view)
}

// Dirty reports whether the sheet differs from what was last loaded or saved.
func (m Model) Dirty() bool {
	return m.sheet.Text() != m.savedText
}

// Sheet returns the sheet being edited.
func (m Model) Sheet() *sheet.Sheet {
	return m.sheet
}

// Path returns the absolute path of the file being edited.
func (m Model) Path() string {
	return m.path
}

// Close releases resources held by the application.
func (m *Model) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	if m.broker != nil {
		m.broker.Close()
	}
	if m.watcherHandle != nil {
		if err := m.watcherHandle.Stop(); err != nil {
			return err
		}
	}
	return nil
}
