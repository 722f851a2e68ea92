package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/csvedit/internal/cachemanager"
	"github.com/zjrosen/csvedit/internal/config"
	"github.com/zjrosen/csvedit/internal/flags"
	"github.com/zjrosen/csvedit/internal/navigation"
	"github.com/zjrosen/csvedit/internal/pubsub"
	"github.com/zjrosen/csvedit/internal/sheet"
	"github.com/zjrosen/csvedit/internal/testutil"
	"github.com/zjrosen/csvedit/internal/ui/gridview"
	"github.com/zjrosen/csvedit/internal/ui/modal"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

var (
	keyCtrlS = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyCtrlQ = tea.KeyMsg{Type: tea.KeyCtrlQ}
	keyCtrlT = tea.KeyMsg{Type: tea.KeyCtrlT}
	keyCtrlW = tea.KeyMsg{Type: tea.KeyCtrlW}
	keyF1    = tea.KeyMsg{Type: tea.KeyF1}
	keyF12   = tea.KeyMsg{Type: tea.KeyF12}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
)

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.AutoReload = false
	return cfg
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestApp(t *testing.T, opts Options) Model {
	t.Helper()
	m, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m.updateModel(t, tea.WindowSizeMsg{Width: 100, Height: 30})
}

// updateModel applies msg and discards the command.
func (m Model) updateModel(t *testing.T, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

// run applies msg, executes the returned command once and applies its
// message. Timers started by the second update are not run.
func run(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	require.NotNil(t, cmd)
	next, _ = m.Update(cmd())
	return next.(Model)
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(Options{Config: testConfig()})
	require.ErrorIs(t, err, ErrNoFile)
}

func TestNew_InvalidCodecConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Codec.Delimiter = "::"

	_, err := New(Options{Path: writeCSV(t, "a,b\n"), Config: cfg})

	require.ErrorIs(t, err, sheet.ErrInvalidConfig)
}

func TestNew_MissingFileOpensEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.csv")

	m := newTestApp(t, Options{Path: path, Config: testConfig()})

	require.Equal(t, 1, m.Sheet().Rows())
	require.Equal(t, 1, m.Sheet().Cols())
	require.False(t, m.Dirty())
	require.Contains(t, m.View(), "new.csv [new]")
	require.NoFileExists(t, path)
}

func TestNew_ReadsFile(t *testing.T) {
	path := writeCSV(t, "a;b\r\nc;d\r\n")

	m := newTestApp(t, Options{Path: path, Config: testConfig()})

	require.Equal(t, path, m.Path())
	require.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, m.Sheet().Snapshot())
	require.Equal(t, ';', m.Sheet().Meta().Delimiter)
	require.False(t, m.Dirty())
}

func TestNew_UsesTextCache(t *testing.T) {
	cache := cachemanager.NewInMemoryCacheManager[string]("test", time.Minute, time.Minute)

	m := newTestApp(t, Options{Path: writeCSV(t, "a,b\n"), Config: testConfig(), TextCache: cache})

	require.Equal(t, "a,b\n", m.Sheet().Text())
	require.Equal(t, 1, cache.Len())
}

func TestSave_WritesFileKeepingConventions(t *testing.T) {
	path := writeCSV(t, "a;b\r\nc;d")
	m := newTestApp(t, Options{Path: path, Config: testConfig(), Flags: flags.New(flags.Defaults())})

	m = m.updateModel(t, typed("!"))
	require.True(t, m.Dirty())

	m = run(t, m, keyCtrlS)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "a!;b\r\nc;d", string(data))
	require.False(t, m.Dirty())
	require.True(t, m.toaster.Visible())
	require.Equal(t, "Saved data.csv (+1 -1 lines)", m.toaster.Message())
}

func TestSave_DiffSummaryFlagOff(t *testing.T) {
	m := newTestApp(t, Options{Path: writeCSV(t, "a,b\n"), Config: testConfig()})

	m = m.updateModel(t, typed("!"))
	m = run(t, m, keyCtrlS)

	require.Equal(t, "Saved data.csv", m.toaster.Message())
}

func TestSave_QuotedFieldsRoundTrip(t *testing.T) {
	fixture := testutil.NewBuilder(t, testutil.Delimiter(';'), testutil.CRLF()).WithPeople()
	path := fixture.WriteFile("people.csv")
	m := newTestApp(t, Options{Path: path, Config: testConfig()})
	require.Equal(t, fixture.Rows(), m.Sheet().Snapshot())

	m = m.updateModel(t, typed("!"))
	m = run(t, m, keyCtrlS)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := testutil.NewBuilder(t, testutil.Delimiter(';'), testutil.CRLF()).WithPeople()
	want.Rows()[0][0] = "name!"
	require.Equal(t, want.String(), string(data))
}

func TestSave_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.csv")
	m := newTestApp(t, Options{Path: path, Config: testConfig()})

	m = m.updateModel(t, typed("x"))
	m = run(t, m, keyCtrlS)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, m.Sheet().Text(), string(data))
	require.True(t, strings.HasPrefix(string(data), "x"))
	require.False(t, m.isNew)
}

func TestSave_FailureShowsToast(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	require.NoError(t, os.Mkdir(dir, 0o750))
	m := newTestApp(t, Options{Path: filepath.Join(dir, "x.csv"), Config: testConfig()})
	require.NoError(t, os.Remove(dir))

	m = run(t, m, keyCtrlS)

	require.True(t, m.toaster.Visible())
	require.Contains(t, m.toaster.Message(), "Save failed")
}

func TestLineChanges(t *testing.T) {
	tests := []struct {
		name           string
		before, after  string
		added, removed int
	}{
		{"identical", "a\nb\n", "a\nb\n", 0, 0},
		{"one line edited", "a\nb\n", "a\nB\n", 1, 1},
		{"line appended", "a\n", "a\nb\n", 1, 0},
		{"line removed", "a\nb\nc\n", "a\nc\n", 0, 1},
		{"from empty", "", "a\nb", 2, 0},
		{"to empty", "a\nb\n", "", 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, removed := lineChanges(tt.before, tt.after)
			assert.Equal(t, tt.added, added, "added")
			assert.Equal(t, tt.removed, removed, "removed")
		})
	}
}

func TestWriteFile_KeepsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	require.NoError(t, writeFile(path, []byte("new")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "new", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file cleaned up")
}

func TestFileChanged_ReloadsWhenClean(t *testing.T) {
	path := writeCSV(t, "a,b\nc,d\ne,f\n")
	m := newTestApp(t, Options{Path: path, Config: testConfig()})
	m = m.updateModel(t, keyDown, keyDown)

	require.NoError(t, os.WriteFile(path, []byte("x,y\n"), 0o644))
	m = m.updateModel(t, fileChangedMsg{})

	require.Equal(t, [][]string{{"x", "y"}}, m.Sheet().Snapshot())
	require.False(t, m.Dirty())
	require.Equal(t, navigation.Address{Row: 0, Col: 0}, m.grid.Cursor())
	require.Contains(t, m.toaster.Message(), "Reloaded")
}

func TestFileChanged_KeepsUnsavedEdits(t *testing.T) {
	path := writeCSV(t, "a,b\n")
	m := newTestApp(t, Options{Path: path, Config: testConfig()})
	m = m.updateModel(t, typed("!"))

	require.NoError(t, os.WriteFile(path, []byte("x,y\n"), 0o644))
	m = m.updateModel(t, fileChangedMsg{})

	require.Equal(t, "a!,b\n", m.Sheet().Text())
	require.True(t, m.Dirty())
	require.Contains(t, m.toaster.Message(), "unsaved")
}

func TestFileChanged_IgnoresOwnSave(t *testing.T) {
	path := writeCSV(t, "a,b\n")
	m := newTestApp(t, Options{Path: path, Config: testConfig()})

	m = m.updateModel(t, fileChangedMsg{})

	require.False(t, m.toaster.Visible())
}

func TestEvents_TrackDirtyForStatusBar(t *testing.T) {
	m := newTestApp(t, Options{Path: writeCSV(t, "a,b\n"), Config: testConfig()})

	m = m.updateModel(t, pubsub.Event[string]{Type: pubsub.ChangedEvent, Payload: "a!,b\n"})
	require.True(t, m.dirty)
	require.Contains(t, m.View(), "[+]")

	m = m.updateModel(t, pubsub.Event[string]{Type: pubsub.ChangedEvent, Payload: "a,b\n"})
	require.False(t, m.dirty)

	m = m.updateModel(t, pubsub.Event[string]{Type: pubsub.LoggedEvent, Payload: "2026-01-02T10:45:00 [INFO] [ui] hello\n"})
	require.Equal(t, []string{"2026-01-02T10:45:00 [INFO] [ui] hello"}, m.logOverlay.Entries())
}

func TestSheetListener_DeliversChanges(t *testing.T) {
	m := newTestApp(t, Options{Path: writeCSV(t, "a,b\n"), Config: testConfig()})

	require.NoError(t, m.Sheet().SetCell(0, 0, "z"))

	msg := m.sheetListener.Listen()()
	event, ok := msg.(pubsub.Event[string])
	require.True(t, ok)
	require.Equal(t, pubsub.ChangedEvent, event.Type)
	require.Equal(t, "z,b\n", event.Payload)
}

func TestQuit_CleanQuitsImmediately(t *testing.T) {
	m := newTestApp(t, Options{Path: writeCSV(t, "a,b\n"), Config: testConfig()})

	_, cmd := m.Update(keyCtrlQ)

	require.NotNil(t, cmd)
	require.Equal(t, tea.QuitMsg{}, cmd())
}

func TestQuit_DirtyAsksFirst(t *testing.T) {
	m := newTestApp(t, Options{Path: writeCSV(t, "a,b\n"), Config: testConfig()})
	m = m.updateModel(t, typed("!"))

	next, cmd := m.Update(keyCtrlQ)
	m = next.(Model)
	require.Nil(t, cmd)
	require.NotNil(t, m.confirm)
	require.Contains(t, m.View(), "Unsaved Changes")

	next, cmd = m.Update(keyEsc)
	m = next.(Model)
	require.NotNil(t, cmd)
	m = m.updateModel(t, cmd())
	require.Nil(t, m.confirm)

	m = m.updateModel(t, keyCtrlQ)
	next, cmd = m.Update(typed("y"))
	m = next.(Model)
	submit, ok := cmd().(modal.SubmitMsg)
	require.True(t, ok)

	_, cmd = m.Update(submit)
	require.Equal(t, tea.QuitMsg{}, cmd())
}

func TestQuit_SecondPressForcesQuit(t *testing.T) {
	m := newTestApp(t, Options{Path: writeCSV(t, "a,b\n"), Config: testConfig()})
	m = m.updateModel(t, typed("!"), keyCtrlQ)

	_, cmd := m.Update(keyCtrlQ)
	require.Equal(t, tea.QuitMsg{}, cmd())
}

func TestSession_SavedOnQuitAndRestored(t *testing.T) {
	repo := testutil.NewSessionRepository(t)

	path := writeCSV(t, "a,b\nc,d\ne,f\n")
	m := newTestApp(t, Options{Path: path, Config: testConfig(), Sessions: repo})
	m = m.updateModel(t, keyDown, keyDown, keyTab)
	_, cmd := m.Update(keyCtrlQ)
	require.Equal(t, tea.QuitMsg{}, cmd())

	sess, err := repo.FindByPath(path)
	require.NoError(t, err)
	require.Equal(t, 2, sess.Row())
	require.Equal(t, 1, sess.Col())

	reopened := newTestApp(t, Options{Path: path, Config: testConfig(), Sessions: repo})
	require.Equal(t, navigation.Address{Row: 2, Col: 1}, reopened.grid.Cursor())
}

func TestSession_RestoreClampsToSmallerFile(t *testing.T) {
	repo := testutil.NewSessionRepository(t)

	path := writeCSV(t, "a,b\nc,d\ne,f\n")
	m := newTestApp(t, Options{Path: path, Config: testConfig(), Sessions: repo})
	m = m.updateModel(t, keyDown, keyDown, keyTab)
	_, _ = m.Update(keyCtrlQ)

	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))
	reopened := newTestApp(t, Options{Path: path, Config: testConfig(), Sessions: repo})
	require.Equal(t, navigation.Address{}, reopened.grid.Cursor())
}

func TestToggleControls_SavesPreference(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(configPath))

	m := newTestApp(t, Options{Path: writeCSV(t, "a\n"), Config: testConfig(), ConfigPath: configPath})
	m = run(t, m, keyCtrlT)

	require.False(t, m.cfg.Editor.ShowControls)
	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "show_controls: false")
}

func TestNotice_ShowsToast(t *testing.T) {
	m := newTestApp(t, Options{Path: writeCSV(t, "a\n"), Config: testConfig()})
	m = m.updateModel(t, gridview.NoticeMsg{Text: "Cannot delete the only row"})
	require.Equal(t, "Cannot delete the only row", m.toaster.Message())
}

func TestHelp_ToggleAndSwallowKeys(t *testing.T) {
	m := newTestApp(t, Options{Path: writeCSV(t, "a,b\n"), Config: testConfig()})

	m = m.updateModel(t, keyF1)
	require.True(t, m.showHelp)

	m = m.updateModel(t, typed("z"))
	require.Equal(t, "a,b\n", m.Sheet().Text(), "typing is ignored while help is open")

	m = m.updateModel(t, keyEsc)
	require.False(t, m.showHelp)
}

func TestStatusBar(t *testing.T) {
	m := newTestApp(t, Options{Path: writeCSV(t, "a;b\r\nc;d\r\n"), Config: testConfig()})
	m = m.updateModel(t, keyDown)

	status := m.renderStatusBar()
	for _, want := range []string{"data.csv", "2×2", "R2 C1", "; · CRLF", "F1 help"} {
		require.Contains(t, status, want)
	}

	m = m.updateModel(t, keyCtrlW)
	require.NotContains(t, m.View(), "F1 help")
}

func TestDebugLogOverlay(t *testing.T) {
	m := newTestApp(t, Options{Path: writeCSV(t, "a\n"), Config: testConfig()})
	m = m.updateModel(t, keyF12)
	require.False(t, m.logOverlay.Visible(), "log overlay only in debug mode")

	m = newTestApp(t, Options{Path: writeCSV(t, "a\n"), Config: testConfig(), Debug: true})
	m = m.updateModel(t, keyF12)
	require.True(t, m.logOverlay.Visible())
	require.Contains(t, m.View(), "Logs")

	m = m.updateModel(t, typed("z"))
	require.Equal(t, "a\n", m.Sheet().Text(), "keys go to the overlay while it is open")
}

func TestClose_StopsWatcherAndListeners(t *testing.T) {
	cfg := testConfig()
	cfg.AutoReload = true
	m, err := New(Options{Path: writeCSV(t, "a\n"), Config: cfg})
	require.NoError(t, err)
	require.NotNil(t, m.watcherHandle)

	require.NoError(t, m.Close())
	require.ErrorIs(t, m.ctx.Err(), context.Canceled)
	require.Zero(t, m.broker.SubscriberCount())
}

func TestProgram_EditSaveQuit(t *testing.T) {
	path := writeCSV(t, "alpha,beta\ngamma,delta\n")
	m, err := New(Options{Path: path, Config: testConfig()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("gamma"))
	}, teatest.WithDuration(3*time.Second))

	tm.Type("!")
	tm.Send(keyCtrlS)

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("Saved data.csv"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(keyCtrlQ)
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))

	final := tm.FinalModel(t).(Model)
	require.False(t, final.Dirty())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "alpha!,beta\n"))
}
