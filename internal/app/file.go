package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/csvedit/internal/log"
)

// savedMsg reports a completed save.
type savedMsg struct {
	text    string
	added   int
	removed int
}

// saveFailedMsg reports a save that could not be written.
type saveFailedMsg struct {
	err error
}

// fileChangedMsg is sent when the watcher saw the file change on disk.
type fileChangedMsg struct{}

// readSource returns the file's text. A missing file reads as empty so a
// new file can be created by saving.
func readSource(path string) (text string, exists bool, err error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is the file the user asked to edit
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), true, nil
}

// saveCmd writes text to path and summarizes the change against previous.
func saveCmd(path, text, previous string) tea.Cmd {
	return func() tea.Msg {
		if err := writeFile(path, []byte(text)); err != nil {
			log.ErrorErr(log.CatUI, "save failed", err, "path", path)
			return saveFailedMsg{err: err}
		}
		added, removed := lineChanges(previous, text)
		log.Info(log.CatUI, "saved", "path", path, "bytes", len(text), "added", added, "removed", removed)
		return savedMsg{text: text, added: added, removed: removed}
	}
}

// writeFile replaces path atomically, keeping the existing file mode.
func writeFile(path string, data []byte) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".csvedit.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// lineChanges counts the lines added and removed going from before to after.
func lineChanges(before, after string) (added, removed int) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += countLines(d.Text)
		case diffmatchpatch.DiffDelete:
			removed += countLines(d.Text)
		}
	}
	return added, removed
}

func countLines(s string) int {
	n := strings.Count(s, "\n")
	if s != "" && !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// watchCmd waits for the next change signal from the watcher.
func watchCmd(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}
