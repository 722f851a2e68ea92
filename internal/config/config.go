// Package config provides configuration types and defaults for csvedit.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/csvedit/internal/flags"
	"github.com/zjrosen/csvedit/internal/log"
	"github.com/zjrosen/csvedit/internal/sheet"
)

// Config holds all configuration options for csvedit.
type Config struct {
	Codec              CodecConfig     `mapstructure:"codec"`
	Editor             EditorConfig    `mapstructure:"editor"`
	AutoReload         bool            `mapstructure:"auto_reload"`
	AutoReloadDebounce time.Duration   `mapstructure:"auto_reload_debounce"`
	UI                 UIConfig        `mapstructure:"ui"`
	State              StateConfig     `mapstructure:"state"`
	Flags              map[string]bool `mapstructure:"flags"`
}

// CodecConfig controls how files are parsed.
type CodecConfig struct {
	Delimiter      string `mapstructure:"delimiter"`        // "auto" (default) or a single character
	QuoteChar      string `mapstructure:"quote_char"`       // default `"`
	SkipEmptyLines bool   `mapstructure:"skip_empty_lines"` // drop blank lines when parsing
}

// EditorConfig holds editing behavior. It is the one section the TUI writes
// back to disk, so it carries yaml tags as well.
type EditorConfig struct {
	WarnOnDelete bool          `mapstructure:"warn_on_delete" yaml:"warn_on_delete"`
	ShowControls bool          `mapstructure:"show_controls" yaml:"show_controls"`
	Labels       ControlLabels `mapstructure:"labels" yaml:"labels"`
}

// ControlLabels are the captions of the row/column control buttons and the
// confirmation prompts shown before deleting.
type ControlLabels struct {
	AddRowBefore        string `mapstructure:"add_row_before" yaml:"add_row_before"`
	AddRowAfter         string `mapstructure:"add_row_after" yaml:"add_row_after"`
	AddColumnBefore     string `mapstructure:"add_column_before" yaml:"add_column_before"`
	AddColumnAfter      string `mapstructure:"add_column_after" yaml:"add_column_after"`
	DeleteRow           string `mapstructure:"delete_row" yaml:"delete_row"`
	DeleteColumn        string `mapstructure:"delete_column" yaml:"delete_column"`
	DeleteAll           string `mapstructure:"delete_all" yaml:"delete_all"`
	DeleteRowWarning    string `mapstructure:"delete_row_warning" yaml:"delete_row_warning"`
	DeleteColumnWarning string `mapstructure:"delete_column_warning" yaml:"delete_column_warning"`
	DeleteAllWarning    string `mapstructure:"delete_all_warning" yaml:"delete_all_warning"`
}

// WithDefaults fills empty labels from DefaultLabels so a partial
// labels section in the config file still renders every control.
func (l ControlLabels) WithDefaults() ControlLabels {
	d := DefaultLabels()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&l.AddRowBefore, d.AddRowBefore)
	fill(&l.AddRowAfter, d.AddRowAfter)
	fill(&l.AddColumnBefore, d.AddColumnBefore)
	fill(&l.AddColumnAfter, d.AddColumnAfter)
	fill(&l.DeleteRow, d.DeleteRow)
	fill(&l.DeleteColumn, d.DeleteColumn)
	fill(&l.DeleteAll, d.DeleteAll)
	fill(&l.DeleteRowWarning, d.DeleteRowWarning)
	fill(&l.DeleteColumnWarning, d.DeleteColumnWarning)
	fill(&l.DeleteAllWarning, d.DeleteAllWarning)
	return l
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowStatusBar bool   `mapstructure:"show_status_bar"`
	MaxCellWidth  int    `mapstructure:"max_cell_width"` // 0 = no limit
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default) or "light"
}

// StateConfig locates the database that remembers cursor positions.
type StateConfig struct {
	Path string `mapstructure:"path"`
}

// SheetConfig converts the codec section to the sheet's configuration.
func (c Config) SheetConfig() sheet.Config {
	return sheet.Config{
		Delimiter:      c.Codec.Delimiter,
		QuoteChar:      c.Codec.QuoteChar,
		SkipEmptyLines: c.Codec.SkipEmptyLines,
	}
}

// DefaultLabels returns the stock control captions.
func DefaultLabels() ControlLabels {
	return ControlLabels{
		AddRowBefore:        "+ ↑",
		AddRowAfter:         "+ ↓",
		AddColumnBefore:     "+ ←",
		AddColumnAfter:      "+ →",
		DeleteRow:           "✖",
		DeleteColumn:        "✖",
		DeleteAll:           "✖",
		DeleteRowWarning:    "DELETE THIS ROW?",
		DeleteColumnWarning: "DELETE THIS COLUMN?",
		DeleteAllWarning:    "DELETE ALL DATA?",
	}
}

// DefaultStatePath returns ~/.config/csvedit/state.db or an empty string if
// the home dir is unavailable.
func DefaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "csvedit", "state.db")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Codec: CodecConfig{
			Delimiter:      sheet.AutoDelimiter,
			QuoteChar:      `"`,
			SkipEmptyLines: true,
		},
		Editor: EditorConfig{
			WarnOnDelete: true,
			ShowControls: true,
			Labels:       DefaultLabels(),
		},
		AutoReload:         true,
		AutoReloadDebounce: 200 * time.Millisecond,
		UI: UIConfig{
			ShowStatusBar: true,
			MaxCellWidth:  32,
			MarkdownStyle: "dark",
		},
		State: StateConfig{
			Path: DefaultStatePath(),
		},
		Flags: flags.Defaults(),
	}
}

// Validate checks the whole configuration. Codec errors wrap
// sheet.ErrInvalidConfig.
func Validate(cfg Config) error {
	if err := ValidateCodec(cfg.Codec); err != nil {
		return err
	}
	if err := ValidateUI(cfg.UI); err != nil {
		return err
	}
	if cfg.AutoReloadDebounce < 0 {
		return fmt.Errorf("auto_reload_debounce must not be negative, got %s", cfg.AutoReloadDebounce)
	}
	if cfg.State.Path != "" && !filepath.IsAbs(cfg.State.Path) {
		return fmt.Errorf("state.path must be an absolute path, got %q", cfg.State.Path)
	}
	return nil
}

// ValidateCodec rejects delimiters and quote characters the codec cannot use.
func ValidateCodec(codec CodecConfig) error {
	sc := sheet.Config{
		Delimiter:      codec.Delimiter,
		QuoteChar:      codec.QuoteChar,
		SkipEmptyLines: codec.SkipEmptyLines,
	}
	if _, err := sc.Options(); err != nil {
		return fmt.Errorf("codec: %w", err)
	}
	return nil
}

// ValidateUI checks user interface options.
func ValidateUI(ui UIConfig) error {
	if ui.MaxCellWidth < 0 {
		return fmt.Errorf("ui.max_cell_width must not be negative, got %d", ui.MaxCellWidth)
	}
	switch ui.MarkdownStyle {
	case "", "dark", "light":
	default:
		return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", ui.MarkdownStyle)
	}
	return nil
}

// IsInvalidCodec reports whether err came from codec validation.
func IsInvalidCodec(err error) bool {
	return errors.Is(err, sheet.ErrInvalidConfig)
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# csvedit Configuration

# Parsing
codec:
  delimiter: auto         # "auto" detects one of , ; tab |  or set a single character
  quote_char: '"'         # character that wraps fields containing delimiters or newlines
  skip_empty_lines: true  # drop blank lines when reading a file

# Editing
editor:
  warn_on_delete: true    # ask before deleting a row, a column or everything
  show_controls: true     # show the add/delete buttons around the grid (toggle with ctrl+t)
  # labels:
  #   add_row_before: "+ ↑"
  #   add_row_after: "+ ↓"
  #   add_column_before: "+ ←"
  #   add_column_after: "+ →"
  #   delete_row: "✖"
  #   delete_column: "✖"
  #   delete_all: "✖"
  #   delete_row_warning: "DELETE THIS ROW?"
  #   delete_column_warning: "DELETE THIS COLUMN?"
  #   delete_all_warning: "DELETE ALL DATA?"

# Reload the file when it changes on disk and there are no unsaved edits
auto_reload: true
auto_reload_debounce: 200ms

# UI settings
ui:
  show_status_bar: true   # Show status bar at bottom
  max_cell_width: 32      # Truncate wide cells (0 = no limit)
  # markdown_style: dark  # Help rendering style: "dark" (default) or "light"

# Remembered cursor positions
# state:
#   path: ~/.config/csvedit/state.db

# Optional behavior
flags:
  session-restore: true     # reopen files at the last cursor position
  save-diff-summary: true   # show "+N -M lines" after saving
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
