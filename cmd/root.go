package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/zjrosen/csvedit/internal/app"
	"github.com/zjrosen/csvedit/internal/cachemanager"
	"github.com/zjrosen/csvedit/internal/config"
	"github.com/zjrosen/csvedit/internal/flags"
	"github.com/zjrosen/csvedit/internal/infrastructure/sqlite"
	"github.com/zjrosen/csvedit/internal/log"
	"github.com/zjrosen/csvedit/internal/sessions/domain"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in the cell editor.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const (
	localConfigPath = ".csvedit/config.yaml"

	// sessionRetention bounds how long an untouched file's cursor is remembered.
	sessionRetention = 90 * 24 * time.Hour
)

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:   "csvedit <file>",
	Short: "A terminal grid editor for CSV files",
	Long: `Edit CSV and other delimited files as a grid in the terminal.

The delimiter, quoting, line break and trailing newline of the file are
detected on open and kept when saving. A file that does not exist yet is
opened empty and created on the first save.`,
	Version: version,
	Args:    cobra.ExactArgs(1),
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/csvedit/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"write a debug log (also CSVEDIT_DEBUG=1); path from CSVEDIT_LOG")
	rootCmd.PersistentFlags().StringP("delimiter", "d", "",
		`field delimiter: a single character, "tab" or "auto"`)
	rootCmd.PersistentFlags().String("quote", "",
		"quote character")
	rootCmd.PersistentFlags().Bool("keep-empty-lines", false,
		"keep blank lines as empty rows instead of dropping them")
	rootCmd.Flags().Bool("no-warn-on-delete", false,
		"delete rows and columns without asking")
	rootCmd.Flags().Bool("no-auto-reload", false,
		"do not reload the file when it changes on disk")

	// Bind flags to viper
	_ = viper.BindPFlag("codec.delimiter", rootCmd.PersistentFlags().Lookup("delimiter"))
	_ = viper.BindPFlag("codec.quote_char", rootCmd.PersistentFlags().Lookup("quote"))
}

func initConfig() {
	setDefaults(config.Defaults())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .csvedit/config.yaml (current directory)
		// 2. ~/.config/csvedit/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "csvedit"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create the default user config
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			defaultPath := userConfigPath()
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func setDefaults(d config.Config) {
	viper.SetDefault("codec.delimiter", d.Codec.Delimiter)
	viper.SetDefault("codec.quote_char", d.Codec.QuoteChar)
	viper.SetDefault("codec.skip_empty_lines", d.Codec.SkipEmptyLines)
	viper.SetDefault("editor.warn_on_delete", d.Editor.WarnOnDelete)
	viper.SetDefault("editor.show_controls", d.Editor.ShowControls)
	viper.SetDefault("auto_reload", d.AutoReload)
	viper.SetDefault("auto_reload_debounce", d.AutoReloadDebounce)
	viper.SetDefault("ui.show_status_bar", d.UI.ShowStatusBar)
	viper.SetDefault("ui.max_cell_width", d.UI.MaxCellWidth)
	viper.SetDefault("ui.markdown_style", d.UI.MarkdownStyle)
	viper.SetDefault("state.path", d.State.Path)
	for name, enabled := range d.Flags {
		viper.SetDefault("flags."+name, enabled)
	}
}

// userConfigPath is where the first run writes its config. It falls back to
// the working directory when there is no home directory.
func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return localConfigPath
	}
	return filepath.Join(home, ".config", "csvedit", "config.yaml")
}

// applyFlags folds the negated switches into c and normalizes the delimiter.
func applyFlags(fs *pflag.FlagSet, c *config.Config) {
	c.Codec.Delimiter = normalizeDelimiter(c.Codec.Delimiter)
	if keep, _ := fs.GetBool("keep-empty-lines"); keep {
		c.Codec.SkipEmptyLines = false
	}
	if noWarn, _ := fs.GetBool("no-warn-on-delete"); noWarn {
		c.Editor.WarnOnDelete = false
	}
	if noReload, _ := fs.GetBool("no-auto-reload"); noReload {
		c.AutoReload = false
	}
}

// normalizeDelimiter accepts the spellings a shell makes easy to type.
func normalizeDelimiter(d string) string {
	switch d {
	case "tab", `\t`:
		return "\t"
	case "":
		return "auto"
	default:
		return d
	}
}

// initLogging enables the debug log when asked for by flag or environment.
func initLogging() (func(), error) {
	if os.Getenv("CSVEDIT_DEBUG") == "" && !debugFlag {
		return func() {}, nil
	}
	logPath := os.Getenv("CSVEDIT_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.InitWithTeaLog(logPath, "csvedit")
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "csvedit starting", "version", version, "logPath", logPath)
	return cleanup, nil
}

// openSessions opens the cursor database. The editor runs without it when
// it cannot be opened.
func openSessions(path string) (domain.SessionRepository, func()) {
	if path == "" {
		return nil, func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		log.ErrorErr(log.CatStore, "creating state directory failed", err, "path", path)
		return nil, func() {}
	}
	db, err := sqlite.NewDB(path)
	if err != nil {
		log.ErrorErr(log.CatStore, "opening state database failed", err, "path", path)
		return nil, func() {}
	}
	repo := db.SessionRepository()
	if n, err := repo.DeleteOlderThan(time.Now().Add(-sessionRetention)); err != nil {
		log.ErrorErr(log.CatStore, "pruning sessions failed", err)
	} else if n > 0 {
		log.Debug(log.CatStore, "pruned sessions", "count", n)
	}
	return repo, func() { _ = db.Close() }
}

func runApp(cmd *cobra.Command, args []string) error {
	cleanup, err := initLogging()
	if err != nil {
		return err
	}
	defer cleanup()

	applyFlags(cmd.Flags(), &cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Store the config file path for saving editor preferences
	configFilePath := viper.ConfigFileUsed()

	featureFlags := flags.New(cfg.Flags)

	var sessions domain.SessionRepository
	if featureFlags.Enabled(flags.FlagSessionRestore) {
		repo, closeSessions := openSessions(cfg.State.Path)
		defer closeSessions()
		sessions = repo
	}

	model, err := app.New(app.Options{
		Path:       args[0],
		Config:     cfg,
		ConfigPath: configFilePath,
		Sessions:   sessions,
		TextCache:  cachemanager.NewInMemoryCacheManager[string]("sheet-text", 5*time.Minute, 10*time.Minute),
		Flags:      featureFlags,
		Debug:      debugFlag || os.Getenv("CSVEDIT_DEBUG") != "",
	})
	if err != nil {
		return err
	}

	zone.NewGlobal()
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()

	// Clean up watcher and listener resources
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
