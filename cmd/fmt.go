package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/csvedit/internal/config"
	"github.com/zjrosen/csvedit/internal/delimited"
	"github.com/zjrosen/csvedit/internal/log"
	"github.com/zjrosen/csvedit/internal/sheet"
)

// ErrNotFormatted is returned by fmt --check when the file would change.
var ErrNotFormatted = errors.New("file is not formatted")

var fmtCheck bool

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>",
	Short: "Print a file re-serialized with every row padded to the same width",
	Long: `Parse a delimited file and print it re-serialized to stdout.

Ragged rows are padded with empty fields and quoting is normalized. The
delimiter, line break and trailing newline detected in the file are kept.
Quoting problems found while parsing are reported on stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)

	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false,
		"print nothing and fail if the file is not already formatted")
}

func runFmt(cmd *cobra.Command, args []string) error {
	cleanup, err := initLogging()
	if err != nil {
		return err
	}
	defer cleanup()

	applyFlags(cmd.Flags(), &cfg)
	if err := config.ValidateCodec(cfg.Codec); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	path := args[0]
	source, err := os.ReadFile(path) //nolint:gosec // G304: path is the file the user asked to format
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	changed, err := formatText(cmd.OutOrStdout(), cmd.ErrOrStderr(), path, string(source), cfg.SheetConfig(), fmtCheck)
	if err != nil {
		return err
	}
	if fmtCheck && changed {
		return fmt.Errorf("%s: %w", path, ErrNotFormatted)
	}
	return nil
}

// formatText writes the normalized form of source to out, or nothing when
// check is set. Diagnostics go to errOut prefixed with name.
func formatText(out, errOut io.Writer, name, source string, sc sheet.Config, check bool) (changed bool, err error) {
	s, err := sheet.New(source, sheet.WithConfig(sc))
	if err != nil {
		return false, err
	}
	for _, d := range s.Diagnostics() {
		if d.Code == delimited.UndetectableDelimiter {
			continue
		}
		_, _ = fmt.Fprintf(errOut, "%s: %s\n", name, d)
	}

	text := s.Text()
	changed = text != source
	log.Debug(log.CatCodec, "formatted", "file", name, "rows", s.Rows(), "cols", s.Cols(), "changed", changed)
	if check {
		return changed, nil
	}
	if _, err := io.WriteString(out, text); err != nil {
		return changed, fmt.Errorf("writing output: %w", err)
	}
	return changed, nil
}
