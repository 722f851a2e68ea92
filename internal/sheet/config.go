package sheet

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/zjrosen/csvedit/internal/delimited"
)

// ErrInvalidConfig wraps every configuration error reported by New.
var ErrInvalidConfig = errors.New("invalid sheet configuration")

// AutoDelimiter asks the codec to detect the delimiter.
const AutoDelimiter = "auto"

// Config holds the codec options a sheet parses with.
type Config struct {
	Delimiter      string // single character, "" or "auto" to detect
	QuoteChar      string // single character, "" for '"'
	SkipEmptyLines bool
}

// DefaultConfig matches the editor's historical defaults: detect the
// delimiter, quote with '"', skip empty lines.
func DefaultConfig() Config {
	return Config{
		Delimiter:      AutoDelimiter,
		QuoteChar:      `"`,
		SkipEmptyLines: true,
	}
}

// Options converts the config into codec options.
func (c Config) Options() (delimited.Options, error) {
	var opts delimited.Options
	opts.SkipEmptyLines = c.SkipEmptyLines

	if c.Delimiter != "" && c.Delimiter != AutoDelimiter {
		r, err := singleRune("delimiter", c.Delimiter)
		if err != nil {
			return opts, err
		}
		opts.Delimiter = r
	}
	if c.QuoteChar != "" {
		r, err := singleRune("quote_char", c.QuoteChar)
		if err != nil {
			return opts, err
		}
		opts.QuoteChar = r
	}
	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return opts, nil
}

func singleRune(field, value string) (rune, error) {
	r, size := utf8.DecodeRuneInString(value)
	if r == utf8.RuneError || size != len(value) {
		return 0, fmt.Errorf("%w: %s must be a single character, got %q", ErrInvalidConfig, field, value)
	}
	return r, nil
}
