// Package delimited converts between CSV-like text and rows of string cells.
//
// Parsing records the conventions found in the source (delimiter, line
// break, trailing line break) in a Meta value so that Serialize can write
// the rows back in the same shape. For text that already follows those
// conventions the round trip is byte-for-byte:
//
//	res := delimited.Standard{}.Parse(text, delimited.Options{})
//	out := delimited.Standard{}.Serialize(res.Rows, res.Meta) // out == text
//
// Malformed input never fails. Ragged rows are padded to the widest row and
// quoting problems are reported as Diagnostics alongside a best-effort result.
package delimited

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Default conventions used when neither the caller nor the source text decides.
const (
	DefaultDelimiter = ','
	DefaultQuoteChar = '"'
	DefaultLineBreak = "\n"
	CRLF             = "\r\n"
)

// Candidates are the delimiters tried by auto-detection, in preference order.
var Candidates = []rune{',', ';', '\t', '|'}

// ErrInvalidOptions is returned by Options.Validate.
var ErrInvalidOptions = errors.New("invalid delimited options")

// Options controls parsing.
type Options struct {
	// Delimiter separates fields. Zero means detect from the text.
	Delimiter rune
	// QuoteChar wraps fields containing special characters. Zero means '"'.
	QuoteChar rune
	// SkipEmptyLines drops records consisting of a single empty field.
	SkipEmptyLines bool
}

// Quote returns the effective quote character.
func (o Options) Quote() rune {
	if o.QuoteChar == 0 {
		return DefaultQuoteChar
	}
	return o.QuoteChar
}

// Validate rejects option combinations the tokenizer cannot honor.
func (o Options) Validate() error {
	quote := o.Quote()
	if quote == utf8.RuneError || quote == '\r' || quote == '\n' {
		return fmt.Errorf("%w: quote character %q", ErrInvalidOptions, quote)
	}
	if o.Delimiter == 0 {
		return nil
	}
	switch o.Delimiter {
	case utf8.RuneError, '\r', '\n':
		return fmt.Errorf("%w: delimiter %q", ErrInvalidOptions, o.Delimiter)
	case quote:
		return fmt.Errorf("%w: delimiter and quote character are both %q", ErrInvalidOptions, quote)
	}
	return nil
}

// Meta describes the conventions of a parsed text. Serialize reproduces them.
type Meta struct {
	Delimiter         rune
	QuoteChar         rune
	LineBreak         string
	TrailingLineBreak bool
	// SkipEmptyLines records that blank lines are dropped on parse. Serialize
	// then writes a row holding a single empty cell as a quoted empty field.
	SkipEmptyLines bool
}

// DefaultMeta is the Meta of an empty text.
func DefaultMeta() Meta {
	return Meta{
		Delimiter: DefaultDelimiter,
		QuoteChar: DefaultQuoteChar,
		LineBreak: DefaultLineBreak,
	}
}

func (m Meta) withDefaults() Meta {
	if m.Delimiter == 0 {
		m.Delimiter = DefaultDelimiter
	}
	if m.QuoteChar == 0 {
		m.QuoteChar = DefaultQuoteChar
	}
	if m.LineBreak == "" {
		m.LineBreak = DefaultLineBreak
	}
	return m
}

// DiagnosticCode classifies a non-fatal parse problem.
type DiagnosticCode string

const (
	// UndetectableDelimiter means auto-detection found no consistent candidate
	// and fell back to a comma.
	UndetectableDelimiter DiagnosticCode = "UndetectableDelimiter"
	// MissingQuotes means a quoted field was never closed.
	MissingQuotes DiagnosticCode = "MissingQuotes"
	// InvalidQuotes means text followed a closing quote before the next delimiter.
	InvalidQuotes DiagnosticCode = "InvalidQuotes"
)

// Diagnostic is a non-fatal problem found while parsing.
type Diagnostic struct {
	Code    DiagnosticCode
	Row     int // zero-based record index, -1 when not tied to a record
	Message string
}

func (d Diagnostic) String() string {
	if d.Row < 0 {
		return fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return fmt.Sprintf("%s (row %d): %s", d.Code, d.Row, d.Message)
}

// Result is the outcome of Parse. Rows is always rectangular and at least 1x1.
type Result struct {
	Rows        [][]string
	Meta        Meta
	Diagnostics []Diagnostic
}

// Codec parses and serializes delimited text.
type Codec interface {
	Parse(text string, opts Options) Result
	Serialize(rows [][]string, meta Meta) string
}

// Standard is the built-in Codec.
type Standard struct{}

var _ Codec = Standard{}
