// Package testutil builds delimited-text fixtures and test stores.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Builder accumulates rows and renders them as delimited text.
type Builder struct {
	t      *testing.T
	rows   [][]string
	format format
}

// NewBuilder creates a builder with comma delimiters, LF line breaks and a
// trailing newline unless opts say otherwise.
func NewBuilder(t *testing.T, opts ...Option) *Builder {
	t.Helper()
	b := &Builder{t: t, format: defaultFormat()}
	for _, opt := range opts {
		opt(&b.format)
	}
	return b
}

// WithRow appends one record.
func (b *Builder) WithRow(fields ...string) *Builder {
	b.rows = append(b.rows, fields)
	return b
}

// Rows returns the accumulated records.
func (b *Builder) Rows() [][]string {
	return b.rows
}

// String renders the records, quoting fields that contain the delimiter,
// a quote or a line break.
func (b *Builder) String() string {
	var sb strings.Builder
	delim := string(b.format.delimiter)
	for i, row := range b.rows {
		if i > 0 {
			sb.WriteString(b.format.lineBreak)
		}
		for j, field := range row {
			if j > 0 {
				sb.WriteString(delim)
			}
			sb.WriteString(b.quote(field))
		}
	}
	if b.format.trailingNewline && len(b.rows) > 0 {
		sb.WriteString(b.format.lineBreak)
	}
	return sb.String()
}

func (b *Builder) quote(field string) string {
	if !strings.ContainsAny(field, string(b.format.delimiter)+"\"\r\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// WriteFile writes the rendered text to name inside a fresh temp directory
// and returns the full path.
func (b *Builder) WriteFile(name string) string {
	b.t.Helper()
	path := filepath.Join(b.t.TempDir(), name)
	require.NoError(b.t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}
