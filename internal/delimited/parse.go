package delimited

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Parse splits text into rectangular rows and records its conventions.
func (Standard) Parse(text string, opts Options) Result {
	quote := opts.Quote()
	meta := Meta{
		QuoteChar:      quote,
		LineBreak:      DetectLineBreak(text, quote, opts.Delimiter),
		SkipEmptyLines: opts.SkipEmptyLines,
	}
	meta.TrailingLineBreak = text != "" && strings.HasSuffix(text, meta.LineBreak)

	body := text
	if meta.TrailingLineBreak {
		body = strings.TrimSuffix(text, meta.LineBreak)
	}

	var diags []Diagnostic
	meta.Delimiter = opts.Delimiter
	if meta.Delimiter == 0 {
		d, ok := DetectDelimiter(body, quote, meta.LineBreak, opts.SkipEmptyLines)
		if !ok {
			diags = append(diags, Diagnostic{
				Code:    UndetectableDelimiter,
				Row:     -1,
				Message: "unable to auto-detect delimiting character; defaulted to ','",
			})
		}
		meta.Delimiter = d
	}

	t := tokenizer{
		delim:     string(meta.Delimiter),
		quote:     string(quote),
		lineBreak: meta.LineBreak,
		skipEmpty: opts.SkipEmptyLines,
	}
	records, tokDiags := t.tokenize(body, 0)
	diags = append(diags, tokDiags...)

	return Result{
		Rows:        Rectangularize(records),
		Meta:        meta,
		Diagnostics: diags,
	}
}

// Rectangularize pads every record with empty cells up to the widest record.
// An empty input yields a single 1x1 row holding "".
func Rectangularize(records [][]string) [][]string {
	width := 1
	for _, rec := range records {
		width = max(width, len(rec))
	}
	if len(records) == 0 {
		return [][]string{{""}}
	}
	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, width)
		copy(row, rec)
		rows[i] = row
	}
	return rows
}

// DetectLineBreak returns the first line break found outside a quoted field,
// or DefaultLineBreak when there is none. A quote opens a field only at the
// start of the text or right after a delimiter, the same rule the tokenizer
// applies; elsewhere it is literal. A zero delim accepts any of Candidates.
func DetectLineBreak(text string, quote, delim rune) string {
	fieldStart := true
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case fieldStart && r == quote:
			i = skipQuoted(text, i+size, string(quote))
			fieldStart = false
			continue
		case r == '\r' && strings.HasPrefix(text[i:], CRLF):
			return CRLF
		case r == '\n':
			return DefaultLineBreak
		}
		fieldStart = r == delim || (delim == 0 && slices.Contains(Candidates, r))
		i += size
	}
	return DefaultLineBreak
}

// skipQuoted returns the index just past the quote closing the field that
// starts at i, or len(text) when it is never closed.
func skipQuoted(text string, i int, quote string) int {
	for {
		j := strings.Index(text[i:], quote)
		if j < 0 {
			return len(text)
		}
		i += j + len(quote)
		if !strings.HasPrefix(text[i:], quote) {
			return i
		}
		i += len(quote)
	}
}

type tokenizer struct {
	delim     string
	quote     string
	lineBreak string
	// skipEmpty drops blank lines. A line holding only an empty quoted
	// field is not blank.
	skipEmpty bool
}

// tokenize splits s into records. A positive limit stops after that many records.
func (t tokenizer) tokenize(s string, limit int) ([][]string, []Diagnostic) {
	if s == "" {
		return nil, nil
	}

	var (
		records [][]string
		row     []string
		diags   []Diagnostic
	)
	i := 0
	for {
		var field string
		quoted := strings.HasPrefix(s[i:], t.quote)
		if quoted {
			var d []Diagnostic
			field, i, d = t.quotedField(s, i+len(t.quote), len(records))
			diags = append(diags, d...)
		} else {
			end := t.fieldEnd(s, i)
			field, i = s[i:end], end
		}
		row = append(row, field)
		blank := t.skipEmpty && !quoted && len(row) == 1 && field == ""

		switch {
		case i >= len(s):
			if blank {
				return records, diags
			}
			return append(records, row), diags
		case strings.HasPrefix(s[i:], t.delim):
			i += len(t.delim)
		default: // line break
			if !blank {
				records = append(records, row)
			}
			row = nil
			i += len(t.lineBreak)
			if limit > 0 && len(records) >= limit {
				return records, diags
			}
		}
	}
}

// fieldEnd returns the index of the next delimiter or line break at or after i.
func (t tokenizer) fieldEnd(s string, i int) int {
	rest := s[i:]
	end := len(rest)
	if d := strings.Index(rest, t.delim); d >= 0 {
		end = d
	}
	if l := strings.Index(rest[:end], t.lineBreak); l >= 0 {
		end = l
	}
	return i + end
}

// quotedField reads a field whose opening quote ends just before i.
func (t tokenizer) quotedField(s string, i, record int) (string, int, []Diagnostic) {
	var (
		b     strings.Builder
		diags []Diagnostic
	)
	for {
		j := strings.Index(s[i:], t.quote)
		if j < 0 {
			b.WriteString(s[i:])
			diags = append(diags, Diagnostic{
				Code:    MissingQuotes,
				Row:     record,
				Message: "quoted field unterminated",
			})
			return b.String(), len(s), diags
		}
		b.WriteString(s[i : i+j])
		i += j + len(t.quote)
		if strings.HasPrefix(s[i:], t.quote) {
			b.WriteString(t.quote)
			i += len(t.quote)
			continue
		}
		break
	}

	if i < len(s) && !strings.HasPrefix(s[i:], t.delim) && !strings.HasPrefix(s[i:], t.lineBreak) {
		end := t.fieldEnd(s, i)
		b.WriteString(s[i:end])
		diags = append(diags, Diagnostic{
			Code:    InvalidQuotes,
			Row:     record,
			Message: "trailing characters after closing quote",
		})
		i = end
	}
	return b.String(), i, diags
}
