package delimited

import (
	"strings"
)

// Serialize joins rows with meta's delimiter and line break. Cells holding
// the delimiter, the quote character or a line break are quoted, with inner
// quotes doubled. A trailing line break is written only when
// meta.TrailingLineBreak is set. With meta.SkipEmptyLines, a one-cell empty
// row of a multi-row grid is written as an empty quoted field so it is not
// dropped when the text is parsed again.
func (Standard) Serialize(rows [][]string, meta Meta) string {
	meta = meta.withDefaults()
	quote := string(meta.QuoteChar)

	var b strings.Builder
	for r, row := range rows {
		if r > 0 {
			b.WriteString(meta.LineBreak)
		}
		if meta.SkipEmptyLines && len(rows) > 1 && len(row) == 1 && row[0] == "" {
			b.WriteString(quote + quote)
			continue
		}
		for c, cell := range row {
			if c > 0 {
				b.WriteRune(meta.Delimiter)
			}
			if needsQuotes(cell, meta.Delimiter, meta.QuoteChar) {
				b.WriteString(quote)
				b.WriteString(strings.ReplaceAll(cell, quote, quote+quote))
				b.WriteString(quote)
				continue
			}
			b.WriteString(cell)
		}
	}
	if meta.TrailingLineBreak {
		b.WriteString(meta.LineBreak)
	}
	return b.String()
}

func needsQuotes(cell string, delim, quote rune) bool {
	return strings.ContainsRune(cell, delim) ||
		strings.ContainsRune(cell, quote) ||
		strings.ContainsAny(cell, "\r\n")
}
