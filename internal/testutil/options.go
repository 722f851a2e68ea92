package testutil

// format holds the serialization conventions of a fixture.
type format struct {
	delimiter       rune
	lineBreak       string
	trailingNewline bool
}

func defaultFormat() format {
	return format{delimiter: ',', lineBreak: "\n", trailingNewline: true}
}

// Option configures how a Builder serializes its rows.
type Option func(*format)

// Delimiter sets the field delimiter.
func Delimiter(r rune) Option {
	return func(f *format) { f.delimiter = r }
}

// CRLF ends records with "\r\n".
func CRLF() Option {
	return func(f *format) { f.lineBreak = "\r\n" }
}

// NoTrailingNewline omits the line break after the last record.
func NoTrailingNewline() Option {
	return func(f *format) { f.trailingNewline = false }
}
