package testutil

// WithPeople adds a header and three records, one of them holding a
// quoted delimiter and one a line break.
func (b *Builder) WithPeople() *Builder {
	return b.
		WithRow("name", "city", "note").
		WithRow("Ada", "London", "first, of many").
		WithRow("Grace", "Arlington", "two\nlines").
		WithRow("Linus", "Helsinki", "")
}

// WithRagged adds records of three different widths.
func (b *Builder) WithRagged() *Builder {
	return b.
		WithRow("a", "b", "c").
		WithRow("1").
		WithRow("x", "y")
}
