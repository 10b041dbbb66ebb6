package table

import (
	"fmt"
	"regexp"
	"strings"
)

// Summary is a best-effort description of a row for tooltips and reference
// lists. Any field may be empty.
type Summary struct {
	Ref     int
	Title   string
	Authors string
	Year    string
}

var yearRe = regexp.MustCompile(`\b(1[5-9]\d{2}|2\d{3})\b`)

// Describe extracts title, author and year text from a row by looking at
// column names. columns fixes the lookup order so results are stable.
func Describe(ref int, row Row, columns []string) Summary {
	s := Summary{Ref: ref}
	for _, c := range columns {
		name := strings.ToLower(c)
		v := row.Get(c)
		if v == "" {
			continue
		}
		switch {
		case s.Title == "" && (strings.Contains(name, "title") || name == "name"):
			s.Title = v
		case s.Authors == "" && strings.Contains(name, "author"):
			s.Authors = v
		case s.Year == "" && (strings.Contains(name, "year") || strings.Contains(name, "date")):
			if m := yearRe.FindString(v); m != "" {
				s.Year = m
			}
		}
	}
	return s
}

// String formats the summary as "[ref] Title. Authors (Year)", dropping
// missing parts.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d]", s.Ref)
	if s.Title != "" {
		b.WriteString(" " + s.Title)
		if !strings.HasSuffix(s.Title, ".") {
			b.WriteString(".")
		}
	}
	if s.Authors != "" {
		b.WriteString(" " + s.Authors)
	}
	if s.Year != "" {
		fmt.Fprintf(&b, " (%s)", s.Year)
	}
	if b.Len() == len(fmt.Sprintf("[%d]", s.Ref)) {
		b.WriteString(" (no description)")
	}
	return b.String()
}
