package table

import "strings"

// ColumnStrategy picks the default source and target columns for a dataset.
// It is consulted only when the user has not chosen columns explicitly; the
// graph builder never calls it.
type ColumnStrategy interface {
	DefaultColumns(columns []string) (source, target string, ok bool)
}

// FirstTwo selects the first two columns.
type FirstTwo struct{}

// DefaultColumns implements [ColumnStrategy].
func (FirstTwo) DefaultColumns(columns []string) (string, string, bool) {
	if len(columns) < 2 {
		return "", "", false
	}
	return columns[0], columns[1], true
}

// Keywords matches column names against keyword lists, case-insensitively
// by substring. The first column matching a Source keyword becomes the
// source; the first other column matching a Target keyword becomes the
// target. When either side finds no match, Fallback decides (FirstTwo when
// nil).
type Keywords struct {
	Source   []string
	Target   []string
	Fallback ColumnStrategy
}

// FlowKeywords recognizes generic source/target naming.
var FlowKeywords = Keywords{
	Source: []string{"source", "origin", "from"},
	Target: []string{"target", "destination", "dest"},
}

// DefaultColumns implements [ColumnStrategy].
func (k Keywords) DefaultColumns(columns []string) (string, string, bool) {
	src := matchColumn(columns, k.Source, "")
	dst := matchColumn(columns, k.Target, src)
	if src != "" && dst != "" {
		return src, dst, true
	}
	fallback := k.Fallback
	if fallback == nil {
		fallback = FirstTwo{}
	}
	return fallback.DefaultColumns(columns)
}

func matchColumn(columns, keywords []string, exclude string) string {
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		for _, c := range columns {
			if c != exclude && strings.Contains(strings.ToLower(c), kw) {
				return c
			}
		}
	}
	return ""
}
