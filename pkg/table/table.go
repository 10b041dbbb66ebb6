// Package table holds the tabular input consumed by the flow graph builder.
//
// A [Table] is an ordered list of column names plus the rows read from a
// source file. Rows are identified by their 1-based position, which is the
// reference number used by the graph builder for provenance.
//
// Readers for CSV, TSV, JSON and YAML files live in this package as thin
// collaborators; the builder only needs [Row] values and [Text].
package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Row maps a column name to a scalar value (string, number, bool or nil).
// Rows are never modified after loading.
type Row map[string]any

// Get returns the trimmed text of the named column, or "" when the column is
// missing or empty.
func (r Row) Get(column string) string {
	if column == "" {
		return ""
	}
	return Text(r[column])
}

// Table is a loaded dataset: columns in discovery order and rows in file order.
type Table struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// HasColumn reports whether name is one of the discovered columns.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Row returns the row with the given 1-based reference number.
func (t *Table) Row(ref int) (Row, bool) {
	if ref < 1 || ref > len(t.Rows) {
		return nil, false
	}
	return t.Rows[ref-1], true
}

// Text coerces a scalar to its trimmed string form.
//
// nil becomes "", integral floats print without a fractional part (so 2021.0
// read from a spreadsheet reads back as "2021"), and anything else goes
// through fmt. Text never fails.
func Text(v any) string {
	var s string
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		s = x
	case float64:
		s = formatFloat(x, 64)
	case float32:
		s = formatFloat(float64(x), 32)
	case int:
		s = strconv.Itoa(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	case int32:
		s = strconv.FormatInt(int64(x), 10)
	case uint64:
		s = strconv.FormatUint(x, 10)
	case bool:
		s = strconv.FormatBool(x)
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}
	return strings.TrimSpace(s)
}

func formatFloat(f float64, bits int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}
