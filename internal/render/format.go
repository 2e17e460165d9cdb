package render

import (
	"sort"
	"strconv"

	"animehub/internal/catalog"
)

// FormatValue renders floats with two decimals and integers plainly.
// Anything else is returned unchanged.
func FormatValue(v any) any {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', 2, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', 2, 32)
	case int:
		return strconv.Itoa(n)
	case int32:
		return strconv.FormatInt(int64(n), 10)
	case int64:
		return strconv.FormatInt(n, 10)
	default:
		return v
	}
}

type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NewTable lays records out under columns, formatting every cell. Keys
// missing from columns are appended in sorted order so nothing is dropped.
func NewTable(columns []string, recs []catalog.Record) *Table {
	cols := append([]string(nil), columns...)
	known := make(map[string]bool, len(cols))
	for _, c := range cols {
		known[c] = true
	}
	var extra []string
	for _, rec := range recs {
		for k := range rec {
			if !known[k] {
				known[k] = true
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	cols = append(cols, extra...)

	t := &Table{Columns: cols, Rows: make([][]any, 0, len(recs))}
	for _, rec := range recs {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = FormatValue(rec[c])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
