package dbx

import (
	"strconv"
	"strings"
)

// SetClause accumulates "column = $n" fragments for partial UPDATEs.
// Placeholders are numbered in the order columns are added.
type SetClause struct {
	cols []string
	args []any
}

// Add appends "col = $n" with v as its argument.
func (s *SetClause) Add(col string, v any) {
	s.cols = append(s.cols, col+" = $"+strconv.Itoa(len(s.cols)+1))
	s.args = append(s.args, v)
}

func (s *SetClause) Len() int { return len(s.cols) }

func (s *SetClause) String() string { return strings.Join(s.cols, ", ") }

// Args returns the collected values followed by extra, so callers can put
// the WHERE arguments after the SET ones.
func (s *SetClause) Args(extra ...any) []any {
	out := make([]any, 0, len(s.args)+len(extra))
	out = append(out, s.args...)
	return append(out, extra...)
}

// Next returns the placeholder for the next argument after the SET list.
func (s *SetClause) Next() string { return "$" + strconv.Itoa(len(s.cols)+1) }
