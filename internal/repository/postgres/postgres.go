package postgres

import (
	"fmt"
	"strings"
)

// placeholders renders "$start, $start+1, ..." for n values, for building
// IN (...) lists against a variable number of ids.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

// idArgs converts a leading fixed argument plus an id slice into a
// []any suitable for QueryContext/ExecContext.
func idArgs(fixed string, ids []string) []any {
	args := make([]any, 0, len(ids)+1)
	args = append(args, fixed)
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}
