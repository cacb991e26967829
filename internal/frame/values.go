package frame

import (
	"strconv"
	"strings"
	"time"
)

// String returns the cell as text. Absent cells and nil values yield "".
func String(row Row, column string) string {
	v, ok := row[column]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case time.Time:
		return s.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Float returns the cell as a float64. CSV-sourced cells arrive as text,
// so numeric strings are coerced. The second return is false for absent
// or non-numeric cells.
func Float(row Row, column string) (float64, bool) {
	v, ok := row[column]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Int returns the cell as an int, with the same coercions as Float.
func Int(row Row, column string) (int, bool) {
	f, ok := Float(row, column)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Bool returns the cell as a bool. Absent cells are false.
func Bool(row Row, column string) bool {
	v, ok := row[column]
	if !ok || v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// Time returns the cell as a timestamp. Only cells already parsed into
// time.Time count; raw text is the temporal parser stage's business.
func Time(row Row, column string) (time.Time, bool) {
	v, ok := row[column]
	if !ok || v == nil {
		return time.Time{}, false
	}
	ts, ok := v.(time.Time)
	return ts, ok
}
