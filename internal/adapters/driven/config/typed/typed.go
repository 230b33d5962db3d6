// Package typed coerces decoded config values. TOML yields int64, float64
// and []any; JSON yields float64; values set in code may be plain int or
// []string. Each function returns the zero value for anything it cannot use.
package typed

import "math"

func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int accepts whole floats so JSON numbers work.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == math.Trunc(n) {
			return int(n)
		}
	}
	return 0
}

// Float widens integers, since users write 1 as often as 1.0.
func Float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func Bool(v any) bool {
	b, _ := v.(bool)
	return b
}

// StringSlice drops non-string elements of a []any.
func StringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}
