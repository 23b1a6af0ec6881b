package ir

import (
	"strconv"
	"strings"

	"github.com/chewxy/math32"
)

// FormatFloat returns the shortest representation of v that parses back to
// the same float32, always containing a decimal point: 1 → "1.0",
// 1e+06 → "1.0e+06", 0.5 → "0.5".
func FormatFloat(v float32) string {
	s := strconv.FormatFloat(float64(v), 'g', -1, 32)
	if strings.ContainsAny(s, ".nN") {
		return s
	}
	if i := strings.IndexByte(s, 'e'); i >= 0 {
		return s[:i] + ".0" + s[i:]
	}
	return s + ".0"
}

// IsFinite reports whether v can be written as a literal.
func IsFinite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}
