// Package amount converts command-line text to monetary float64 values and
// back to the fixed two-decimal form printed on receipts.
package amount

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Parse reads the longest numeric prefix of s the way C atof does: leading
// white space is skipped, text without a numeric prefix yields 0 and
// out-of-range values saturate to ±Inf. It never fails.
func Parse(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\v\f\r")

	sign := 1.0
	body := s
	if len(body) > 0 && (body[0] == '+' || body[0] == '-') {
		if body[0] == '-' {
			sign = -1
		}
		body = body[1:]
	}

	if v, ok := parseSpecial(body); ok {
		return math.Copysign(v, sign)
	}

	var prefix string
	if isHexPrefix(body) {
		prefix = scanHex(body)
	} else {
		prefix = scanDecimal(body)
	}
	if prefix == "" {
		return 0
	}

	// ErrRange still carries the saturated value.
	v, _ := strconv.ParseFloat(prefix, 64)
	return sign * v
}

// ParseStrict accepts s only when the whole of it is a valid float.
func ParseStrict(s string) (float64, error) {
	const op = "amount.ParseStrict"

	v, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number: %w", op, s, err)
	}
	return v, nil
}

// Format renders v with two decimals. Non-finite values print as inf, -inf,
// nan and -nan, the NaN sign taken from its sign bit.
func Format(v float64) string {
	switch {
	case math.IsNaN(v) && math.Signbit(v):
		return "-nan"
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func parseSpecial(s string) (float64, bool) {
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "inf"):
		return math.Inf(1), true
	case strings.HasPrefix(lower, "nan"):
		return math.NaN(), true
	}
	return 0, false
}

func isHexPrefix(s string) bool {
	return len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') &&
		(isHexDigit(s[2]) || (s[2] == '.' && len(s) > 3 && isHexDigit(s[3])))
}

// scanDecimal returns the longest prefix of s matching
// digits [ "." digits ] [ ("e"|"E") [sign] digits ] with at least one
// mantissa digit.
func scanDecimal(s string) string {
	i := 0
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return ""
	}
	return s[:i] + scanExponent(s[i:], 'e')
}

// scanHex returns a Go-parsable hexadecimal float built from the longest
// hexadecimal prefix of s. strconv requires the binary exponent, so p0 is
// appended when s has none.
func scanHex(s string) string {
	i := 2
	for i < len(s) && isHexDigit(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isHexDigit(s[i]) {
			i++
		}
	}
	exp := scanExponent(s[i:], 'p')
	if exp == "" {
		exp = "p0"
	}
	return s[:i] + exp
}

func scanExponent(s string, mark byte) string {
	if len(s) == 0 || (s[0]|0x20) != mark {
		return ""
	}
	i := 1
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return ""
	}
	return s[:i]
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || ('a' <= c|0x20 && c|0x20 <= 'f')
}
