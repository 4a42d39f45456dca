package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrOverflow reports an int64 result that cannot be represented.
var ErrOverflow = errors.New("integer overflow")

// ParseInt parses a base-10 integer cell. Surrounding whitespace (including a
// trailing \r) is ignored; fractions and empty cells are rejected.
func ParseInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// MulInt returns a*b, or ErrOverflow when the product does not fit in int64.
func MulInt(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	p := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || p/b != a {
		return 0, fmt.Errorf("%d * %d: %w", a, b, ErrOverflow)
	}
	return p, nil
}

// AddInt returns a+b, or ErrOverflow when the sum does not fit in int64.
func AddInt(a, b int64) (int64, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, fmt.Errorf("%d + %d: %w", a, b, ErrOverflow)
	}
	return s, nil
}

// FormatInt renders n the way integers appear in report documents.
func FormatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

// CleanHeader trims whitespace and a leading UTF-8 BOM from a header cell.
func CleanHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.TrimSpace(h)
}
