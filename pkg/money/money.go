// Package money provides helpers for formatting amounts as money strings.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultWidth is the field width used when right-justifying amounts.
	DefaultWidth = 12
	// DefaultDecimals is the number of decimal places amounts are rounded to.
	DefaultDecimals = 2
)

// Fmt formats one or more values as right-justified, comma-grouped money
// strings rounded to pennies. Multiple values are joined with ", ".
func Fmt(values ...float64) string {
	return FmtN(DefaultWidth, DefaultDecimals, values...)
}

// FmtN is Fmt with an explicit field width and decimal count.
func FmtN(width, decimals int, values ...float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = pad(group(decimal.NewFromFloat(v).StringFixed(int32(decimals))), width)
	}
	return strings.Join(parts, ", ")
}

// group inserts comma separators into the integer part of a fixed-point
// decimal string.
func group(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := sign + b.String()
	if hasFrac {
		out += "." + fracPart
	}
	return out
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
