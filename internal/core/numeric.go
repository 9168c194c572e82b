package core

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseNonNegativeNumber coerces raw user input to a non-negative decimal.
// The longest leading numeric prefix is used ("12.5kg" parses as 12.5).
// Empty, unparseable or negative input yields zero.
func ParseNonNegativeNumber(input string) decimal.Decimal {
	prefix := numericPrefix(strings.TrimSpace(input), true)
	if prefix == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(prefix)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ParseQuantity coerces raw user input to a non-negative integer quantity.
// Fractional input truncates ("2.9" parses as 2). Failure yields zero.
func ParseQuantity(input string) int {
	prefix := numericPrefix(strings.TrimSpace(input), false)
	if prefix == "" {
		return 0
	}
	n, err := strconv.Atoi(prefix)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// numericPrefix returns the leading signed number in s, or "" when s does not
// start with one.
func numericPrefix(s string, allowFraction bool) string {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if allowFraction && end < len(s) && s[end] == '.' {
		frac := end + 1
		for frac < len(s) && s[frac] >= '0' && s[frac] <= '9' {
			frac++
		}
		// "12." keeps only the integer part.
		if frac > end+1 {
			digits += frac - end - 1
			end = frac
		}
	}
	if digits == 0 {
		return ""
	}
	return strings.TrimPrefix(s[:end], "+")
}

// NumericText is raw numeric input. It decodes from a JSON string or number
// and keeps the text unparsed, so coercion happens where the value is used.
type NumericText string

func (n *NumericText) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NumericText(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = NumericText(num)
	return nil
}

func (n NumericText) String() string { return strings.TrimSpace(string(n)) }
