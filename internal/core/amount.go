// Package core provides the budget domain types and the pure aggregation
// engine: row structures, summary computation, amount parsing and currency
// formatting.
package core

import (
	"strconv"
	"strings"
)

// ParseAmount converts user input to an amount. It accepts both dot (12.34)
// and comma (12,34) decimal separators. A blank field means zero; anything
// else that does not parse as a decimal number is rejected rather than
// silently coerced to zero.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// ParsePercent converts a whole-number percentage input ("15" for 15%) to a
// fraction in [0,1]. Blank means zero.
func ParsePercent(s string) (float64, error) {
	v, err := ParseAmount(s)
	if err != nil {
		return 0, err
	}
	frac := v / 100
	if frac < 0 || frac > 1 {
		return 0, ErrInvalidPercent
	}
	return frac, nil
}
