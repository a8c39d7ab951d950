// Package core holds the ledger's record types and money handling.
//
// Amounts are tracked as whole rupiah (the minor currency unit here);
// there are no fractional amounts anywhere in the system.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in whole rupiah.
type Money int64

// Validate rejects negative amounts. Zero is allowed: the caller may
// record a payment of nothing (e.g. a fee waiver).
func (m Money) Validate() error {
	if m < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Format renders the amount with a "Rp " prefix and comma thousands
// separators, no decimal places ("Rp 150,000"). Negative amounts keep
// the sign after the prefix ("Rp -100,000").
func (m Money) Format() string {
	v := int64(m)
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	if len(s) > 3 {
		var b []byte
		for i, c := range s {
			if i > 0 && (len(s)-i)%3 == 0 {
				b = append(b, ',')
			}
			b = append(b, byte(c))
		}
		s = string(b)
	}
	if neg {
		return "Rp -" + s
	}
	return "Rp " + s
}

// ParseRupiah converts a user-entered amount string to Money.
//
// It accepts plain digits with optional "." or "," thousands separators
// ("150000", "150.000", "150,000"). Signs, decimals and anything else are
// rejected; the controller normalizes locale formats before calling the
// core, so this only has to deal with whole-rupiah input.
func ParseRupiah(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return Money(v), nil
}
