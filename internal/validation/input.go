package validation

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Email reports whether s parses as a bare address.
func Email(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// Password enforces the minimum credential length.
func Password(s string) bool {
	return utf8.RuneCountInString(s) >= 8
}

// Name accepts non-empty display names up to 100 runes.
func Name(s string) bool {
	t := strings.TrimSpace(s)
	return t != "" && utf8.RuneCountInString(t) <= 100
}

// ProductName accepts non-empty listing titles up to 200 runes.
func ProductName(s string) bool {
	t := strings.TrimSpace(s)
	return t != "" && utf8.RuneCountInString(t) <= 200
}

// Amount accepts positive minor-unit amounts.
func Amount(v int64) bool {
	return v > 0
}
