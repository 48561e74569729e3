package order

import (
	"fmt"
	"time"

	"github.com/marketplace/backend/internal/domain/shared"
)

// Order numbers are 17 characters: a 3-letter prefix, the date as YYMMDD,
// a 4-digit daily sequence and 4 random base-36 characters,
// e.g. MKT2610170042K7QZ.
const (
	NumberLength     = 17
	PrefixLength     = 3
	SequenceDigits   = 4
	SuffixLength     = 4
	MaxDailySequence = 9999
	numberDateFormat = "060102"
	base36Alphabet   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// ValidPrefix reports whether p is three upper-case ASCII letters
func ValidPrefix(p string) bool {
	if len(p) != PrefixLength {
		return false
	}
	for i := 0; i < len(p); i++ {
		if p[i] < 'A' || p[i] > 'Z' {
			return false
		}
	}
	return true
}

// FormatNumber assembles an order number from its parts
func FormatNumber(prefix string, day time.Time, seq int, suffix string) (string, error) {
	if !ValidPrefix(prefix) {
		return "", shared.NewDomainError("INVALID_ORDER_PREFIX", fmt.Sprintf("Order number prefix %q must be 3 upper-case letters", prefix))
	}
	if seq < 1 || seq > MaxDailySequence {
		return "", shared.ErrSequenceExhausted.WithMessage(fmt.Sprintf("Daily order sequence %d out of range", seq))
	}
	if len(suffix) != SuffixLength || !isBase36(suffix) {
		return "", shared.NewDomainError("INVALID_ORDER_SUFFIX", fmt.Sprintf("Order number suffix %q must be 4 base-36 characters", suffix))
	}
	return fmt.Sprintf("%s%s%04d%s", prefix, day.Format(numberDateFormat), seq, suffix), nil
}

// ValidOrderNumber checks the shape of an order number
func ValidOrderNumber(s string) bool {
	if len(s) != NumberLength || !ValidPrefix(s[:PrefixLength]) {
		return false
	}
	if _, err := time.Parse(numberDateFormat, s[3:9]); err != nil {
		return false
	}
	for i := 9; i < 13; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return isBase36(s[13:])
}

// Base36Alphabet returns the characters allowed in the random suffix
func Base36Alphabet() string {
	return base36Alphabet
}

func isBase36(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && !(c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}
