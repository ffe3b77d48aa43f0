// Package base62 implements positional Base62 conversion of unsigned integers.
//
// The alphabet is 0-9A-Za-z in that order, which keeps encoded values free of
// URL-unsafe characters. The package is used to derive short codes from
// store-assigned record ids, so encoding is deterministic and collision-free
// by construction.
package base62

import (
	"errors"
	"math"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const base = 62

var (
	// ErrEmptyInput is returned when decoding an empty string.
	ErrEmptyInput = errors.New("empty base62 string")
	// ErrInvalidCharacter is returned when the input contains a character
	// outside the 0-9A-Za-z alphabet.
	ErrInvalidCharacter = errors.New("invalid character in base62 string")
	// ErrOverflow is returned when the decoded value doesn't fit in a uint64.
	ErrOverflow = errors.New("decoded value exceeds uint64 range")
)

// digits maps an ASCII byte to its Base62 value, or -1 for bytes outside
// the alphabet.
var digits = func() [128]int8 {
	var d [128]int8
	for i := range d {
		d[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		d[alphabet[i]] = int8(i)
	}
	return d
}()

// Encode converts n to its Base62 representation, most significant digit
// first. Encode(0) returns "0", never an empty string.
func Encode(n uint64) string {
	if n == 0 {
		return "0"
	}

	// A uint64 never needs more than 11 Base62 digits.
	buf := make([]byte, 0, 11)
	for n > 0 {
		buf = append(buf, alphabet[n%base])
		n /= base
	}

	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}

	return string(buf)
}

// Decode parses a Base62 string produced by Encode, so that
// Decode(Encode(n)) == n for every n. It fails on empty input, characters
// outside the alphabet and values that don't fit in a uint64.
func Decode(s string) (uint64, error) {
	if s == "" {
		return 0, ErrEmptyInput
	}

	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 128 || digits[c] < 0 {
			return 0, ErrInvalidCharacter
		}

		d := uint64(digits[c])
		if n > (math.MaxUint64-d)/base {
			return 0, ErrOverflow
		}
		n = n*base + d
	}

	return n, nil
}
