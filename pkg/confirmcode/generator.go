package confirmcode

import (
	"crypto/rand"
	"errors"
	"strings"
)

// alphabet omits characters that read ambiguously: 0/O, 1/I/L, and 5/S.
const alphabet = "2346789ABCDEFGHJKMNPQRTUVWXYZ"

// DefaultLength is the number of alphabet characters in a generated code,
// excluding the separator. 8 characters over a 29-symbol alphabet give
// roughly 5e11 combinations, plenty of headroom for collision retry.
const DefaultLength = 8

var (
	// ErrInvalidLength is returned for non-positive code lengths.
	ErrInvalidLength = errors.New("code length must be positive")

	// ErrRandomSource is returned when the system randomness source fails.
	ErrRandomSource = errors.New("failed to read random bytes")
)

// Generate returns a code like "K7MH-2QWF": DefaultLength characters with a
// separator in the middle.
func Generate() (string, error) {
	return GenerateN(DefaultLength)
}

// GenerateN returns a code of n alphabet characters. Codes of even length
// of 6 or more get a hyphen in the middle for readability.
func GenerateN(n int) (string, error) {
	if n <= 0 {
		return "", ErrInvalidLength
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Join(ErrRandomSource, err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}

	code := string(buf)
	if n >= 6 && n%2 == 0 {
		mid := n / 2
		code = code[:mid] + "-" + code[mid:]
	}
	return code, nil
}

// Normalize uppercases a user-supplied code and strips separators and
// whitespace so door-scanner input compares equal to the stored form
// without its hyphen being load-bearing.
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	return strings.NewReplacer("-", "", " ", "").Replace(code)
}
