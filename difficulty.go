package blockchain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDifficulty is returned for difficulty patterns that contain
// anything other than '0' characters or exceed the digest length.
var ErrInvalidDifficulty = errors.New("invalid difficulty")

// Difficulty is the literal prefix of '0' characters that the lower-case
// hex digest of a block must start with. It is fixed per ledger.
type Difficulty string

// NewDifficulty returns a difficulty requiring n leading zero hex digits.
func NewDifficulty(n int) (Difficulty, error) {
	if n < 0 || n > DigestSize*2 {
		return "", fmt.Errorf("%w: %d leading zeros", ErrInvalidDifficulty, n)
	}
	return Difficulty(strings.Repeat("0", n)), nil
}

// ParseDifficulty validates a prefix pattern such as "000".
func ParseDifficulty(s string) (Difficulty, error) {
	if len(s) > DigestSize*2 {
		return "", fmt.Errorf("%w: pattern %q is longer than the digest", ErrInvalidDifficulty, s)
	}
	if strings.Trim(s, "0") != "" {
		return "", fmt.Errorf("%w: pattern %q must only contain '0'", ErrInvalidDifficulty, s)
	}
	return Difficulty(s), nil
}

// Len returns the number of required leading zero digits.
func (d Difficulty) Len() int {
	return len(d)
}

func (d Difficulty) String() string {
	return string(d)
}

// MetBy reports whether the hex digest satisfies the difficulty.
func (d Difficulty) MetBy(hash string) bool {
	return strings.HasPrefix(hash, string(d))
}
