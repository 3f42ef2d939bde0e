package blockchain

import (
	"crypto"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// DigestSize is the size in bytes of every digest produced by Sum.
const DigestSize = sha256.Size

// ErrHashUnavailable is returned when the protocol hash function is not
// linked into the running binary. The engine cannot operate without it.
var ErrHashUnavailable = errors.New("SHA-256 hash function is not available")

// Digest is a raw SHA-256 digest.
type Digest [DigestSize]byte

// Sum hashes data with the protocol hash function. The algorithm is part
// of the protocol: all nodes must produce the same digest for the same
// input bytes.
func Sum(data []byte) Digest {
	return sha256.Sum256(data)
}

// Hex returns the lower-case hexadecimal notation of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// HashString hashes the UTF-8 bytes of s and returns the hex notation.
func HashString(s string) string {
	return Sum([]byte(s)).Hex()
}

// CheckHashAvailable reports ErrHashUnavailable if SHA-256 can not be used.
func CheckHashAvailable() error {
	if !crypto.SHA256.Available() {
		return ErrHashUnavailable
	}
	return nil
}
