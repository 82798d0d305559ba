package crypto

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Digest returns the BLAKE2b-256 hash of an image.
func Digest(image []byte) [blake2b.Size256]byte {
	return blake2b.Sum256(image)
}

// DigestHex returns Digest as lowercase hex.
func DigestHex(image []byte) string {
	sum := Digest(image)
	return hex.EncodeToString(sum[:])
}

// Fingerprint returns a short hex fingerprint of an image.
//
// It truncates the digest to 10 bytes (20 hex chars).
func Fingerprint(image []byte) string {
	sum := Digest(image)
	return hex.EncodeToString(sum[:10])
}

// EqualDigest compares two hex digests in constant time.
func EqualDigest(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
