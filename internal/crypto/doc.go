// Package crypto exposes the minimal primitives used by flashio.
//
// Contents
//
//   - BLAKE2b-256 digests of flash images (Digest, DigestHex)
//   - Short image fingerprints for display/logging (Fingerprint)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
package crypto
