// Package store provides file-based persistence for flash images.
//
// An image is the raw contents of a simulated flash bank, word low half
// first, stored at a path of the caller's choosing; its metadata (geometry,
// BLAKE2b digest, sealing flag) lives next to it as JSON. Images saved with
// a passphrase are sealed with scrypt + ChaCha20-Poly1305. Writes go through
// a temp file and rename, and all methods are concurrency-safe via internal
// locking.
package store
